package types

import "errors"

// Sentinel errors for formlogic operations.
var (
	// ErrIncompleteRule indicates Build was called before source, condition and action were set.
	ErrIncompleteRule = errors.New("rule is incomplete")

	// ErrInvalidPattern indicates a regex_match operand that is not a valid pattern.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrPatternTooComplex indicates a pattern rejected by the complexity guard.
	ErrPatternTooComplex = errors.New("regex pattern too complex")

	// ErrFormulaSyntax indicates a calculate formula outside the arithmetic grammar.
	ErrFormulaSyntax = errors.New("formula is not a valid arithmetic expression")

	// ErrFormulaNotNumeric indicates a formula whose result is not a finite number.
	ErrFormulaNotNumeric = errors.New("formula result is not a finite number")

	// ErrCoercionFailed indicates a raw value could not be converted to a field's type.
	ErrCoercionFailed = errors.New("type coercion failed")

	// ErrInvalidDocument indicates a rule document that fails schema validation.
	ErrInvalidDocument = errors.New("invalid rule document")
)
