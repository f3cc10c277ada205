// internal/rules/formula.go
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solatis/formlogic/internal/types"
)

/*
 * Formula evaluation for the calculate action.
 *
 * A formula is arithmetic over field placeholders, e.g. "{price} * {qty}".
 * Evaluation runs in three steps:
 *   1. Substitute: each {fieldId} whose form value is a Go number is replaced
 *      by that number. Anything else is left in place and fails step 2.
 *   2. Normalize: the text is tokenized against the arithmetic grammar
 *      (numbers, + - * / ( ), whitespace). Any other character rejects the
 *      formula. Every number is rewritten as a double literal so integer
 *      division and int/double overload errors cannot occur.
 *   3. Evaluate: the normalized text is compiled and run by CEL under a cost
 *      limit. CEL has no I/O, no loops and no host bindings here, so the
 *      only reachable behavior is arithmetic.
 *
 * A result that is not a finite double (division by zero, overflow) is
 * reported as types.ErrFormulaNotNumeric.
 */

// DefaultFormulaCostLimit bounds CEL evaluation cost per formula.
const DefaultFormulaCostLimit uint64 = 10_000

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// FormulaEvaluator evaluates calculate formulas. Compiled programs are
// cached by normalized expression.
type FormulaEvaluator struct {
	env       *cel.Env
	costLimit uint64
	programs  *lru.Cache[string, cel.Program]
}

// NewFormulaEvaluator creates an evaluator with an empty CEL environment.
func NewFormulaEvaluator(costLimit uint64, cacheSize int) (*FormulaEvaluator, error) {
	if costLimit == 0 {
		costLimit = DefaultFormulaCostLimit
	}
	if cacheSize <= 0 {
		cacheSize = DefaultRegexCacheSize
	}

	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	programs, err := lru.New[string, cel.Program](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create program cache: %w", err)
	}

	return &FormulaEvaluator{
		env:       env,
		costLimit: costLimit,
		programs:  programs,
	}, nil
}

// Evaluate substitutes placeholders from data and computes the formula.
func (f *FormulaEvaluator) Evaluate(formula string, data map[string]any) (float64, error) {
	normalized, err := NormalizeArithmetic(SubstitutePlaceholders(formula, data))
	if err != nil {
		return 0, err
	}

	prog, err := f.program(normalized)
	if err != nil {
		return 0, err
	}

	out, _, err := prog.Eval(map[string]any{})
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate %q: %w", normalized, err)
	}

	result, ok := out.Value().(float64)
	if !ok || math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: %q evaluated to %v", types.ErrFormulaNotNumeric, normalized, out.Value())
	}
	return result, nil
}

// program returns the cached CEL program for expr, compiling on miss.
func (f *FormulaEvaluator) program(expr string) (cel.Program, error) {
	if prog, ok := f.programs.Get(expr); ok {
		return prog, nil
	}

	ast, issues := f.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrFormulaSyntax, issues.Err())
	}
	prog, err := f.env.Program(ast, cel.CostLimit(f.costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	f.programs.Add(expr, prog)
	return prog, nil
}

// SubstitutePlaceholders replaces {fieldId} with the field's numeric value.
// Placeholders for missing or non-numeric values are left untouched.
func SubstitutePlaceholders(formula string, data map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(formula, func(match string) string {
		id := strings.TrimSpace(match[1 : len(match)-1])
		n, ok := toFloat64(data[id])
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return match
		}
		lit := strconv.FormatFloat(n, 'g', -1, 64)
		if n < 0 {
			return "(" + lit + ")"
		}
		return lit
	})
}

// NormalizeArithmetic checks expr against the arithmetic grammar and
// rewrites every number as a double literal. A unary plus is dropped.
// Returns an error wrapping types.ErrFormulaSyntax for anything outside
// the grammar.
func NormalizeArithmetic(expr string) (string, error) {
	var b strings.Builder
	numbers := 0
	operand := true // next token starts an operand

	for i := 0; i < len(expr); {
		ch := expr[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '+' && operand:
			i++
		case strings.IndexByte("+-*/()", ch) >= 0:
			b.WriteByte(ch)
			b.WriteByte(' ')
			operand = ch != ')'
			i++
		case isDigit(ch) || ch == '.':
			end := scanNumber(expr, i)
			f, err := strconv.ParseFloat(expr[i:end], 64)
			if err != nil || math.IsInf(f, 0) {
				return "", fmt.Errorf("%w: bad number %q", types.ErrFormulaSyntax, expr[i:end])
			}
			b.WriteString(doubleLiteral(f))
			b.WriteByte(' ')
			numbers++
			operand = false
			i = end
		default:
			return "", fmt.Errorf("%w: unexpected %q at offset %d", types.ErrFormulaSyntax, ch, i)
		}
	}

	if numbers == 0 {
		return "", fmt.Errorf("%w: no operands", types.ErrFormulaSyntax)
	}
	return strings.TrimSpace(b.String()), nil
}

// scanNumber returns the end offset of the number literal starting at i.
func scanNumber(s string, i int) int {
	j := i
	for j < len(s) && (isDigit(s[j]) || s[j] == '.') {
		j++
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && isDigit(s[k]) {
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

func doubleLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
