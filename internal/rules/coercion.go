// internal/rules/coercion.go
package rules

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/solatis/formlogic/internal/types"
)

/*
 * Value classification and coercion.
 *
 * Form values arrive as whatever the host decoded: float64 from JSON,
 * int64/uint64 from YAML, native Go integers from direct API callers.
 * Conditions never coerce across kinds (a numeric string is not a number),
 * so classification here is strict: toFloat64 accepts only Go numeric kinds.
 *
 * Coerce is the one lenient path. It converts raw text input (CLI --set
 * flags, query strings) into the value a field of the given type would hold
 * in the browser: numbers for number fields, booleans for checkboxes, text
 * for everything else. Empty input on a number field is null, not zero.
 */

// CoercionResult holds the coerced value or indicates null.
type CoercionResult struct {
	Value  any  // coerced value (valid only if !IsNull)
	IsNull bool // true if input was nil or empty for a typed field
}

// Coerce converts a raw value to the representation used by fields of type ft.
// Returns types.ErrCoercionFailed for impossible coercions.
func Coerce(value any, ft types.FieldType) (CoercionResult, error) {
	if value == nil {
		return CoercionResult{IsNull: true}, nil
	}

	switch ft {
	case types.FieldTypeNumber:
		return coerceNumeric(value)
	case types.FieldTypeCheckbox:
		return coerceBoolean(value)
	default:
		return coerceText(value)
	}
}

// coerceNumeric converts value to float64.
// Strings are trimmed; empty strings are null. Booleans are rejected.
func coerceNumeric(value any) (CoercionResult, error) {
	if f, ok := toFloat64(value); ok {
		return CoercionResult{Value: f}, nil
	}
	s, ok := value.(string)
	if !ok {
		return CoercionResult{}, types.ErrCoercionFailed
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return CoercionResult{IsNull: true}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return CoercionResult{}, types.ErrCoercionFailed
	}
	return CoercionResult{Value: f}, nil
}

// coerceBoolean accepts booleans and their canonical string spellings.
func coerceBoolean(value any) (CoercionResult, error) {
	switch v := value.(type) {
	case bool:
		return CoercionResult{Value: v}, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return CoercionResult{}, types.ErrCoercionFailed
		}
		return CoercionResult{Value: b}, nil
	default:
		return CoercionResult{}, types.ErrCoercionFailed
	}
}

// coerceText keeps strings and slices as-is and formats scalars.
func coerceText(value any) (CoercionResult, error) {
	switch v := value.(type) {
	case string:
		return CoercionResult{Value: v}, nil
	case bool:
		return CoercionResult{Value: strconv.FormatBool(v)}, nil
	}
	if f, ok := toFloat64(value); ok {
		return CoercionResult{Value: strconv.FormatFloat(f, 'f', -1, 64)}, nil
	}
	if isList(value) {
		return CoercionResult{Value: value}, nil
	}
	return CoercionResult{Value: fmt.Sprintf("%v", value)}, nil
}

// toFloat64 converts v to float64 if it is a Go numeric kind.
// Strings are never parsed.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// isList reports whether v is a slice or array (but not a byte string).
func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// listElems returns the elements of a slice or array value.
func listElems(v any) []any {
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// isFalsy mirrors browser truthiness: nil, false, 0, NaN and "" are falsy.
func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case bool:
		return !t
	case string:
		return t == ""
	}
	if f, ok := toFloat64(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	return false
}
