// internal/rules/operators.go
package rules

import (
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/solatis/formlogic/internal/types"
)

/*
 * Condition comparison logic.
 *
 * Implements the 11 rule conditions. Operand kinds decide applicability:
 * a condition applied to kinds it does not understand is false, never an
 * error. The only error path is regex_match with a bad pattern, which the
 * caller logs before treating the rule as not passed.
 *
 * Conditions:
 *   - equals/not_equals: strict equality, numeric kinds compared by value
 *   - contains/not_contains: case-insensitive substring, or list membership
 *   - greater/less (than, equal): numbers by value, strings by length
 *   - is_empty/is_not_empty: browser-style emptiness (see isFalsy)
 *   - regex_match: string source against the operand pattern
 *
 * Negated conditions (not_equals, not_contains) are only true when the
 * positive form was applicable; not_contains on a number is false.
 */

// Compare applies cond to the source value with operand as the rule's
// comparison value. patterns compiles regex_match operands.
func Compare(cond types.Condition, value, operand any, patterns *PatternCache) (bool, error) {
	switch cond {
	case types.CondEquals:
		return strictEqual(value, operand), nil
	case types.CondNotEquals:
		return !strictEqual(value, operand), nil
	case types.CondContains:
		matched, ok := contains(value, operand)
		return ok && matched, nil
	case types.CondNotContains:
		matched, ok := contains(value, operand)
		return ok && !matched, nil
	case types.CondGreaterThan:
		c, ok := compareOrdered(value, operand)
		return ok && c > 0, nil
	case types.CondLessThan:
		c, ok := compareOrdered(value, operand)
		return ok && c < 0, nil
	case types.CondGreaterEqual:
		c, ok := compareOrdered(value, operand)
		return ok && c >= 0, nil
	case types.CondLessEqual:
		c, ok := compareOrdered(value, operand)
		return ok && c <= 0, nil
	case types.CondIsEmpty:
		return isEmpty(value), nil
	case types.CondIsNotEmpty:
		return isNotEmpty(value), nil
	case types.CondRegexMatch:
		return matchPattern(value, operand, patterns)
	default:
		return false, nil
	}
}

// strictEqual compares without cross-kind coercion: "18" never equals 18.
// Numeric kinds compare by value so int 18 equals float64 18.
func strictEqual(a, b any) bool {
	na, okA := toFloat64(a)
	nb, okB := toFloat64(b)
	if okA || okB {
		return okA && okB && na == nb
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

// contains returns (matched, applicable).
// Strings: case-insensitive substring of a string operand.
// Lists: membership using strictEqual.
func contains(container, item any) (bool, bool) {
	if s, ok := container.(string); ok {
		sub, ok := item.(string)
		if !ok {
			return false, false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub)), true
	}
	if isList(container) {
		for _, elem := range listElems(container) {
			if strictEqual(elem, item) {
				return true, true
			}
		}
		return false, true
	}
	return false, false
}

// compareOrdered performs a three-way comparison (-1/0/1) and reports
// whether the operands were comparable. Numbers compare by value; a string
// source compares by length against a numeric operand or another string's
// length. Numeric strings are not parsed.
func compareOrdered(value, operand any) (int, bool) {
	if nv, ok := toFloat64(value); ok {
		no, ok := toFloat64(operand)
		if !ok || math.IsNaN(nv) || math.IsNaN(no) {
			return 0, false
		}
		return threeWay(nv, no), true
	}

	s, ok := value.(string)
	if !ok {
		return 0, false
	}
	length := float64(utf8.RuneCountInString(s))
	switch o := operand.(type) {
	case string:
		return threeWay(length, float64(utf8.RuneCountInString(o))), true
	default:
		no, ok := toFloat64(operand)
		if !ok || math.IsNaN(no) {
			return 0, false
		}
		return threeWay(length, no), true
	}
}

func threeWay(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// isEmpty is true for falsy values and empty lists.
func isEmpty(v any) bool {
	if isFalsy(v) {
		return true
	}
	return isList(v) && reflect.ValueOf(v).Len() == 0
}

// isNotEmpty is true for values that are present, not "" and not an empty list.
// Zero and false are "not empty" here even though isEmpty also accepts them.
func isNotEmpty(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	if isList(v) {
		return reflect.ValueOf(v).Len() > 0
	}
	return true
}

// matchPattern tests a string source against the operand pattern.
// Non-string sources or operands are false without error.
func matchPattern(value, operand any, patterns *PatternCache) (bool, error) {
	s, ok := value.(string)
	if !ok {
		return false, nil
	}
	pattern, ok := operand.(string)
	if !ok {
		return false, nil
	}
	re, err := patterns.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}
