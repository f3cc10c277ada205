// internal/rules/cost.go
package rules

import "github.com/solatis/formlogic/internal/types"

/*
 * Cost model for clause evaluation.
 *
 * Within a multi-condition rule, cheaper clauses are evaluated first so AND
 * and OR short-circuit before reaching regex or substring scans. Clause
 * evaluation has no side effects beyond logging, so ordering never changes
 * whether a rule passes.
 *
 * Costs are relative, not measured:
 *   - emptiness checks inspect the value only
 *   - equality and ordering are a single comparison
 *   - contains lowercases strings or scans lists
 *   - regex_match compiles (cached) and runs a pattern
 */

const (
	CostEmpty    = 1
	CostEquals   = 5
	CostOrdering = 7
	CostContains = 10
	CostRegex    = 50

	// Unknown conditions evaluate to false without work, but sort last so
	// their warning is logged only when the rule is otherwise undecided.
	CostUnknown = 100
)

// ConditionCost returns the relative cost of evaluating cond.
func ConditionCost(cond types.Condition) int {
	switch cond {
	case types.CondIsEmpty, types.CondIsNotEmpty:
		return CostEmpty
	case types.CondEquals, types.CondNotEquals:
		return CostEquals
	case types.CondGreaterThan, types.CondLessThan, types.CondGreaterEqual, types.CondLessEqual:
		return CostOrdering
	case types.CondContains, types.CondNotContains:
		return CostContains
	case types.CondRegexMatch:
		return CostRegex
	default:
		return CostUnknown
	}
}
