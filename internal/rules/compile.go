// internal/rules/compile.go
package rules

import (
	"sort"

	"github.com/solatis/formlogic/internal/types"
)

/*
 * Rule ordering and preparation.
 *
 * Turns the engine's rule list into an evaluation plan: rules ordered by
 * priority (descending, missing priority = 0) with their leaf condition and
 * clauses flattened into one operand list, cheapest first (see cost.go).
 *
 * Why stable sort: rules with equal priority must apply in the order they
 * were added. Later rules read values written by earlier ones in the same
 * pass (set_value, calculate), and conflicting show/hide actions resolve by
 * application order, so the order is part of the engine's observable
 * behavior.
 */

// compiledRule is a rule prepared for one evaluation pass.
type compiledRule struct {
	rule    types.ConditionalRule
	clauses []types.Clause // leaf and rule.Clauses, ordered by cost
	logic   types.LogicOperator
}

// compile orders rules for evaluation. The input slice is not modified.
func compile(rules []types.ConditionalRule) []compiledRule {
	plan := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		clauses := make([]types.Clause, 0, 1+len(r.Clauses))
		clauses = append(clauses, r.Leaf())
		clauses = append(clauses, r.Clauses...)
		sort.SliceStable(clauses, func(i, j int) bool {
			return ConditionCost(clauses[i].Condition) < ConditionCost(clauses[j].Condition)
		})

		logic := r.LogicOperator
		if logic != types.LogicOr {
			logic = types.LogicAnd
		}

		plan = append(plan, compiledRule{rule: r, clauses: clauses, logic: logic})
	}

	// Stable sort: equal-priority rules keep insertion order
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].rule.EffectivePriority() > plan[j].rule.EffectivePriority()
	})
	return plan
}

// OrderRules returns rules in the order EvaluateAllRules applies them.
func OrderRules(rules []types.ConditionalRule) []types.ConditionalRule {
	plan := compile(rules)
	out := make([]types.ConditionalRule, len(plan))
	for i, cr := range plan {
		out[i] = cr.rule
	}
	return out
}
