// internal/rules/evaluate.go
package rules

import (
	"fmt"

	"github.com/solatis/formlogic/internal/types"
)

/*
 * Rule evaluation orchestration.
 *
 * EvaluateAllRules re-derives every rule from the current form data. Rules
 * are not tracked incrementally; each pass starts from the rule list and
 * produces one RuleEvaluation per rule.
 *
 * Evaluation flow:
 *   1. Order rules by priority (see compile.go)
 *   2. Per rule: evaluate the leaf condition and any clauses (AND/OR)
 *   3. Record RuleEvaluation{ruleId, passed, sourceValue, targetValue}
 *   4. Passed: apply the action to every target. Failed: revert it.
 *
 * Form data is mutated in place during the pass, so a rule sees values
 * written by set_value or calculate rules ordered before it.
 *
 * Failure handling: nothing in a pass returns an error. An unknown
 * condition, a bad regex or a failing formula is logged and treated as a
 * non-passing rule (or, for formulas, a skipped write). A panic inside one
 * rule is recovered so the remaining rules still run.
 */

// EvaluateAllRules runs every registered rule against the current form data
// and returns a snapshot of the resulting context.
func (en *Engine) EvaluateAllRules() types.EvaluationContext {
	plan := compile(en.rules)
	en.ctx.EvaluationResults = make([]types.RuleEvaluation, 0, len(plan))
	clear(en.shown)

	passed := 0
	for _, cr := range plan {
		if en.runRule(cr) {
			passed++
		}
	}

	en.logger.Debug().
		Int("rules", len(plan)).
		Int("passed", passed).
		Msg("evaluated rules")

	return en.ctx.Clone()
}

// runRule evaluates one rule, records the outcome and applies or reverts
// its action. Panics are recovered and logged.
func (en *Engine) runRule(cr compiledRule) (passed bool) {
	rule := cr.rule
	defer func() {
		if r := recover(); r != nil {
			en.logger.Error().
				Str("rule_id", rule.ID).
				Str("panic", fmt.Sprint(r)).
				Msg("rule evaluation panicked")
			passed = false
		}
	}()

	passed = en.evaluateConditions(cr)
	en.ctx.EvaluationResults = append(en.ctx.EvaluationResults, types.RuleEvaluation{
		RuleID:      rule.ID,
		Passed:      passed,
		SourceValue: en.ctx.FormData[rule.SourceFieldID],
		TargetValue: rule.Value,
		Condition:   rule.Condition,
	})

	if passed {
		en.applyAction(rule)
	} else {
		en.revertAction(rule)
	}
	return passed
}

// evaluateConditions combines the leaf condition and clauses of a rule.
// AND short-circuits on the first failing clause, OR on the first passing.
func (en *Engine) evaluateConditions(cr compiledRule) bool {
	for _, clause := range cr.clauses {
		ok := en.evaluateClause(cr.rule.ID, clause)
		if cr.logic == types.LogicOr && ok {
			return true
		}
		if cr.logic == types.LogicAnd && !ok {
			return false
		}
	}
	return cr.logic == types.LogicAnd
}

// evaluateClause evaluates a single (source, condition, value) check.
// A field absent from the form data is evaluated as nil.
func (en *Engine) evaluateClause(ruleID string, clause types.Clause) bool {
	if !clause.Condition.IsValid() {
		en.logger.Warn().
			Str("rule_id", ruleID).
			Str("condition", string(clause.Condition)).
			Msg("unknown condition, rule not passed")
		return false
	}

	value := en.ctx.FormData[clause.SourceFieldID]
	ok, err := Compare(clause.Condition, value, clause.Value, en.patterns)
	if err != nil {
		en.logger.Warn().
			Err(err).
			Str("rule_id", ruleID).
			Str("field_id", clause.SourceFieldID).
			Msg("condition evaluation failed, rule not passed")
		return false
	}
	return ok
}
