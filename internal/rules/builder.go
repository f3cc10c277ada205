package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/solatis/formlogic/internal/types"
)

// RuleBuilder assembles a ConditionalRule fluently:
//
//	rule, err := rules.When("age").GreaterEqual(18).Then().Show("consent").WithPriority(10).Build()
//
// Condition methods apply to the most recent source: the rule's own source
// after When, or the clause started by And/Or. A builder is not safe for
// concurrent use.
type RuleBuilder struct {
	rule    types.ConditionalRule
	pending *types.Clause
	errs    []string
}

// NewRuleBuilder returns an empty builder.
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{}
}

// When starts a rule on sourceFieldID.
func When(sourceFieldID string) *RuleBuilder {
	return NewRuleBuilder().When(sourceFieldID)
}

// When sets the rule's source field.
func (b *RuleBuilder) When(sourceFieldID string) *RuleBuilder {
	b.rule.SourceFieldID = sourceFieldID
	return b
}

// And adds a clause on sourceFieldID that must hold together with the
// rule's other conditions.
func (b *RuleBuilder) And(sourceFieldID string) *RuleBuilder {
	return b.join(types.LogicAnd, sourceFieldID)
}

// Or adds a clause on sourceFieldID; the rule passes when any condition
// holds.
func (b *RuleBuilder) Or(sourceFieldID string) *RuleBuilder {
	return b.join(types.LogicOr, sourceFieldID)
}

func (b *RuleBuilder) join(op types.LogicOperator, sourceFieldID string) *RuleBuilder {
	if b.rule.LogicOperator != "" && b.rule.LogicOperator != op {
		b.errs = append(b.errs, fmt.Sprintf("cannot mix %s and %s", b.rule.LogicOperator, op))
	}
	b.flushClause()
	b.rule.LogicOperator = op
	b.pending = &types.Clause{SourceFieldID: sourceFieldID}
	return b
}

func (b *RuleBuilder) condition(cond types.Condition, value any) *RuleBuilder {
	if b.pending != nil {
		b.pending.Condition = cond
		b.pending.Value = value
		b.flushClause()
		return b
	}
	b.rule.Condition = cond
	b.rule.Value = value
	return b
}

// flushClause appends the pending clause once its condition is set.
func (b *RuleBuilder) flushClause() {
	if b.pending == nil || b.pending.Condition == "" {
		return
	}
	b.rule.Clauses = append(b.rule.Clauses, *b.pending)
	b.pending = nil
}

func (b *RuleBuilder) Equals(value any) *RuleBuilder {
	return b.condition(types.CondEquals, value)
}

func (b *RuleBuilder) NotEquals(value any) *RuleBuilder {
	return b.condition(types.CondNotEquals, value)
}

func (b *RuleBuilder) Contains(value any) *RuleBuilder {
	return b.condition(types.CondContains, value)
}

func (b *RuleBuilder) NotContains(value any) *RuleBuilder {
	return b.condition(types.CondNotContains, value)
}

func (b *RuleBuilder) GreaterThan(value any) *RuleBuilder {
	return b.condition(types.CondGreaterThan, value)
}

func (b *RuleBuilder) LessThan(value any) *RuleBuilder {
	return b.condition(types.CondLessThan, value)
}

func (b *RuleBuilder) GreaterEqual(value any) *RuleBuilder {
	return b.condition(types.CondGreaterEqual, value)
}

func (b *RuleBuilder) LessEqual(value any) *RuleBuilder {
	return b.condition(types.CondLessEqual, value)
}

func (b *RuleBuilder) IsEmpty() *RuleBuilder {
	return b.condition(types.CondIsEmpty, nil)
}

func (b *RuleBuilder) IsNotEmpty() *RuleBuilder {
	return b.condition(types.CondIsNotEmpty, nil)
}

// Matches tests the source against a regular expression.
func (b *RuleBuilder) Matches(pattern string) *RuleBuilder {
	return b.condition(types.CondRegexMatch, pattern)
}

// Then ends the condition part of the rule. It only exists for readability.
func (b *RuleBuilder) Then() *RuleBuilder {
	return b
}

func (b *RuleBuilder) action(a types.Action, targets []string) *RuleBuilder {
	b.rule.Action = a
	b.rule.TargetFieldIDs = slices.Clone(targets)
	return b
}

func (b *RuleBuilder) Show(targets ...string) *RuleBuilder {
	return b.action(types.ActionShow, targets)
}

func (b *RuleBuilder) Hide(targets ...string) *RuleBuilder {
	return b.action(types.ActionHide, targets)
}

func (b *RuleBuilder) Require(targets ...string) *RuleBuilder {
	return b.action(types.ActionRequire, targets)
}

func (b *RuleBuilder) Disable(targets ...string) *RuleBuilder {
	return b.action(types.ActionDisable, targets)
}

// SetValue assigns value to the targets while the condition holds.
func (b *RuleBuilder) SetValue(value any, targets ...string) *RuleBuilder {
	b.rule.ActionValue = value
	return b.action(types.ActionSetValue, targets)
}

// Calculate assigns the result of formula to the targets. Placeholders of
// the form {fieldId} refer to numeric form values.
func (b *RuleBuilder) Calculate(formula string, targets ...string) *RuleBuilder {
	b.rule.ActionValue = formula
	return b.action(types.ActionCalculate, targets)
}

func (b *RuleBuilder) WithPriority(priority int) *RuleBuilder {
	b.rule.Priority = &priority
	return b
}

func (b *RuleBuilder) WithID(id string) *RuleBuilder {
	b.rule.ID = id
	return b
}

// Build returns the assembled rule. It fails with types.ErrIncompleteRule
// when the source field, condition or action is unset, or a clause was
// started without a condition. A rule without an id gets a generated one.
func (b *RuleBuilder) Build() (types.ConditionalRule, error) {
	var missing []string
	if b.rule.SourceFieldID == "" {
		missing = append(missing, "sourceFieldId")
	}
	if b.rule.Condition == "" {
		missing = append(missing, "condition")
	}
	if b.rule.Action == "" {
		missing = append(missing, "action")
	}
	if b.pending != nil {
		missing = append(missing, fmt.Sprintf("condition for clause on %q", b.pending.SourceFieldID))
	}

	if len(missing) > 0 || len(b.errs) > 0 {
		problems := make([]string, 0, 1+len(b.errs))
		if len(missing) > 0 {
			problems = append(problems, "missing "+strings.Join(missing, ", "))
		}
		problems = append(problems, b.errs...)
		return types.ConditionalRule{}, fmt.Errorf("%w: %s", types.ErrIncompleteRule, strings.Join(problems, "; "))
	}

	rule := b.rule
	rule.TargetFieldIDs = slices.Clone(b.rule.TargetFieldIDs)
	rule.Clauses = slices.Clone(b.rule.Clauses)
	if b.rule.Priority != nil {
		p := *b.rule.Priority
		rule.Priority = &p
	}
	if rule.ID == "" {
		rule.ID = types.NewRuleID()
	}
	return rule, nil
}

// MustBuild is like Build but panics on error.
func (b *RuleBuilder) MustBuild() types.ConditionalRule {
	rule, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rule
}
