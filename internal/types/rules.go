// internal/types/rules.go
package types

/*
 * Domain types for conditional rules.
 *
 * A ConditionalRule inspects one source field (optionally more through
 * Clauses), and when its condition holds applies an Action to every target
 * field. When the condition does not hold the action is reverted according
 * to the action's revert policy.
 *
 * Key types:
 *   - Condition: comparison applied to the source value
 *   - Action: effect on target field state
 *   - ConditionalRule: complete declarative rule
 *   - RuleEvaluation: audit record produced for every rule on every pass
 *
 * Enum values are the lowercase strings used by the form builder so that
 * rule sets round-trip through JSON unchanged.
 */

// Condition selects the comparison a rule applies to its source value.
type Condition string

const (
	CondEquals       Condition = "equals"
	CondNotEquals    Condition = "not_equals"
	CondContains     Condition = "contains"
	CondNotContains  Condition = "not_contains"
	CondGreaterThan  Condition = "greater_than"
	CondLessThan     Condition = "less_than"
	CondGreaterEqual Condition = "greater_equal"
	CondLessEqual    Condition = "less_equal"
	CondIsEmpty      Condition = "is_empty"
	CondIsNotEmpty   Condition = "is_not_empty"
	CondRegexMatch   Condition = "regex_match"
)

// IsValid reports whether c is one of the known conditions.
func (c Condition) IsValid() bool {
	switch c {
	case CondEquals, CondNotEquals, CondContains, CondNotContains,
		CondGreaterThan, CondLessThan, CondGreaterEqual, CondLessEqual,
		CondIsEmpty, CondIsNotEmpty, CondRegexMatch:
		return true
	default:
		return false
	}
}

// IsOrdering reports whether c is one of the four ordering comparisons.
func (c Condition) IsOrdering() bool {
	switch c {
	case CondGreaterThan, CondLessThan, CondGreaterEqual, CondLessEqual:
		return true
	default:
		return false
	}
}

// UsesOperand reports whether c reads the rule's comparison value.
// Emptiness checks ignore it.
func (c Condition) UsesOperand() bool {
	return c != CondIsEmpty && c != CondIsNotEmpty
}

// Action selects the effect a passing rule has on its targets.
type Action string

const (
	ActionShow      Action = "show"
	ActionHide      Action = "hide"
	ActionRequire   Action = "require"
	ActionDisable   Action = "disable"
	ActionSetValue  Action = "set_value"
	ActionCalculate Action = "calculate"
)

// IsValid reports whether a is one of the known actions.
func (a Action) IsValid() bool {
	switch a {
	case ActionShow, ActionHide, ActionRequire, ActionDisable, ActionSetValue, ActionCalculate:
		return true
	default:
		return false
	}
}

// WritesValue reports whether a assigns a value to its targets.
func (a Action) WritesValue() bool {
	return a == ActionSetValue || a == ActionCalculate
}

// LogicOperator combines a rule's leaf condition with its Clauses.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// Clause is one additional (source, condition, value) check of a
// multi-condition rule.
type Clause struct {
	SourceFieldID string    `json:"sourceFieldId" yaml:"sourceFieldId"`
	Condition     Condition `json:"condition" yaml:"condition"`
	Value         any       `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionalRule is the unit of declarative form behavior.
type ConditionalRule struct {
	ID             string        `json:"id" yaml:"id"`
	SourceFieldID  string        `json:"sourceFieldId" yaml:"sourceFieldId"`
	Condition      Condition     `json:"condition" yaml:"condition"`
	Value          any           `json:"value,omitempty" yaml:"value,omitempty"`
	Action         Action        `json:"action" yaml:"action"`
	ActionValue    any           `json:"actionValue,omitempty" yaml:"actionValue,omitempty"`
	TargetFieldIDs []string      `json:"targetFieldIds" yaml:"targetFieldIds"`
	Priority       *int          `json:"priority,omitempty" yaml:"priority,omitempty"`
	LogicOperator  LogicOperator `json:"logicOperator,omitempty" yaml:"logicOperator,omitempty"`
	Clauses        []Clause      `json:"clauses,omitempty" yaml:"clauses,omitempty"`
}

// EffectivePriority returns Priority, or 0 when unset.
func (r ConditionalRule) EffectivePriority() int {
	if r.Priority == nil {
		return 0
	}
	return *r.Priority
}

// Payload returns the value set_value assigns or the formula calculate
// evaluates: ActionValue when present, otherwise Value.
func (r ConditionalRule) Payload() any {
	if r.ActionValue != nil {
		return r.ActionValue
	}
	return r.Value
}

// Leaf returns the rule's own (source, condition, value) triple as a Clause.
func (r ConditionalRule) Leaf() Clause {
	return Clause{SourceFieldID: r.SourceFieldID, Condition: r.Condition, Value: r.Value}
}

// SourceFieldIDs returns every field the rule's condition reads, leaf first.
func (r ConditionalRule) SourceFieldIDs() []string {
	ids := make([]string, 0, 1+len(r.Clauses))
	ids = append(ids, r.SourceFieldID)
	for _, c := range r.Clauses {
		ids = append(ids, c.SourceFieldID)
	}
	return ids
}

// RuleEvaluation is the audit record of one rule in one evaluation pass.
type RuleEvaluation struct {
	RuleID      string    `json:"ruleId" yaml:"ruleId"`
	Passed      bool      `json:"passed" yaml:"passed"`
	SourceValue any       `json:"sourceValue" yaml:"sourceValue"`
	TargetValue any       `json:"targetValue" yaml:"targetValue"`
	Condition   Condition `json:"condition" yaml:"condition"`
}
