// Package types provides domain models shared across formlogic components.
//
// Field and rule definitions are plain data owned by the caller. The engine
// reads them and derives FieldState values; it never mutates a definition.
//
// JSON and YAML shapes use the attribute names of the form builder
// (sourceFieldId, targetFieldIds, default_value, ...) so rule sets exported
// by the UI decode without translation.
package types

// FieldType identifies the input widget a field renders as.
// The engine only reads it; unknown types are accepted and treated as text.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
)

// IsNumeric reports whether values of this field type are numbers.
func (ft FieldType) IsNumeric() bool {
	return ft == FieldTypeNumber
}

// Field is the static definition of one form input.
type Field struct {
	ID           string    `json:"id" yaml:"id"`
	Type         FieldType `json:"type" yaml:"type"`
	Label        string    `json:"label,omitempty" yaml:"label,omitempty"`
	Required     bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Readonly     bool      `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Hidden       bool      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	DefaultValue any       `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Options      []string  `json:"options,omitempty" yaml:"options,omitempty"`
}

// FieldState is the derived presentation state of a field.
// Owned by the engine; created on initialization or first rule application.
type FieldState struct {
	Visible  bool `json:"visible" yaml:"visible"`
	Required bool `json:"required" yaml:"required"`
	Disabled bool `json:"disabled" yaml:"disabled"`
	Value    any  `json:"value" yaml:"value"`
}

// DefaultFieldState returns the state reported for fields the engine has
// never seen: visible, optional, enabled, no value.
func DefaultFieldState() FieldState {
	return FieldState{Visible: true}
}

// EvaluationContext is the complete mutable state of one engine instance.
type EvaluationContext struct {
	FormData          map[string]any        `json:"formData" yaml:"formData"`
	FieldStates       map[string]FieldState `json:"fieldStates" yaml:"fieldStates"`
	EvaluationResults []RuleEvaluation      `json:"evaluationResults" yaml:"evaluationResults"`
}

// NewEvaluationContext returns an empty context with allocated maps.
func NewEvaluationContext() EvaluationContext {
	return EvaluationContext{
		FormData:          make(map[string]any),
		FieldStates:       make(map[string]FieldState),
		EvaluationResults: []RuleEvaluation{},
	}
}

// Clone returns a copy whose maps and slice can be modified without
// affecting c. Individual values are copied shallowly.
func (c EvaluationContext) Clone() EvaluationContext {
	out := EvaluationContext{
		FormData:          make(map[string]any, len(c.FormData)),
		FieldStates:       make(map[string]FieldState, len(c.FieldStates)),
		EvaluationResults: make([]RuleEvaluation, len(c.EvaluationResults)),
	}
	for k, v := range c.FormData {
		out.FormData[k] = v
	}
	for k, v := range c.FieldStates {
		out.FieldStates[k] = v
	}
	copy(out.EvaluationResults, c.EvaluationResults)
	return out
}

// ValidationResult is the outcome of static rule set analysis.
// Valid is true iff Errors is empty; warnings never affect validity.
type ValidationResult struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}
