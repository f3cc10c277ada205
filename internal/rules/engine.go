package rules

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/solatis/formlogic/internal/types"
)

// Engine evaluates conditional rules for one form.
//
// An Engine owns a single EvaluationContext and mutates it in place; it is
// not safe for concurrent use. Hosts evaluating several forms create one
// Engine per form. Every public method completes synchronously.
type Engine struct {
	rules    []types.ConditionalRule
	ctx      types.EvaluationContext
	hidden   map[string]bool // fields declared hidden by InitializeFieldStates
	shown    map[string]bool // targets of passing show rules in the current pass
	patterns *PatternCache
	formulas *FormulaEvaluator
	logger   zerolog.Logger
}

type engineOptions struct {
	logger           zerolog.Logger
	rules            []types.ConditionalRule
	formulaCostLimit uint64
	regexCacheSize   int
	maxPatternLength int
}

// Option configures an Engine.
type Option func(*engineOptions)

// WithLogger sets the logger used for soft evaluation failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithRules registers rules at construction time.
func WithRules(rules []types.ConditionalRule) Option {
	return func(o *engineOptions) {
		o.rules = append(o.rules, rules...)
	}
}

// WithFormulaCostLimit bounds the CEL cost of one calculate formula.
func WithFormulaCostLimit(limit uint64) Option {
	return func(o *engineOptions) {
		o.formulaCostLimit = limit
	}
}

// WithRegexCacheSize sets how many compiled patterns and formulas are kept.
func WithRegexCacheSize(size int) Option {
	return func(o *engineOptions) {
		o.regexCacheSize = size
	}
}

// WithMaxPatternLength rejects regex_match patterns longer than n bytes.
func WithMaxPatternLength(n int) Option {
	return func(o *engineOptions) {
		o.maxPatternLength = n
	}
}

// NewEngine creates an engine with an empty context.
func NewEngine(opts ...Option) (*Engine, error) {
	o := engineOptions{
		logger:           zerolog.Nop(),
		formulaCostLimit: DefaultFormulaCostLimit,
		regexCacheSize:   DefaultRegexCacheSize,
		maxPatternLength: DefaultMaxPatternLength,
	}
	for _, opt := range opts {
		opt(&o)
	}

	patterns, err := NewPatternCache(o.regexCacheSize, o.maxPatternLength)
	if err != nil {
		return nil, err
	}
	formulas, err := NewFormulaEvaluator(o.formulaCostLimit, o.regexCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create formula evaluator: %w", err)
	}

	en := &Engine{
		ctx:      types.NewEvaluationContext(),
		hidden:   make(map[string]bool),
		shown:    make(map[string]bool),
		patterns: patterns,
		formulas: formulas,
		logger:   o.logger.With().Str("component", "rules").Logger(),
	}
	en.AddRules(o.rules...)
	return en, nil
}

// AddRules registers rules for evaluation after those already registered.
func (en *Engine) AddRules(rules ...types.ConditionalRule) {
	en.rules = append(en.rules, rules...)
}

// Rules returns a copy of the registered rules in insertion order.
func (en *Engine) Rules() []types.ConditionalRule {
	out := make([]types.ConditionalRule, len(en.rules))
	copy(out, en.rules)
	return out
}

// ClearRules removes every registered rule. Field states are kept.
func (en *Engine) ClearRules() {
	en.rules = nil
}

// InitializeFieldStates seeds field states from static definitions:
// hidden fields start invisible, readonly fields start disabled and default
// values are copied into the form data unless a value is already present.
// Call before the first evaluation; re-running resets visibility, required
// and disabled flags but keeps values already in the form data.
func (en *Engine) InitializeFieldStates(fields []types.Field) {
	for _, f := range fields {
		value := f.DefaultValue
		if current, ok := en.ctx.FormData[f.ID]; ok {
			value = current
		} else if f.DefaultValue != nil {
			en.ctx.FormData[f.ID] = f.DefaultValue
		}

		if f.Hidden {
			en.hidden[f.ID] = true
		} else {
			delete(en.hidden, f.ID)
		}

		en.ctx.FieldStates[f.ID] = types.FieldState{
			Visible:  !f.Hidden,
			Required: f.Required,
			Disabled: f.Readonly,
			Value:    value,
		}
	}
}

// UpdateFormData records one field value and re-evaluates every rule.
func (en *Engine) UpdateFormData(fieldID string, value any) types.EvaluationContext {
	en.ctx.FormData[fieldID] = value
	return en.EvaluateAllRules()
}

// SetFormData replaces the form data wholesale and re-evaluates.
func (en *Engine) SetFormData(data map[string]any) types.EvaluationContext {
	en.ctx.FormData = make(map[string]any, len(data))
	for k, v := range data {
		en.ctx.FormData[k] = v
	}
	return en.EvaluateAllRules()
}

// GetFieldState returns the derived state of a field, or the default state
// (visible, optional, enabled, no value) for unknown fields.
func (en *Engine) GetFieldState(fieldID string) types.FieldState {
	if state, ok := en.ctx.FieldStates[fieldID]; ok {
		return state
	}
	return types.DefaultFieldState()
}

// GetAllFieldStates returns a copy of every known field state.
func (en *Engine) GetAllFieldStates() map[string]types.FieldState {
	out := make(map[string]types.FieldState, len(en.ctx.FieldStates))
	for k, v := range en.ctx.FieldStates {
		out[k] = v
	}
	return out
}

// GetEvaluationResults returns the audit records of the last pass.
func (en *Engine) GetEvaluationResults() []types.RuleEvaluation {
	out := make([]types.RuleEvaluation, len(en.ctx.EvaluationResults))
	copy(out, en.ctx.EvaluationResults)
	return out
}

// Context returns a snapshot of the full evaluation context.
func (en *Engine) Context() types.EvaluationContext {
	return en.ctx.Clone()
}

// Reset clears form data, field states and evaluation results along with
// the field definitions seen by InitializeFieldStates. Registered rules are
// kept.
func (en *Engine) Reset() {
	en.ctx = types.NewEvaluationContext()
	en.hidden = make(map[string]bool)
	en.shown = make(map[string]bool)
}
