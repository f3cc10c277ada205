// internal/rules/validate.go
package rules

import (
	"fmt"
	"slices"

	"github.com/solatis/formlogic/internal/types"
)

/*
 * Static validation of a rule set against a field list.
 *
 * Errors make a rule set unusable: references to fields that do not exist,
 * unknown conditions or actions, duplicate ids, rules without targets.
 * Warnings flag rule sets that evaluate but probably do not do what the
 * author meant: a rule targeting its own source (circular dependency), an
 * ordering condition with a non-numeric operand, a regex that never matches
 * because it does not compile.
 *
 * Validation never evaluates rules and never touches engine state.
 */

// ValidateRules checks rules against fields. Result.Valid is true iff no
// errors were found; warnings never affect validity.
func ValidateRules(rules []types.ConditionalRule, fields []types.Field) types.ValidationResult {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.ID] = struct{}{}
	}

	v := validator{
		known: known,
		seen:  make(map[string]int, len(rules)),
		errs:  []string{},
		warns: []string{},
	}
	for i, r := range rules {
		v.rule(i, r)
	}

	return types.ValidationResult{
		Valid:    len(v.errs) == 0,
		Errors:   v.errs,
		Warnings: v.warns,
	}
}

type validator struct {
	known map[string]struct{}
	seen  map[string]int
	errs  []string
	warns []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}

func (v *validator) warnf(format string, args ...any) {
	v.warns = append(v.warns, fmt.Sprintf(format, args...))
}

func (v *validator) rule(idx int, r types.ConditionalRule) {
	label := ruleLabel(idx, r)

	if r.ID != "" {
		if first, dup := v.seen[r.ID]; dup {
			v.errorf("%s: duplicate rule id (first used by rule #%d)", label, first)
		} else {
			v.seen[r.ID] = idx
		}
	}

	v.clause(label, r.Leaf())
	for _, c := range r.Clauses {
		v.clause(label, c)
	}

	if r.LogicOperator != "" && r.LogicOperator != types.LogicAnd && r.LogicOperator != types.LogicOr {
		v.errorf("%s: unknown logic operator %q", label, r.LogicOperator)
	}

	if !r.Action.IsValid() {
		v.errorf("%s: unknown action %q", label, r.Action)
	}
	if len(r.TargetFieldIDs) == 0 {
		v.errorf("%s: no target fields", label)
	}
	for _, target := range r.TargetFieldIDs {
		if _, ok := v.known[target]; !ok {
			v.errorf("%s: target field %q does not exist", label, target)
		}
	}

	for _, src := range r.SourceFieldIDs() {
		if slices.Contains(r.TargetFieldIDs, src) {
			v.warnf("%s: target fields include source field %q (circular dependency)", label, src)
		}
	}

	if r.Action == types.ActionCalculate {
		v.formula(label, r.Payload())
	}
}

func (v *validator) clause(label string, c types.Clause) {
	if c.SourceFieldID == "" {
		v.errorf("%s: missing source field", label)
	} else if _, ok := v.known[c.SourceFieldID]; !ok {
		v.errorf("%s: source field %q does not exist", label, c.SourceFieldID)
	}

	switch {
	case !c.Condition.IsValid():
		v.errorf("%s: unknown condition %q", label, c.Condition)
	case c.Condition.IsOrdering():
		if _, ok := toFloat64(c.Value); !ok {
			v.warnf("%s: condition %s expects a numeric value, got %v", label, c.Condition, c.Value)
		}
	case c.Condition == types.CondRegexMatch:
		pattern, ok := c.Value.(string)
		if !ok {
			v.warnf("%s: regex_match expects a string pattern, got %v", label, c.Value)
			break
		}
		if _, err := compilePattern(pattern, DefaultMaxPatternLength); err != nil {
			v.warnf("%s: %v", label, err)
		}
	}
}

// formula checks a calculate formula's shape with every placeholder
// treated as 1. Placeholder references are not resolved against fields.
func (v *validator) formula(label string, value any) {
	formula, ok := value.(string)
	if !ok {
		v.errorf("%s: calculate expects a formula string, got %v", label, value)
		return
	}
	probe := placeholderPattern.ReplaceAllString(formula, "1")
	if _, err := NormalizeArithmetic(probe); err != nil {
		v.warnf("%s: %v", label, err)
	}
}

func ruleLabel(idx int, r types.ConditionalRule) string {
	if r.ID == "" {
		return fmt.Sprintf("rule #%d", idx)
	}
	return fmt.Sprintf("rule %q", r.ID)
}
