package rules

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/solatis/formlogic/internal/types"
)

var validateFields = []types.Field{
	{ID: "age", Type: types.FieldTypeNumber},
	{ID: "consent", Type: types.FieldTypeCheckbox},
	{ID: "email", Type: types.FieldTypeEmail},
	{ID: "total", Type: types.FieldTypeNumber},
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name         string
		rules        []types.ConditionalRule
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "valid rule",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondGreaterEqual, Value: 18, Action: types.ActionShow, TargetFieldIDs: []string{"consent"}},
			},
			wantValid: true,
		},
		{
			name: "missing source field",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "birthday", Condition: types.CondIsEmpty, Action: types.ActionShow, TargetFieldIDs: []string{"consent"}},
			},
			wantErrors: []string{`rule "r1": source field "birthday" does not exist`},
		},
		{
			name: "missing target field",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondIsEmpty, Action: types.ActionHide, TargetFieldIDs: []string{"consent", "ghost"}},
			},
			wantErrors: []string{`rule "r1": target field "ghost" does not exist`},
		},
		{
			name: "circular dependency is a warning",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondIsEmpty, Action: types.ActionSetValue, Value: 0, TargetFieldIDs: []string{"age"}},
			},
			wantValid:    true,
			wantWarnings: []string{"circular dependency"},
		},
		{
			name: "ordering with non-numeric value",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondGreaterThan, Value: "18", Action: types.ActionShow, TargetFieldIDs: []string{"consent"}},
			},
			wantValid:    true,
			wantWarnings: []string{"expects a numeric value"},
		},
		{
			name: "invalid regex is a warning",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "email", Condition: types.CondRegexMatch, Value: "[a-z", Action: types.ActionShow, TargetFieldIDs: []string{"consent"}},
			},
			wantValid:    true,
			wantWarnings: []string{"invalid regex pattern"},
		},
		{
			name: "unknown condition and action",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: "between", Action: "explode", TargetFieldIDs: []string{"consent"}},
			},
			wantErrors: []string{`unknown condition "between"`, `unknown action "explode"`},
		},
		{
			name: "duplicate ids",
			rules: []types.ConditionalRule{
				{ID: "dup", SourceFieldID: "age", Condition: types.CondIsEmpty, Action: types.ActionShow, TargetFieldIDs: []string{"consent"}},
				{ID: "dup", SourceFieldID: "age", Condition: types.CondIsEmpty, Action: types.ActionHide, TargetFieldIDs: []string{"consent"}},
			},
			wantErrors: []string{"duplicate rule id"},
		},
		{
			name: "no targets",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondIsEmpty, Action: types.ActionShow},
			},
			wantErrors: []string{"no target fields"},
		},
		{
			name: "clause source must exist",
			rules: []types.ConditionalRule{
				{
					ID: "r1", SourceFieldID: "age", Condition: types.CondIsNotEmpty,
					Clauses:       []types.Clause{{SourceFieldID: "phone", Condition: types.CondIsEmpty}},
					LogicOperator: types.LogicOr,
					Action:        types.ActionShow, TargetFieldIDs: []string{"consent"},
				},
			},
			wantErrors: []string{`source field "phone" does not exist`},
		},
		{
			name: "unnamed rule is labelled by index",
			rules: []types.ConditionalRule{
				{SourceFieldID: "nope", Condition: types.CondIsEmpty, Action: types.ActionShow, TargetFieldIDs: []string{"consent"}},
			},
			wantErrors: []string{`rule #0: source field "nope"`},
		},
		{
			name: "calculate formula outside grammar",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondIsNotEmpty, Action: types.ActionCalculate, ActionValue: "{age} ** 2; rm", TargetFieldIDs: []string{"total"}},
			},
			wantValid:    true,
			wantWarnings: []string{"formula is not a valid arithmetic expression"},
		},
		{
			name: "calculate without formula",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondIsNotEmpty, Action: types.ActionCalculate, TargetFieldIDs: []string{"total"}},
			},
			wantErrors: []string{"calculate expects a formula string"},
		},
		{
			name: "valid calculate",
			rules: []types.ConditionalRule{
				{ID: "r1", SourceFieldID: "age", Condition: types.CondIsNotEmpty, Action: types.ActionCalculate, ActionValue: "({age} + 1) * 2", TargetFieldIDs: []string{"total"}},
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRules(tt.rules, validateFields)

			wantValid := tt.wantValid && len(tt.wantErrors) == 0
			if result.Valid != wantValid {
				t.Errorf("Valid = %v, want %v (errors: %v)", result.Valid, wantValid, result.Errors)
			}
			if result.Valid != (len(result.Errors) == 0) {
				t.Errorf("Valid = %v with %d errors", result.Valid, len(result.Errors))
			}
			assertMessages(t, "Errors", result.Errors, tt.wantErrors)
			assertMessages(t, "Warnings", result.Warnings, tt.wantWarnings)
		})
	}
}

func TestValidateRules_Empty(t *testing.T) {
	result := ValidateRules(nil, nil)
	if !result.Valid || len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("ValidateRules(nil, nil) = %+v, want valid and empty", result)
	}

	out, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if want := `{"valid":true,"errors":[],"warnings":[]}`; string(out) != want {
		t.Errorf("json.Marshal(result) = %s, want %s", out, want)
	}
}

// assertMessages checks every want fragment appears in some message and
// that no messages are present when none are wanted.
func assertMessages(t *testing.T, kind string, got, want []string) {
	t.Helper()
	if len(want) == 0 && len(got) != 0 {
		t.Errorf("%s = %v, want none", kind, got)
		return
	}
	for _, w := range want {
		found := false
		for _, g := range got {
			if strings.Contains(g, w) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s = %v, want an entry containing %q", kind, got, w)
		}
	}
}
