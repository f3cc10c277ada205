package rules

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/solatis/formlogic/internal/types"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	en, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return en
}

func TestEvaluate_RecordsEveryRule(t *testing.T) {
	en := newTestEngine(t)
	en.AddRules(
		types.ConditionalRule{
			ID: "adult", SourceFieldID: "age", Condition: types.CondGreaterEqual, Value: 18,
			Action: types.ActionShow, TargetFieldIDs: []string{"consent"},
		},
		types.ConditionalRule{
			ID: "minor", SourceFieldID: "age", Condition: types.CondLessThan, Value: 18,
			Action: types.ActionHide, TargetFieldIDs: []string{"consent"},
		},
	)

	ctx := en.UpdateFormData("age", 21)

	if len(ctx.EvaluationResults) != 2 {
		t.Fatalf("len(EvaluationResults) = %d, want 2", len(ctx.EvaluationResults))
	}
	want := []types.RuleEvaluation{
		{RuleID: "adult", Passed: true, SourceValue: 21, TargetValue: 18, Condition: types.CondGreaterEqual},
		{RuleID: "minor", Passed: false, SourceValue: 21, TargetValue: 18, Condition: types.CondLessThan},
	}
	for i, w := range want {
		if ctx.EvaluationResults[i] != w {
			t.Errorf("EvaluationResults[%d] = %+v, want %+v", i, ctx.EvaluationResults[i], w)
		}
	}
}

func TestEvaluate_ResultsReplacedEachPass(t *testing.T) {
	en := newTestEngine(t)
	en.AddRules(types.ConditionalRule{
		ID: "r", SourceFieldID: "a", Condition: types.CondIsNotEmpty,
		Action: types.ActionRequire, TargetFieldIDs: []string{"b"},
	})

	en.EvaluateAllRules()
	en.EvaluateAllRules()
	ctx := en.UpdateFormData("a", "x")

	if len(ctx.EvaluationResults) != 1 {
		t.Fatalf("len(EvaluationResults) = %d, want 1", len(ctx.EvaluationResults))
	}
	if !ctx.EvaluationResults[0].Passed {
		t.Error("EvaluationResults[0].Passed = false, want true")
	}
}

func TestEvaluate_CompositeConditions(t *testing.T) {
	tests := []struct {
		name  string
		logic types.LogicOperator
		data  map[string]any
		want  bool
	}{
		{"AND all hold", types.LogicAnd, map[string]any{"age": 30, "consent": true}, true},
		{"AND one fails", types.LogicAnd, map[string]any{"age": 30, "consent": false}, false},
		{"AND leaf fails", types.LogicAnd, map[string]any{"age": 10, "consent": true}, false},
		{"default is AND", "", map[string]any{"age": 30, "consent": false}, false},
		{"OR leaf holds", types.LogicOr, map[string]any{"age": 30, "consent": false}, true},
		{"OR clause holds", types.LogicOr, map[string]any{"age": 10, "consent": true}, true},
		{"OR none hold", types.LogicOr, map[string]any{"age": 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			en := newTestEngine(t)
			en.AddRules(types.ConditionalRule{
				ID: "submit", SourceFieldID: "age", Condition: types.CondGreaterEqual, Value: 18,
				LogicOperator: tt.logic,
				Clauses: []types.Clause{
					{SourceFieldID: "consent", Condition: types.CondEquals, Value: true},
				},
				Action: types.ActionDisable, TargetFieldIDs: []string{"submit"},
			})

			ctx := en.SetFormData(tt.data)

			if got := ctx.EvaluationResults[0].Passed; got != tt.want {
				t.Errorf("Passed = %v, want %v", got, tt.want)
			}
			if got := ctx.FieldStates["submit"].Disabled; got != tt.want {
				t.Errorf("submit.Disabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_BadRuleDoesNotBlockOthers(t *testing.T) {
	var buf bytes.Buffer
	en := newTestEngine(t, WithLogger(zerolog.New(&buf)))
	en.AddRules(
		types.ConditionalRule{
			ID: "bad-regex", SourceFieldID: "name", Condition: types.CondRegexMatch, Value: "[",
			Action: types.ActionHide, TargetFieldIDs: []string{"nickname"},
		},
		types.ConditionalRule{
			ID: "bad-condition", SourceFieldID: "name", Condition: "sounds_like", Value: "bob",
			Action: types.ActionHide, TargetFieldIDs: []string{"nickname"},
		},
		types.ConditionalRule{
			ID: "bad-formula", SourceFieldID: "name", Condition: types.CondIsNotEmpty,
			Action: types.ActionCalculate, Value: "{name} * 2", TargetFieldIDs: []string{"score"},
		},
		types.ConditionalRule{
			ID: "good", SourceFieldID: "name", Condition: types.CondIsNotEmpty,
			Action: types.ActionRequire, TargetFieldIDs: []string{"nickname"},
		},
	)

	ctx := en.UpdateFormData("name", "bob")

	if len(ctx.EvaluationResults) != 4 {
		t.Fatalf("len(EvaluationResults) = %d, want 4", len(ctx.EvaluationResults))
	}
	if ctx.EvaluationResults[0].Passed || ctx.EvaluationResults[1].Passed {
		t.Error("rules with a bad regex or unknown condition should not pass")
	}
	if !ctx.FieldStates["nickname"].Required {
		t.Error("nickname.Required = false, want true from the good rule")
	}
	if !ctx.FieldStates["nickname"].Visible {
		t.Error("nickname.Visible = false, want true (failing hide rules revert to visible)")
	}
	if _, ok := ctx.FormData["score"]; ok {
		t.Error("FormData[score] set by a failing formula")
	}

	logs := buf.String()
	for _, id := range []string{"bad-regex", "bad-condition", "bad-formula"} {
		if !strings.Contains(logs, `"rule_id":"`+id+`"`) {
			t.Errorf("no warning logged for rule %s; logs:\n%s", id, logs)
		}
	}
	if !strings.Contains(logs, `"level":"warn"`) {
		t.Errorf("expected warn level entries; logs:\n%s", logs)
	}
}

func TestEvaluate_MissingSourceIsNil(t *testing.T) {
	en := newTestEngine(t)
	en.AddRules(
		types.ConditionalRule{
			ID: "empty", SourceFieldID: "notes", Condition: types.CondIsEmpty,
			Action: types.ActionHide, TargetFieldIDs: []string{"details"},
		},
		types.ConditionalRule{
			ID: "gt", SourceFieldID: "notes", Condition: types.CondGreaterThan, Value: 0,
			Action: types.ActionRequire, TargetFieldIDs: []string{"details"},
		},
	)

	ctx := en.EvaluateAllRules()

	if !ctx.EvaluationResults[0].Passed {
		t.Error("is_empty on a missing field should pass")
	}
	if ctx.EvaluationResults[1].Passed {
		t.Error("greater_than on a missing field should not pass")
	}
	if ctx.EvaluationResults[0].SourceValue != nil {
		t.Errorf("SourceValue = %v, want nil", ctx.EvaluationResults[0].SourceValue)
	}
}

func TestEvaluate_LaterRulesSeeEarlierWrites(t *testing.T) {
	en := newTestEngine(t)
	en.InitializeFieldStates([]types.Field{
		{ID: "country", Type: types.FieldTypeSelect},
		{ID: "currency", Type: types.FieldTypeText},
		{ID: "vat", Type: types.FieldTypeNumber, Hidden: true},
	})
	en.AddRules(
		// Added first but evaluated second.
		types.ConditionalRule{
			ID: "show-vat", SourceFieldID: "currency", Condition: types.CondEquals, Value: "EUR",
			Action: types.ActionShow, TargetFieldIDs: []string{"vat"},
		},
		types.ConditionalRule{
			ID: "set-currency", SourceFieldID: "country", Condition: types.CondEquals, Value: "NL",
			Action: types.ActionSetValue, ActionValue: "EUR", TargetFieldIDs: []string{"currency"},
			Priority: intPtr(10),
		},
	)

	ctx := en.UpdateFormData("country", "NL")
	if !ctx.FieldStates["vat"].Visible {
		t.Error("vat.Visible = false, want true after currency was set in the same pass")
	}

	ctx = en.UpdateFormData("country", "US")
	if ctx.FieldStates["vat"].Visible {
		t.Error("vat.Visible = true, want false once currency is cleared")
	}
	if _, ok := ctx.FormData["currency"]; ok {
		t.Error("FormData[currency] still set after set_value reverted")
	}
}
