package types

import (
	"strings"
	"testing"
)

func TestEvaluationContext_Clone(t *testing.T) {
	orig := NewEvaluationContext()
	orig.FormData["a"] = 1.0
	orig.FieldStates["a"] = FieldState{Visible: true}
	orig.EvaluationResults = append(orig.EvaluationResults, RuleEvaluation{RuleID: "r1"})

	clone := orig.Clone()
	clone.FormData["a"] = 2.0
	clone.FormData["b"] = "x"
	clone.FieldStates["a"] = FieldState{}
	clone.EvaluationResults[0].RuleID = "changed"

	if orig.FormData["a"] != 1.0 || len(orig.FormData) != 1 {
		t.Errorf("FormData shared with clone: %v", orig.FormData)
	}
	if !orig.FieldStates["a"].Visible {
		t.Error("FieldStates shared with clone")
	}
	if orig.EvaluationResults[0].RuleID != "r1" {
		t.Error("EvaluationResults shared with clone")
	}
}

func TestConditionalRule_Payload(t *testing.T) {
	tests := []struct {
		name string
		rule ConditionalRule
		want any
	}{
		{"action value wins", ConditionalRule{Value: "yes", ActionValue: "EUR"}, "EUR"},
		{"falls back to value", ConditionalRule{Value: "EUR"}, "EUR"},
		{"neither", ConditionalRule{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Payload(); got != tt.want {
				t.Errorf("Payload() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConditionalRule_SourceFieldIDs(t *testing.T) {
	r := ConditionalRule{
		SourceFieldID: "a",
		Clauses:       []Clause{{SourceFieldID: "b"}, {SourceFieldID: "c"}},
	}
	if got := strings.Join(r.SourceFieldIDs(), ","); got != "a,b,c" {
		t.Errorf("SourceFieldIDs() = %s, want a,b,c", got)
	}
}

func TestNewRuleID(t *testing.T) {
	a, b := NewRuleID(), NewRuleID()
	if a == b {
		t.Errorf("NewRuleID() returned %s twice", a)
	}
	if !IsGeneratedRuleID(a) {
		t.Errorf("IsGeneratedRuleID(%s) = false", a)
	}
	if IsGeneratedRuleID("adult-consent") {
		t.Error("IsGeneratedRuleID accepted a hand-written id")
	}
}
