package rules

import (
	"github.com/solatis/formlogic/internal/types"
)

// Apply and revert policies per action:
//
//	action      apply                       revert
//	show        visible = true              none, or visible = false when
//	                                        the field is declared hidden
//	hide        visible = false             visible = true
//	require     required = true             none
//	disable     disabled = true             disabled = false
//	set_value   value = rule payload        value = nil, form data entry removed
//	calculate   value = formula result      none
//
// require and calculate keep their effect after the condition stops holding.
// A failing show rule hides its target again only when the field definition
// starts it hidden and no passing show rule targeted it earlier in the same
// pass; other fields keep their current visibility. Field states
// are created on first write.

// applyAction performs the rule's action on every target.
func (en *Engine) applyAction(rule types.ConditionalRule) {
	if rule.Action == types.ActionCalculate {
		en.applyCalculate(rule)
		return
	}

	for _, target := range rule.TargetFieldIDs {
		state := en.stateFor(target)
		switch rule.Action {
		case types.ActionShow:
			state.Visible = true
			en.shown[target] = true
		case types.ActionHide:
			state.Visible = false
		case types.ActionRequire:
			state.Required = true
		case types.ActionDisable:
			state.Disabled = true
		case types.ActionSetValue:
			state.Value = rule.Payload()
			en.ctx.FormData[target] = rule.Payload()
		default:
			en.logger.Warn().
				Str("rule_id", rule.ID).
				Str("action", string(rule.Action)).
				Msg("unknown action ignored")
			return
		}
		en.ctx.FieldStates[target] = state
	}
}

// applyCalculate evaluates the formula once and writes the result to every
// target. Formula errors skip the write and leave targets untouched.
func (en *Engine) applyCalculate(rule types.ConditionalRule) {
	formula, ok := rule.Payload().(string)
	if !ok {
		en.logger.Warn().
			Str("rule_id", rule.ID).
			Msg("calculate rule has no formula")
		return
	}

	result, err := en.formulas.Evaluate(formula, en.ctx.FormData)
	if err != nil {
		en.logger.Warn().
			Err(err).
			Str("rule_id", rule.ID).
			Str("formula", formula).
			Msg("formula evaluation failed")
		return
	}

	for _, target := range rule.TargetFieldIDs {
		state := en.stateFor(target)
		state.Value = result
		en.ctx.FieldStates[target] = state
		en.ctx.FormData[target] = result
	}
}

// revertAction undoes the rule's action on every target where the action
// has a revert policy.
func (en *Engine) revertAction(rule types.ConditionalRule) {
	switch rule.Action {
	case types.ActionShow, types.ActionHide, types.ActionDisable, types.ActionSetValue:
	default:
		return
	}

	for _, target := range rule.TargetFieldIDs {
		if rule.Action == types.ActionShow && (!en.hidden[target] || en.shown[target]) {
			continue
		}
		state := en.stateFor(target)
		switch rule.Action {
		case types.ActionShow:
			state.Visible = false
		case types.ActionHide:
			state.Visible = true
		case types.ActionDisable:
			state.Disabled = false
		case types.ActionSetValue:
			state.Value = nil
			delete(en.ctx.FormData, target)
		}
		en.ctx.FieldStates[target] = state
	}
}

func (en *Engine) stateFor(fieldID string) types.FieldState {
	if state, ok := en.ctx.FieldStates[fieldID]; ok {
		return state
	}
	return types.DefaultFieldState()
}
