package orchestrator

import (
	"maps"
	"reflect"
)

// UI state keys toggled by the built-in action effects.
const (
	KeyShowReviewForm           = "showReviewForm"
	KeyShowApprovalConfirmation = "showApprovalConfirmation"
	KeyShowRejectConfirmation   = "showRejectConfirmation"
)

// UIStateKey is the data context key under which UI state is exposed to
// visibleIf conditions.
const UIStateKey = "uiState"

// Effects maps an action key to the UI state assignments it performs before
// being forwarded to the dispatcher.
type Effects map[string]map[string]any

// DefaultEffects returns the built-in action table.
func DefaultEffects() Effects {
	return Effects{
		"request_review": {KeyShowReviewForm: true},
		"approve":        {KeyShowApprovalConfirmation: true},
		"reject":         {KeyShowRejectConfirmation: true},
		"cancel":         {KeyShowReviewForm: false},
		"submit":         {KeyShowReviewForm: false},
	}
}

// Apply writes the effects of actionKey into state and reports whether
// anything changed.
func (e Effects) Apply(actionKey string, state map[string]any) bool {
	assignments, ok := e[actionKey]
	if !ok {
		return false
	}
	changed := false
	for key, value := range assignments {
		if current, exists := state[key]; !exists || !reflect.DeepEqual(current, value) {
			changed = true
		}
		state[key] = value
	}
	return changed
}

// Merge returns a copy of e overlaid with other.
func (e Effects) Merge(other Effects) Effects {
	out := make(Effects, len(e)+len(other))
	for key, assignments := range e {
		out[key] = maps.Clone(assignments)
	}
	for key, assignments := range other {
		out[key] = maps.Clone(assignments)
	}
	return out
}
