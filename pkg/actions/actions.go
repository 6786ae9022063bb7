// Package actions implements the action bar shared by forms and displays:
// visibility filtering, disabled states, the confirmation gate and dispatch to
// the host's action handler.
package actions

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/schema"
)

// SubmitKey is the action key that reflects a form's in-flight submission.
const SubmitKey = "submit"

// CancelKey is the conventional cancel action key.
const CancelKey = "cancel"

// ErrUnknownAction is returned when Trigger names an action the bar does not hold.
var ErrUnknownAction = errors.New("actions: unknown action")

// ErrBlocked is wrapped by dispatchers that refuse an action without failing,
// such as a form rejecting submit because its data is invalid. Trigger
// reports such refusals as OutcomeBlocked.
var ErrBlocked = errors.New("actions: action blocked")

// Dispatcher receives triggered actions.
type Dispatcher interface {
	Dispatch(ctx context.Context, actionKey string, data map[string]any) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, actionKey string, data map[string]any) error

// Dispatch implements Dispatcher.
func (fn DispatchFunc) Dispatch(ctx context.Context, actionKey string, data map[string]any) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, actionKey, data)
}

// Confirmer asks the user to accept an action's confirmation text.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

// Confirm implements Confirmer.
func (fn ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	if fn == nil {
		return false, nil
	}
	return fn(ctx, message)
}

// Variant distinguishes form action bars from display action bars.
type Variant string

const (
	VariantForm    Variant = "form"
	VariantDisplay Variant = "display"
)

// Outcome reports what Trigger did.
type Outcome string

const (
	OutcomeDispatched Outcome = "dispatched"
	OutcomeDeclined   Outcome = "declined"
	OutcomeDisabled   Outcome = "disabled"
	OutcomeHidden     Outcome = "hidden"
	OutcomeBlocked    Outcome = "blocked"
)

// Button is a visible action with its effective enabled state.
type Button struct {
	Action   schema.ActionButton
	Disabled bool
}

// Option configures a Bar.
type Option func(*Bar)

// WithVariant sets the bar variant. Defaults to VariantDisplay.
func WithVariant(variant Variant) Option {
	return func(b *Bar) {
		if variant != "" {
			b.variant = variant
		}
	}
}

// WithEvaluator overrides the condition evaluator used for visibleIf.
func WithEvaluator(evaluator condition.Evaluator) Option {
	return func(b *Bar) {
		if evaluator != nil {
			b.evaluator = evaluator
		}
	}
}

// WithConfirmer sets the confirmation collaborator. Without one, actions that
// carry confirmation text never dispatch.
func WithConfirmer(confirmer Confirmer) Option {
	return func(b *Bar) {
		b.confirmer = confirmer
	}
}

// WithDispatcher sets the dispatch collaborator.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(b *Bar) {
		b.dispatcher = dispatcher
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bar) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Bar is an action bar bound to a list of schema actions.
type Bar struct {
	actions    []schema.ActionButton
	variant    Variant
	evaluator  condition.Evaluator
	confirmer  Confirmer
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewBar constructs a Bar over actions.
func NewBar(actions []schema.ActionButton, opts ...Option) *Bar {
	b := &Bar{
		actions:   append([]schema.ActionButton(nil), actions...),
		variant:   VariantDisplay,
		evaluator: condition.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Variant returns the bar variant.
func (b *Bar) Variant() Variant {
	return b.variant
}

// Visible returns the actions whose visibleIf holds against data, in schema
// order. In the form variant the submit action is disabled while submitting.
func (b *Bar) Visible(data map[string]any, submitting bool) []Button {
	out := make([]Button, 0, len(b.actions))
	for _, action := range b.actions {
		if !condition.Visible(b.evaluator, action.VisibleIf, data) {
			continue
		}
		out = append(out, Button{
			Action:   action,
			Disabled: b.disabled(action, submitting),
		})
	}
	return out
}

func (b *Bar) disabled(action schema.ActionButton, submitting bool) bool {
	if action.Disabled {
		return true
	}
	return b.variant == VariantForm && action.ActionKey == SubmitKey && submitting
}

// Trigger runs the click path for actionKey: hidden and disabled actions are
// ignored, confirmation text blocks until the confirmer accepts, and only then
// is the dispatcher invoked.
func (b *Bar) Trigger(ctx context.Context, actionKey string, data map[string]any, submitting bool) (Outcome, error) {
	action, ok := b.find(actionKey)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, actionKey)
	}
	if !condition.Visible(b.evaluator, action.VisibleIf, data) {
		return OutcomeHidden, nil
	}
	if b.disabled(action, submitting) {
		return OutcomeDisabled, nil
	}

	if action.Confirmation != "" {
		if b.confirmer == nil {
			b.logger.Warn("actions: confirmation required but no confirmer configured",
				zap.String("action", action.ActionKey))
			return OutcomeDeclined, nil
		}
		accepted, err := b.confirmer.Confirm(ctx, action.Confirmation)
		if err != nil {
			return OutcomeDeclined, fmt.Errorf("actions: confirm %q: %w", action.ActionKey, err)
		}
		if !accepted {
			return OutcomeDeclined, nil
		}
	}

	if b.dispatcher == nil {
		b.logger.Debug("actions: no dispatcher configured", zap.String("action", action.ActionKey))
		return OutcomeDispatched, nil
	}
	if err := b.dispatcher.Dispatch(ctx, action.ActionKey, data); err != nil {
		if errors.Is(err, ErrBlocked) {
			b.logger.Debug("actions: dispatch blocked", zap.String("action", action.ActionKey), zap.Error(err))
			return OutcomeBlocked, err
		}
		b.logger.Error("actions: dispatch failed", zap.String("action", action.ActionKey), zap.Error(err))
		return OutcomeDispatched, fmt.Errorf("actions: dispatch %q: %w", action.ActionKey, err)
	}
	return OutcomeDispatched, nil
}

func (b *Bar) find(actionKey string) (schema.ActionButton, bool) {
	for _, action := range b.actions {
		if action.ActionKey == actionKey {
			return action, true
		}
	}
	return schema.ActionButton{}, false
}
