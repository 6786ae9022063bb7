package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/template"
	"github.com/goliatone/go-schemaui/pkg/validation"
)

// ErrSubmitInFlight is returned when Submit is called while a previous
// submission has not settled.
var ErrSubmitInFlight = errors.New("form: submission already in flight")

// ErrInvalid is returned by the submit action when validation rejects the
// working data. The field errors are on the session.
var ErrInvalid = errors.New("form: validation failed")

// State is the session's position in the editing state machine.
type State string

const (
	StateIdle       State = "idle"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

// Outcome reports how a Submit call ended.
type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
	OutcomeBusy      Outcome = "busy"
)

// Submitter receives validated form data.
type Submitter interface {
	Submit(ctx context.Context, data map[string]any) error
}

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(ctx context.Context, data map[string]any) error

// Submit implements Submitter.
func (fn SubmitFunc) Submit(ctx context.Context, data map[string]any) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, data)
}

// Canceller receives cancel requests. The session keeps its data; the
// canceller decides whether to discard it.
type Canceller interface {
	Cancel(ctx context.Context, data map[string]any) error
}

// CancelFunc adapts a function to Canceller.
type CancelFunc func(ctx context.Context, data map[string]any) error

// Cancel implements Canceller.
func (fn CancelFunc) Cancel(ctx context.Context, data map[string]any) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, data)
}

// Option configures a Session.
type Option func(*Session)

// WithSubmitter sets the submit collaborator.
func WithSubmitter(submitter Submitter) Option {
	return func(s *Session) {
		s.submitter = submitter
	}
}

// WithCanceller sets the cancel collaborator.
func WithCanceller(canceller Canceller) Option {
	return func(s *Session) {
		s.canceller = canceller
	}
}

// WithDispatcher receives actions other than submit and cancel.
func WithDispatcher(dispatcher actions.Dispatcher) Option {
	return func(s *Session) {
		s.dispatcher = dispatcher
	}
}

// WithConfirmer gates actions carrying confirmation text.
func WithConfirmer(confirmer actions.Confirmer) Option {
	return func(s *Session) {
		s.confirmer = confirmer
	}
}

// WithValidator overrides the validator, typically to attach a rule lookup.
func WithValidator(validator *validation.Validator) Option {
	return func(s *Session) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// WithEvaluator overrides the condition evaluator used for visibleIf.
func WithEvaluator(evaluator condition.Evaluator) Option {
	return func(s *Session) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithTemplates overrides the template renderer used for the title.
func WithTemplates(renderer *template.Renderer) Option {
	return func(s *Session) {
		if renderer != nil {
			s.templates = renderer
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is one editing session over a Form schema. It is safe for
// concurrent use; collaborators are called without the session lock held.
type Session struct {
	schema     schema.ComponentSchema
	groups     []Group
	submitter  Submitter
	canceller  Canceller
	dispatcher actions.Dispatcher
	confirmer  actions.Confirmer
	validator  *validation.Validator
	evaluator  condition.Evaluator
	templates  *template.Renderer
	logger     *zap.Logger
	bar        *actions.Bar

	mu     sync.Mutex
	state  State
	data   map[string]any
	errors map[string]string
}

// NewSession starts an Idle session with initial merged over field defaults.
func NewSession(s schema.ComponentSchema, initial map[string]any, opts ...Option) *Session {
	session := &Session{
		schema:    s,
		groups:    Organize(s),
		validator: validation.New(),
		evaluator: condition.New(),
		templates: template.New(),
		logger:    zap.NewNop(),
		state:     StateIdle,
		data:      InitialData(s.Fields, initial),
		errors:    make(map[string]string),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(session)
	}

	buttons := s.Actions
	if len(buttons) == 0 {
		buttons = DefaultActions()
	}
	session.bar = actions.NewBar(buttons,
		actions.WithVariant(actions.VariantForm),
		actions.WithEvaluator(session.evaluator),
		actions.WithConfirmer(session.confirmer),
		actions.WithDispatcher(actions.DispatchFunc(session.route)),
		actions.WithLogger(session.logger),
	)
	return session
}

// Schema returns the schema the session edits.
func (s *Session) Schema() schema.ComponentSchema {
	return s.schema
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Data returns a copy of the working data record.
func (s *Session) Data() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data)
}

// Errors returns a copy of the current error map.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.errors)
}

// Change records value under key and clears any error previously attached to
// it. Errors are not re-validated until the next submit.
func (s *Session) Change(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	delete(s.errors, key)
	if s.state == StateIdle {
		s.state = StateEditing
	}
}

// VisibleFields returns the schema fields whose visibleIf holds against the
// current data, in declaration order.
func (s *Session) VisibleFields() []schema.Field {
	s.mu.Lock()
	data := maps.Clone(s.data)
	s.mu.Unlock()
	return s.visible(s.schema.Fields, data)
}

func (s *Session) visible(fields []schema.Field, data map[string]any) []schema.Field {
	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		if condition.Visible(s.evaluator, field.VisibleIf, data) {
			out = append(out, field)
		}
	}
	return out
}

// Submit validates the visible fields and, when they all pass, hands a copy of
// the data to the Submitter. A failing Submitter is logged and leaves the
// session editable.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return OutcomeBusy, ErrSubmitInFlight
	}
	data := maps.Clone(s.data)
	errs := s.validator.ValidateForm(data, s.visible(s.schema.Fields, data))
	if len(errs) > 0 {
		s.errors = errs
		s.state = StateEditing
		s.mu.Unlock()
		return OutcomeInvalid, nil
	}
	s.errors = make(map[string]string)
	s.state = StateSubmitting
	s.mu.Unlock()

	var err error
	if s.submitter != nil {
		err = s.submitter.Submit(ctx, data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Error("form: submit failed",
			zap.String("component", s.schema.ComponentID),
			zap.Error(err))
		s.state = StateEditing
		return OutcomeFailed, fmt.Errorf("form: submit %s: %w", s.schema.ComponentID, err)
	}
	s.state = StateIdle
	return OutcomeSubmitted, nil
}

// Cancel forwards the current data to the Canceller.
func (s *Session) Cancel(ctx context.Context) error {
	if s.canceller == nil {
		return nil
	}
	if err := s.canceller.Cancel(ctx, s.Data()); err != nil {
		return fmt.Errorf("form: cancel %s: %w", s.schema.ComponentID, err)
	}
	return nil
}

// Trigger runs the action bar click path for actionKey. Submit and cancel are
// handled by the session; every other action goes to the Dispatcher.
func (s *Session) Trigger(ctx context.Context, actionKey string) (actions.Outcome, error) {
	s.mu.Lock()
	data := maps.Clone(s.data)
	submitting := s.state == StateSubmitting
	s.mu.Unlock()
	return s.bar.Trigger(ctx, actionKey, data, submitting)
}

func (s *Session) route(ctx context.Context, actionKey string, data map[string]any) error {
	switch actionKey {
	case actions.SubmitKey:
		outcome, err := s.Submit(ctx)
		switch {
		case outcome == OutcomeBusy:
			return fmt.Errorf("%w: %w", actions.ErrBlocked, ErrSubmitInFlight)
		case outcome == OutcomeInvalid:
			return fmt.Errorf("%w: %w", actions.ErrBlocked, ErrInvalid)
		case err != nil:
			return err
		case outcome == OutcomeSubmitted && s.dispatcher != nil:
			return s.dispatcher.Dispatch(ctx, actionKey, s.Data())
		}
		return nil
	case actions.CancelKey:
		if err := s.Cancel(ctx); err != nil {
			return err
		}
		if s.dispatcher != nil {
			return s.dispatcher.Dispatch(ctx, actionKey, data)
		}
		return nil
	}
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Dispatch(ctx, actionKey, data)
}
