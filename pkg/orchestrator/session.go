package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/display"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/render"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// Status is the schema resolution state of a session.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
	StatusEmpty   Status = "empty"
)

// ErrNotReady is returned by operations that need a resolved schema.
var ErrNotReady = errors.New("orchestrator: session has no resolved schema")

// Session is one rendering session: a resolved root schema, the shared data
// context, UI state, per-tabs selection and the form sessions of embedded
// forms. It is safe for concurrent use.
type Session struct {
	o *Orchestrator

	mu         sync.Mutex
	generation uint64
	status     Status
	root       schema.ComponentSchema
	reason     string
	err        error
	data       map[string]any
	uiState    map[string]any
	tabs       map[string]string
	forms      map[string]*form.Session
	settled    chan struct{}
}

func closedChannel() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func newSession(o *Orchestrator) *Session {
	return &Session{
		o:       o,
		status:  StatusEmpty,
		reason:  "no schema provided",
		data:    map[string]any{},
		uiState: map[string]any{},
		tabs:    map[string]string{},
		forms:   map[string]*form.Session{},
		settled: closedChannel(),
	}
}

// Load replaces what the session renders. A result still in flight from a
// previous Load is discarded when it arrives.
func (s *Session) Load(ctx context.Context, req Request) {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.data = maps.Clone(req.Data)
	if s.data == nil {
		s.data = map[string]any{}
	}
	s.uiState = maps.Clone(req.InitialUIState)
	if s.uiState == nil {
		s.uiState = map[string]any{}
	}
	s.tabs = map[string]string{}
	s.forms = map[string]*form.Session{}
	s.err = nil
	s.reason = ""

	switch {
	case req.Schema != nil:
		s.setRoot(*req.Schema, req.ComponentType)
		s.settled = closedChannel()
		s.mu.Unlock()
		return
	case req.ComponentID == "" || s.o.fetcher == nil:
		switch {
		case req.Fallback != nil:
			s.setRoot(*req.Fallback, req.ComponentType)
		case req.ComponentID != "":
			s.status = StatusEmpty
			s.reason = fmt.Sprintf("no schema source configured for %q", req.ComponentID)
		default:
			s.status = StatusEmpty
			s.reason = "no schema provided"
		}
		s.settled = closedChannel()
		s.mu.Unlock()
		return
	}

	s.status = StatusLoading
	s.root = schema.ComponentSchema{ComponentID: req.ComponentID}
	s.settled = make(chan struct{})
	settled := s.settled
	s.mu.Unlock()

	go func() {
		found, err := s.o.fetcher.FetchSchema(ctx, req.ComponentID)

		s.mu.Lock()
		defer s.mu.Unlock()
		defer close(settled)
		if generation != s.generation {
			s.o.logger.Debug("orchestrator: discarding superseded schema",
				zap.String("component", req.ComponentID))
			return
		}
		switch {
		case err == nil:
			s.setRoot(found, req.ComponentType)
		case errors.Is(err, store.ErrNotFound) && req.Fallback != nil:
			s.setRoot(*req.Fallback, req.ComponentType)
		case errors.Is(err, store.ErrNotFound):
			s.status = StatusEmpty
			s.reason = fmt.Sprintf("schema %q not found", req.ComponentID)
		default:
			s.o.logger.Error("orchestrator: schema fetch failed",
				zap.String("component", req.ComponentID), zap.Error(err))
			s.status = StatusFailed
			s.err = err
		}
	}()
}

func (s *Session) setRoot(root schema.ComponentSchema, override schema.ComponentType) {
	if override != "" {
		root.ComponentType = override
	}
	s.root = root
	s.status = StatusReady
}

// Wait blocks until the current load settles or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	settled := s.settled
	s.mu.Unlock()
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the resolution status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the fetch error of a failed session.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Schema returns the resolved root schema.
func (s *Session) Schema() (schema.ComponentSchema, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root, s.status == StatusReady
}

// UIState returns a copy of the UI state record.
func (s *Session) UIState() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.uiState)
}

// SetUIState assigns one UI state key.
func (s *Session) SetUIState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState[key] = value
}

// SelectTab sets the active tab of a tabs component.
func (s *Session) SelectTab(componentID, tabKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[componentID] = tabKey
}

// Context returns the data context passed to resolution: the session data
// with the UI state under "uiState".
func (s *Session) Context() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contextLocked()
}

func (s *Session) contextLocked() map[string]any {
	ctx := maps.Clone(s.data)
	ctx[UIStateKey] = maps.Clone(s.uiState)
	return ctx
}

// View resolves the session into a view tree. Loading, failed and empty
// sessions produce their dedicated nodes.
func (s *Session) View(ctx context.Context) view.Node {
	s.mu.Lock()
	status := s.status
	root := s.root
	reason := s.reason
	err := s.err
	data := s.contextLocked()
	tabs := maps.Clone(s.tabs)
	s.mu.Unlock()

	switch status {
	case StatusLoading:
		return &view.Loading{ComponentID: root.ComponentID}
	case StatusFailed:
		message := "failed to load schema"
		if err != nil {
			message = err.Error()
		}
		return &view.Failed{ComponentID: root.ComponentID, Message: message}
	case StatusEmpty:
		return &view.Empty{ComponentID: root.ComponentID, Reason: reason}
	}

	return s.o.resolver(s).Resolve(ctx, display.Request{
		Schema:     root,
		Data:       data,
		ActiveTabs: tabs,
	})
}

// Render resolves the session and renders it with the named renderer, or the
// orchestrator default when name is empty.
func (s *Session) Render(ctx context.Context, name string, options render.RenderOptions) ([]byte, error) {
	renderer, err := s.o.rendererFor(name)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, s.View(ctx), options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// FormSession implements display.FormProvider. Sessions are created once per
// component id and seeded with the shared data context.
func (s *Session) FormSession(component schema.ComponentSchema, data map[string]any) *form.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.forms[component.ComponentID]; ok {
		return existing
	}
	session := s.newForm(component, data)
	s.forms[component.ComponentID] = session
	return session
}

func (s *Session) newForm(component schema.ComponentSchema, data map[string]any) *form.Session {
	initial := maps.Clone(data)
	delete(initial, UIStateKey)
	return form.NewSession(component, initial,
		form.WithSubmitter(s.o.submitter),
		form.WithCanceller(s.o.canceller),
		form.WithDispatcher(actions.DispatchFunc(s.dispatch)),
		form.WithConfirmer(s.o.confirmer),
		form.WithValidator(s.o.validator),
		form.WithEvaluator(s.o.evaluator),
		form.WithTemplates(s.o.templates),
		form.WithLogger(s.o.logger),
	)
}

// dispatch applies the UI effects of actionKey and forwards the action
// unchanged to the host dispatcher.
func (s *Session) dispatch(ctx context.Context, actionKey string, data map[string]any) error {
	s.mu.Lock()
	changed := s.o.effects.Apply(actionKey, s.uiState)
	s.mu.Unlock()
	if changed {
		s.o.logger.Debug("orchestrator: ui state updated", zap.String("action", actionKey))
	}
	if s.o.dispatcher == nil {
		return nil
	}
	return s.o.dispatcher.Dispatch(ctx, actionKey, data)
}

// Trigger runs actionKey of componentID (the root or any nested component).
// Form components route through their form session; display components run
// the action bar with the orchestrator's confirmer.
func (s *Session) Trigger(ctx context.Context, componentID, actionKey string) (actions.Outcome, error) {
	component, err := s.component(ctx, componentID)
	if err != nil {
		return "", err
	}
	if component.ComponentType == schema.ComponentForm {
		return s.FormSession(component, s.Context()).Trigger(ctx, actionKey)
	}

	bar := actions.NewBar(component.Actions,
		actions.WithEvaluator(s.o.evaluator),
		actions.WithConfirmer(s.o.confirmer),
		actions.WithDispatcher(actions.DispatchFunc(s.dispatch)),
		actions.WithLogger(s.o.logger),
	)
	return bar.Trigger(ctx, actionKey, s.Context(), false)
}

// Change updates one field of an embedded form.
func (s *Session) Change(ctx context.Context, componentID, fieldKey string, value any) error {
	component, err := s.component(ctx, componentID)
	if err != nil {
		return err
	}
	s.FormSession(component, s.Context()).Change(fieldKey, value)
	return nil
}

// Submit submits an embedded form. A successful submission applies the
// submit action's UI effects.
func (s *Session) Submit(ctx context.Context, componentID string) (form.Outcome, error) {
	component, err := s.component(ctx, componentID)
	if err != nil {
		return "", err
	}
	outcome, err := s.FormSession(component, s.Context()).Submit(ctx)
	if outcome == form.OutcomeSubmitted {
		s.mu.Lock()
		s.o.effects.Apply(actions.SubmitKey, s.uiState)
		s.mu.Unlock()
	}
	return outcome, err
}

func (s *Session) component(ctx context.Context, componentID string) (schema.ComponentSchema, error) {
	s.mu.Lock()
	root := s.root
	status := s.status
	s.mu.Unlock()

	if status != StatusReady {
		return schema.ComponentSchema{}, ErrNotReady
	}
	if componentID == "" || componentID == root.ComponentID {
		return root, nil
	}
	if s.o.fetcher == nil {
		return schema.ComponentSchema{}, fmt.Errorf("%w: %s", store.ErrNotFound, componentID)
	}
	found, err := s.o.fetcher.FetchSchema(ctx, componentID)
	if err != nil {
		return schema.ComponentSchema{}, fmt.Errorf("orchestrator: component %s: %w", componentID, err)
	}
	return found, nil
}
