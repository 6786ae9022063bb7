package display

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
	"github.com/goliatone/go-schemaui/pkg/template"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// DefaultMaxDepth bounds nested component resolution.
const DefaultMaxDepth = 8

// Fetcher resolves nested component references.
type Fetcher interface {
	FetchSchema(ctx context.Context, componentID string) (schema.ComponentSchema, error)
}

// FormProvider supplies the session backing an embedded form. Orchestrators
// keep sessions alive across renders; the default creates a fresh session
// seeded with the shared data context.
type FormProvider interface {
	FormSession(s schema.ComponentSchema, data map[string]any) *form.Session
}

// FormProviderFunc adapts a function to FormProvider.
type FormProviderFunc func(s schema.ComponentSchema, data map[string]any) *form.Session

// FormSession implements FormProvider.
func (fn FormProviderFunc) FormSession(s schema.ComponentSchema, data map[string]any) *form.Session {
	return fn(s, data)
}

// FallbackFunc builds the node shown in place of a subtree that panicked.
type FallbackFunc func(componentID string, recovered any) view.Node

// Option configures a Resolver.
type Option func(*Resolver)

// WithFetcher sets the collaborator used for nested component ids.
func WithFetcher(fetcher Fetcher) Option {
	return func(r *Resolver) {
		r.fetcher = fetcher
	}
}

// WithEvaluator overrides the condition evaluator.
func WithEvaluator(evaluator condition.Evaluator) Option {
	return func(r *Resolver) {
		if evaluator != nil {
			r.evaluator = evaluator
		}
	}
}

// WithTemplates overrides the template renderer.
func WithTemplates(renderer *template.Renderer) Option {
	return func(r *Resolver) {
		if renderer != nil {
			r.templates = renderer
		}
	}
}

// WithFlags replaces the status to flag mapping used by status-badge columns.
func WithFlags(flags FlagMap) Option {
	return func(r *Resolver) {
		if flags != nil {
			r.flags = flags
		}
	}
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithFormProvider sets the provider for embedded form sessions.
func WithFormProvider(provider FormProvider) Option {
	return func(r *Resolver) {
		if provider != nil {
			r.forms = provider
		}
	}
}

// WithFallback overrides the node rendered for panicking subtrees.
func WithFallback(fn FallbackFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.fallback = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver turns schemas into view trees. It holds no per-render state and is
// safe for concurrent use when its collaborators are.
type Resolver struct {
	fetcher   Fetcher
	evaluator condition.Evaluator
	templates *template.Renderer
	flags     FlagMap
	maxDepth  int
	forms     FormProvider
	fallback  FallbackFunc
	logger    *zap.Logger
}

// New constructs a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		evaluator: condition.New(),
		templates: template.New(),
		flags:     DefaultFlags(),
		maxDepth:  DefaultMaxDepth,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.forms == nil {
		r.forms = FormProviderFunc(r.newForm)
	}
	if r.fallback == nil {
		r.fallback = defaultFallback
	}
	return r
}

func (r *Resolver) newForm(s schema.ComponentSchema, data map[string]any) *form.Session {
	return form.NewSession(s, data,
		form.WithEvaluator(r.evaluator),
		form.WithTemplates(r.templates),
		form.WithLogger(r.logger),
	)
}

func defaultFallback(componentID string, recovered any) view.Node {
	return &view.Fallback{
		ComponentID: componentID,
		Message:     fmt.Sprintf("component %q failed to render", componentID),
	}
}

// Request is one resolution pass.
type Request struct {
	Schema schema.ComponentSchema
	// Data is the shared context every nested component reads.
	Data map[string]any
	// ActiveTabs selects the active tab per tabs component id.
	ActiveTabs map[string]string
}

type frame struct {
	data      map[string]any
	tabs      map[string]string
	ancestors []string
}

func (f frame) child(componentID string) frame {
	next := f
	next.ancestors = append(slices.Clip(f.ancestors), componentID)
	return next
}

// Resolve resolves req.Schema and everything it references.
func (r *Resolver) Resolve(ctx context.Context, req Request) view.Node {
	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	f := frame{data: data, tabs: req.ActiveTabs, ancestors: []string{req.Schema.ComponentID}}
	return r.boundary(req.Schema.ComponentID, func() view.Node {
		return r.resolveSchema(ctx, f, req.Schema)
	})
}

// boundary isolates fn: a panic inside it becomes a fallback node for this
// subtree only.
func (r *Resolver) boundary(componentID string, fn func() view.Node) (node view.Node) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("display: component panicked",
				zap.String("component", componentID),
				zap.Any("recovered", rec),
				zap.Stack("stack"))
			node = r.fallback(componentID, rec)
		}
	}()
	return fn()
}

func (r *Resolver) resolveSchema(ctx context.Context, f frame, s schema.ComponentSchema) view.Node {
	switch s.ComponentType {
	case schema.ComponentForm:
		return r.resolveForm(f, s)
	case schema.ComponentDisplay, "":
		return r.resolveDisplay(ctx, f, s)
	case schema.ComponentModal, schema.ComponentCustom:
		return &view.Diagnostic{
			ComponentID: s.ComponentID,
			Kind:        view.DiagnosticUnsupportedType,
			Message:     fmt.Sprintf("component type %q is not supported yet", s.ComponentType),
		}
	}
	return &view.Diagnostic{
		ComponentID: s.ComponentID,
		Kind:        view.DiagnosticUnsupportedType,
		Message:     fmt.Sprintf("unknown component type %q", s.ComponentType),
	}
}

func (r *Resolver) resolveDisplay(ctx context.Context, f frame, s schema.ComponentSchema) view.Node {
	if s.HasStructuralLayout() {
		body := r.resolveLayout(ctx, f, s, *s.Layout)
		if s.Title == "" {
			return body
		}
		return &view.Panel{
			ComponentID: s.ComponentID,
			Title:       r.templates.Interpolate(s.Title, f.data),
			Actions:     r.bar(s.Actions).Visible(f.data, false),
			Body:        body,
		}
	}

	if displayType, ok := s.DisplayType(); ok {
		strategy, known := r.strategies()[displayType]
		if !known {
			return &view.Diagnostic{
				ComponentID: s.ComponentID,
				Kind:        view.DiagnosticUnknownDisplay,
				Message:     fmt.Sprintf("unknown display type %q", displayType),
			}
		}
		return strategy(ctx, f, s)
	}

	if s.DisplayTemplate != "" {
		return r.resolveLegacy(f, s)
	}

	return &view.Empty{ComponentID: s.ComponentID, Reason: "nothing to display"}
}

// resolveRef fetches and resolves a nested component behind its own boundary.
func (r *Resolver) resolveRef(ctx context.Context, f frame, componentID string) view.Node {
	return r.boundary(componentID, func() view.Node {
		return r.fetchAndResolve(ctx, f, componentID)
	})
}

func (r *Resolver) fetchAndResolve(ctx context.Context, f frame, componentID string) view.Node {
	if componentID == "" {
		return &view.Unavailable{Reason: "no component id"}
	}
	if slices.Contains(f.ancestors, componentID) {
		r.logger.Warn("display: component cycle", zap.String("component", componentID), zap.Strings("path", f.ancestors))
		return &view.Diagnostic{
			ComponentID: componentID,
			Kind:        view.DiagnosticCycle,
			Message:     fmt.Sprintf("component %q references one of its ancestors", componentID),
		}
	}
	if len(f.ancestors) > r.maxDepth {
		r.logger.Warn("display: max depth exceeded", zap.String("component", componentID), zap.Int("max_depth", r.maxDepth))
		return &view.Diagnostic{
			ComponentID: componentID,
			Kind:        view.DiagnosticDepthExceeded,
			Message:     fmt.Sprintf("component %q exceeds the maximum nesting depth of %d", componentID, r.maxDepth),
		}
	}
	if r.fetcher == nil {
		return &view.Unavailable{ComponentID: componentID, Reason: "no schema source configured"}
	}

	nested, err := r.fetcher.FetchSchema(ctx, componentID)
	if err != nil {
		reason := "component unavailable"
		if errors.Is(err, store.ErrNotFound) {
			reason = "component not found"
		}
		r.logger.Warn("display: nested component unresolved", zap.String("component", componentID), zap.Error(err))
		return &view.Unavailable{ComponentID: componentID, Reason: reason}
	}

	return r.resolveSchema(ctx, f.child(componentID), nested)
}
