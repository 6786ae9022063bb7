package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/display"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/render"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
	"github.com/goliatone/go-schemaui/pkg/template"
	"github.com/goliatone/go-schemaui/pkg/validation"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithFetcher injects the schema source. Fetches go through a store.Cache
// unless WithoutCache is also supplied.
func WithFetcher(fetcher store.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = fetcher
	}
}

// WithoutCache disables the fetch cache.
func WithoutCache() Option {
	return func(o *Orchestrator) {
		o.noCache = true
	}
}

// WithSubmitter injects the form submit collaborator.
func WithSubmitter(submitter form.Submitter) Option {
	return func(o *Orchestrator) {
		o.submitter = submitter
	}
}

// WithCanceller injects the form cancel collaborator.
func WithCanceller(canceller form.Canceller) Option {
	return func(o *Orchestrator) {
		o.canceller = canceller
	}
}

// WithDispatcher injects the action dispatch collaborator.
func WithDispatcher(dispatcher actions.Dispatcher) Option {
	return func(o *Orchestrator) {
		o.dispatcher = dispatcher
	}
}

// WithConfirmer injects the confirmation collaborator.
func WithConfirmer(confirmer actions.Confirmer) Option {
	return func(o *Orchestrator) {
		o.confirmer = confirmer
	}
}

// WithRuleLookup injects the validation rule reference table.
func WithRuleLookup(lookup validation.RuleLookup) Option {
	return func(o *Orchestrator) {
		o.rules = lookup
	}
}

// WithConditionEvaluator replaces the default visibleIf grammar, for example
// with condition.NewCompound to accept && and ||.
func WithConditionEvaluator(evaluator condition.Evaluator) Option {
	return func(o *Orchestrator) {
		o.evaluator = evaluator
	}
}

// WithFlags replaces the status to flag mapping used by table badges.
func WithFlags(flags display.FlagMap) Option {
	return func(o *Orchestrator) {
		o.flags = flags
	}
}

// WithMaxDepth bounds nested component resolution.
func WithMaxDepth(depth int) Option {
	return func(o *Orchestrator) {
		o.maxDepth = depth
	}
}

// WithEffects overlays additional action effects on the built-in table.
func WithEffects(effects Effects) Option {
	return func(o *Orchestrator) {
		o.effects = o.effects.Merge(effects)
	}
}

// WithFallback overrides the node rendered for subtrees that panic.
func WithFallback(fn display.FallbackFunc) Option {
	return func(o *Orchestrator) {
		o.fallback = fn
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when Render is called
// without a name.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator holds the collaborators shared by rendering sessions.
type Orchestrator struct {
	fetcher         store.Fetcher
	noCache         bool
	submitter       form.Submitter
	canceller       form.Canceller
	dispatcher      actions.Dispatcher
	confirmer       actions.Confirmer
	rules           validation.RuleLookup
	evaluator       condition.Evaluator
	flags           display.FlagMap
	maxDepth        int
	effects         Effects
	fallback        display.FallbackFunc
	registry        *render.Registry
	defaultRenderer string
	logger          *zap.Logger

	templates *template.Renderer
	validator *validation.Validator
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		effects: DefaultEffects(),
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.evaluator == nil {
		o.evaluator = condition.New(condition.WithLogger(o.logger))
	}
	if o.fetcher != nil && !o.noCache {
		if _, cached := o.fetcher.(*store.Cache); !cached {
			o.fetcher = store.NewCache(o.fetcher)
		}
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
	}
	o.templates = template.New(template.WithLogger(o.logger))
	o.validator = validation.New(validation.WithRuleLookup(o.rules), validation.WithLogger(o.logger))
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Fetcher exposes the (possibly cached) schema source.
func (o *Orchestrator) Fetcher() store.Fetcher {
	return o.fetcher
}

// Request describes what a session should render.
type Request struct {
	// Schema is a literal schema. When set it wins over ComponentID and no
	// fetch happens.
	Schema *schema.ComponentSchema
	// ComponentID is resolved through the fetcher when Schema is nil.
	ComponentID string
	// Fallback is used when ComponentID is not found.
	Fallback *schema.ComponentSchema
	// ComponentType overrides the resolved schema's componentType.
	ComponentType schema.ComponentType
	// Data is the shared read-only data context.
	Data map[string]any
	// InitialUIState seeds the session's UI state record.
	InitialUIState map[string]any
}

// Open starts a session for req. Identifier based requests resolve in the
// background; the session reports StatusLoading until they settle.
func (o *Orchestrator) Open(ctx context.Context, req Request) *Session {
	s := newSession(o)
	s.Load(ctx, req)
	return s
}

func (o *Orchestrator) resolver(forms display.FormProvider) *display.Resolver {
	opts := []display.Option{
		display.WithEvaluator(o.evaluator),
		display.WithTemplates(o.templates),
		display.WithFormProvider(forms),
		display.WithFallback(o.fallback),
		display.WithLogger(o.logger),
		display.WithFlags(o.flags),
		display.WithMaxDepth(o.maxDepth),
	}
	if o.fetcher != nil {
		opts = append(opts, display.WithFetcher(o.fetcher))
	}
	return display.New(opts...)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if name == "" {
		name = o.defaultRenderer
	}
	renderer, err := o.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}
