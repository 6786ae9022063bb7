// Package html renders view trees as HTML fragments or standalone pages using
// pongo2 templates.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/render"
	rendertemplate "github.com/goliatone/go-schemaui/pkg/render/template"
	"github.com/goliatone/go-schemaui/pkg/render/template/pongo"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// Name is the registry name of the renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS fs.FS
	engine     rendertemplate.Engine
	selector   theme.ThemeSelector
	policy     *bluemonday.Policy
	logger     *zap.Logger
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateEngine injects a custom template engine.
func WithTemplateEngine(engine rendertemplate.Engine) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.engine = engine
		}
	}
}

// WithThemeSelector resolves RenderOptions.Theme and Variant into CSS
// variables and theme assets.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(cfg *config) {
		cfg.selector = selector
	}
}

// WithSanitizer replaces the policy applied to displayTemplate markup.
// Defaults to bluemonday's UGC policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer implements render.Renderer for HTML output.
type Renderer struct {
	engine   rendertemplate.Engine
	selector theme.ThemeSelector
	policy   *bluemonday.Policy
	logger   *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		policy:     bluemonday.UGCPolicy(),
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	engine := cfg.engine
	if engine == nil {
		built, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
			pongo.WithLogger(cfg.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template engine: %w", err)
		}
		engine = built
	}

	return &Renderer{
		engine:   engine,
		selector: cfg.selector,
		policy:   cfg.policy,
		logger:   cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes node as an HTML fragment, or a full page when
// opts.Standalone is set.
func (r *Renderer) Render(ctx context.Context, node view.Node, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.New("html renderer: view is nil")
	}

	w := &writer{r: r, opts: opts}
	body, err := w.render(node)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}

	themeCtx, err := r.themeContext(opts)
	if err != nil {
		r.logger.Warn("html renderer: theme selection failed",
			zap.String("theme", opts.Theme),
			zap.String("variant", opts.Variant),
			zap.Error(err))
		themeCtx = map[string]any{}
	}

	name := "templates/root"
	data := map[string]any{"body": body, "theme": themeCtx}
	if opts.Standalone {
		name = "templates/page"
		data["title"] = opts.Title
		data["stylesheet"] = defaultStylesheet()
	}
	out, err := r.engine.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}
