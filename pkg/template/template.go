// Package template renders schema strings against a data context. Render is
// the block-helper path used by legacy displayTemplate markup; Interpolate is
// the plain `{{path}}` substitution used for titles, badges and as Render's
// fallback when a template does not compile.
package template

import (
	"fmt"
	"regexp"

	"github.com/aymerick/raymond"
	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/condition"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_$][\w$]*(?:\.[\w$]+)*)\s*\}\}`)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger reports compile and execution failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHelper registers an extra block or inline helper for Render. Helper
// signatures follow raymond's conventions.
func WithHelper(name string, fn any) Option {
	return func(r *Renderer) {
		if name == "" || fn == nil {
			return
		}
		r.helpers[name] = fn
	}
}

// Renderer renders template strings.
type Renderer struct {
	logger  *zap.Logger
	helpers map[string]any
}

// New constructs a Renderer with the built-in `eq` helper.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		logger:  zap.NewNop(),
		helpers: map[string]any{"eq": eqHelper},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

var defaultRenderer = New()

// Render runs tpl through the default renderer.
func Render(tpl string, data map[string]any) string {
	return defaultRenderer.Render(tpl, data)
}

// Interpolate runs tpl through the default renderer's substitution path.
func Interpolate(tpl string, data map[string]any) string {
	return defaultRenderer.Interpolate(tpl, data)
}

// Render compiles tpl with block helpers ({{#if}}, {{#each}}, {{#eq a b}})
// and executes it against data. Interpolated values are HTML escaped. When the
// template cannot be compiled or executed, the output of Interpolate is
// returned instead.
func (r *Renderer) Render(tpl string, data map[string]any) string {
	if tpl == "" {
		return ""
	}
	out, err := r.compile(tpl, data)
	if err != nil {
		r.logger.Debug("template: block compiler failed, falling back to interpolation", zap.Error(err))
		return r.Interpolate(tpl, data)
	}
	return out
}

func (r *Renderer) compile(tpl string, data map[string]any) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("template: %v", rec)
		}
	}()

	parsed, err := raymond.Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}
	parsed.RegisterHelpers(r.helpers)

	ctx := data
	if ctx == nil {
		ctx = map[string]any{}
	}
	out, err = parsed.Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("template: exec: %w", err)
	}
	return out, nil
}

// Interpolate replaces each {{identifier.path}} token with the string form of
// the resolved value. Tokens whose path does not resolve are left untouched.
func (r *Renderer) Interpolate(tpl string, data map[string]any) string {
	if tpl == "" {
		return ""
	}
	return tokenPattern.ReplaceAllStringFunc(tpl, func(token string) string {
		match := tokenPattern.FindStringSubmatch(token)
		if len(match) < 2 {
			return token
		}
		value, ok := condition.Lookup(data, match[1])
		if !ok {
			return token
		}
		return condition.String(value)
	})
}

func eqHelper(a, b any, options *raymond.Options) raymond.SafeString {
	if raymond.Str(a) == raymond.Str(b) {
		return raymond.SafeString(options.Fn())
	}
	return raymond.SafeString(options.Inverse())
}
