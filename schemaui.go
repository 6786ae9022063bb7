// Package schemaui renders schema described UI components. The root package
// re-exports the common entry points; the building blocks live under pkg/.
package schemaui

import (
	"context"
	"fmt"

	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	"github.com/goliatone/go-schemaui/pkg/render"
	htmlrenderer "github.com/goliatone/go-schemaui/pkg/renderers/html"
	textrenderer "github.com/goliatone/go-schemaui/pkg/renderers/text"
	"github.com/goliatone/go-schemaui/pkg/schema"
)

// ComponentSchema aliases schema.ComponentSchema.
type ComponentSchema = schema.ComponentSchema

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewOrchestrator builds an orchestrator with the html and text renderers
// registered. html is the default renderer.
func NewOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	orch := orchestrator.New(options...)
	registry := orch.Registry()
	if !registry.Has(htmlrenderer.Name) {
		html, err := htmlrenderer.New()
		if err != nil {
			return nil, fmt.Errorf("schemaui: html renderer: %w", err)
		}
		if err := registry.Register(html); err != nil {
			return nil, err
		}
	}
	if !registry.Has(textrenderer.Name) {
		if err := registry.Register(textrenderer.New()); err != nil {
			return nil, err
		}
	}
	return orch, nil
}

// RenderHTML resolves req and renders it as an HTML fragment, or a full page
// with opts.Standalone. Resolution problems are rendered in place rather than
// returned.
func RenderHTML(ctx context.Context, req Request, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return renderWith(ctx, htmlrenderer.Name, req, opts, options...)
}

// RenderText resolves req and renders it as plain text.
func RenderText(ctx context.Context, req Request, options ...orchestrator.Option) ([]byte, error) {
	return renderWith(ctx, textrenderer.Name, req, RenderOptions{}, options...)
}

func renderWith(ctx context.Context, name string, req Request, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	orch, err := NewOrchestrator(options...)
	if err != nil {
		return nil, err
	}
	session := orch.Open(ctx, req)
	if err := session.Wait(ctx); err != nil {
		return nil, err
	}
	return session.Render(ctx, name, opts)
}
