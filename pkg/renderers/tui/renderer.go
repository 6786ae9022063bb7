// Package tui collects form values interactively in a terminal. Filler drives
// a form session; Renderer adapts it to the render.Renderer contract by
// filling the first form of a view and serializing the values.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/render"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// Name is the registry name of the renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	cfg    config
	filler *Filler
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	cfg := newConfig(options)
	return &Renderer{cfg: cfg, filler: &Filler{cfg: cfg}}
}

func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.cfg.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for the first form found in node and returns the collected
// values. The form is filled on a transient session seeded with the values
// the view already shows.
func (r *Renderer) Render(ctx context.Context, node view.Node, _ render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.New("tui: view is nil")
	}
	found := view.Find(node, func(n view.Node) bool {
		_, ok := n.(*view.Form)
		return ok
	})
	if len(found) == 0 {
		return nil, ErrNoForm
	}
	fv := found[0].(*view.Form).View

	component := schema.ComponentSchema{
		ComponentID:   fv.ComponentID,
		ComponentType: schema.ComponentForm,
		Title:         fv.Title,
	}
	initial := make(map[string]any)
	for _, field := range fv.Fields() {
		component.Fields = append(component.Fields, field.Field)
		if field.Value != nil {
			initial[field.Field.FieldKey] = field.Value
		}
	}

	opts := []form.Option{form.WithLogger(r.cfg.logger)}
	if r.cfg.validator != nil {
		opts = append(opts, form.WithValidator(r.cfg.validator))
	}
	session := form.NewSession(component, initial, opts...)

	if fv.Title != "" {
		if err := r.cfg.driver.Info(ctx, r.cfg.theme.InfoPrefix+fv.Title); err != nil {
			return nil, err
		}
	}
	if _, err := r.filler.Fill(ctx, session); err != nil {
		return nil, err
	}
	return r.serialize(session.Data())
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.cfg.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		out, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return out, nil
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	case nil:
		out.Set(prefix, "")
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		switch v := values[key].(type) {
		case []any:
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = fmt.Sprint(item)
			}
			fmt.Fprintf(&b, "%s=%s\n", key, strings.Join(parts, ", "))
		case nil:
			fmt.Fprintf(&b, "%s=\n", key)
		default:
			fmt.Fprintf(&b, "%s=%v\n", key, v)
		}
	}
	return b.String()
}
