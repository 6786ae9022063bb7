// Package text renders view trees as plain terminal text. Tables go through
// gotabulate and emphasis through lipgloss.
package text

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/bndr/gotabulate"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/render"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// Name is the registry name of the renderer.
const Name = "text"

type Option func(*Renderer)

// WithStyles overrides the output styles.
func WithStyles(styles Styles) Option {
	return func(r *Renderer) {
		r.styles = styles
	}
}

// WithTableFormat selects the gotabulate format, e.g. "grid" or "simple".
func WithTableFormat(format string) Option {
	return func(r *Renderer) {
		if format != "" {
			r.tableFormat = format
		}
	}
}

// WithMaxCellSize wraps table cells longer than size.
func WithMaxCellSize(size int) Option {
	return func(r *Renderer) {
		if size > 0 {
			r.maxCellSize = size
		}
	}
}

// Renderer implements render.Renderer for terminals and logs.
type Renderer struct {
	styles      Styles
	tableFormat string
	maxCellSize int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a text renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{
		styles:      DefaultStyles(),
		tableFormat: "grid",
		maxCellSize: 60,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes node as indented text.
func (r *Renderer) Render(ctx context.Context, node view.Node, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if node == nil {
		return nil, errors.New("text renderer: view is nil")
	}
	w := &writer{r: r}
	if opts.Standalone && opts.Title != "" {
		w.line(r.styles.Title.Render(opts.Title))
		w.blank()
	}
	if err := node.Accept(w); err != nil {
		return nil, fmt.Errorf("text renderer: %w", err)
	}
	return []byte(w.out.String()), nil
}

type writer struct {
	r      *Renderer
	out    strings.Builder
	indent int
}

var _ view.Visitor = (*writer)(nil)

func (w *writer) line(format string, args ...any) {
	w.out.WriteString(strings.Repeat("  ", w.indent))
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *writer) blank() {
	w.out.WriteByte('\n')
}

func (w *writer) nested(n view.Node) error {
	if n == nil {
		return nil
	}
	w.indent++
	defer func() { w.indent-- }()
	return n.Accept(w)
}

func (w *writer) buttons(buttons []actions.Button) {
	if len(buttons) == 0 {
		return
	}
	labels := make([]string, 0, len(buttons))
	for _, button := range buttons {
		label := button.Action.Label
		if label == "" {
			label = button.Action.ActionKey
		}
		if button.Action.Confirmation != "" {
			label += "?"
		}
		rendered := w.r.styles.Button.Render("[" + label + "]")
		if button.Disabled {
			rendered = w.r.styles.Muted.Render("[" + label + " (disabled)]")
		}
		labels = append(labels, rendered)
	}
	w.line("Actions: %s", strings.Join(labels, " "))
}

func (w *writer) VisitPanel(n *view.Panel) error {
	if n.Title != "" {
		w.line(w.r.styles.Title.Render(n.Title))
	}
	w.buttons(n.Actions)
	if n.Body == nil {
		return nil
	}
	return n.Body.Accept(w)
}

func (w *writer) VisitGrid(n *view.Grid) error {
	for i, area := range n.Areas {
		if i > 0 {
			w.blank()
		}
		w.line(w.r.styles.Heading.Render(fmt.Sprintf("%s (%d/12)", area.Component, area.Span)))
		if err := w.nested(area.Node); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) VisitTable(n *view.Table) error {
	if n.Title != "" {
		w.line(w.r.styles.Heading.Render(n.Title))
	}
	headers := make([]string, 0, len(n.Columns))
	for _, column := range n.Columns {
		headers = append(headers, column.Label)
	}
	if len(n.Rows) == 0 {
		if len(headers) > 0 {
			w.line(strings.Join(headers, " | "))
		}
		message := n.EmptyMessage
		if message == "" {
			message = "No records"
		}
		w.line(w.r.styles.Muted.Render(message))
		return nil
	}

	rows := make([][]string, 0, len(n.Rows))
	for _, row := range n.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			if cell.Badge != nil {
				cells = append(cells, "["+cell.Badge.Text+"]")
				continue
			}
			cells = append(cells, cell.Text)
		}
		rows = append(rows, cells)
	}
	table := gotabulate.Create(rows)
	table.SetHeaders(headers)
	table.SetAlign("left")
	table.SetWrapStrings(true)
	table.SetMaxCellSize(w.r.maxCellSize)
	for _, line := range strings.Split(strings.TrimRight(table.Render(w.r.tableFormat), "\n"), "\n") {
		w.line(line)
	}
	return nil
}

func (w *writer) VisitCard(n *view.Card) error {
	if n.Title != "" {
		w.line(w.r.styles.Heading.Render(n.Title))
	}
	for _, item := range n.Items {
		value := item.Value
		if value == "" {
			value = w.r.styles.Muted.Render("-")
		}
		w.line("%s: %s", item.Label, value)
	}
	return nil
}

func (w *writer) VisitActionBar(n *view.ActionBar) error {
	w.buttons(n.Buttons)
	return nil
}

func (w *writer) VisitTabs(n *view.Tabs) error {
	labels := make([]string, 0, len(n.Tabs))
	for _, tab := range n.Tabs {
		label := tab.Label
		if tab.Badge != "" {
			label += " (" + tab.Badge + ")"
		}
		if tab.Key == n.Active {
			label = w.r.styles.Heading.Render("*" + label + "*")
		}
		labels = append(labels, label)
	}
	w.line(strings.Join(labels, " | "))
	return w.nested(n.Body)
}

func (w *writer) VisitLegacy(n *view.Legacy) error {
	for _, line := range strings.Split(stripTags(n.HTML), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			w.line(trimmed)
		}
	}
	return nil
}

func (w *writer) VisitForm(n *view.Form) error {
	fv := n.View
	if fv.Title != "" {
		w.line(w.r.styles.Heading.Render(fv.Title))
	}
	if fv.Description != "" {
		w.line(w.r.styles.Muted.Render(fv.Description))
	}
	for _, group := range fv.Groups {
		if len(group.Fields) == 0 {
			continue
		}
		if group.Title != "" {
			w.line(w.r.styles.Heading.Render(group.Title))
		}
		w.indent++
		for _, field := range group.Fields {
			label := field.Field.DisplayLabel()
			if field.Field.Required {
				label += "*"
			}
			value := condition.String(field.Value)
			if value == "" {
				value = w.r.styles.Muted.Render("-")
			}
			w.line("%s: %s", label, value)
			if field.Error != "" {
				w.line("  %s", w.r.styles.Error.Render("! "+field.Error))
			}
		}
		w.indent--
	}
	w.buttons(fv.Actions)
	return nil
}

func (w *writer) VisitDiagnostic(n *view.Diagnostic) error {
	w.line(w.r.styles.Error.Render(fmt.Sprintf("! %s [%s]: %s", n.ComponentID, n.Kind, n.Message)))
	return nil
}

func (w *writer) VisitUnavailable(n *view.Unavailable) error {
	w.line(w.r.styles.Muted.Render(fmt.Sprintf("%s: %s", n.ComponentID, n.Reason)))
	return nil
}

func (w *writer) VisitFallback(n *view.Fallback) error {
	w.line(w.r.styles.Error.Render(fmt.Sprintf("%s: %s", n.ComponentID, n.Message)))
	return nil
}

func (w *writer) VisitLoading(*view.Loading) error {
	w.line(w.r.styles.Muted.Render("Loading"))
	return nil
}

func (w *writer) VisitFailed(n *view.Failed) error {
	w.line(w.r.styles.Error.Render("Failed to load: " + n.Message))
	return nil
}

func (w *writer) VisitEmpty(n *view.Empty) error {
	message := n.Reason
	if message == "" {
		message = "Nothing to display"
	}
	w.line(w.r.styles.Muted.Render(message))
	return nil
}

// stripTags drops markup from legacy display templates. Block level closing
// tags become line breaks.
func stripTags(markup string) string {
	var b strings.Builder
	inTag := false
	var tag strings.Builder
	for _, r := range markup {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			fields := strings.Fields(tag.String())
			if len(fields) == 0 {
				continue
			}
			switch strings.ToLower(fields[0]) {
			case "/p", "/div", "br", "br/", "/li", "/h1", "/h2", "/h3", "/tr":
				b.WriteByte('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}
