package html

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/render"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/view"
)

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func renderString(t *testing.T, r *Renderer, node view.Node, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(context.Background(), node, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

func TestRendererGridWithSpansAndBadges(t *testing.T) {
	r := newRenderer(t)
	node := &view.Panel{
		ComponentID: "dashboard",
		Title:       "Task T-7",
		Actions: []actions.Button{
			{Action: schema.ActionButton{ActionKey: "approve", Label: "Approve", Style: schema.StylePrimary, Confirmation: "Approve?"}},
		},
		Body: &view.Grid{
			ComponentID: "dashboard",
			Kind:        schema.LayoutGrid,
			Areas: []view.Area{
				{Component: "summary", Span: 8, Node: &view.Card{
					ComponentID: "summary",
					Items:       []view.CardItem{{Key: "owner", Label: "Owner", Value: "Ada"}},
				}},
				{Component: "risks", Span: 4, Node: &view.Table{
					ComponentID: "risks",
					Columns:     []view.TableColumn{{Key: "status", Label: "Status"}},
					Rows: []view.TableRow{{
						ClassName: "bg-red-50",
						Cells: []view.TableCell{{
							Key:   "status",
							Badge: &view.Badge{Flag: "error", Text: "Violation", Variant: "error"},
						}},
					}},
				}},
			},
		},
	}

	out := renderString(t, r, node, render.RenderOptions{ActionBase: "/components", Session: "s1"})
	assertContains(t, out,
		`<h2 class="sui-title">Task T-7</h2>`,
		`class="sui-area col-span-8" data-area="summary"`,
		`class="sui-area col-span-4" data-area="risks"`,
		`<tr class="bg-red-50">`,
		`sui-badge sui-badge-error`,
		`>Violation</span>`,
		`<dt>Owner</dt><dd>Ada</dd>`,
		`action="/components/dashboard/actions/approve?session=s1"`,
		`data-confirm="Approve?"`,
	)
	if strings.Contains(out, "<!doctype html>") {
		t.Fatalf("fragment output must not include a document wrapper")
	}
}

func TestRendererFormControlsAndErrors(t *testing.T) {
	r := newRenderer(t)
	node := &view.Form{View: form.View{
		ComponentID: "review_form",
		Title:       "Review",
		State:       form.StateEditing,
		Groups: []form.GroupView{{
			Expanded: true,
			Fields: []form.FieldView{
				{Field: schema.Field{FieldKey: "notes", Label: "Notes", Type: schema.FieldTextarea, Required: true}, Error: "Notes is required"},
				{Field: schema.Field{FieldKey: "priority", Label: "Priority", Type: schema.FieldSelect, Options: []schema.FieldOption{
					{Label: "Low", Value: "low"}, {Label: "High", Value: "high"},
				}}, Value: "high"},
				{Field: schema.Field{FieldKey: "urgent", Label: "Urgent", Type: schema.FieldBoolean}, Value: true},
				{Field: schema.Field{FieldKey: "due", Label: "Due", Type: schema.FieldDate}, Value: "2024-05-01"},
			},
		}},
		Actions: []actions.Button{
			{Action: schema.ActionButton{ActionKey: "submit", Label: "Submit", Style: schema.StylePrimary}},
			{Action: schema.ActionButton{ActionKey: "cancel", Label: "Cancel"}},
		},
	}}

	opts := render.RenderOptions{ActionBase: "/components/"}.WithHiddenFields(render.CSRFToken("_csrf", "tok"))
	out := renderString(t, r, node, opts)
	assertContains(t, out,
		`method="post" action="/components/review_form/submit"`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`<textarea id="sui-review_form-notes" name="notes">`,
		`<span class="sui-required">*</span>`,
		`<p class="sui-error" role="alert">Notes is required</p>`,
		`<option value="high" selected>High</option>`,
		`<input type="checkbox" name="urgent" value="true" checked>`,
		`type="date" name="due" value="2024-05-01"`,
		`formaction="/components/review_form/actions/cancel"`,
	)
}

func TestRendererSanitizesLegacyMarkupAndEscapesText(t *testing.T) {
	r := newRenderer(t)
	node := &view.Grid{Areas: []view.Area{
		{Component: "legacy", Span: 12, Node: &view.Legacy{ComponentID: "legacy", HTML: `<p onclick="x()">Hello<script>alert(1)</script></p>`}},
		{Component: "card", Span: 12, Node: &view.Card{ComponentID: "card", Title: "<b>bold</b>"}},
	}}

	out := renderString(t, r, node, render.RenderOptions{})
	assertContains(t, out, `<p>Hello</p>`, `&lt;b&gt;bold&lt;/b&gt;`)
	if strings.Contains(out, "<script>") || strings.Contains(out, "onclick") {
		t.Fatalf("legacy markup was not sanitized:\n%s", out)
	}
}

func TestRendererNoticesAndTabs(t *testing.T) {
	r := newRenderer(t)
	node := &view.Tabs{
		ComponentID: "detail_tabs",
		Active:      "history",
		Tabs: []view.Tab{
			{Key: "overview", Label: "Overview"},
			{Key: "history", Label: "History", Badge: "3"},
		},
		Body: &view.Diagnostic{ComponentID: "history_panel", Kind: view.DiagnosticUnknownDisplay, Message: "unknown display type"},
	}

	out := renderString(t, r, node, render.RenderOptions{Session: "abc"})
	assertContains(t, out,
		`href="?tab=detail_tabs%3Ahistory&amp;session=abc"`,
		`sui-tab sui-tab-active`,
		`<span class="sui-tab-badge">3</span>`,
		`sui-notice sui-notice-diagnostic`,
		`data-detail="unknown_display"`,
	)

	for _, n := range []view.Node{
		&view.Loading{ComponentID: "x"},
		&view.Failed{ComponentID: "x", Message: "boom"},
		&view.Empty{ComponentID: "x"},
		&view.Unavailable{ComponentID: "x", Reason: "component not found"},
		&view.Fallback{ComponentID: "x", Message: "component failed to render"},
	} {
		out := renderString(t, r, n, render.RenderOptions{})
		assertContains(t, out, `class="sui-notice`)
	}
}

func TestRendererStandaloneWithTheme(t *testing.T) {
	selector, err := NewManifestSelector(&theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{StylesheetAsset: "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	})
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	r := newRenderer(t, WithThemeSelector(selector))

	out := renderString(t, r, &view.Empty{Reason: "nothing"}, render.RenderOptions{
		Standalone: true,
		Title:      "Preview",
		Variant:    "dark",
	})
	assertContains(t, out,
		"<!doctype html>",
		"<title>Preview</title>",
		"--brand: #654321;",
		`href="/assets/themes/acme/theme.css"`,
		`data-variant="dark"`,
		".col-span-12",
	)
}

func TestManifestSelectorRejectsUnknownThemes(t *testing.T) {
	selector, err := NewManifestSelector(&theme.Manifest{Name: "acme"})
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	if _, err := selector.Select("other", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}
	if _, err := selector.Select("acme", "dark"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
	if err := selector.Add(&theme.Manifest{Name: "acme"}); err == nil {
		t.Fatalf("expected duplicate theme error")
	}
}

func TestRendererRejectsNilView(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.Render(context.Background(), nil, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil view")
	}
	if r.Name() != Name || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected renderer identity %s %s", r.Name(), r.ContentType())
	}
}
