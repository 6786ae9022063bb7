package display

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
	"github.com/goliatone/go-schemaui/pkg/view"
)

type stubFetcher struct {
	schemas map[string]schema.ComponentSchema
	panics  map[string]bool
	calls   []string
}

func (s *stubFetcher) FetchSchema(_ context.Context, id string) (schema.ComponentSchema, error) {
	s.calls = append(s.calls, id)
	if s.panics[id] {
		panic("fetch exploded: " + id)
	}
	found, ok := s.schemas[id]
	if !ok {
		return schema.ComponentSchema{}, fmt.Errorf("stub: %s: %w", id, store.ErrNotFound)
	}
	return found, nil
}

func newFetcher(schemas ...schema.ComponentSchema) *stubFetcher {
	out := &stubFetcher{schemas: map[string]schema.ComponentSchema{}, panics: map[string]bool{}}
	for _, s := range schemas {
		out.schemas[s.ComponentID] = s
	}
	return out
}

func cardSchema(id, key string) schema.ComponentSchema {
	return schema.ComponentSchema{
		ComponentID:   id,
		ComponentType: schema.ComponentDisplay,
		CustomProps: map[string]any{
			"displayType": "card",
			"fields":      []any{map[string]any{"key": key, "label": key}},
		},
	}
}

func gridSchema(id string, areas ...schema.LayoutArea) schema.ComponentSchema {
	return schema.ComponentSchema{
		ComponentID:   id,
		ComponentType: schema.ComponentDisplay,
		Layout:        &schema.LayoutConfig{Type: schema.LayoutGrid, Areas: areas},
	}
}

func areaIDs(node view.Node) []string {
	grid, ok := node.(*view.Grid)
	if !ok {
		return nil
	}
	var ids []string
	for _, area := range grid.Areas {
		ids = append(ids, area.Component)
	}
	return ids
}

func TestParseSpan(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"span 8":   8,
		"span 1":   1,
		"span 12":  12,
		"span 13":  12,
		"span 0":   12,
		"span x":   12,
		"8":        12,
		"":         12,
		"  span 4": 4,
	}
	for token, want := range cases {
		if got := ParseSpan(token); got != want {
			t.Fatalf("ParseSpan(%q) = %d, want %d", token, got, want)
		}
	}
}

func TestEmptyTableRendersRowlessTable(t *testing.T) {
	t.Parallel()

	s := schema.ComponentSchema{
		ComponentID:   "users",
		ComponentType: schema.ComponentDisplay,
		CustomProps: map[string]any{
			"displayType": "table",
			"dataKey":     "users",
			"columns":     []any{map[string]any{"key": "name", "label": "Name"}},
		},
	}

	node := New().Resolve(context.Background(), Request{Schema: s, Data: map[string]any{"users": []any{}}})
	table, ok := node.(*view.Table)
	if !ok {
		t.Fatalf("expected table node, got %T", node)
	}
	if len(table.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(table.Rows))
	}
	if diff := cmp.Diff([]view.TableColumn{{Key: "name", Label: "Name"}}, table.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestTableWithoutDataKeyRendersContextRow(t *testing.T) {
	t.Parallel()

	s := schema.ComponentSchema{
		ComponentID:   "current",
		ComponentType: schema.ComponentDisplay,
		CustomProps: map[string]any{
			"displayType": "table",
			"columns":     []any{map[string]any{"key": "name", "label": "Name"}},
		},
	}
	data := map[string]any{"name": "Ada", "status": "Compliant"}

	node := New().Resolve(context.Background(), Request{Schema: s, Data: data})
	table, ok := node.(*view.Table)
	if !ok {
		t.Fatalf("expected table node, got %T", node)
	}
	want := []view.TableRow{{Cells: []view.TableCell{{Key: "name", Text: "Ada"}}}}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	s.CustomProps = map[string]any{"displayType": "table"}
	data["uiState"] = map[string]any{"showReviewForm": true}
	inferred, ok := New().Resolve(context.Background(), Request{Schema: s, Data: data}).(*view.Table)
	if !ok {
		t.Fatalf("expected table node")
	}
	wantColumns := []view.TableColumn{{Key: "name", Label: "name"}, {Key: "status", Label: "status"}}
	if diff := cmp.Diff(wantColumns, inferred.Columns); diff != "" {
		t.Fatalf("inferred columns mismatch (-want +got):\n%s", diff)
	}
	if len(inferred.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(inferred.Rows))
	}
}

func TestTableStatusBadgesAndRowStyles(t *testing.T) {
	t.Parallel()

	s := schema.ComponentSchema{
		ComponentID:   "findings",
		ComponentType: schema.ComponentDisplay,
		CustomProps: map[string]any{
			"displayType": "table",
			"dataKey":     "report.findings",
			"columns": []any{
				map[string]any{"key": "item"},
				map[string]any{"key": "status", "label": "Status", "render": "status-badge"},
			},
			"flagConfig": map[string]any{
				"field": "status",
				"styles": map[string]any{
					"Violation": "bg-red-50 border-l-4 border-l-red-500",
				},
				"badgeConfigs": map[string]any{
					"error": map[string]any{"text": "Violation!", "className": "badge-red"},
				},
			},
		},
	}
	data := map[string]any{
		"report": map[string]any{
			"findings": []any{
				map[string]any{"item": "Door", "status": "Violation"},
				map[string]any{"item": "Lamp", "status": "Compliant"},
			},
		},
	}

	node := New().Resolve(context.Background(), Request{Schema: s, Data: data})
	table := node.(*view.Table)
	want := []view.TableRow{
		{
			ClassName: "bg-red-50",
			Cells: []view.TableCell{
				{Key: "item", Text: "Door"},
				{Key: "status", Text: "Violation", Badge: &view.Badge{Flag: "error", Text: "Violation!", ClassName: "badge-red", Variant: "error"}},
			},
		},
		{
			Cells: []view.TableCell{
				{Key: "item", Text: "Lamp"},
				{Key: "status", Text: "Compliant", Badge: &view.Badge{Flag: "success", Text: "Compliant", Variant: "success"}},
			},
		},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	custom := New(WithFlags(FlagMap{"Violation": "critical"})).Resolve(context.Background(), Request{Schema: s, Data: data})
	if got := custom.(*view.Table).Rows[0].Cells[1].Badge.Flag; got != "critical" {
		t.Fatalf("expected injected flag map to win, got %q", got)
	}
}

func TestGridOrdersAreasAscending(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(cardSchema("second", "b"), cardSchema("first", "a"))
	root := gridSchema("root",
		schema.LayoutArea{Component: "second", Order: 2, Grid: "span 4"},
		schema.LayoutArea{Component: "first", Order: 1, Grid: "span 8"},
	)

	node := New(WithFetcher(fetcher)).Resolve(context.Background(), Request{Schema: root})
	if diff := cmp.Diff([]string{"first", "second"}, areaIDs(node)); diff != "" {
		t.Fatalf("area order mismatch (-want +got):\n%s", diff)
	}
	grid := node.(*view.Grid)
	if grid.Areas[0].Span != 8 || grid.Areas[1].Span != 4 {
		t.Fatalf("unexpected spans: %d, %d", grid.Areas[0].Span, grid.Areas[1].Span)
	}
	if _, ok := grid.Areas[0].Node.(*view.Card); !ok {
		t.Fatalf("expected nested card, got %T", grid.Areas[0].Node)
	}
}

func TestNestedComponentsShareDataContext(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(cardSchema("header", "task_reference"))
	root := gridSchema("root", schema.LayoutArea{Component: "header"})

	node := New(WithFetcher(fetcher)).Resolve(context.Background(), Request{
		Schema: root,
		Data:   map[string]any{"task_reference": "T-9"},
	})
	card := node.(*view.Grid).Areas[0].Node.(*view.Card)
	if card.Items[0].Value != "T-9" {
		t.Fatalf("nested component should read the shared context, got %#v", card.Items)
	}
}

func TestAreaVisibilityFollowsUIState(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(cardSchema("summary", "a"), cardSchema("review_form", "b"))
	root := gridSchema("root",
		schema.LayoutArea{Component: "summary", VisibleIf: "!uiState.showReviewForm"},
		schema.LayoutArea{Component: "review_form", VisibleIf: "uiState.showReviewForm"},
	)
	resolver := New(WithFetcher(fetcher))

	hidden := resolver.Resolve(context.Background(), Request{Schema: root, Data: map[string]any{"uiState": map[string]any{"showReviewForm": false}}})
	if diff := cmp.Diff([]string{"summary"}, areaIDs(hidden)); diff != "" {
		t.Fatalf("areas mismatch (-want +got):\n%s", diff)
	}
	shown := resolver.Resolve(context.Background(), Request{Schema: root, Data: map[string]any{"uiState": map[string]any{"showReviewForm": true}}})
	if diff := cmp.Diff([]string{"review_form"}, areaIDs(shown)); diff != "" {
		t.Fatalf("areas mismatch (-want +got):\n%s", diff)
	}
}

func TestPanelHeaderAboveLayout(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(cardSchema("body", "a"))
	root := gridSchema("root", schema.LayoutArea{Component: "body"})
	root.Title = "Task {{task.reference}}"
	root.Actions = []schema.ActionButton{
		{ActionKey: "request_review", Label: "Review"},
		{ActionKey: "approve", Label: "Approve", VisibleIf: "uiState.showReviewForm"},
	}
	// a display carrying both a layout and a displayType uses the layout
	root.CustomProps = map[string]any{"displayType": "table"}

	node := New(WithFetcher(fetcher)).Resolve(context.Background(), Request{
		Schema: root,
		Data:   map[string]any{"task": map[string]any{"reference": "T-1"}},
	})
	panel, ok := node.(*view.Panel)
	if !ok {
		t.Fatalf("expected panel, got %T", node)
	}
	if panel.Title != "Task T-1" {
		t.Fatalf("unexpected title %q", panel.Title)
	}
	if len(panel.Actions) != 1 || panel.Actions[0].Action.ActionKey != "request_review" {
		t.Fatalf("unexpected header actions %#v", panel.Actions)
	}
	if _, ok := panel.Body.(*view.Grid); !ok {
		t.Fatalf("expected grid body, got %T", panel.Body)
	}
}

func TestSingleAndConditionalLayouts(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(cardSchema("a", "x"), cardSchema("b", "y"), cardSchema("c", "z"))
	resolver := New(WithFetcher(fetcher))

	single := schema.ComponentSchema{
		ComponentID: "single",
		Layout: &schema.LayoutConfig{Type: schema.LayoutSingle, Areas: []schema.LayoutArea{
			{Component: "b", Order: 2}, {Component: "a", Order: 1},
		}},
	}
	if diff := cmp.Diff([]string{"a"}, areaIDs(resolver.Resolve(context.Background(), Request{Schema: single}))); diff != "" {
		t.Fatalf("single mismatch (-want +got):\n%s", diff)
	}

	conditional := schema.ComponentSchema{
		ComponentID: "conditional",
		Layout: &schema.LayoutConfig{
			Type: schema.LayoutConditional,
			Views: []schema.ConditionalView{
				{VisibleIf: "mode === 'review'", Layout: schema.LayoutConfig{Areas: []schema.LayoutArea{{Component: "c"}}}},
			},
			DefaultView: &schema.LayoutConfig{Type: schema.LayoutGrid, Areas: []schema.LayoutArea{{Component: "a"}, {Component: "b"}}},
		},
	}
	if diff := cmp.Diff([]string{"a", "b"}, areaIDs(resolver.Resolve(context.Background(), Request{Schema: conditional}))); diff != "" {
		t.Fatalf("default view mismatch (-want +got):\n%s", diff)
	}
	review := resolver.Resolve(context.Background(), Request{Schema: conditional, Data: map[string]any{"mode": "review"}})
	if diff := cmp.Diff([]string{"c"}, areaIDs(review)); diff != "" {
		t.Fatalf("matching view mismatch (-want +got):\n%s", diff)
	}
}

func TestTabsResolveActiveTabOnly(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(cardSchema("overview", "a"), cardSchema("history", "b"))
	tabs := schema.ComponentSchema{
		ComponentID:   "tabs",
		ComponentType: schema.ComponentDisplay,
		CustomProps: map[string]any{
			"displayType": "tabs",
			"defaultTab":  "history",
			"tabs": []any{
				map[string]any{"key": "overview", "label": "Overview", "component": "overview"},
				map[string]any{"key": "history", "label": "History", "component": "history", "badge": "{{count}}"},
			},
		},
	}
	resolver := New(WithFetcher(fetcher))

	node := resolver.Resolve(context.Background(), Request{Schema: tabs, Data: map[string]any{"count": 3}})
	got := node.(*view.Tabs)
	if got.Active != "history" || got.Tabs[1].Badge != "3" {
		t.Fatalf("unexpected tabs node %#v", got)
	}
	if diff := cmp.Diff([]string{"history"}, fetcher.calls); diff != "" {
		t.Fatalf("only the active tab should be fetched (-want +got):\n%s", diff)
	}

	selected := resolver.Resolve(context.Background(), Request{Schema: tabs, ActiveTabs: map[string]string{"tabs": "overview"}})
	if selected.(*view.Tabs).Active != "overview" {
		t.Fatalf("expected explicit selection to win")
	}

	tabs.CustomProps["tabs"] = []any{}
	empty := resolver.Resolve(context.Background(), Request{Schema: tabs})
	if diag, ok := empty.(*view.Diagnostic); !ok || diag.Kind != view.DiagnosticEmptyTabs {
		t.Fatalf("expected empty tabs diagnostic, got %#v", empty)
	}
}

func TestCyclesAndDepthAreDiagnosed(t *testing.T) {
	t.Parallel()

	cyclic := newFetcher(
		gridSchema("a", schema.LayoutArea{Component: "b"}),
		gridSchema("b", schema.LayoutArea{Component: "a"}),
	)
	node := New(WithFetcher(cyclic)).Resolve(context.Background(), Request{Schema: cyclic.schemas["a"]})
	found := view.Find(node, func(n view.Node) bool {
		diag, ok := n.(*view.Diagnostic)
		return ok && diag.Kind == view.DiagnosticCycle
	})
	if len(found) != 1 {
		t.Fatalf("expected one cycle diagnostic, got %d", len(found))
	}

	var chain []schema.ComponentSchema
	for i := 0; i < 5; i++ {
		chain = append(chain, gridSchema(fmt.Sprintf("level%d", i), schema.LayoutArea{Component: fmt.Sprintf("level%d", i+1)}))
	}
	deep := newFetcher(chain...)
	node = New(WithFetcher(deep), WithMaxDepth(2)).Resolve(context.Background(), Request{Schema: chain[0]})
	found = view.Find(node, func(n view.Node) bool {
		diag, ok := n.(*view.Diagnostic)
		return ok && diag.Kind == view.DiagnosticDepthExceeded
	})
	if len(found) != 1 {
		t.Fatalf("expected depth diagnostic, got %d", len(found))
	}
}

func TestBoundaryIsolatesFailingSubtree(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(cardSchema("ok", "a"))
	fetcher.panics["broken"] = true
	root := gridSchema("root",
		schema.LayoutArea{Component: "broken", Order: 1},
		schema.LayoutArea{Component: "ok", Order: 2},
		schema.LayoutArea{Component: "missing", Order: 3},
	)

	node := New(WithFetcher(fetcher)).Resolve(context.Background(), Request{Schema: root})
	grid := node.(*view.Grid)
	if _, ok := grid.Areas[0].Node.(*view.Fallback); !ok {
		t.Fatalf("expected fallback for panicking area, got %T", grid.Areas[0].Node)
	}
	if _, ok := grid.Areas[1].Node.(*view.Card); !ok {
		t.Fatalf("sibling should still render, got %T", grid.Areas[1].Node)
	}
	unavailable, ok := grid.Areas[2].Node.(*view.Unavailable)
	if !ok || unavailable.Reason != "component not found" {
		t.Fatalf("expected not-found placeholder, got %#v", grid.Areas[2].Node)
	}

	custom := New(WithFetcher(fetcher), WithFallback(func(id string, _ any) view.Node {
		return &view.Empty{ComponentID: id, Reason: "custom"}
	})).Resolve(context.Background(), Request{Schema: root})
	if empty, ok := custom.(*view.Grid).Areas[0].Node.(*view.Empty); !ok || empty.Reason != "custom" {
		t.Fatalf("expected caller fallback, got %#v", custom.(*view.Grid).Areas[0].Node)
	}
}

func TestStrategySelection(t *testing.T) {
	t.Parallel()

	resolver := New()
	for _, displayType := range schema.DisplayTypes() {
		if _, ok := resolver.strategies()[displayType]; !ok {
			t.Fatalf("display type %q has no strategy", displayType)
		}
	}

	cases := []struct {
		name   string
		schema schema.ComponentSchema
		check  func(view.Node) bool
	}{
		{
			name:   "modal is unsupported",
			schema: schema.ComponentSchema{ComponentID: "m", ComponentType: schema.ComponentModal},
			check: func(n view.Node) bool {
				d, ok := n.(*view.Diagnostic)
				return ok && d.Kind == view.DiagnosticUnsupportedType
			},
		},
		{
			name:   "custom is unsupported",
			schema: schema.ComponentSchema{ComponentID: "c", ComponentType: schema.ComponentCustom},
			check: func(n view.Node) bool {
				d, ok := n.(*view.Diagnostic)
				return ok && d.Kind == view.DiagnosticUnsupportedType
			},
		},
		{
			name:   "unknown display type",
			schema: schema.ComponentSchema{ComponentID: "u", ComponentType: schema.ComponentDisplay, CustomProps: map[string]any{"displayType": "chart"}},
			check: func(n view.Node) bool {
				d, ok := n.(*view.Diagnostic)
				return ok && d.Kind == view.DiagnosticUnknownDisplay
			},
		},
		{
			name: "legacy template",
			schema: schema.ComponentSchema{
				ComponentID:     "l",
				ComponentType:   schema.ComponentDisplay,
				DisplayTemplate: `{{#eq status "open"}}<b>{{title}}</b>{{/eq}}`,
			},
			check: func(n view.Node) bool {
				l, ok := n.(*view.Legacy)
				return ok && l.HTML == "<b>Leak</b>"
			},
		},
		{
			name:   "nothing to display",
			schema: schema.ComponentSchema{ComponentID: "e", ComponentType: schema.ComponentDisplay},
			check: func(n view.Node) bool {
				_, ok := n.(*view.Empty)
				return ok
			},
		},
		{
			name: "form component",
			schema: schema.ComponentSchema{
				ComponentID:   "f",
				ComponentType: schema.ComponentForm,
				Fields:        []schema.Field{{FieldKey: "title", Type: schema.FieldText}},
			},
			check: func(n view.Node) bool {
				f, ok := n.(*view.Form)
				return ok && len(f.View.Fields()) == 1 && f.View.Fields()[0].Value == "Leak"
			},
		},
		{
			name: "actions display",
			schema: schema.ComponentSchema{
				ComponentID:   "a",
				ComponentType: schema.ComponentDisplay,
				CustomProps:   map[string]any{"displayType": "actions"},
				Actions:       []schema.ActionButton{{ActionKey: "x"}, {ActionKey: "y", VisibleIf: "hidden"}},
			},
			check: func(n view.Node) bool {
				bar, ok := n.(*view.ActionBar)
				return ok && len(bar.Buttons) == 1
			},
		},
	}

	data := map[string]any{"status": "open", "title": "Leak"}
	for _, tc := range cases {
		node := resolver.Resolve(context.Background(), Request{Schema: tc.schema, Data: data})
		if !tc.check(node) {
			t.Fatalf("%s: unexpected node %#v", tc.name, node)
		}
	}
}

func TestCardLayouts(t *testing.T) {
	t.Parallel()

	s := schema.ComponentSchema{
		ComponentID:   "card",
		ComponentType: schema.ComponentDisplay,
		Title:         "{{name}}",
		CustomProps: map[string]any{
			"displayType": "card",
			"layout":      "list",
			"fields": []any{
				map[string]any{"key": "owner.email", "label": "Owner"},
				map[string]any{"key": "missing"},
			},
		},
	}
	node := New().Resolve(context.Background(), Request{Schema: s, Data: map[string]any{
		"name":  "Site A",
		"owner": map[string]any{"email": "a@b.co"},
	}})
	want := &view.Card{
		ComponentID: "card",
		Title:       "Site A",
		Layout:      "list",
		Items: []view.CardItem{
			{Key: "owner.email", Label: "Owner", Value: "a@b.co"},
			{Key: "missing", Label: "missing", Value: ""},
		},
	}
	if diff := cmp.Diff(want, node); diff != "" {
		t.Fatalf("card mismatch (-want +got):\n%s", diff)
	}
}
