// Package view defines the render tree produced by the display resolver and
// consumed by output renderers.
//
// The set of node types is closed: every node implements Accept by calling
// exactly one Visitor method, so a renderer that does not handle a new node
// type stops compiling instead of falling through at runtime.
package view

import (
	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/schema"
)

// Node is one element of the render tree.
type Node interface {
	Accept(Visitor) error
	sealed()
}

// Visitor has one method per node type.
type Visitor interface {
	VisitPanel(*Panel) error
	VisitGrid(*Grid) error
	VisitTable(*Table) error
	VisitCard(*Card) error
	VisitActionBar(*ActionBar) error
	VisitTabs(*Tabs) error
	VisitLegacy(*Legacy) error
	VisitForm(*Form) error
	VisitDiagnostic(*Diagnostic) error
	VisitUnavailable(*Unavailable) error
	VisitFallback(*Fallback) error
	VisitLoading(*Loading) error
	VisitFailed(*Failed) error
	VisitEmpty(*Empty) error
}

// Panel is the shared header (title plus visible actions) above a resolved
// layout body.
type Panel struct {
	ComponentID string
	Title       string
	Actions     []actions.Button
	Body        Node
}

// Area is one placed child of a grid.
type Area struct {
	Component string
	Span      int
	Order     int
	Node      Node
}

// Grid is a resolved grid, single or conditional layout. Areas are already
// filtered by visibility and sorted by order.
type Grid struct {
	ComponentID string
	Kind        schema.LayoutType
	Spacing     string
	Areas       []Area
}

// Badge is a status flag rendered inside a table cell.
type Badge struct {
	Flag      string
	Text      string
	ClassName string
	Variant   string
}

// TableColumn is a header cell.
type TableColumn struct {
	Key   string
	Label string
	Width string
}

// TableCell is one rendered cell. Badge is set for status-badge columns.
type TableCell struct {
	Key   string
	Text  string
	Badge *Badge
}

// TableRow is one rendered row with its derived style classes.
type TableRow struct {
	ClassName string
	Cells     []TableCell
}

// Table is a resolved table display. An empty Rows slice is a valid table.
type Table struct {
	ComponentID  string
	Title        string
	Columns      []TableColumn
	Rows         []TableRow
	EmptyMessage string
}

// CardItem is one label/value pair.
type CardItem struct {
	Key   string
	Label string
	Value string
}

// Card is a resolved card display. Layout is "grid" or "list".
type Card struct {
	ComponentID string
	Title       string
	Layout      string
	Items       []CardItem
}

// ActionBar is a display action bar.
type ActionBar struct {
	ComponentID string
	Buttons     []actions.Button
}

// Tab is one tab trigger.
type Tab struct {
	Key       string
	Label     string
	Badge     string
	Component string
}

// Tabs holds the triggers and the resolved body of the active tab.
type Tabs struct {
	ComponentID string
	Active      string
	Tabs        []Tab
	Body        Node
}

// Legacy is markup produced from a displayTemplate.
type Legacy struct {
	ComponentID string
	HTML        string
}

// Form wraps a form session snapshot.
type Form struct {
	View form.View
}

// DiagnosticKind classifies configuration problems.
type DiagnosticKind string

const (
	DiagnosticUnsupportedType DiagnosticKind = "unsupported_type"
	DiagnosticUnknownDisplay  DiagnosticKind = "unknown_display"
	DiagnosticEmptyTabs       DiagnosticKind = "empty_tabs"
	DiagnosticInvalidProps    DiagnosticKind = "invalid_props"
	DiagnosticDepthExceeded   DiagnosticKind = "depth_exceeded"
	DiagnosticCycle           DiagnosticKind = "cycle"
)

// Diagnostic replaces a misconfigured component.
type Diagnostic struct {
	ComponentID string
	Kind        DiagnosticKind
	Message     string
}

// Unavailable replaces a nested component that could not be resolved.
type Unavailable struct {
	ComponentID string
	Reason      string
}

// Fallback replaces a subtree whose resolution panicked.
type Fallback struct {
	ComponentID string
	Message     string
}

// Loading is shown while a schema fetch is pending.
type Loading struct {
	ComponentID string
}

// Failed is shown when a schema fetch failed.
type Failed struct {
	ComponentID string
	Message     string
}

// Empty is shown when there is nothing to render: no schema, or a schema with
// no fields or tabs.
type Empty struct {
	ComponentID string
	Reason      string
}

func (n *Panel) Accept(v Visitor) error       { return v.VisitPanel(n) }
func (n *Grid) Accept(v Visitor) error        { return v.VisitGrid(n) }
func (n *Table) Accept(v Visitor) error       { return v.VisitTable(n) }
func (n *Card) Accept(v Visitor) error        { return v.VisitCard(n) }
func (n *ActionBar) Accept(v Visitor) error   { return v.VisitActionBar(n) }
func (n *Tabs) Accept(v Visitor) error        { return v.VisitTabs(n) }
func (n *Legacy) Accept(v Visitor) error      { return v.VisitLegacy(n) }
func (n *Form) Accept(v Visitor) error        { return v.VisitForm(n) }
func (n *Diagnostic) Accept(v Visitor) error  { return v.VisitDiagnostic(n) }
func (n *Unavailable) Accept(v Visitor) error { return v.VisitUnavailable(n) }
func (n *Fallback) Accept(v Visitor) error    { return v.VisitFallback(n) }
func (n *Loading) Accept(v Visitor) error     { return v.VisitLoading(n) }
func (n *Failed) Accept(v Visitor) error      { return v.VisitFailed(n) }
func (n *Empty) Accept(v Visitor) error       { return v.VisitEmpty(n) }

func (*Panel) sealed()       {}
func (*Grid) sealed()        {}
func (*Table) sealed()       {}
func (*Card) sealed()        {}
func (*ActionBar) sealed()   {}
func (*Tabs) sealed()        {}
func (*Legacy) sealed()      {}
func (*Form) sealed()        {}
func (*Diagnostic) sealed()  {}
func (*Unavailable) sealed() {}
func (*Fallback) sealed()    {}
func (*Loading) sealed()     {}
func (*Failed) sealed()      {}
func (*Empty) sealed()       {}
