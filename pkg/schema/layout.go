package schema

// LayoutConfig carries either form hints (Columns, Sections, Spacing, Order)
// or, when Type is set, a structural display layout.
type LayoutConfig struct {
	Columns  int           `json:"columns,omitempty" yaml:"columns,omitempty"`
	Sections []FormSection `json:"sections,omitempty" yaml:"sections,omitempty"`
	Spacing  string        `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Order    []string      `json:"order,omitempty" yaml:"order,omitempty"`

	Type        LayoutType        `json:"type,omitempty" yaml:"type,omitempty"`
	Areas       []LayoutArea      `json:"areas,omitempty" yaml:"areas,omitempty"`
	DefaultView *LayoutConfig     `json:"defaultView,omitempty" yaml:"defaultView,omitempty"`
	Views       []ConditionalView `json:"views,omitempty" yaml:"views,omitempty"`
}

// LayoutArea places one nested component inside a grid/single layout.
type LayoutArea struct {
	Component string `json:"component" yaml:"component"`
	Grid      string `json:"grid,omitempty" yaml:"grid,omitempty"`
	Order     int    `json:"order,omitempty" yaml:"order,omitempty"`
	VisibleIf string `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
}

// ConditionalView is one candidate branch of a conditional layout. Views are
// tried in declaration order; the first whose VisibleIf holds wins.
type ConditionalView struct {
	VisibleIf string       `json:"visibleIf" yaml:"visibleIf"`
	Layout    LayoutConfig `json:"layout" yaml:"layout"`
}
