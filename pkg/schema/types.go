package schema

// ComponentSchema is the unit of configuration: one renderable form, display,
// tab group or action bar.
type ComponentSchema struct {
	ComponentID     string         `json:"componentId" yaml:"componentId"`
	Name            string         `json:"name" yaml:"name"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
	ComponentType   ComponentType  `json:"componentType" yaml:"componentType"`
	Title           string         `json:"title,omitempty" yaml:"title,omitempty"`
	Fields          []Field        `json:"fields,omitempty" yaml:"fields,omitempty"`
	Actions         []ActionButton `json:"actions,omitempty" yaml:"actions,omitempty"`
	DisplayTemplate string         `json:"displayTemplate,omitempty" yaml:"displayTemplate,omitempty"`
	Layout          *LayoutConfig  `json:"layout,omitempty" yaml:"layout,omitempty"`
	CustomProps     map[string]any `json:"customProps,omitempty" yaml:"customProps,omitempty"`
	Version         string         `json:"version,omitempty" yaml:"version,omitempty"`
}

// Field describes one input slot. Fields are static; only the value stored
// under FieldKey in a form's working data changes at runtime.
type Field struct {
	FieldKey        string        `json:"fieldKey" yaml:"fieldKey"`
	Label           string        `json:"label" yaml:"label"`
	Type            FieldType     `json:"type" yaml:"type"`
	Placeholder     string        `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Default         any           `json:"default,omitempty" yaml:"default,omitempty"`
	ValidationRules []RuleEntry   `json:"validationRules,omitempty" yaml:"validationRules,omitempty"`
	Options         []FieldOption `json:"options,omitempty" yaml:"options,omitempty"`
	VisibleIf       string        `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
	HelpText        string        `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Required        bool          `json:"required,omitempty" yaml:"required,omitempty"`
}

// DisplayLabel returns the label, falling back to the field key.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.FieldKey
}

// FieldOption is one choice of a select or multi-select field.
type FieldOption struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// ActionButton is a user-triggered command.
type ActionButton struct {
	ActionKey    string      `json:"actionKey" yaml:"actionKey"`
	Label        string      `json:"label" yaml:"label"`
	Style        ActionStyle `json:"style,omitempty" yaml:"style,omitempty"`
	Confirmation string      `json:"confirmation,omitempty" yaml:"confirmation,omitempty"`
	VisibleIf    string      `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
	Disabled     bool        `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// FormSection groups a named subset of fields by key.
type FormSection struct {
	Title           string   `json:"title" yaml:"title"`
	Fields          []string `json:"fields" yaml:"fields"`
	Collapsible     bool     `json:"collapsible,omitempty" yaml:"collapsible,omitempty"`
	DefaultExpanded *bool    `json:"defaultExpanded,omitempty" yaml:"defaultExpanded,omitempty"`
}

// Expanded reports whether the section starts expanded. Sections are expanded
// unless they are collapsible and explicitly start collapsed.
func (s FormSection) Expanded() bool {
	if s.DefaultExpanded == nil {
		return true
	}
	return *s.DefaultExpanded || !s.Collapsible
}

// FieldByKey returns the field declared under key.
func (s ComponentSchema) FieldByKey(key string) (Field, bool) {
	for _, field := range s.Fields {
		if field.FieldKey == key {
			return field, true
		}
	}
	return Field{}, false
}

// ActionByKey returns the action declared under key.
func (s ComponentSchema) ActionByKey(key string) (ActionButton, bool) {
	for _, action := range s.Actions {
		if action.ActionKey == key {
			return action, true
		}
	}
	return ActionButton{}, false
}

// HasStructuralLayout reports whether the schema carries a display layout
// (grid/single/conditional) as opposed to form column/order hints.
func (s ComponentSchema) HasStructuralLayout() bool {
	return s.Layout != nil && s.Layout.Type != ""
}
