package schema

// ComponentType selects the top-level rendering strategy for a schema.
type ComponentType string

const (
	ComponentForm    ComponentType = "Form"
	ComponentModal   ComponentType = "Modal"
	ComponentDisplay ComponentType = "Display"
	ComponentCustom  ComponentType = "Custom"
)

// ComponentTypes lists every declared component type. Dispatchers iterate it in
// tests to prove no variant falls through unhandled.
func ComponentTypes() []ComponentType {
	return []ComponentType{ComponentForm, ComponentModal, ComponentDisplay, ComponentCustom}
}

// Valid reports whether the value is one of the declared component types.
func (t ComponentType) Valid() bool {
	for _, candidate := range ComponentTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}

// FieldType is the input kind of a form field.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldBoolean     FieldType = "boolean"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multi-select"
	FieldTextarea    FieldType = "textarea"
	FieldDate        FieldType = "date"
	FieldFile        FieldType = "file"
	FieldEmail       FieldType = "email"
)

// ActionStyle is the visual weight of an action button.
type ActionStyle string

const (
	StylePrimary   ActionStyle = "primary"
	StyleSecondary ActionStyle = "secondary"
	StyleDanger    ActionStyle = "danger"
)

// DisplayType is the value of customProps.displayType.
type DisplayType string

const (
	DisplayTable   DisplayType = "table"
	DisplayCard    DisplayType = "card"
	DisplayActions DisplayType = "actions"
	DisplayTabs    DisplayType = "tabs"
	DisplayForm    DisplayType = "form"
)

// DisplayTypes lists the structured display strategies.
func DisplayTypes() []DisplayType {
	return []DisplayType{DisplayTable, DisplayCard, DisplayActions, DisplayTabs, DisplayForm}
}

// LayoutType is the structural layout kind used by displays.
type LayoutType string

const (
	LayoutGrid        LayoutType = "grid"
	LayoutSingle      LayoutType = "single"
	LayoutConditional LayoutType = "conditional"
)

// RuleType names a validation rule.
type RuleType string

const (
	RuleRequired  RuleType = "required"
	RuleMinLength RuleType = "minLength"
	RuleMaxLength RuleType = "maxLength"
	RulePattern   RuleType = "pattern"
	RuleMin       RuleType = "min"
	RuleMax       RuleType = "max"
	RuleEmail     RuleType = "email"
)
