package form

import "github.com/goliatone/go-schemaui/pkg/schema"

// Group is a titled or untitled run of fields rendered together.
type Group struct {
	Title       string
	Collapsible bool
	Expanded    bool
	Fields      []schema.Field
}

// Organize groups the schema's fields. Sections win over order, order wins
// over declaration order. Keys that do not name a field are dropped.
func Organize(s schema.ComponentSchema) []Group {
	byKey := make(map[string]schema.Field, len(s.Fields))
	for _, field := range s.Fields {
		byKey[field.FieldKey] = field
	}

	if s.Layout != nil && len(s.Layout.Sections) > 0 {
		groups := make([]Group, 0, len(s.Layout.Sections))
		for _, section := range s.Layout.Sections {
			groups = append(groups, Group{
				Title:       section.Title,
				Collapsible: section.Collapsible,
				Expanded:    section.Expanded(),
				Fields:      pick(byKey, section.Fields),
			})
		}
		return groups
	}

	if s.Layout != nil && len(s.Layout.Order) > 0 {
		return []Group{{Expanded: true, Fields: pick(byKey, s.Layout.Order)}}
	}

	return []Group{{Expanded: true, Fields: append([]schema.Field(nil), s.Fields...)}}
}

func pick(byKey map[string]schema.Field, keys []string) []schema.Field {
	out := make([]schema.Field, 0, len(keys))
	for _, key := range keys {
		field, ok := byKey[key]
		if !ok {
			continue
		}
		out = append(out, field)
	}
	return out
}

// DefaultActions is the action list used by forms whose schema declares none.
func DefaultActions() []schema.ActionButton {
	return []schema.ActionButton{
		{ActionKey: "submit", Label: "Submit", Style: schema.StylePrimary},
		{ActionKey: "cancel", Label: "Cancel", Style: schema.StyleSecondary},
	}
}

// InitialData merges field defaults with initial values; initial values win.
func InitialData(fields []schema.Field, initial map[string]any) map[string]any {
	data := make(map[string]any, len(fields)+len(initial))
	for _, field := range fields {
		if field.Default != nil {
			data[field.FieldKey] = field.Default
		}
	}
	for key, value := range initial {
		data[key] = value
	}
	return data
}
