package form

import (
	"maps"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/schema"
)

// FieldView is one visible field with its current value and error.
type FieldView struct {
	Field schema.Field
	Value any
	Error string
}

// GroupView is a Group restricted to visible fields.
type GroupView struct {
	Title       string
	Collapsible bool
	Expanded    bool
	Fields      []FieldView
}

// View is a render-ready snapshot of a session.
type View struct {
	ComponentID string
	Title       string
	Description string
	State       State
	Columns     int
	Spacing     string
	Groups      []GroupView
	Actions     []actions.Button
	Errors      map[string]string
}

// Fields flattens the groups into a single list.
func (v View) Fields() []FieldView {
	var out []FieldView
	for _, group := range v.Groups {
		out = append(out, group.Fields...)
	}
	return out
}

// View snapshots the session for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	data := maps.Clone(s.data)
	errs := maps.Clone(s.errors)
	state := s.state
	s.mu.Unlock()

	out := View{
		ComponentID: s.schema.ComponentID,
		Title:       s.templates.Interpolate(s.schema.Title, data),
		Description: s.schema.Description,
		State:       state,
		Errors:      errs,
		Actions:     s.bar.Visible(data, state == StateSubmitting),
	}
	if layout := s.schema.Layout; layout != nil {
		out.Columns = layout.Columns
		out.Spacing = layout.Spacing
	}

	for _, group := range s.groups {
		gv := GroupView{
			Title:       group.Title,
			Collapsible: group.Collapsible,
			Expanded:    group.Expanded,
		}
		for _, field := range group.Fields {
			if !condition.Visible(s.evaluator, field.VisibleIf, data) {
				continue
			}
			gv.Fields = append(gv.Fields, FieldView{
				Field: field,
				Value: data[field.FieldKey],
				Error: errs[field.FieldKey],
			})
		}
		out.Groups = append(out.Groups, gv)
	}
	return out
}
