package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted inside every interactive form a
// renderer writes, for example a CSRF token.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken constructs a hidden field carrying token under name, e.g.
// "_csrf" or "csrf_token".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// WithHiddenFields returns a copy of o with fields added. Empty names are
// ignored; later fields win on name collisions.
func (o RenderOptions) WithHiddenFields(fields ...HiddenField) RenderOptions {
	merged := make(map[string]string, len(o.HiddenFields)+len(fields))
	for key, value := range o.HiddenFields {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			merged[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		merged[field.Name] = field.Value
	}
	if len(merged) == 0 {
		merged = nil
	}
	o.HiddenFields = merged
	return o
}

// SortedHiddenFields returns the hidden fields of o ordered by name.
func (o RenderOptions) SortedHiddenFields() []HiddenField {
	if len(o.HiddenFields) == 0 {
		return nil
	}
	names := make([]string, 0, len(o.HiddenFields))
	for name := range o.HiddenFields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: strings.TrimSpace(name), Value: o.HiddenFields[name]})
	}
	return out
}
