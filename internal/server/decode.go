package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

// decodeField converts posted form values into the value type the field
// holds. Unchecked checkboxes are absent from a post and decode as false.
// File fields are not handled.
func decodeField(field schema.Field, values url.Values) (any, bool) {
	raw, present := values[field.FieldKey]
	switch field.Type {
	case schema.FieldBoolean:
		if !present {
			return false, true
		}
		switch strings.ToLower(raw[0]) {
		case "true", "on", "1", "yes":
			return true, true
		}
		return false, true
	case schema.FieldFile:
		return nil, false
	}
	if !present {
		return nil, false
	}

	switch field.Type {
	case schema.FieldNumber:
		text := strings.TrimSpace(raw[0])
		if text == "" {
			return nil, true
		}
		if number, err := strconv.ParseFloat(text, 64); err == nil {
			return number, true
		}
		return text, true
	case schema.FieldMultiSelect:
		selected := make([]any, 0, len(raw))
		for _, item := range raw {
			selected = append(selected, optionValue(field.Options, item))
		}
		return selected, true
	case schema.FieldSelect:
		if raw[0] == "" {
			return "", true
		}
		return optionValue(field.Options, raw[0]), true
	default:
		return raw[0], true
	}
}

// optionValue maps posted text back to the typed option value.
func optionValue(options []schema.FieldOption, posted string) any {
	for _, option := range options {
		if fmt.Sprint(option.Value) == posted {
			return option.Value
		}
	}
	return posted
}
