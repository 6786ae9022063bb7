package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ValidationRule is a concrete rule evaluated against a candidate value.
type ValidationRule struct {
	Type    RuleType `json:"type" yaml:"type"`
	Value   any      `json:"value,omitempty" yaml:"value,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// RuleEntry is one element of Field.ValidationRules: either an inline rule or
// a string reference resolved through a rule lookup at validation time.
type RuleEntry struct {
	Rule *ValidationRule
	Ref  string
}

// Inline wraps a rule as an entry.
func Inline(rule ValidationRule) RuleEntry {
	return RuleEntry{Rule: &rule}
}

// Reference wraps a rule key as an entry.
func Reference(key string) RuleEntry {
	return RuleEntry{Ref: key}
}

// IsReference reports whether the entry must be resolved through a lookup.
func (e RuleEntry) IsReference() bool {
	return e.Rule == nil && e.Ref != ""
}

func (e RuleEntry) MarshalJSON() ([]byte, error) {
	if e.Rule != nil {
		return json.Marshal(e.Rule)
	}
	if e.Ref != "" {
		return json.Marshal(e.Ref)
	}
	return []byte("null"), nil
}

func (e *RuleEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*e = RuleEntry{}
		return nil
	case trimmed[0] == '"':
		var ref string
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return fmt.Errorf("schema: rule reference: %w", err)
		}
		*e = RuleEntry{Ref: ref}
		return nil
	case trimmed[0] == '{':
		var rule ValidationRule
		if err := json.Unmarshal(trimmed, &rule); err != nil {
			return fmt.Errorf("schema: inline rule: %w", err)
		}
		*e = RuleEntry{Rule: &rule}
		return nil
	default:
		return errors.New("schema: validation rule must be an object or a string reference")
	}
}

func (e RuleEntry) MarshalYAML() (any, error) {
	if e.Rule != nil {
		return e.Rule, nil
	}
	return e.Ref, nil
}

func (e *RuleEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = RuleEntry{Ref: node.Value}
		return nil
	case yaml.MappingNode:
		var rule ValidationRule
		if err := node.Decode(&rule); err != nil {
			return fmt.Errorf("schema: inline rule: %w", err)
		}
		*e = RuleEntry{Rule: &rule}
		return nil
	default:
		return errors.New("schema: validation rule must be a mapping or a string reference")
	}
}
