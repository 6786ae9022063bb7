package validation

import "github.com/goliatone/go-schemaui/pkg/schema"

// RuleLookup resolves a validation rule reference key into a concrete rule.
type RuleLookup interface {
	LookupRule(key string) (schema.ValidationRule, bool)
}

// RuleLookupFunc adapts a function to RuleLookup.
type RuleLookupFunc func(key string) (schema.ValidationRule, bool)

// LookupRule implements RuleLookup.
func (fn RuleLookupFunc) LookupRule(key string) (schema.ValidationRule, bool) {
	if fn == nil {
		return schema.ValidationRule{}, false
	}
	return fn(key)
}

// MapLookup is a static rule table.
type MapLookup map[string]schema.ValidationRule

// LookupRule implements RuleLookup.
func (m MapLookup) LookupRule(key string) (schema.ValidationRule, bool) {
	rule, ok := m[key]
	return rule, ok
}
