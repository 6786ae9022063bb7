package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

// MemoryStore keeps the newest version of each schema plus a validation rule
// table. It implements Fetcher, Writer and validation.RuleLookup.
type MemoryStore struct {
	mu      sync.RWMutex
	schemas map[string]schema.ComponentSchema
	rules   map[string]schema.ValidationRule
}

// NewMemoryStore returns a store seeded with schemas. Invalid schemas are
// rejected with an error.
func NewMemoryStore(schemas ...schema.ComponentSchema) (*MemoryStore, error) {
	store := &MemoryStore{
		schemas: make(map[string]schema.ComponentSchema),
		rules:   make(map[string]schema.ValidationRule),
	}
	for _, s := range schemas {
		if err := store.PutSchema(context.Background(), s); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// FetchSchema implements Fetcher.
func (m *MemoryStore) FetchSchema(_ context.Context, componentID string) (schema.ComponentSchema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found, ok := m.schemas[componentID]
	if !ok {
		return schema.ComponentSchema{}, fmt.Errorf("%w: %s", ErrNotFound, componentID)
	}
	return found, nil
}

// PutSchema stores s unless a newer version is already held.
func (m *MemoryStore) PutSchema(_ context.Context, s schema.ComponentSchema) error {
	if err := Validate(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.schemas[s.ComponentID]; ok && !Supersedes(s.Version, current.Version) {
		return nil
	}
	m.schemas[s.ComponentID] = s
	return nil
}

// DeleteSchema removes a schema. Deleting an unknown id returns ErrNotFound.
func (m *MemoryStore) DeleteSchema(_ context.Context, componentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemas[componentID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, componentID)
	}
	delete(m.schemas, componentID)
	return nil
}

// ListSchemas returns summaries sorted by component id.
func (m *MemoryStore) ListSchemas(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.schemas))
	for _, s := range m.schemas {
		out = append(out, summarize(s))
	}
	slices.SortFunc(out, func(a, b Summary) int {
		return strings.Compare(a.ComponentID, b.ComponentID)
	})
	return out, nil
}

// PutRule registers a named validation rule.
func (m *MemoryStore) PutRule(key string, rule schema.ValidationRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[key] = rule
}

// LookupRule implements validation.RuleLookup.
func (m *MemoryStore) LookupRule(key string) (schema.ValidationRule, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[key]
	return rule, ok
}

// Len reports the number of stored schemas.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.schemas)
}

// Replace swaps the whole content of m for other's.
func (m *MemoryStore) Replace(other *MemoryStore) {
	other.mu.RLock()
	schemas := make(map[string]schema.ComponentSchema, len(other.schemas))
	for id, s := range other.schemas {
		schemas[id] = s
	}
	rules := make(map[string]schema.ValidationRule, len(other.rules))
	for key, rule := range other.rules {
		rules[key] = rule
	}
	other.mu.RUnlock()

	m.mu.Lock()
	m.schemas = schemas
	m.rules = rules
	m.mu.Unlock()
}
