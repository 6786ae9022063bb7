// Package store holds the schema persistence contracts and the in-process
// adapters: an in-memory store, a filesystem loader, a deduplicating cache
// and a directory watcher that hot-reloads schema files.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

// ErrNotFound reports that no schema exists for the requested id. Any other
// error returned by a Fetcher is a transport error.
var ErrNotFound = errors.New("store: schema not found")

// Fetcher resolves a schema by component id.
type Fetcher interface {
	FetchSchema(ctx context.Context, componentID string) (schema.ComponentSchema, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, componentID string) (schema.ComponentSchema, error)

// FetchSchema implements Fetcher.
func (fn FetchFunc) FetchSchema(ctx context.Context, componentID string) (schema.ComponentSchema, error) {
	if fn == nil {
		return schema.ComponentSchema{}, fmt.Errorf("%w: %s", ErrNotFound, componentID)
	}
	return fn(ctx, componentID)
}

// Summary describes one stored schema without its body.
type Summary struct {
	ComponentID   string               `json:"componentId"`
	Name          string               `json:"name"`
	ComponentType schema.ComponentType `json:"componentType"`
	Version       string               `json:"version,omitempty"`
}

// Writer persists schemas.
type Writer interface {
	PutSchema(ctx context.Context, s schema.ComponentSchema) error
	DeleteSchema(ctx context.Context, componentID string) error
	ListSchemas(ctx context.Context) ([]Summary, error)
}

// Validate checks the fields a store requires before accepting a schema.
func Validate(s schema.ComponentSchema) error {
	if strings.TrimSpace(s.ComponentID) == "" {
		return errors.New("store: schema is missing componentId")
	}
	if !s.ComponentType.Valid() {
		return fmt.Errorf("store: schema %q has invalid componentType %q", s.ComponentID, s.ComponentType)
	}
	return nil
}

func summarize(s schema.ComponentSchema) Summary {
	return Summary{
		ComponentID:   s.ComponentID,
		Name:          s.Name,
		ComponentType: s.ComponentType,
		Version:       s.Version,
	}
}
