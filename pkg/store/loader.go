package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

// Document is the content of one schema file: a single schema, or a
// components list with an optional named rule table.
type Document struct {
	Components      []schema.ComponentSchema         `json:"components,omitempty" yaml:"components,omitempty"`
	ValidationRules map[string]schema.ValidationRule `json:"validationRules,omitempty" yaml:"validationRules,omitempty"`
}

// IsSchemaFile reports whether name has a schema document extension.
func IsSchemaFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".jsonc", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseDocument decodes data according to the extension of source. JSON with
// comments is accepted for .jsonc files; other extensions try JSON first and
// fall back to YAML.
func ParseDocument(data []byte, source string) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("store: file %s is empty", source)
	}

	switch strings.ToLower(path.Ext(source)) {
	case ".jsonc":
		return decodeJSON(jsonc.ToJSON(data), source)
	case ".yaml", ".yml":
		return decodeYAML(data, source)
	}

	doc, err := decodeJSON(data, source)
	if err == nil {
		return doc, nil
	}
	if yamlDoc, yamlErr := decodeYAML(data, source); yamlErr == nil {
		return yamlDoc, nil
	}
	return Document{}, err
}

func decodeJSON(data []byte, source string) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("store: parse %s: %w", source, err)
	}
	if len(doc.Components) > 0 {
		return doc, nil
	}
	var single schema.ComponentSchema
	if err := json.Unmarshal(data, &single); err != nil {
		return Document{}, fmt.Errorf("store: parse %s: %w", source, err)
	}
	if single.ComponentID != "" {
		doc.Components = []schema.ComponentSchema{single}
	}
	return doc, nil
}

func decodeYAML(data []byte, source string) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("store: parse %s: %w", source, err)
	}
	if len(doc.Components) > 0 {
		return doc, nil
	}
	var single schema.ComponentSchema
	if err := yaml.Unmarshal(data, &single); err != nil {
		return Document{}, fmt.Errorf("store: parse %s: %w", source, err)
	}
	if single.ComponentID != "" {
		doc.Components = []schema.ComponentSchema{single}
	}
	return doc, nil
}

// LoadFS walks fsys and loads every schema document into a new MemoryStore.
// A component id defined twice at the same version is an error; different
// versions keep the newest.
func LoadFS(fsys fs.FS) (*MemoryStore, error) {
	store, _ := NewMemoryStore()
	if fsys == nil {
		return store, nil
	}

	origins := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsSchemaFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("store: read %s: %w", name, err)
		}
		doc, err := ParseDocument(data, name)
		if err != nil {
			return err
		}

		for _, component := range doc.Components {
			key := component.ComponentID + "@" + component.Version
			if previous, exists := origins[key]; exists {
				return fmt.Errorf("store: duplicate component %q (files %s and %s)", component.ComponentID, previous, name)
			}
			origins[key] = name
			if err := store.PutSchema(context.Background(), component); err != nil {
				return fmt.Errorf("store: %s: %w", name, err)
			}
		}
		for key, rule := range doc.ValidationRules {
			store.PutRule(key, rule)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
