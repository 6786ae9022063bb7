package html

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-schemaui/pkg/render"
)

// StylesheetAsset is the manifest asset key used for a theme stylesheet.
const StylesheetAsset = "stylesheet"

func (r *Renderer) themeContext(opts render.RenderOptions) (map[string]any, error) {
	if r.selector == nil {
		return map[string]any{}, nil
	}
	selection, err := r.selector.Select(opts.Theme, opts.Variant)
	if err != nil {
		return nil, err
	}
	if selection == nil {
		return map[string]any{}, nil
	}

	vars := cssVars(themeTokens(selection))
	return map[string]any{
		"name":       selection.Theme,
		"variant":    selection.Variant,
		"style":      rootStyle(vars),
		"inline":     inlineStyle(vars),
		"stylesheet": themeAsset(selection, StylesheetAsset),
	}, nil
}

// themeTokens merges the manifest tokens with the selected variant's.
func themeTokens(selection *theme.Selection) map[string]string {
	tokens := map[string]string{}
	if selection.Manifest == nil {
		return tokens
	}
	maps.Copy(tokens, selection.Manifest.Tokens)
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		maps.Copy(tokens, variant.Tokens)
	}
	return tokens
}

func themeAsset(selection *theme.Selection, key string) string {
	manifest := selection.Manifest
	if manifest == nil {
		return ""
	}
	prefix := manifest.Assets.Prefix
	file := manifest.Assets.Files[key]
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
		if override, ok := variant.Assets.Files[key]; ok {
			file = override
		}
	}
	if file == "" {
		return ""
	}
	if prefix == "" || strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
		return file
	}
	return path.Join(prefix, file)
}

func cssVars(tokens map[string]string) map[string]string {
	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		name := strings.TrimPrefix(key, "--")
		name = strings.ReplaceAll(name, ".", "-")
		vars["--"+name] = value
	}
	return vars
}

func sortedKeys(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func rootStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range sortedKeys(vars) {
		fmt.Fprintf(&b, "%s: %s;\n", key, vars[key])
	}
	b.WriteString("}")
	return b.String()
}

func inlineStyle(vars map[string]string) string {
	parts := make([]string, 0, len(vars))
	for _, key := range sortedKeys(vars) {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

// ManifestSelector is a theme.ThemeSelector over a fixed set of manifests. An
// empty theme name selects the first manifest registered.
type ManifestSelector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	first     string
}

// NewManifestSelector registers manifests by name.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{manifests: map[string]*theme.Manifest{}}
	for _, manifest := range manifests {
		if err := s.Add(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers one more manifest.
func (s *ManifestSelector) Add(manifest *theme.Manifest) error {
	if manifest == nil || manifest.Name == "" {
		return errors.New("html: theme manifest requires a name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.manifests[manifest.Name]; exists {
		return fmt.Errorf("html: theme %q already registered", manifest.Name)
	}
	s.manifests[manifest.Name] = manifest
	if s.first == "" {
		s.first = manifest.Name
	}
	return nil
}

// Select implements theme.ThemeSelector.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name == "" {
		name = s.first
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("html: theme %q not found", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("html: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}
