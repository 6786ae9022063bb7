package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PropDisplayType is the customProps key selecting a display strategy.
const PropDisplayType = "displayType"

// DisplayType returns customProps.displayType when present.
func (s ComponentSchema) DisplayType() (DisplayType, bool) {
	raw, ok := s.CustomProps[PropDisplayType]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return DisplayType(value), true
}

// TableProps is the typed view of a table display's customProps.
type TableProps struct {
	DataKey      string      `json:"dataKey,omitempty"`
	Columns      []Column    `json:"columns,omitempty"`
	FlagConfig   *FlagConfig `json:"flagConfig,omitempty"`
	EmptyMessage string      `json:"emptyMessage,omitempty"`
}

// Column configures one table column. Render selects a cell renderer such as
// "status-badge"; an empty value renders the plain string form.
type Column struct {
	Key    string `json:"key"`
	Label  string `json:"label,omitempty"`
	Render string `json:"render,omitempty"`
	Width  string `json:"width,omitempty"`
}

// FlagConfig maps business values onto presentation. Styles is keyed by the
// raw value of Field on each row; BadgeConfigs is keyed by resolved flag.
type FlagConfig struct {
	Field        string                 `json:"field,omitempty"`
	Styles       map[string]string      `json:"styles,omitempty"`
	BadgeConfigs map[string]BadgeConfig `json:"badgeConfigs,omitempty"`
}

// BadgeConfig is the badge presentation for one flag.
type BadgeConfig struct {
	Text      string `json:"text,omitempty"`
	ClassName string `json:"className,omitempty"`
	Variant   string `json:"variant,omitempty"`
}

// CardProps is the typed view of a card display's customProps.
type CardProps struct {
	Fields []CardField `json:"fields,omitempty"`
	Layout string      `json:"layout,omitempty"`
}

// CardField is one key/label pair rendered by a card.
type CardField struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
}

// TabsProps is the typed view of a tabs display's customProps.
type TabsProps struct {
	Tabs       []TabConfig `json:"tabs,omitempty"`
	DefaultTab string      `json:"defaultTab,omitempty"`
}

// TabConfig wraps a nested schema reference as one tab.
type TabConfig struct {
	Key       string `json:"key,omitempty"`
	Label     string `json:"label"`
	Component string `json:"component"`
	Badge     string `json:"badge,omitempty"`
}

// TabKey returns the identifier used for selection, falling back to the
// nested component id.
func (t TabConfig) TabKey() string {
	if t.Key != "" {
		return t.Key
	}
	return t.Component
}

// DecodeProps converts a free-form customProps bag into a typed view.
func DecodeProps[T any](props map[string]any) (T, error) {
	var out T
	if len(props) == 0 {
		return out, nil
	}
	payload, err := json.Marshal(props)
	if err != nil {
		return out, fmt.Errorf("schema: encode customProps: %w", err)
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("schema: decode customProps: %w", err)
	}
	return out, nil
}
