package display

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// StatusBadge is the column renderer that maps a status through the flag map.
const StatusBadge = "status-badge"

type strategy func(ctx context.Context, f frame, s schema.ComponentSchema) view.Node

func (r *Resolver) strategies() map[schema.DisplayType]strategy {
	return map[schema.DisplayType]strategy{
		schema.DisplayTable:   r.resolveTable,
		schema.DisplayCard:    r.resolveCard,
		schema.DisplayActions: r.resolveActions,
		schema.DisplayTabs:    r.resolveTabs,
		schema.DisplayForm: func(_ context.Context, f frame, s schema.ComponentSchema) view.Node {
			return r.resolveForm(f, s)
		},
	}
}

func (r *Resolver) bar(buttons []schema.ActionButton) *actions.Bar {
	return actions.NewBar(buttons, actions.WithEvaluator(r.evaluator), actions.WithLogger(r.logger))
}

func (r *Resolver) invalidProps(s schema.ComponentSchema, err error) view.Node {
	r.logger.Warn("display: invalid customProps", zap.String("component", s.ComponentID), zap.Error(err))
	return &view.Diagnostic{
		ComponentID: s.ComponentID,
		Kind:        view.DiagnosticInvalidProps,
		Message:     err.Error(),
	}
}

func (r *Resolver) resolveTable(_ context.Context, f frame, s schema.ComponentSchema) view.Node {
	props, err := schema.DecodeProps[schema.TableProps](s.CustomProps)
	if err != nil {
		return r.invalidProps(s, err)
	}

	var source any = f.data
	if props.DataKey != "" {
		source, _ = condition.Lookup(f.data, props.DataKey)
	}
	rows := rowsOf(source)

	columns := props.Columns
	if len(columns) == 0 && len(rows) > 0 {
		columns = inferColumns(rows[0])
	}

	table := &view.Table{
		ComponentID:  s.ComponentID,
		Title:        r.templates.Interpolate(s.Title, f.data),
		EmptyMessage: props.EmptyMessage,
		Columns:      make([]view.TableColumn, 0, len(columns)),
		Rows:         make([]view.TableRow, 0, len(rows)),
	}
	for _, column := range columns {
		label := column.Label
		if label == "" {
			label = column.Key
		}
		table.Columns = append(table.Columns, view.TableColumn{Key: column.Key, Label: label, Width: column.Width})
	}

	for _, row := range rows {
		out := view.TableRow{
			ClassName: r.rowClass(props.FlagConfig, row),
			Cells:     make([]view.TableCell, 0, len(columns)),
		}
		for _, column := range columns {
			value, _ := condition.Lookup(row, column.Key)
			cell := view.TableCell{Key: column.Key, Text: condition.String(value)}
			if column.Render == StatusBadge {
				cell.Badge = r.badge(props.FlagConfig, cell.Text)
			}
			out.Cells = append(out.Cells, cell)
		}
		table.Rows = append(table.Rows, out)
	}
	return table
}

func (r *Resolver) badge(config *schema.FlagConfig, status string) *view.Badge {
	flag := r.flags.Flag(status)
	badge := &view.Badge{Flag: flag, Text: status, Variant: flag}
	if config == nil {
		return badge
	}
	if settings, ok := config.BadgeConfigs[flag]; ok {
		if settings.Text != "" {
			badge.Text = settings.Text
		}
		if settings.Variant != "" {
			badge.Variant = settings.Variant
		}
		badge.ClassName = settings.ClassName
	}
	return badge
}

// rowClass looks up the row style by the raw value of the flag field and
// drops left-border utilities, which the table chrome already provides.
func (r *Resolver) rowClass(config *schema.FlagConfig, row map[string]any) string {
	if config == nil || config.Field == "" || len(config.Styles) == 0 {
		return ""
	}
	value, ok := condition.Lookup(row, config.Field)
	if !ok {
		return ""
	}
	style, ok := config.Styles[condition.String(value)]
	if !ok {
		return ""
	}
	classes := strings.Fields(style)
	kept := classes[:0]
	for _, class := range classes {
		if strings.HasPrefix(class, "border-l") {
			continue
		}
		kept = append(kept, class)
	}
	return strings.Join(kept, " ")
}

// rowsOf converts a resolved table source into rows. A single object is one
// row; lists keep their object items. Anything else yields no rows.
func rowsOf(source any) []map[string]any {
	switch v := source.(type) {
	case nil:
		return nil
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
		return []map[string]any{v}
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if row, ok := asRow(item); ok {
				out = append(out, row)
			}
		}
		return out
	}
	rv := reflect.ValueOf(source)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]map[string]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if row, ok := asRow(rv.Index(i).Interface()); ok {
			out = append(out, row)
		}
	}
	return out
}

func asRow(item any) (map[string]any, bool) {
	switch v := item.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		row := make(map[string]any, len(v))
		for key, value := range v {
			row[key] = value
		}
		return row, true
	}
	return nil, false
}

// inferColumns lists the scalar keys of row in sorted order.
func inferColumns(row map[string]any) []schema.Column {
	keys := slices.Sorted(maps.Keys(row))
	out := make([]schema.Column, 0, len(keys))
	for _, key := range keys {
		switch row[key].(type) {
		case map[string]any, []any:
			continue
		}
		out = append(out, schema.Column{Key: key})
	}
	return out
}

func (r *Resolver) resolveCard(_ context.Context, f frame, s schema.ComponentSchema) view.Node {
	props, err := schema.DecodeProps[schema.CardProps](s.CustomProps)
	if err != nil {
		return r.invalidProps(s, err)
	}
	layout := props.Layout
	if layout != "list" {
		layout = "grid"
	}
	card := &view.Card{
		ComponentID: s.ComponentID,
		Title:       r.templates.Interpolate(s.Title, f.data),
		Layout:      layout,
		Items:       make([]view.CardItem, 0, len(props.Fields)),
	}
	for _, field := range props.Fields {
		label := field.Label
		if label == "" {
			label = field.Key
		}
		value, _ := condition.Lookup(f.data, field.Key)
		card.Items = append(card.Items, view.CardItem{Key: field.Key, Label: label, Value: condition.String(value)})
	}
	return card
}

func (r *Resolver) resolveActions(_ context.Context, f frame, s schema.ComponentSchema) view.Node {
	return &view.ActionBar{
		ComponentID: s.ComponentID,
		Buttons:     r.bar(s.Actions).Visible(f.data, false),
	}
}

// resolveTabs resolves only the active tab's component.
func (r *Resolver) resolveTabs(ctx context.Context, f frame, s schema.ComponentSchema) view.Node {
	props, err := schema.DecodeProps[schema.TabsProps](s.CustomProps)
	if err != nil {
		return r.invalidProps(s, err)
	}
	if len(props.Tabs) == 0 {
		return &view.Diagnostic{
			ComponentID: s.ComponentID,
			Kind:        view.DiagnosticEmptyTabs,
			Message:     fmt.Sprintf("tabs component %q declares no tabs", s.ComponentID),
		}
	}

	active := activeTab(props, f.tabs[s.ComponentID])
	tabs := &view.Tabs{
		ComponentID: s.ComponentID,
		Active:      active.TabKey(),
		Tabs:        make([]view.Tab, 0, len(props.Tabs)),
	}
	for _, tab := range props.Tabs {
		tabs.Tabs = append(tabs.Tabs, view.Tab{
			Key:       tab.TabKey(),
			Label:     r.templates.Interpolate(tab.Label, f.data),
			Badge:     r.templates.Interpolate(tab.Badge, f.data),
			Component: tab.Component,
		})
	}
	tabs.Body = r.resolveRef(ctx, f, active.Component)
	return tabs
}

func activeTab(props schema.TabsProps, selected string) schema.TabConfig {
	for _, candidate := range []string{selected, props.DefaultTab} {
		if candidate == "" {
			continue
		}
		for _, tab := range props.Tabs {
			if tab.TabKey() == candidate {
				return tab
			}
		}
	}
	return props.Tabs[0]
}

func (r *Resolver) resolveForm(f frame, s schema.ComponentSchema) view.Node {
	if len(s.Fields) == 0 {
		return &view.Empty{ComponentID: s.ComponentID, Reason: "form has no fields"}
	}
	session := r.forms.FormSession(s, f.data)
	if session == nil {
		return &view.Unavailable{ComponentID: s.ComponentID, Reason: "form session unavailable"}
	}
	return &view.Form{View: session.View()}
}

func (r *Resolver) resolveLegacy(f frame, s schema.ComponentSchema) view.Node {
	return &view.Legacy{
		ComponentID: s.ComponentID,
		HTML:        r.templates.Render(s.DisplayTemplate, f.data),
	}
}
