package html

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/render"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// writer renders one node into out. Children are rendered by fresh writers
// and embedded as pre-rendered markup.
type writer struct {
	r    *Renderer
	opts render.RenderOptions
	out  strings.Builder
}

var _ view.Visitor = (*writer)(nil)

func (w *writer) render(n view.Node) (string, error) {
	if n == nil {
		return "", nil
	}
	child := &writer{r: w.r, opts: w.opts}
	if err := n.Accept(child); err != nil {
		return "", err
	}
	return child.out.String(), nil
}

func (w *writer) exec(name string, data map[string]any) error {
	if _, err := w.r.engine.RenderTemplate("templates/"+name, data, &w.out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (w *writer) withSession(target string) string {
	if w.opts.Session == "" {
		return target
	}
	return target + "?session=" + url.QueryEscape(w.opts.Session)
}

func (w *writer) componentURL(componentID string, parts ...string) string {
	if w.opts.ActionBase == "" {
		return ""
	}
	segments := []string{strings.TrimRight(w.opts.ActionBase, "/"), url.PathEscape(componentID)}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return w.withSession(strings.Join(segments, "/"))
}

func (w *writer) actionBar(componentID string, buttons []actions.Button, inForm bool) (string, error) {
	if len(buttons) == 0 {
		return "", nil
	}
	items := make([]map[string]any, 0, len(buttons))
	for _, button := range buttons {
		action := button.Action
		style := string(action.Style)
		if style == "" {
			style = string(schema.StyleSecondary)
		}
		href := w.componentURL(componentID, "actions", action.ActionKey)
		if inForm && action.ActionKey == actions.SubmitKey {
			href = w.componentURL(componentID, "submit")
		}
		items = append(items, map[string]any{
			"key":      action.ActionKey,
			"label":    action.Label,
			"style":    style,
			"confirm":  action.Confirmation,
			"disabled": button.Disabled,
			"href":     href,
		})
	}
	child := &writer{r: w.r, opts: w.opts}
	err := child.exec("actions", map[string]any{
		"id":      componentID,
		"buttons": items,
		"inform":  inForm,
		"hidden":  w.hidden(),
	})
	return child.out.String(), err
}

func (w *writer) hidden() []map[string]any {
	fields := w.opts.SortedHiddenFields()
	out := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func (w *writer) notice(componentID, kind, message, detail string) error {
	return w.exec("notice", map[string]any{
		"id":      componentID,
		"kind":    kind,
		"message": message,
		"detail":  detail,
	})
}

func (w *writer) VisitPanel(n *view.Panel) error {
	bar, err := w.actionBar(n.ComponentID, n.Actions, false)
	if err != nil {
		return err
	}
	body, err := w.render(n.Body)
	if err != nil {
		return err
	}
	return w.exec("panel", map[string]any{
		"id":      n.ComponentID,
		"title":   n.Title,
		"actions": bar,
		"body":    body,
	})
}

func (w *writer) VisitGrid(n *view.Grid) error {
	areas := make([]map[string]any, 0, len(n.Areas))
	for _, area := range n.Areas {
		markup, err := w.render(area.Node)
		if err != nil {
			return err
		}
		areas = append(areas, map[string]any{
			"component": area.Component,
			"span":      area.Span,
			"html":      markup,
		})
	}
	return w.exec("grid", map[string]any{
		"id":      n.ComponentID,
		"kind":    string(n.Kind),
		"spacing": n.Spacing,
		"areas":   areas,
	})
}

func (w *writer) VisitTable(n *view.Table) error {
	columns := make([]map[string]any, 0, len(n.Columns))
	for _, column := range n.Columns {
		columns = append(columns, map[string]any{
			"key":   column.Key,
			"label": column.Label,
			"width": column.Width,
		})
	}
	rows := make([]map[string]any, 0, len(n.Rows))
	for _, row := range n.Rows {
		cells := make([]map[string]any, 0, len(row.Cells))
		for _, cell := range row.Cells {
			entry := map[string]any{"key": cell.Key, "text": cell.Text}
			if cell.Badge != nil {
				entry["badge"] = map[string]any{
					"flag":    cell.Badge.Flag,
					"text":    cell.Badge.Text,
					"class":   cell.Badge.ClassName,
					"variant": cell.Badge.Variant,
				}
			}
			cells = append(cells, entry)
		}
		rows = append(rows, map[string]any{"class": row.ClassName, "cells": cells})
	}
	empty := n.EmptyMessage
	if empty == "" {
		empty = "No records"
	}
	return w.exec("table", map[string]any{
		"id":      n.ComponentID,
		"title":   n.Title,
		"columns": columns,
		"rows":    rows,
		"empty":   empty,
	})
}

func (w *writer) VisitCard(n *view.Card) error {
	items := make([]map[string]any, 0, len(n.Items))
	for _, item := range n.Items {
		items = append(items, map[string]any{
			"key":   item.Key,
			"label": item.Label,
			"value": item.Value,
		})
	}
	layout := n.Layout
	if layout == "" {
		layout = "list"
	}
	return w.exec("card", map[string]any{
		"id":     n.ComponentID,
		"title":  n.Title,
		"layout": layout,
		"items":  items,
	})
}

func (w *writer) VisitActionBar(n *view.ActionBar) error {
	bar, err := w.actionBar(n.ComponentID, n.Buttons, false)
	if err != nil {
		return err
	}
	w.out.WriteString(bar)
	return nil
}

func (w *writer) VisitTabs(n *view.Tabs) error {
	body, err := w.render(n.Body)
	if err != nil {
		return err
	}
	tabs := make([]map[string]any, 0, len(n.Tabs))
	for _, tab := range n.Tabs {
		href := "?tab=" + url.QueryEscape(n.ComponentID+":"+tab.Key)
		if w.opts.Session != "" {
			href += "&session=" + url.QueryEscape(w.opts.Session)
		}
		tabs = append(tabs, map[string]any{
			"key":    tab.Key,
			"label":  tab.Label,
			"badge":  tab.Badge,
			"active": tab.Key == n.Active,
			"href":   href,
		})
	}
	return w.exec("tabs", map[string]any{
		"id":     n.ComponentID,
		"active": n.Active,
		"tabs":   tabs,
		"body":   body,
	})
}

func (w *writer) VisitLegacy(n *view.Legacy) error {
	return w.exec("legacy", map[string]any{
		"id":   n.ComponentID,
		"html": w.r.policy.Sanitize(n.HTML),
	})
}

func (w *writer) VisitForm(n *view.Form) error {
	fv := n.View
	bar, err := w.actionBar(fv.ComponentID, fv.Actions, true)
	if err != nil {
		return err
	}
	groups := make([]map[string]any, 0, len(fv.Groups))
	for _, group := range fv.Groups {
		if len(group.Fields) == 0 {
			continue
		}
		fields := make([]map[string]any, 0, len(group.Fields))
		for _, field := range group.Fields {
			fields = append(fields, fieldContext(field))
		}
		groups = append(groups, map[string]any{
			"title":       group.Title,
			"collapsible": group.Collapsible,
			"expanded":    group.Expanded,
			"fields":      fields,
		})
	}
	return w.exec("form", map[string]any{
		"id":          fv.ComponentID,
		"title":       fv.Title,
		"description": fv.Description,
		"state":       string(fv.State),
		"columns":     fv.Columns,
		"groups":      groups,
		"actions":     bar,
		"action":      w.componentURL(fv.ComponentID, "submit"),
		"hidden":      w.hidden(),
	})
}

func fieldContext(fv form.FieldView) map[string]any {
	field := fv.Field
	ctx := map[string]any{
		"key":         field.FieldKey,
		"label":       field.DisplayLabel(),
		"type":        string(field.Type),
		"input":       inputType(field.Type),
		"value":       condition.String(fv.Value),
		"checked":     condition.Truthy(fv.Value),
		"placeholder": field.Placeholder,
		"help":        field.HelpText,
		"required":    isRequired(field),
		"error":       fv.Error,
	}
	if len(field.Options) > 0 {
		selected := selectedValues(fv.Value)
		options := make([]map[string]any, 0, len(field.Options))
		for _, option := range field.Options {
			value := condition.String(option.Value)
			_, isSelected := selected[value]
			options = append(options, map[string]any{
				"label":    option.Label,
				"value":    value,
				"selected": isSelected,
			})
		}
		ctx["options"] = options
	}
	return ctx
}

func inputType(t schema.FieldType) string {
	switch t {
	case schema.FieldNumber, schema.FieldDate, schema.FieldEmail, schema.FieldFile:
		return string(t)
	default:
		return "text"
	}
}

func isRequired(field schema.Field) bool {
	if field.Required {
		return true
	}
	for _, entry := range field.ValidationRules {
		if entry.Rule != nil && entry.Rule.Type == schema.RuleRequired {
			return true
		}
	}
	return false
}

func selectedValues(value any) map[string]struct{} {
	out := map[string]struct{}{}
	switch v := value.(type) {
	case nil:
	case []any:
		for _, item := range v {
			out[condition.String(item)] = struct{}{}
		}
	case []string:
		for _, item := range v {
			out[item] = struct{}{}
		}
	default:
		out[condition.String(v)] = struct{}{}
	}
	return out
}

func (w *writer) VisitDiagnostic(n *view.Diagnostic) error {
	return w.notice(n.ComponentID, "diagnostic", n.Message, string(n.Kind))
}

func (w *writer) VisitUnavailable(n *view.Unavailable) error {
	return w.notice(n.ComponentID, "unavailable", n.Reason, "")
}

func (w *writer) VisitFallback(n *view.Fallback) error {
	return w.notice(n.ComponentID, "fallback", n.Message, "")
}

func (w *writer) VisitLoading(n *view.Loading) error {
	return w.notice(n.ComponentID, "loading", "Loading", "")
}

func (w *writer) VisitFailed(n *view.Failed) error {
	return w.notice(n.ComponentID, "failed", n.Message, "")
}

func (w *writer) VisitEmpty(n *view.Empty) error {
	message := n.Reason
	if message == "" {
		message = "Nothing to display"
	}
	return w.notice(n.ComponentID, "empty", message, "")
}
