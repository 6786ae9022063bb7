package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/schema"
)

// Filler walks a form session field by field through a PromptDriver.
type Filler struct {
	cfg config
}

// NewFiller builds a Filler. Without WithPromptDriver it prompts through
// survey on the controlling terminal.
func NewFiller(options ...Option) *Filler {
	return &Filler{cfg: newConfig(options)}
}

// Fill prompts every visible field, then submits. Fields that fail validation
// are prompted again with their error shown, up to the configured attempts.
// Visibility is re-evaluated after every answer so conditional fields appear
// as soon as their condition holds.
func (f *Filler) Fill(ctx context.Context, session *form.Session) (form.Outcome, error) {
	var pending map[string]bool
	for attempt := 1; ; attempt++ {
		prompted := map[string]bool{}
		for {
			field, ok := nextField(session, prompted, pending)
			if !ok {
				break
			}
			prompted[field.FieldKey] = true
			value, err := f.prompt(ctx, field, session.Data()[field.FieldKey], session.Errors()[field.FieldKey])
			if err != nil {
				return "", err
			}
			session.Change(field.FieldKey, value)
		}

		outcome, err := session.Submit(ctx)
		if outcome != form.OutcomeInvalid {
			return outcome, err
		}

		errs := session.Errors()
		f.cfg.logger.Debug("tui: form invalid",
			zap.String("component", session.Schema().ComponentID),
			zap.Int("attempt", attempt),
			zap.Int("errors", len(errs)))
		if f.cfg.maxAttempts > 0 && attempt >= f.cfg.maxAttempts {
			return outcome, ErrTooManyAttempts
		}

		keys := make([]string, 0, len(errs))
		for key := range errs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		pending = make(map[string]bool, len(keys))
		for _, key := range keys {
			pending[key] = true
			if err := f.cfg.driver.Info(ctx, f.cfg.theme.ErrorPrefix+errs[key]); err != nil {
				return "", err
			}
		}
	}
}

func nextField(session *form.Session, prompted, pending map[string]bool) (schema.Field, bool) {
	for _, field := range session.VisibleFields() {
		if prompted[field.FieldKey] {
			continue
		}
		if pending != nil && !pending[field.FieldKey] {
			continue
		}
		return field, true
	}
	return schema.Field{}, false
}

func (f *Filler) prompt(ctx context.Context, field schema.Field, current any, problem string) (any, error) {
	label := field.DisplayLabel()
	if field.Required {
		label += " *"
	}
	help := field.HelpText
	if problem != "" {
		help = strings.TrimSpace(problem + " " + help)
	}
	driver := f.cfg.driver

	switch field.Type {
	case schema.FieldBoolean:
		return driver.Confirm(ctx, ConfirmConfig{Message: label, Help: help, Default: condition.Truthy(current)})
	case schema.FieldTextarea:
		return driver.TextArea(ctx, TextAreaConfig{Message: label, Help: help, Default: condition.String(current)})
	case schema.FieldSelect:
		labels, values := optionLists(field.Options)
		idx, err := driver.Select(ctx, SelectConfig{
			Message:      label,
			Help:         help,
			Options:      labels,
			DefaultIndex: indexOfValue(values, current),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return nil, nil
		}
		return values[idx], nil
	case schema.FieldMultiSelect:
		labels, values := optionLists(field.Options)
		var defaults []int
		for _, item := range asSlice(current) {
			if idx := indexOfValue(values, item); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		indices, err := driver.MultiSelect(ctx, SelectConfig{Message: label, Help: help, Options: labels, Defaults: defaults})
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(values) {
				out = append(out, values[idx])
			}
		}
		return out, nil
	case schema.FieldNumber:
		raw, err := driver.Input(ctx, InputConfig{
			Message:   label,
			Help:      help,
			Default:   condition.String(current),
			Validator: validateNumber,
		})
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("tui: %s: %w", field.FieldKey, err)
		}
		return n, nil
	default:
		return driver.Input(ctx, InputConfig{Message: label, Help: help, Default: condition.String(current)})
	}
}

func validateNumber(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func optionLists(options []schema.FieldOption) ([]string, []any) {
	labels := make([]string, len(options))
	values := make([]any, len(options))
	for i, option := range options {
		labels[i] = option.Label
		if labels[i] == "" {
			labels[i] = condition.String(option.Value)
		}
		values[i] = option.Value
	}
	return labels, values
}

func indexOfValue(values []any, current any) int {
	if current == nil {
		return -1
	}
	want := condition.String(current)
	for i, value := range values {
		if condition.String(value) == want {
			return i
		}
	}
	return -1
}

func asSlice(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out
	}
	return nil
}
