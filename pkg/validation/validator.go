package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/schema"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Option configures a Validator.
type Option func(*Validator)

// WithLogger receives unresolved references and invalid patterns.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithRuleLookup sets the table used to resolve string rule references.
func WithRuleLookup(lookup RuleLookup) Option {
	return func(v *Validator) {
		v.lookup = lookup
	}
}

// Validator evaluates field rules. It is safe for concurrent use.
type Validator struct {
	logger *zap.Logger
	lookup RuleLookup

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		logger:   zap.NewNop(),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(v)
	}
	return v
}

// ValidateField validates value against field using a throwaway Validator.
func ValidateField(value any, field schema.Field, lookup RuleLookup) []string {
	return New(WithRuleLookup(lookup)).ValidateField(value, field)
}

// ValidateForm validates data against fields using a throwaway Validator.
func ValidateForm(data map[string]any, fields []schema.Field, lookup RuleLookup) map[string]string {
	return New(WithRuleLookup(lookup)).ValidateForm(data, fields)
}

// ValidateField returns the message of every rule value fails, in rule order.
// A field marked required without an explicit required rule behaves as if a
// required rule led its list.
func (v *Validator) ValidateField(value any, field schema.Field) []string {
	var errs []string
	for _, rule := range v.rules(field) {
		if msg, failed := v.check(rule, value, field); failed {
			errs = append(errs, msg)
		}
	}
	return errs
}

// ValidateForm validates each field against data[field.FieldKey] and keeps
// the first failing message per field. Fields that pass are absent from the
// result; an empty map means the form is valid.
func (v *Validator) ValidateForm(data map[string]any, fields []schema.Field) map[string]string {
	out := make(map[string]string)
	for _, field := range fields {
		if field.FieldKey == "" {
			continue
		}
		var value any
		if data != nil {
			value = data[field.FieldKey]
		}
		if errs := v.ValidateField(value, field); len(errs) > 0 {
			out[field.FieldKey] = errs[0]
		}
	}
	return out
}

func (v *Validator) rules(field schema.Field) []schema.ValidationRule {
	rules := make([]schema.ValidationRule, 0, len(field.ValidationRules)+1)
	explicitRequired := false
	for _, entry := range field.ValidationRules {
		switch {
		case entry.Rule != nil:
			rules = append(rules, *entry.Rule)
		case entry.Ref != "":
			rule, ok := v.resolve(entry.Ref)
			if !ok {
				v.logger.Warn("validation: unresolved rule reference",
					zap.String("field", field.FieldKey),
					zap.String("rule", entry.Ref))
				continue
			}
			rules = append(rules, rule)
		default:
			continue
		}
		if rules[len(rules)-1].Type == schema.RuleRequired {
			explicitRequired = true
		}
	}
	if field.Required && !explicitRequired {
		rules = append([]schema.ValidationRule{{Type: schema.RuleRequired}}, rules...)
	}
	return rules
}

func (v *Validator) resolve(key string) (schema.ValidationRule, bool) {
	if v.lookup == nil {
		return schema.ValidationRule{}, false
	}
	return v.lookup.LookupRule(key)
}

func (v *Validator) check(rule schema.ValidationRule, value any, field schema.Field) (string, bool) {
	label := field.DisplayLabel()
	switch rule.Type {
	case schema.RuleRequired:
		if isBlank(value) {
			return message(rule, "%s is required", label), true
		}
	case schema.RuleMinLength, schema.RuleMaxLength:
		str, ok := value.(string)
		if !ok {
			return "", false
		}
		bound := toNumber(rule.Value)
		if math.IsNaN(bound) {
			return "", false
		}
		length := float64(utf8.RuneCountInString(str))
		if rule.Type == schema.RuleMinLength && length < bound {
			return message(rule, "%s must be at least %s characters", label, formatBound(bound)), true
		}
		if rule.Type == schema.RuleMaxLength && length > bound {
			return message(rule, "%s must be at most %s characters", label, formatBound(bound)), true
		}
	case schema.RulePattern:
		str, ok := value.(string)
		if !ok {
			return "", false
		}
		expr := condition.String(rule.Value)
		if expr == "" {
			return "", false
		}
		re, err := v.compile(expr)
		if err != nil {
			v.logger.Warn("validation: invalid pattern",
				zap.String("field", field.FieldKey),
				zap.String("pattern", expr),
				zap.Error(err))
			return "", false
		}
		if !re.MatchString(str) {
			return message(rule, "%s format is invalid", label), true
		}
	case schema.RuleMin, schema.RuleMax:
		if value == nil {
			return "", false
		}
		bound := toNumber(rule.Value)
		num := toNumber(value)
		if rule.Type == schema.RuleMin && num < bound {
			return message(rule, "%s must be at least %s", label, formatBound(bound)), true
		}
		if rule.Type == schema.RuleMax && num > bound {
			return message(rule, "%s must be at most %s", label, formatBound(bound)), true
		}
	case schema.RuleEmail:
		str, ok := value.(string)
		if !ok {
			return "", false
		}
		if !emailPattern.MatchString(str) {
			return message(rule, "%s must be a valid email address", label), true
		}
	default:
		v.logger.Debug("validation: unknown rule type",
			zap.String("field", field.FieldKey),
			zap.String("type", string(rule.Type)))
	}
	return "", false
}

func (v *Validator) compile(expr string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if re, ok := v.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	v.patterns[expr] = re
	return re, nil
}

func message(rule schema.ValidationRule, format string, args ...any) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fmt.Sprintf(format, args...)
}

func formatBound(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// isBlank mirrors the required rule: falsy values, the empty string and empty
// collections fail. Zero and false are falsy.
func isBlank(value any) bool {
	if !condition.Truthy(value) {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

// toNumber coerces value the way a loosely typed Number() conversion would.
// Values with no numeric reading yield NaN, which compares false against any
// bound.
func toNumber(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	case []any:
		switch len(v) {
		case 0:
			return 0
		case 1:
			return toNumber(condition.String(v[0]))
		}
		return math.NaN()
	case []string:
		switch len(v) {
		case 0:
			return 0
		case 1:
			return toNumber(v[0])
		}
		return math.NaN()
	}
	return math.NaN()
}
