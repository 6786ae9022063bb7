// Package condition evaluates the small visibleIf expressions attached to
// fields, actions and layout areas.
//
// The default Simple evaluator understands, in priority order:
//
//	path === "literal"   strict string equality
//	path !== "literal"   strict string inequality
//	path == "literal"    loose equality on the string form of the value
//	path != "literal"    loose inequality
//	!path                negated truthiness
//	path                 truthiness
//
// Paths are dotted (`uiState.showReviewForm`). `&&`, `||` and parentheses are
// not part of this grammar; Compound accepts them and must be opted into.
package condition

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Evaluator decides whether a condition holds against a data context. It
// never fails: problems are logged and reported as false.
type Evaluator interface {
	Evaluate(condition string, data map[string]any) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(condition string, data map[string]any) bool

// Evaluate delegates to the underlying function.
func (fn EvaluatorFunc) Evaluate(condition string, data map[string]any) bool {
	return fn(condition, data)
}

// Option configures an evaluator.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes evaluation failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	cfg := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Simple implements the narrow visibleIf grammar.
type Simple struct {
	logger *zap.Logger
}

var _ Evaluator = (*Simple)(nil)

// New constructs the default evaluator.
func New(opts ...Option) *Simple {
	cfg := newOptions(opts)
	return &Simple{logger: cfg.logger}
}

var defaultEvaluator = New()

// Evaluate runs condition through the default evaluator.
func Evaluate(condition string, data map[string]any) bool {
	return defaultEvaluator.Evaluate(condition, data)
}

// Visible treats an empty condition as always visible and evaluates the rest.
func Visible(e Evaluator, condition string, data map[string]any) bool {
	if strings.TrimSpace(condition) == "" {
		return true
	}
	if e == nil {
		e = defaultEvaluator
	}
	return e.Evaluate(condition, data)
}

func (e *Simple) Evaluate(condition string, data map[string]any) (result bool) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("condition: evaluation panicked",
				zap.String("condition", condition),
				zap.String("panic", fmt.Sprint(rec)),
			)
			result = false
		}
	}()

	expr := strings.TrimSpace(condition)
	if expr == "" {
		e.logger.Debug("condition: empty expression")
		return false
	}

	if left, right, ok := strings.Cut(expr, "==="); ok {
		return e.strictEqual(left, right, data)
	}
	if left, right, ok := strings.Cut(expr, "!=="); ok {
		return !e.strictEqual(left, right, data)
	}
	if left, right, ok := strings.Cut(expr, "=="); ok {
		return e.looseEqual(left, right, data)
	}
	if left, right, ok := strings.Cut(expr, "!="); ok {
		return !e.looseEqual(left, right, data)
	}
	if rest, ok := strings.CutPrefix(expr, "!"); ok {
		return !Truthy(e.resolve(rest, data))
	}
	return Truthy(e.resolve(expr, data))
}

func (e *Simple) strictEqual(left, right string, data map[string]any) bool {
	value, ok := e.lookup(left, data)
	if !ok {
		return false
	}
	str, isString := value.(string)
	return isString && str == stripQuotes(right)
}

func (e *Simple) looseEqual(left, right string, data map[string]any) bool {
	value, ok := e.lookup(left, data)
	if !ok {
		return false
	}
	return String(value) == stripQuotes(right)
}

func (e *Simple) resolve(path string, data map[string]any) any {
	value, _ := e.lookup(path, data)
	return value
}

func (e *Simple) lookup(path string, data map[string]any) (any, bool) {
	path = strings.TrimSpace(path)
	value, ok := Lookup(data, path)
	if !ok {
		e.logger.Debug("condition: path not found", zap.String("path", path))
	}
	return value, ok
}

func stripQuotes(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, `"`)
	trimmed = strings.TrimPrefix(trimmed, `'`)
	trimmed = strings.TrimSuffix(trimmed, `"`)
	trimmed = strings.TrimSuffix(trimmed, `'`)
	return trimmed
}
