package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/validation"
)

// OutputFormat controls how Render serializes collected values.
type OutputFormat string

const (
	OutputFormatJSON           OutputFormat = "json"
	OutputFormatFormURLEncoded OutputFormat = "form"
	OutputFormatPrettyText     OutputFormat = "pretty"
)

// Theme holds message prefixes applied to informational output.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures a Filler or Renderer.
type Option func(*config)

type config struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	maxAttempts  int
	validator    *validation.Validator
	logger       *zap.Logger
}

func newConfig(options []Option) config {
	cfg := config{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "! "},
		maxAttempts:  3,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.driver == nil {
		cfg.driver = NewSurveyDriver(nil)
	}
	return cfg
}

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(cfg *config) {
		if driver != nil {
			cfg.driver = driver
		}
	}
}

// WithOutputFormat selects the Render serialization.
func WithOutputFormat(format OutputFormat) Option {
	return func(cfg *config) {
		if format != "" {
			cfg.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(cfg *config) {
		cfg.theme = theme
	}
}

// WithMaxAttempts bounds the number of submit rounds. Zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(cfg *config) {
		if n >= 0 {
			cfg.maxAttempts = n
		}
	}
}

// WithValidator sets the validator Render uses for the transient form
// session it builds.
func WithValidator(validator *validation.Validator) Option {
	return func(cfg *config) {
		cfg.validator = validator
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
