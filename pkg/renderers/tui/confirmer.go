package tui

import (
	"context"

	"github.com/goliatone/go-schemaui/pkg/actions"
)

// Confirmer asks confirmation questions through a PromptDriver. The default
// answer is no.
type Confirmer struct {
	driver PromptDriver
}

var _ actions.Confirmer = (*Confirmer)(nil)

// NewConfirmer wraps driver, or a survey driver when nil.
func NewConfirmer(driver PromptDriver) *Confirmer {
	if driver == nil {
		driver = NewSurveyDriver(nil)
	}
	return &Confirmer{driver: driver}
}

func (c *Confirmer) Confirm(ctx context.Context, message string) (bool, error) {
	return c.driver.Confirm(ctx, ConfirmConfig{Message: message})
}
