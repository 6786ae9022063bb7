package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g. Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a form stays invalid after the
	// configured number of correction rounds.
	ErrTooManyAttempts = errors.New("tui: form still invalid")
	// ErrNoForm is returned by Render when the view holds no form.
	ErrNoForm = errors.New("tui: view contains no form")
)
