// Package testsupport holds fixtures and recording collaborators shared by
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
)

// LoadDocument parses a schema document fixture.
func LoadDocument(t *testing.T, path string) store.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc, err := store.ParseDocument(data, filepath.Base(path))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

// MemoryStore builds a store holding schemas, failing the test on invalid input.
func MemoryStore(t *testing.T, schemas ...schema.ComponentSchema) *store.MemoryStore {
	t.Helper()

	s, err := store.NewMemoryStore(schemas...)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	return s
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer and returns both the result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

// Call is one recorded dispatch or submission.
type Call struct {
	Key  string
	Data map[string]any
}

// Recorder records dispatched actions and submitted payloads. It satisfies
// actions.Dispatcher, form.Submitter and form.Canceller.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

func (r *Recorder) record(key string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Key: key, Data: maps.Clone(data)})
	return r.Err
}

// Dispatch records an action.
func (r *Recorder) Dispatch(_ context.Context, actionKey string, data map[string]any) error {
	return r.record(actionKey, data)
}

// Submit records a submission under the "submit" key.
func (r *Recorder) Submit(_ context.Context, data map[string]any) error {
	return r.record("submit", data)
}

// Cancel records a cancellation under the "cancel" key.
func (r *Recorder) Cancel(_ context.Context, data map[string]any) error {
	return r.record("cancel", data)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Keys returns the recorded keys in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		keys = append(keys, call.Key)
	}
	return keys
}

// Confirmer answers every confirmation with Answer and records the prompts.
type Confirmer struct {
	mu      sync.Mutex
	Answer  bool
	prompts []string
}

// Confirm implements actions.Confirmer.
func (c *Confirmer) Confirm(_ context.Context, message string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, message)
	return c.Answer, nil
}

// Prompts returns the confirmation messages seen so far.
func (c *Confirmer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}
