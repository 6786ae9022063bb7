package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := Open(context.Background(), "file::memory:", WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutFetchRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openMemory(t)

	component := schema.ComponentSchema{
		ComponentID:   "review",
		Name:          "Review",
		ComponentType: schema.ComponentForm,
		Version:       "1.0.0",
		Fields: []schema.Field{{
			FieldKey: "notes",
			Label:    "Notes",
			Type:     schema.FieldTextarea,
			ValidationRules: []schema.RuleEntry{
				schema.Inline(schema.ValidationRule{Type: schema.RuleMaxLength, Value: float64(200)}),
				schema.Reference("noProfanity"),
			},
		}},
	}
	if err := s.PutSchema(ctx, component); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.FetchSchema(ctx, "review")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if diff := cmp.Diff(component, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.FetchSchema(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewestVersionWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openMemory(t)
	for _, version := range []string{"1.10.0", "1.2.0", "1.9.3"} {
		if err := s.PutSchema(ctx, schema.ComponentSchema{
			ComponentID: "task", Name: "task " + version, ComponentType: schema.ComponentDisplay, Version: version,
		}); err != nil {
			t.Fatalf("put %s: %v", version, err)
		}
	}
	if err := s.PutSchema(ctx, schema.ComponentSchema{ComponentID: "alpha", Name: "Alpha", ComponentType: schema.ComponentForm}); err != nil {
		t.Fatalf("put alpha: %v", err)
	}

	got, err := s.FetchSchema(ctx, "task")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Version != "1.10.0" {
		t.Fatalf("expected 1.10.0, got %s", got.Version)
	}

	list, err := s.ListSchemas(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []store.Summary{
		{ComponentID: "alpha", Name: "Alpha", ComponentType: schema.ComponentForm},
		{ComponentID: "task", Name: "task 1.10.0", ComponentType: schema.ComponentDisplay, Version: "1.10.0"},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	if err := s.DeleteSchema(ctx, "task"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteSchema(ctx, "task"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRules(t *testing.T) {
	t.Parallel()

	s := openMemory(t)
	rule := schema.ValidationRule{Type: schema.RulePattern, Value: "^[a-z]+$", Message: "lowercase only"}
	if err := s.PutRule(context.Background(), "lower", rule); err != nil {
		t.Fatalf("put rule: %v", err)
	}
	got, ok := s.LookupRule("lower")
	if !ok {
		t.Fatalf("expected rule")
	}
	if diff := cmp.Diff(rule, got); diff != "" {
		t.Fatalf("rule mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.LookupRule("missing"); ok {
		t.Fatalf("expected miss")
	}
}
