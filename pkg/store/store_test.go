package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaui/pkg/schema"
)

func TestMemoryStoreKeepsNewestVersion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewMemoryStore(
		schema.ComponentSchema{ComponentID: "task", ComponentType: schema.ComponentDisplay, Version: "1.2.0", Name: "v120"},
		schema.ComponentSchema{ComponentID: "task", ComponentType: schema.ComponentDisplay, Version: "1.10.0", Name: "v1100"},
		schema.ComponentSchema{ComponentID: "task", ComponentType: schema.ComponentDisplay, Version: "1.9.0", Name: "v190"},
	)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	got, err := store.FetchSchema(ctx, "task")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Name != "v1100" {
		t.Fatalf("expected semantic version ordering, got %q", got.Name)
	}

	if _, err := store.FetchSchema(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteSchema(ctx, "task"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteSchema(ctx, "task"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPutSchemaValidates(t *testing.T) {
	t.Parallel()

	store, _ := NewMemoryStore()
	if err := store.PutSchema(context.Background(), schema.ComponentSchema{ComponentType: schema.ComponentForm}); err == nil {
		t.Fatalf("expected missing id error")
	}
	if err := store.PutSchema(context.Background(), schema.ComponentSchema{ComponentID: "x", ComponentType: "Widget"}); err == nil {
		t.Fatalf("expected invalid type error")
	}
}

func TestSupersedes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		candidate, current string
		want               bool
	}{
		{"2.0.0", "1.9.9", true},
		{"1.0.0", "1.0.0", true},
		{"1.0.0", "1.0.1", false},
		{"1.0.0", "", true},
		{"", "1.0.0", false},
		{"draft", "", true},
	}
	for _, tc := range cases {
		if got := Supersedes(tc.candidate, tc.current); got != tc.want {
			t.Fatalf("Supersedes(%q, %q) = %v, want %v", tc.candidate, tc.current, got, tc.want)
		}
	}
}

func TestLoadFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"single.json": {Data: []byte(`{"componentId":"profile","name":"Profile","componentType":"Form","fields":[{"fieldKey":"email","label":"Email","type":"email","validationRules":["workEmail"]}]}`)},
		"nested/with-comments.jsonc": {Data: []byte(`{
  // dashboard
  "componentId": "dashboard",
  "name": "Dashboard",
  "componentType": "Display",
  "layout": {"type": "grid", "areas": [{"component": "profile", "grid": "span 6"}]}
}`)},
		"bundle.yaml": {Data: []byte(`components:
  - componentId: findings
    name: Findings
    componentType: Display
    customProps:
      displayType: table
      dataKey: findings
validationRules:
  workEmail:
    type: pattern
    value: "@example\\.com$"
    message: Use your work address
`)},
		"README.md": {Data: []byte("ignored")},
	}

	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	list, err := store.ListSchemas(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []Summary{
		{ComponentID: "dashboard", Name: "Dashboard", ComponentType: schema.ComponentDisplay},
		{ComponentID: "findings", Name: "Findings", ComponentType: schema.ComponentDisplay},
		{ComponentID: "profile", Name: "Profile", ComponentType: schema.ComponentForm},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Fatalf("summaries mismatch (-want +got):\n%s", diff)
	}

	rule, ok := store.LookupRule("workEmail")
	if !ok || rule.Type != schema.RulePattern || rule.Message != "Use your work address" {
		t.Fatalf("unexpected rule %#v (found %v)", rule, ok)
	}

	dashboard, _ := store.FetchSchema(context.Background(), "dashboard")
	if dashboard.Layout == nil || dashboard.Layout.Areas[0].Grid != "span 6" {
		t.Fatalf("jsonc layout not decoded: %#v", dashboard.Layout)
	}
}

func TestLoadFSRejectsDuplicates(t *testing.T) {
	t.Parallel()

	doc := []byte(`{"componentId":"a","name":"A","componentType":"Form"}`)
	_, err := LoadFS(fstest.MapFS{"one.json": {Data: doc}, "two.json": {Data: doc}})
	if err == nil {
		t.Fatalf("expected duplicate component error")
	}
}

type countingFetcher struct {
	calls atomic.Int32
	gate  chan struct{}
	err   error
}

func (c *countingFetcher) FetchSchema(_ context.Context, id string) (schema.ComponentSchema, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if c.err != nil {
		return schema.ComponentSchema{}, c.err
	}
	return schema.ComponentSchema{ComponentID: id, ComponentType: schema.ComponentDisplay}, nil
}

func TestCacheDeduplicatesConcurrentMisses(t *testing.T) {
	t.Parallel()

	upstream := &countingFetcher{gate: make(chan struct{})}
	cache := NewCache(upstream)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.FetchSchema(context.Background(), "task"); err != nil {
				t.Errorf("fetch: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(upstream.gate)
	wg.Wait()

	if _, err := cache.FetchSchema(context.Background(), "task"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}

	cache.Invalidate("task")
	if _, err := cache.FetchSchema(context.Background(), "task"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := upstream.calls.Load(); got != 2 {
		t.Fatalf("expected refetch after invalidate, got %d", got)
	}
}

type contextFetcher struct {
	calls atomic.Int32
	gate  chan struct{}
}

func (c *contextFetcher) FetchSchema(ctx context.Context, id string) (schema.ComponentSchema, error) {
	c.calls.Add(1)
	select {
	case <-ctx.Done():
		return schema.ComponentSchema{}, ctx.Err()
	case <-c.gate:
	}
	return schema.ComponentSchema{ComponentID: id, ComponentType: schema.ComponentDisplay}, nil
}

func TestCacheCancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	upstream := &contextFetcher{gate: make(chan struct{})}
	cache := NewCache(upstream)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.FetchSchema(first, "task")
		firstErr <- err
	}()
	for upstream.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	second := make(chan error, 1)
	go func() {
		_, err := cache.FetchSchema(context.Background(), "task")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to see context.Canceled, got %v", err)
	}
	close(upstream.gate)
	if err := <-second; err != nil {
		t.Fatalf("joined caller failed: %v", err)
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream call, got %d", got)
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	upstream := &countingFetcher{err: ErrNotFound}
	cache := NewCache(upstream)
	for i := 0; i < 2; i++ {
		if _, err := cache.FetchSchema(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if got := upstream.calls.Load(); got != 2 {
		t.Fatalf("failures must not be cached, got %d calls", got)
	}
}

func TestWatcherReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("a.json", `{"componentId":"a","name":"A","componentType":"Form"}`)

	target, _ := NewMemoryStore()
	reloads := 0
	watcher := NewWatcher(dir, target, OnReload(func() { reloads++ }))
	if err := watcher.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if target.Len() != 1 || reloads != 1 {
		t.Fatalf("expected one schema after reload, got %d (reloads %d)", target.Len(), reloads)
	}

	write("b.json", `{"componentId":"b","name":"B","componentType":"Display"}`)
	write("broken.json", `{`)
	if err := watcher.Reload(); err == nil {
		t.Fatalf("expected parse error")
	}
	if target.Len() != 1 {
		t.Fatalf("failed reload must keep previous content, got %d", target.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := watcher.Run(ctx); err != nil {
		t.Fatalf("run with cancelled context: %v", err)
	}
}
