package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/testsupport"
)

func reviewSchemas() []schema.ComponentSchema {
	return []schema.ComponentSchema{
		{
			ComponentID:   "task_view",
			ComponentType: schema.ComponentDisplay,
			Title:         "Task {{task_reference}}",
			Actions: []schema.ActionButton{
				{ActionKey: "request_review", Label: "Request review", VisibleIf: "!uiState.showReviewForm"},
			},
			Layout: &schema.LayoutConfig{
				Type: schema.LayoutGrid,
				Areas: []schema.LayoutArea{
					{Component: "summary", VisibleIf: "!uiState.showReviewForm"},
					{Component: "review_form", VisibleIf: "uiState.showReviewForm"},
				},
			},
		},
		{
			ComponentID:   "summary",
			ComponentType: schema.ComponentDisplay,
			CustomProps: map[string]any{
				"displayType": "card",
				"fields":      []any{map[string]any{"key": "task_reference", "label": "Reference"}},
			},
		},
		{
			ComponentID:   "review_form",
			ComponentType: schema.ComponentForm,
			Fields: []schema.Field{
				{FieldKey: "notes", Label: "Notes", Type: schema.FieldTextarea, Required: true},
				{FieldKey: "urgent", Label: "Urgent", Type: schema.FieldBoolean},
			},
		},
	}
}

func newTestServer(t *testing.T, options ...Option) (*Server, *testsupport.Recorder) {
	t.Helper()
	recorder := &testsupport.Recorder{}
	orch := orchestrator.New(
		orchestrator.WithFetcher(testsupport.MemoryStore(t, reviewSchemas()...)),
		orchestrator.WithDispatcher(recorder),
		orchestrator.WithSubmitter(recorder),
		orchestrator.WithConfirmer(actions.ConfirmFunc(AcceptConfirmations)),
	)
	options = append([]Option{WithInitialData(map[string]any{"task_reference": "T-7"})}, options...)
	srv, err := New(orch, options...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, recorder
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if method == http.MethodPost {
		req.Header.Set("Accept", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeOutcome(t *testing.T, rec *httptest.ResponseRecorder) outcomeResponse {
	t.Helper()
	var out outcomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestRenderUnknownComponent(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/components/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Header().Get(SessionHeader) == "" {
		t.Fatalf("expected a session header")
	}
}

func TestReviewFlowOverHTTP(t *testing.T) {
	t.Parallel()

	srv, recorder := newTestServer(t)
	h := srv.Handler()

	page := do(t, h, http.MethodGet, "/components/task_view", nil)
	if page.Code != http.StatusOK {
		t.Fatalf("render: %d %s", page.Code, page.Body.String())
	}
	if ct := page.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := page.Body.String()
	for _, want := range []string{"Task T-7", "Request review", "/components/task_view/actions/request_review"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}
	session := page.Header().Get(SessionHeader)

	triggered := decodeOutcome(t, do(t, h, http.MethodPost,
		"/components/task_view/actions/request_review?session="+session, nil))
	if triggered.Outcome != string(actions.OutcomeDispatched) || triggered.Session != session {
		t.Fatalf("unexpected trigger response %+v", triggered)
	}

	text := do(t, h, http.MethodGet, "/components/task_view.txt?session="+session, nil)
	if !strings.Contains(text.Body.String(), "Notes") || strings.Contains(text.Body.String(), "Reference") {
		t.Fatalf("expected the review form in place of the summary:\n%s", text.Body.String())
	}

	invalid := do(t, h, http.MethodPost, "/components/review_form/submit?session="+session, url.Values{"notes": {""}})
	if got := decodeOutcome(t, invalid); got.Outcome != string(form.OutcomeInvalid) {
		t.Fatalf("expected invalid outcome, got %+v", got)
	}

	blocked := do(t, h, http.MethodPost, "/components/review_form/actions/submit?session="+session, url.Values{"notes": {""}})
	if blocked.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for an invalid submit action, got %d", blocked.Code)
	}
	if got := decodeOutcome(t, blocked); got.Outcome != string(actions.OutcomeBlocked) {
		t.Fatalf("expected blocked outcome, got %+v", got)
	}

	submitted := do(t, h, http.MethodPost, "/components/review_form/submit?session="+session,
		url.Values{"notes": {"Looks fine"}, "urgent": {"on"}})
	if got := decodeOutcome(t, submitted); got.Outcome != string(form.OutcomeSubmitted) {
		t.Fatalf("expected submitted outcome, got %+v", got)
	}

	if diff := cmp.Diff([]string{"request_review", "submit"}, recorder.Keys()); diff != "" {
		t.Fatalf("recorded calls mismatch (-want +got):\n%s", diff)
	}
	payload := recorder.Calls()[1].Data
	if payload["notes"] != "Looks fine" || payload["urgent"] != true {
		t.Fatalf("unexpected submission payload %#v", payload)
	}

	after := do(t, h, http.MethodGet, "/components/task_view.txt?session="+session, nil)
	if !strings.Contains(after.Body.String(), "Reference") {
		t.Fatalf("expected summary after submit:\n%s", after.Body.String())
	}
}

func TestBrowserPostsRedirectBackToPage(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	h := srv.Handler()

	page := do(t, h, http.MethodGet, "/components/task_view", nil)
	session := page.Header().Get(SessionHeader)

	req := httptest.NewRequest(http.MethodPost, "/components/task_view/actions/request_review?session="+session, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	want := "/components/task_view?session=" + session
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("location = %q, want %q", got, want)
	}
}

func TestExpiredSessionsAreReplaced(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	srv, _ := newTestServer(t, WithSessionTTL(time.Minute), WithClock(func() time.Time { return now }))
	h := srv.Handler()

	first := do(t, h, http.MethodGet, "/components/task_view", nil).Header().Get(SessionHeader)
	same := do(t, h, http.MethodGet, "/components/task_view?session="+first, nil).Header().Get(SessionHeader)
	if same != first {
		t.Fatalf("expected session reuse, got %q and %q", first, same)
	}

	now = now.Add(2 * time.Minute)
	fresh := do(t, h, http.MethodGet, "/components/task_view?session="+first, nil).Header().Get(SessionHeader)
	if fresh == first {
		t.Fatalf("expected a new session after expiry")
	}
}

func TestAssetsServeStylesheet(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/assets/schemaui.css", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), ".sui-") {
		t.Fatalf("unexpected asset response %d", rec.Code)
	}
}

func TestDecodeField(t *testing.T) {
	t.Parallel()

	options := []schema.FieldOption{{Label: "One", Value: float64(1)}, {Label: "Two", Value: "two"}}
	cases := []struct {
		name   string
		field  schema.Field
		values url.Values
		want   any
		ok     bool
	}{
		{"unchecked boolean", schema.Field{FieldKey: "b", Type: schema.FieldBoolean}, url.Values{}, false, true},
		{"checked boolean", schema.Field{FieldKey: "b", Type: schema.FieldBoolean}, url.Values{"b": {"on"}}, true, true},
		{"number", schema.Field{FieldKey: "n", Type: schema.FieldNumber}, url.Values{"n": {" 4.5 "}}, 4.5, true},
		{"blank number", schema.Field{FieldKey: "n", Type: schema.FieldNumber}, url.Values{"n": {""}}, nil, true},
		{"bad number", schema.Field{FieldKey: "n", Type: schema.FieldNumber}, url.Values{"n": {"x"}}, "x", true},
		{"select typed", schema.Field{FieldKey: "s", Type: schema.FieldSelect, Options: options}, url.Values{"s": {"1"}}, float64(1), true},
		{"multi select", schema.Field{FieldKey: "m", Type: schema.FieldMultiSelect, Options: options}, url.Values{"m": {"1", "two"}}, []any{float64(1), "two"}, true},
		{"absent text", schema.Field{FieldKey: "t", Type: schema.FieldText}, url.Values{}, nil, false},
		{"file", schema.Field{FieldKey: "f", Type: schema.FieldFile}, url.Values{"f": {"x"}}, nil, false},
	}
	for _, tc := range cases {
		got, ok := decodeField(tc.field, tc.values)
		if ok != tc.ok {
			t.Fatalf("%s: ok = %v, want %v", tc.name, ok, tc.ok)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: value mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}
