package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	htmlrenderer "github.com/goliatone/go-schemaui/pkg/renderers/html"
	textrenderer "github.com/goliatone/go-schemaui/pkg/renderers/text"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
)

// SessionHeader carries the session id on every component response.
const SessionHeader = "X-Schemaui-Session"

const textSuffix = ".txt"

type outcomeResponse struct {
	Session string `json:"session"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	format := htmlrenderer.Name
	if strings.HasSuffix(id, textSuffix) {
		id = strings.TrimSuffix(id, textSuffix)
		format = textrenderer.Name
	}

	query := r.URL.Query()
	sessionID, sess := s.session(ctx, query.Get("session"), id)
	if err := sess.Wait(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if tab := query.Get("tab"); tab != "" {
		if componentID, key, ok := strings.Cut(tab, ":"); ok {
			sess.SelectTab(componentID, key)
		}
	}

	opts := s.renderOptions(r, sessionID, id)
	if format == textrenderer.Name {
		opts.Standalone = false
		opts.ActionBase = ""
	}
	out, err := sess.Render(ctx, format, opts)
	if err != nil {
		s.logger.Error("server: render failed", zap.String("component", id), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	if renderer, err := s.orch.Registry().Get(format); err == nil {
		w.Header().Set("Content-Type", renderer.ContentType())
	}
	w.Header().Set(SessionHeader, sessionID)
	w.WriteHeader(statusFor(sess.Status()))
	_, _ = w.Write(out)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	actionKey := chi.URLParam(r, "actionKey")

	sessionID, rootID, sess, ok := s.prepare(w, r, id)
	if !ok {
		return
	}
	outcome, err := sess.Trigger(ctx, id, actionKey)
	if err != nil && !errors.Is(err, actions.ErrBlocked) {
		s.logger.Warn("server: action failed",
			zap.String("component", id), zap.String("action", actionKey), zap.Error(err))
	}
	s.respond(w, r, rootID, outcomeResponse{Session: sessionID, Outcome: string(outcome)}, err)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	sessionID, rootID, sess, ok := s.prepare(w, r, id)
	if !ok {
		return
	}
	outcome, err := sess.Submit(ctx, id)
	if err != nil && !errors.Is(err, form.ErrSubmitInFlight) {
		s.logger.Error("server: submit failed", zap.String("component", id), zap.Error(err))
	}
	s.respond(w, r, rootID, outcomeResponse{Session: sessionID, Outcome: string(outcome)}, err)
}

// prepare resolves the request's session and copies posted field values into
// the target form.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request, componentID string) (string, string, *orchestrator.Session, bool) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("session")
	var (
		rootID string
		sess   *orchestrator.Session
	)
	if e, ok := s.lookup(sessionID); ok {
		rootID, sess = e.rootID, e.session
	} else {
		rootID = componentID
		sessionID, sess = s.session(ctx, "", componentID)
	}
	if err := sess.Wait(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return "", "", nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return "", "", nil, false
	}
	if len(r.PostForm) > 0 {
		if err := s.applyForm(ctx, sess, componentID, r.PostForm); err != nil {
			writeJSON(w, errorStatus(err), outcomeResponse{Session: sessionID, Error: err.Error()})
			return "", "", nil, false
		}
	}
	return sessionID, rootID, sess, true
}

func (s *Server) applyForm(ctx context.Context, sess *orchestrator.Session, componentID string, values url.Values) error {
	component, err := s.component(ctx, sess, componentID)
	if err != nil {
		return err
	}
	if component.ComponentType != schema.ComponentForm {
		return nil
	}
	for _, field := range component.Fields {
		value, ok := decodeField(field, values)
		if !ok {
			continue
		}
		if err := sess.Change(ctx, componentID, field.FieldKey, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) component(ctx context.Context, sess *orchestrator.Session, componentID string) (schema.ComponentSchema, error) {
	root, ok := sess.Schema()
	if !ok {
		return schema.ComponentSchema{}, orchestrator.ErrNotReady
	}
	if componentID == "" || componentID == root.ComponentID {
		return root, nil
	}
	fetcher := s.orch.Fetcher()
	if fetcher == nil {
		return schema.ComponentSchema{}, store.ErrNotFound
	}
	return fetcher.FetchSchema(ctx, componentID)
}

// respond answers JSON clients with the outcome and redirects browsers back
// to the page the session renders.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, rootID string, body outcomeResponse, err error) {
	status := http.StatusOK
	if err != nil {
		body.Error = err.Error()
		status = errorStatus(err)
	}
	if wantsJSON(r) {
		writeJSON(w, status, body)
		return
	}
	target := ComponentsPath + "/" + url.PathEscape(rootID) + "?session=" + url.QueryEscape(body.Session)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func statusFor(status orchestrator.Status) int {
	switch status {
	case orchestrator.StatusEmpty:
		return http.StatusNotFound
	case orchestrator.StatusFailed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrNotReady), errors.Is(err, form.ErrSubmitInFlight):
		return http.StatusConflict
	case errors.Is(err, form.ErrInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
