// Package server is the preview HTTP server. It renders components by id,
// keeps UI state and form data in server side sessions and forwards actions
// and submissions to the orchestrator.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	"github.com/goliatone/go-schemaui/pkg/render"
	htmlrenderer "github.com/goliatone/go-schemaui/pkg/renderers/html"
	textrenderer "github.com/goliatone/go-schemaui/pkg/renderers/text"
)

const (
	// ComponentsPath prefixes every component route.
	ComponentsPath = "/components"
	// AssetsPath serves the built-in stylesheet.
	AssetsPath = "/assets"

	defaultSessionTTL = 30 * time.Minute
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTheme selects the default theme and variant for HTML pages. Requests
// may override both with the theme and variant query parameters.
func WithTheme(name, variant string) Option {
	return func(s *Server) {
		s.theme = name
		s.variant = variant
	}
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithInitialData seeds every new session's data context.
func WithInitialData(data map[string]any) Option {
	return func(s *Server) {
		s.data = data
	}
}

// WithClock overrides time.Now for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server serves rendered components over HTTP.
type Server struct {
	orch    *orchestrator.Orchestrator
	logger  *zap.Logger
	theme   string
	variant string
	ttl     time.Duration
	data    map[string]any
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	rootID   string
	session  *orchestrator.Session
	lastUsed time.Time
}

// New builds a server on top of orch. The html and text renderers are
// registered on the orchestrator's registry when missing.
func New(orch *orchestrator.Orchestrator, options ...Option) (*Server, error) {
	if orch == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	s := &Server{
		orch:     orch,
		logger:   zap.NewNop(),
		ttl:      defaultSessionTTL,
		now:      time.Now,
		sessions: map[string]*entry{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	registry := orch.Registry()
	if !registry.Has(htmlrenderer.Name) {
		renderer, err := htmlrenderer.New(htmlrenderer.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	if !registry.Has(textrenderer.Name) {
		if err := registry.Register(textrenderer.New()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route(ComponentsPath, func(r chi.Router) {
		r.Get("/{id}", s.handleRender)
		r.Post("/{id}/actions/{actionKey}", s.handleAction)
		r.Post("/{id}/submit", s.handleSubmit)
	})

	assets := htmlrenderer.AssetsFS()
	r.Handle(AssetsPath+"/*", http.StripPrefix(AssetsPath, http.FileServer(http.FS(assets))))
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("server: listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", s.now().Sub(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// session returns the session named by id when it is still alive and was
// opened for rootID, otherwise it opens a new one.
func (s *Server) session(ctx context.Context, id, rootID string) (string, *orchestrator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.sessions {
		if now.Sub(e.lastUsed) > s.ttl {
			delete(s.sessions, key)
		}
	}

	if e, ok := s.sessions[id]; ok && (rootID == "" || e.rootID == rootID) {
		e.lastUsed = now
		return id, e.session
	}

	id = newSessionID()
	sess := s.orch.Open(context.WithoutCancel(ctx), orchestrator.Request{
		ComponentID: rootID,
		Data:        s.data,
	})
	s.sessions[id] = &entry{rootID: rootID, session: sess, lastUsed: now}
	return id, sess
}

// lookup returns an existing session without opening one.
func (s *Server) lookup(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || s.now().Sub(e.lastUsed) > s.ttl {
		return nil, false
	}
	e.lastUsed = s.now()
	return e, true
}

func (s *Server) renderOptions(r *http.Request, sessionID, title string) render.RenderOptions {
	opts := render.RenderOptions{
		Theme:      s.theme,
		Variant:    s.variant,
		Standalone: true,
		Title:      title,
		ActionBase: ComponentsPath,
		Session:    sessionID,
	}
	query := r.URL.Query()
	if theme := query.Get("theme"); theme != "" {
		opts.Theme = theme
	}
	if variant := query.Get("variant"); variant != "" {
		opts.Variant = variant
	}
	return opts
}

func newSessionID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(buf)
}

// AcceptConfirmations is the confirmer for browser driven sessions: the page
// asks for confirmation before it posts, so a posted action is confirmed.
func AcceptConfirmations(context.Context, string) (bool, error) {
	return true, nil
}
