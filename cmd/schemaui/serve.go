package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-schemaui/internal/server"
	"github.com/goliatone/go-schemaui/pkg/actions"
	"github.com/goliatone/go-schemaui/pkg/form"
	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	"github.com/goliatone/go-schemaui/pkg/store"
)

type serveFlags struct {
	addr       string
	watch      bool
	dataFile   string
	theme      string
	variant    string
	sessionTTL time.Duration
}

func newServeCmd(a *app) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered components over HTTP",
		Long: `Serve starts the preview server:

  GET  /components/{id}                      HTML page
  GET  /components/{id}.txt                  plain text
  POST /components/{id}/actions/{actionKey}  trigger an action
  POST /components/{id}/submit               submit a form
  GET  /healthz

Dispatched actions and submitted forms are written to the log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a, f)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Reload the schema directory when files change")
	cmd.Flags().StringVarP(&f.dataFile, "data", "d", "", "Data context file for new sessions")
	cmd.Flags().StringVar(&f.theme, "theme", "", "Default theme name")
	cmd.Flags().StringVar(&f.variant, "variant", "", "Default theme variant")
	cmd.Flags().DurationVar(&f.sessionTTL, "session-ttl", 30*time.Minute, "Idle session lifetime")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, f *serveFlags) error {
	if !cmd.Flags().Changed("addr") {
		fromEnvDefault(&f.addr, envAddr)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := readData(f.dataFile)
	if err != nil {
		return err
	}
	src, err := a.openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	cache := store.NewCache(src.fetcher)
	orch, err := a.orchestrator(src,
		orchestrator.WithFetcher(cache),
		orchestrator.WithDispatcher(actions.DispatchFunc(logDispatch(a.logger))),
		orchestrator.WithSubmitter(form.SubmitFunc(logSubmit(a.logger))),
		orchestrator.WithConfirmer(actions.ConfirmFunc(server.AcceptConfirmations)),
	)
	if err != nil {
		return err
	}

	if f.watch && src.memory != nil {
		watcher := store.NewWatcher(a.schemasDir, src.memory,
			store.WithWatchLogger(a.logger),
			store.OnReload(cache.Purge),
		)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				a.logger.Error("schemaui: watcher stopped", zap.Error(err))
			}
		}()
	}

	srv, err := server.New(orch,
		server.WithLogger(a.logger),
		server.WithTheme(f.theme, f.variant),
		server.WithSessionTTL(f.sessionTTL),
		server.WithInitialData(data),
	)
	if err != nil {
		return err
	}
	return srv.Run(ctx, f.addr)
}

func logDispatch(logger *zap.Logger) func(context.Context, string, map[string]any) error {
	return func(_ context.Context, actionKey string, data map[string]any) error {
		logger.Info("schemaui: action dispatched", zap.String("action", actionKey), zap.Any("data", data))
		return nil
	}
}

func logSubmit(logger *zap.Logger) func(context.Context, map[string]any) error {
	return func(_ context.Context, data map[string]any) error {
		logger.Info("schemaui: form submitted", zap.Any("data", data))
		return nil
	}
}
