package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaui/internal/logging"
	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	htmlrenderer "github.com/goliatone/go-schemaui/pkg/renderers/html"
	textrenderer "github.com/goliatone/go-schemaui/pkg/renderers/text"
	"github.com/goliatone/go-schemaui/pkg/renderers/tui"
	"github.com/goliatone/go-schemaui/pkg/store"
	"github.com/goliatone/go-schemaui/pkg/store/sqlstore"
	"github.com/goliatone/go-schemaui/pkg/validation"
)

// Environment variables read when the matching flag is not set.
const (
	envSchemas  = "SCHEMAUI_SCHEMAS"
	envDB       = "SCHEMAUI_DB"
	envAddr     = "SCHEMAUI_ADDR"
	envLogFile  = "SCHEMAUI_LOG_FILE"
	envLogLevel = "SCHEMAUI_LOG_LEVEL"
)

// app holds the global flags and the collaborators built from them.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// driver answers fill prompts; nil uses survey on the terminal.
	driver tui.PromptDriver

	envFile    string
	schemasDir string
	dbPath     string
	logFile    string
	logLevel   string

	logger *zap.Logger
	flush  func()
}

// setup loads the env file, fills unset flags from the environment and builds
// the logger. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	envFile := a.envFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && (a.envFile != "" || !errors.Is(err, os.ErrNotExist)) {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}

	flags := cmd.Flags()
	fromEnv := func(flag, env string, target *string) {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			return
		}
		if value := os.Getenv(env); value != "" {
			*target = value
		}
	}
	fromEnv("schemas", envSchemas, &a.schemasDir)
	fromEnv("db", envDB, &a.dbPath)
	fromEnv("log-file", envLogFile, &a.logFile)
	fromEnv("log-level", envLogLevel, &a.logLevel)

	logger, flush, err := logging.New(logging.Config{
		File:    a.logFile,
		Level:   a.logLevel,
		Console: a.stderr,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.flush = flush
	return nil
}

func (a *app) close() {
	if a.flush != nil {
		a.flush()
	}
}

// source is where schemas come from: the SQLite store when a database is
// configured, otherwise the schema directory.
type source struct {
	fetcher store.Fetcher
	rules   validation.RuleLookup
	memory  *store.MemoryStore
	sql     *sqlstore.Store
}

func (s *source) Close() error {
	if s.sql != nil {
		return s.sql.Close()
	}
	return nil
}

func (a *app) openSource(ctx context.Context) (*source, error) {
	switch {
	case a.dbPath != "":
		db, err := sqlstore.Open(ctx, dsn(a.dbPath), sqlstore.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		return &source{fetcher: db, rules: db, sql: db}, nil
	case a.schemasDir != "":
		mem, err := store.LoadFS(os.DirFS(a.schemasDir))
		if err != nil {
			return nil, err
		}
		return &source{fetcher: mem, rules: mem, memory: mem}, nil
	default:
		return nil, fmt.Errorf("no schema source: set --schemas or --db (or %s / %s)", envSchemas, envDB)
	}
}

// openWriter opens the SQLite store for the store subcommands.
func (a *app) openWriter(ctx context.Context) (*sqlstore.Store, error) {
	if a.dbPath == "" {
		return nil, fmt.Errorf("store commands need --db (or %s)", envDB)
	}
	return sqlstore.Open(ctx, dsn(a.dbPath), sqlstore.WithLogger(a.logger))
}

func dsn(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path
}

// orchestrator wires the source and the html and text renderers.
func (a *app) orchestrator(src *source, options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	opts := []orchestrator.Option{
		orchestrator.WithFetcher(src.fetcher),
		orchestrator.WithRuleLookup(src.rules),
		orchestrator.WithLogger(a.logger),
	}
	orch := orchestrator.New(append(opts, options...)...)

	registry := orch.Registry()
	if !registry.Has(htmlrenderer.Name) {
		html, err := htmlrenderer.New(htmlrenderer.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		if err := registry.Register(html); err != nil {
			return nil, err
		}
	}
	if !registry.Has(textrenderer.Name) {
		if err := registry.Register(textrenderer.New()); err != nil {
			return nil, err
		}
	}
	return orch, nil
}

// readData loads a data context file. JSON may carry comments; .yaml and
// .yml files are decoded as YAML.
func readData(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data %s: %w", path, err)
	}
	data := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode data %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(raw), &data); err != nil {
			return nil, fmt.Errorf("decode data %s: %w", path, err)
		}
	}
	return data, nil
}

// writeOutput writes to path, or to the command's stdout when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(a.stderr, "written to %s\n", path)
	return nil
}

func fromEnvDefault(target *string, env string) {
	if value := os.Getenv(env); value != "" {
		*target = value
	}
}
