// Package sqlstore persists component schemas and named validation rules in
// SQLite through database/sql and the pure Go modernc.org/sqlite driver.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
)

const migration = `
CREATE TABLE IF NOT EXISTS component_schemas (
	component_id   TEXT NOT NULL,
	version        TEXT NOT NULL DEFAULT '',
	name           TEXT NOT NULL DEFAULT '',
	component_type TEXT NOT NULL,
	body           TEXT NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	PRIMARY KEY (component_id, version)
);
CREATE TABLE IF NOT EXISTS validation_rules (
	rule_key TEXT PRIMARY KEY,
	body     TEXT NOT NULL
);`

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a SQLite backed schema store. Every version written is kept; reads
// return the newest by semantic version.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (and migrates) the database at dsn, for example
// "file:schemas.db" or "file::memory:".
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	s, err := New(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing handle and applies the migration.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if _, err := db.ExecContext(ctx, migration); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// FetchSchema implements store.Fetcher.
func (s *Store) FetchSchema(ctx context.Context, componentID string) (schema.ComponentSchema, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version, body FROM component_schemas WHERE component_id = ? ORDER BY updated_at`, componentID)
	if err != nil {
		return schema.ComponentSchema{}, fmt.Errorf("sqlstore: fetch %s: %w", componentID, err)
	}
	defer rows.Close()

	var (
		best    string
		body    string
		matched bool
	)
	for rows.Next() {
		var version, raw string
		if err := rows.Scan(&version, &raw); err != nil {
			return schema.ComponentSchema{}, fmt.Errorf("sqlstore: fetch %s: %w", componentID, err)
		}
		if !matched || store.Supersedes(version, best) {
			best, body, matched = version, raw, true
		}
	}
	if err := rows.Err(); err != nil {
		return schema.ComponentSchema{}, fmt.Errorf("sqlstore: fetch %s: %w", componentID, err)
	}
	if !matched {
		return schema.ComponentSchema{}, fmt.Errorf("%w: %s", store.ErrNotFound, componentID)
	}

	var out schema.ComponentSchema
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return schema.ComponentSchema{}, fmt.Errorf("sqlstore: decode %s@%s: %w", componentID, best, err)
	}
	return out, nil
}

// PutSchema implements store.Writer. Writing the same id and version again
// replaces that row.
func (s *Store) PutSchema(ctx context.Context, component schema.ComponentSchema) error {
	if err := store.Validate(component); err != nil {
		return err
	}
	body, err := json.Marshal(component)
	if err != nil {
		return fmt.Errorf("sqlstore: encode %s: %w", component.ComponentID, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO component_schemas (component_id, version, name, component_type, body, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (component_id, version) DO UPDATE SET
	name = excluded.name,
	component_type = excluded.component_type,
	body = excluded.body,
	updated_at = excluded.updated_at`,
		component.ComponentID, component.Version, component.Name, string(component.ComponentType), string(body), s.now().UTC())
	if err != nil {
		return fmt.Errorf("sqlstore: put %s: %w", component.ComponentID, err)
	}
	s.logger.Debug("sqlstore: schema stored",
		zap.String("component", component.ComponentID),
		zap.String("version", component.Version))
	return nil
}

// DeleteSchema implements store.Writer and removes every version.
func (s *Store) DeleteSchema(ctx context.Context, componentID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM component_schemas WHERE component_id = ?`, componentID)
	if err != nil {
		return fmt.Errorf("sqlstore: delete %s: %w", componentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: delete %s: %w", componentID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, componentID)
	}
	return nil
}

// ListSchemas implements store.Writer with one summary per component, at its
// newest version.
func (s *Store) ListSchemas(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT component_id, version, name, component_type FROM component_schemas ORDER BY component_id, updated_at`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list: %w", err)
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		var summary store.Summary
		var componentType string
		if err := rows.Scan(&summary.ComponentID, &summary.Version, &summary.Name, &componentType); err != nil {
			return nil, fmt.Errorf("sqlstore: list: %w", err)
		}
		summary.ComponentType = schema.ComponentType(componentType)

		last := len(out) - 1
		if last >= 0 && out[last].ComponentID == summary.ComponentID {
			if store.Supersedes(summary.Version, out[last].Version) {
				out[last] = summary
			}
			continue
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: list: %w", err)
	}
	return out, nil
}

// PutRule stores a named validation rule.
func (s *Store) PutRule(ctx context.Context, key string, rule schema.ValidationRule) error {
	body, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("sqlstore: encode rule %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_rules (rule_key, body) VALUES (?, ?)
ON CONFLICT (rule_key) DO UPDATE SET body = excluded.body`, key, string(body))
	if err != nil {
		return fmt.Errorf("sqlstore: put rule %s: %w", key, err)
	}
	return nil
}

// LookupRule implements validation.RuleLookup. Database errors are logged and
// reported as a miss.
func (s *Store) LookupRule(key string) (schema.ValidationRule, bool) {
	var body string
	err := s.db.QueryRowContext(context.Background(),
		`SELECT body FROM validation_rules WHERE rule_key = ?`, key).Scan(&body)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("sqlstore: rule lookup failed", zap.String("rule", key), zap.Error(err))
		}
		return schema.ValidationRule{}, false
	}
	var rule schema.ValidationRule
	if err := json.Unmarshal([]byte(body), &rule); err != nil {
		s.logger.Error("sqlstore: rule decode failed", zap.String("rule", key), zap.Error(err))
		return schema.ValidationRule{}, false
	}
	return rule, true
}
