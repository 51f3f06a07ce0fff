// Package postgres serves timelines and the person directory from Postgres.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/joshharrison/gantry/internal/store"
	"github.com/joshharrison/gantry/internal/timeline"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements store.TimelineStore and store.PersonDirectory.
type Store struct {
	Pool *pgxpool.Pool
}

// Connect opens a pool and verifies the connection.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{Pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.Pool.Close() }

// Migrate applies the embedded schema migrations and returns the versions
// that were applied.
func (s *Store) Migrate(ctx context.Context) ([]int64, error) {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDBFromPool(s.Pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}

// Projects lists projects with at least one stored version.
func (s *Store) Projects(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT DISTINCT project_id FROM project_timelines ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Versions lists a project's versions, oldest first.
func (s *Store) Versions(ctx context.Context, project string) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT version FROM project_timelines WHERE project_id = $1`, project)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("project %s: %w", project, store.ErrNotFound)
	}
	store.SortVersions(out)
	return out, nil
}

// Timeline loads one version, or the latest when version is empty.
func (s *Store) Timeline(ctx context.Context, project, version string) (*store.Document, error) {
	if version == "" {
		vs, err := s.Versions(ctx, project)
		if err != nil {
			return nil, err
		}
		version = store.Latest(vs)
	}

	var body []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT body::text FROM project_timelines WHERE project_id = $1 AND version = $2`,
		project, version,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %s version %s: %w", project, version, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}

	tl, err := timeline.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("project %s version %s: %w", project, version, err)
	}
	return &store.Document{Project: project, Version: version, Timeline: tl}, nil
}

// Labels reads the people table.
func (s *Store) Labels(ctx context.Context) (map[string]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, display_name FROM people`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		if name != "" {
			labels[id] = name
		}
	}
	return labels, rows.Err()
}

var (
	_ store.TimelineStore   = (*Store)(nil)
	_ store.PersonDirectory = (*Store)(nil)
)
