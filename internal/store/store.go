// Package store persists build events in a local SQLite database. Every
// discovered artifact is recorded as a build event (project, language,
// artifact path, size); queries aggregate those events into the history,
// chart, and retention views the UI needs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// BuildEvent is one recorded build occurrence for a project.
type BuildEvent struct {
	ProjectPath  string
	Language     string
	ArtifactPath string
	SizeBytes    int64
	BuildTime    time.Time
}

// PathSize pairs an artifact path with its maximum recorded size.
type PathSize struct {
	ArtifactPath string
	SizeBytes    int64
}

// Store is the SQLite-backed artifact store.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	project_path  TEXT NOT NULL,
	language      TEXT NOT NULL,
	artifact_path TEXT NOT NULL,
	size_bytes    INTEGER NOT NULL,
	build_time    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_builds_artifact ON builds(artifact_path);
CREATE INDEX IF NOT EXISTS idx_builds_time ON builds(build_time);
`

// Open opens (creating if necessary) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertBuild records a build event with the current timestamp.
func (s *Store) InsertBuild(ctx context.Context, projectPath, language, artifactPath string, sizeBytes int64) error {
	return s.insertBuildAt(ctx, projectPath, language, artifactPath, sizeBytes, time.Now().UTC())
}

func (s *Store) insertBuildAt(ctx context.Context, projectPath, language, artifactPath string, sizeBytes int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds(project_path, language, artifact_path, size_bytes, build_time) VALUES(?, ?, ?, ?, ?)`,
		projectPath, language, artifactPath, sizeBytes, at)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// RecentArtifacts returns up to limit distinct artifact paths ordered by the
// time of their most recent build event, newest first.
func (s *Store) RecentArtifacts(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT artifact_path FROM builds GROUP BY artifact_path ORDER BY MAX(build_time) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent artifacts: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan artifact path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// RecentBuilds returns up to limit build events, newest first.
func (s *Store) RecentBuilds(ctx context.Context, limit int) ([]BuildEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_path, language, artifact_path, size_bytes, build_time
		 FROM builds ORDER BY build_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent builds: %w", err)
	}
	defer rows.Close()

	var events []BuildEvent
	for rows.Next() {
		var ev BuildEvent
		if err := rows.Scan(&ev.ProjectPath, &ev.Language, &ev.ArtifactPath, &ev.SizeBytes, &ev.BuildTime); err != nil {
			return nil, fmt.Errorf("scan build event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountBuilds returns the total number of recorded build events.
func (s *Store) CountBuilds(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count builds: %w", err)
	}
	return n, nil
}

// MaxSizes returns, per artifact path, the maximum recorded size, largest
// first.
func (s *Store) MaxSizes(ctx context.Context) ([]PathSize, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT artifact_path, MAX(size_bytes) AS size FROM builds GROUP BY artifact_path ORDER BY size DESC`)
	if err != nil {
		return nil, fmt.Errorf("query max sizes: %w", err)
	}
	defer rows.Close()

	var sizes []PathSize
	for rows.Next() {
		var ps PathSize
		if err := rows.Scan(&ps.ArtifactPath, &ps.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan path size: %w", err)
		}
		sizes = append(sizes, ps)
	}
	return sizes, rows.Err()
}

// DeleteByPath removes all build events for an exact artifact path.
func (s *Store) DeleteByPath(ctx context.Context, artifactPath string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM builds WHERE artifact_path = ?`, artifactPath); err != nil {
		return fmt.Errorf("delete builds for %s: %w", artifactPath, err)
	}
	return nil
}

// DeleteAll removes every build event.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM builds`); err != nil {
		return fmt.Errorf("delete all builds: %w", err)
	}
	return nil
}

// StalePaths returns artifact paths whose most recent build event is older
// than the given number of days.
func (s *Store) StalePaths(ctx context.Context, days int) ([]string, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT artifact_path FROM builds GROUP BY artifact_path HAVING MAX(build_time) < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query stale paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan stale path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DeleteOlderThan removes build events older than the given number of days.
func (s *Store) DeleteOlderThan(ctx context.Context, days int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM builds WHERE build_time < ?`, cutoff); err != nil {
		return fmt.Errorf("delete old builds: %w", err)
	}
	return nil
}
