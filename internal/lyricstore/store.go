// Package lyricstore caches fetched lyrics in SQLite so repeated runs
// for the same song skip the network entirely.
package lyricstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes; a mismatched cache
// is simply stale and can be deleted.
const schemaVersion = 1

// ErrMiss means the song is not cached.
var ErrMiss = errors.New("lyricstore: cache miss")

// Store is the lyrics cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the cache database inside cacheDir.
func Open(cacheDir string) (*Store, error) {
	dbPath := filepath.Join(cacheDir, "lyrics.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("lyricstore: open db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("lyricstore: apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("lyricstore: check schema_version table: %w", err)
	}
	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("lyricstore: create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("lyricstore: read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("lyricstore: cache at %s has schema version %d, expected %d (delete the file to rebuild)",
			s.path, version, schemaVersion)
	}
	return nil
}

// Get returns cached lyrics for the song, or ErrMiss.
func (s *Store) Get(ctx context.Context, artist, title string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM lyrics WHERE artist = ? AND title = ?",
		normalize(artist), normalize(title),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s - %s", ErrMiss, artist, title)
	}
	if err != nil {
		return "", fmt.Errorf("lyricstore: get: %w", err)
	}
	return body, nil
}

// Put stores lyrics for the song, replacing any previous entry.
func (s *Store) Put(ctx context.Context, artist, title, body, source string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lyrics (artist, title, body, source, fetched_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(artist, title) DO UPDATE SET
           body = excluded.body,
           source = excluded.source,
           fetched_at = excluded.fetched_at`,
		normalize(artist), normalize(title), body, source,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("lyricstore: put: %w", err)
	}
	return nil
}

// Delete removes a cached entry. Removing an absent entry is not an error.
func (s *Store) Delete(ctx context.Context, artist, title string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM lyrics WHERE artist = ? AND title = ?",
		normalize(artist), normalize(title),
	); err != nil {
		return fmt.Errorf("lyricstore: delete: %w", err)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
