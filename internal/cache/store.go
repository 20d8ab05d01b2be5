// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists serialized values in SQLite, keyed by namespace and
// key. The analysis service uses it as a read-through cache of result
// bundles (namespace author_stats) and author searches (namespace queries).
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

// Namespaces used by the analysis service.
const (
	NamespaceAuthorStats = "author_stats"
	NamespaceQueries     = "queries"
)

// timeFormat is fixed-width so updated_at compares lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrSerialization indicates that a value could not be encoded or decoded.
var ErrSerialization = errors.New("cache serialization failed")

// Store manages the cache database.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Entry describes one cached value without its payload.
type Entry struct {
	Namespace string    `json:"namespace" yaml:"namespace"`
	Key       string    `json:"key" yaml:"key"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
	Size      int       `json:"size" yaml:"size"`
	Expired   bool      `json:"expired" yaml:"expired"`
}

// NewStore opens or creates the cache database at cfg.Path and creates the
// schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, ttl: cfg.TTL, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			payload BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (namespace, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_updated_at ON entries(updated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get decodes the value stored under (namespace, key) into out. It reports
// false when the entry is missing or older than the configured TTL.
func (s *Store) Get(ctx context.Context, namespace, key string, out any) (bool, error) {
	var (
		payload   []byte
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, updated_at FROM entries WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s/%s: %w", namespace, key, err)
	}

	if s.expired(parseTime(updatedAt)) {
		return false, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("%w: decoding %s/%s: %v", ErrSerialization, namespace, key, err)
	}
	return true, nil
}

// Set encodes v as JSON and upserts it under (namespace, key).
func (s *Store) Set(ctx context.Context, namespace, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encoding %s/%s: %v", ErrSerialization, namespace, key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entries (namespace, key, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET
			payload=excluded.payload, updated_at=excluded.updated_at`,
		namespace, key, payload, s.now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes one entry. Deleting a missing entry is not an error.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE namespace = ? AND key = ?`, namespace, key,
	); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// List returns the entries of namespace ordered by key. An empty namespace
// lists every entry.
func (s *Store) List(ctx context.Context, namespace string) ([]Entry, error) {
	query := `SELECT namespace, key, length(payload), updated_at FROM entries`
	var args []any
	if namespace != "" {
		query += ` WHERE namespace = ?`
		args = append(args, namespace)
	}
	query += ` ORDER BY namespace, key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			updatedAt string
		)
		if err := rows.Scan(&e.Namespace, &e.Key, &e.Size, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.UpdatedAt = parseTime(updatedAt)
		e.Expired = s.expired(e.UpdatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge deletes every entry of namespace (all entries when namespace is
// empty). With expiredOnly it keeps entries still within the TTL. It returns
// the number of rows removed.
func (s *Store) Purge(ctx context.Context, namespace string, expiredOnly bool) (int64, error) {
	query := `DELETE FROM entries WHERE 1=1`
	var args []any
	if namespace != "" {
		query += ` AND namespace = ?`
		args = append(args, namespace)
	}
	if expiredOnly {
		if s.ttl <= 0 {
			return 0, nil
		}
		query += ` AND updated_at < ?`
		args = append(args, s.now().Add(-s.ttl).UTC().Format(timeFormat))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purging entries: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) expired(updatedAt time.Time) bool {
	return s.ttl > 0 && s.now().Sub(updatedAt) > s.ttl
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(timeFormat, v)
	return t
}
