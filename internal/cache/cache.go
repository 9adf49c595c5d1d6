// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides a namespace+query keyed response cache backed by
// SQLite, used to avoid repeat lookups against the same provider for the
// same query within a TTL window.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache stores provider responses keyed by (namespace, query) with a TTL.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens or creates the cache database at dir/cache.db.
func Open(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS responses (
		namespace TEXT NOT NULL,
		query_hash TEXT NOT NULL,
		query TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, query_hash)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func queryHash(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// Get looks up a cached value for (namespace, query) and unmarshals it into
// dest. It returns found=false if there is no entry, or the entry has
// expired (in which case the stale row is also removed).
func Get[T any](ctx context.Context, c *Cache, namespace, query string, dest *T) (found bool, err error) {
	hash := queryHash(query)

	var payload string
	var createdAt int64
	row := c.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM responses WHERE namespace = ? AND query_hash = ?`,
		namespace, hash)
	if err := row.Scan(&payload, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("reading cache entry: %w", err)
	}

	if time.Since(time.Unix(createdAt, 0)) > c.ttl {
		_, _ = c.db.ExecContext(ctx,
			`DELETE FROM responses WHERE namespace = ? AND query_hash = ?`, namespace, hash)
		return false, nil
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, fmt.Errorf("unmarshaling cache entry: %w", err)
	}
	return true, nil
}

// Set stores value under (namespace, query), overwriting any prior entry.
func Set[T any](ctx context.Context, c *Cache, namespace, query string, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO responses (namespace, query_hash, query, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(namespace, query_hash) DO UPDATE SET
			payload=excluded.payload, created_at=excluded.created_at`,
		namespace, queryHash(query), query, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Clear removes every cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
