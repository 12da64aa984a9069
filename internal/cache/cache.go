// Package cache implements an on-disk extraction result cache backed by
// pure-Go SQLite. Values are opaque byte payloads keyed by a content
// fingerprint; the cache never interprets them.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets a structured logger. When set, the cache emits debug logs
// for every hit, miss and store. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMaxAge sets how long entries stay valid. Entries older than the limit
// are treated as misses and overwritten in place. Zero disables expiry.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

// Cache stores extraction payloads in a local SQLite file. A single shared
// connection serializes all goroutines through one writer, eliminating
// SQLITE_BUSY errors from concurrent access.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
	maxAge time.Duration
}

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Open creates or opens the cache database at dbPath, creating parent
// directories as needed.
func Open(dbPath string, opts ...Option) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open driver: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Cache{db: db, logger: nopLogger}
	for _, o := range opts {
		o(c)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS results (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	c.logger.Debug("cache: opened", "path", dbPath)
	return c, nil
}

// Get returns the payload stored under key, or false on a miss. Storage
// errors are logged and reported as misses so extraction never fails on a
// broken cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	var payload []byte
	var createdAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM results WHERE key = ?`, key,
	).Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		c.logger.Debug("cache: miss", "key", key)
		return nil, false
	}
	if err != nil {
		c.logger.Debug("cache: read failed", "key", key, "error", err)
		return nil, false
	}
	if c.maxAge > 0 && time.Since(time.Unix(createdAt, 0)) > c.maxAge {
		c.logger.Debug("cache: expired", "key", key)
		return nil, false
	}
	c.logger.Debug("cache: hit", "key", key, "bytes", len(payload))
	return payload, true
}

// Put stores payload under key, replacing any existing entry. Failures are
// logged and swallowed.
func (c *Cache) Put(ctx context.Context, key string, payload []byte) {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO results (key, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		key, payload, time.Now().Unix())
	if err != nil {
		c.logger.Debug("cache: write failed", "key", key, "error", err)
		return
	}
	c.logger.Debug("cache: stored", "key", key, "bytes", len(payload))
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM results`); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
