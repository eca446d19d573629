package cache

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// SQLiteCache is a SQLite implementation of the ScoreCache port
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewSQLiteCache creates a new SQLite score cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Timestamps are stored as time.Time through the driver so that
	// range comparisons against query arguments stay consistent.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS score_cache (
			content_key TEXT PRIMARY KEY,
			score REAL,
			stage TEXT,
			created_at TIMESTAMP,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_score_cache_expires_at ON score_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a live entry by content key
func (c *SQLiteCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	entry := &core.CacheEntry{Key: key}
	var stage string

	err := c.db.QueryRowContext(ctx, `
		SELECT score, stage, created_at, expires_at
		FROM score_cache
		WHERE content_key = ? AND expires_at > ?
	`, key, time.Now()).Scan(&entry.Score, &stage, &entry.CreatedAt, &entry.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.Stage = core.Stage(stage)
	return entry, nil
}

// Set stores a cache entry
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO score_cache (content_key, score, stage, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Key, entry.Score, string(entry.Stage), entry.CreatedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM score_cache
		WHERE content_key = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM score_cache
		WHERE expires_at <= ?
	`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("failed to close SQLite database", zap.Error(err))
		}
	})
}
