package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// SQLiteSink is a SQLite implementation of the AuditSink port. Each
// scoring call is stored as one prompt_history row.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink creates a new SQLite audit sink
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prompt_history (
			id TEXT PRIMARY KEY,
			prompt TEXT,
			response TEXT,
			model TEXT,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Append records one scoring call
func (s *SQLiteSink) Append(ctx context.Context, entry *core.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompt_history (id, prompt, response, model, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.Prompt, entry.Response, entry.Model, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
