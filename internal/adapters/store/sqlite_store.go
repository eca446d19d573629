package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// SQLiteStore is a SQLite implementation of the LeadStore port
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite lead store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			email_id TEXT NOT NULL UNIQUE,
			sender TEXT,
			subject TEXT,
			body TEXT,
			score REAL,
			stage TEXT,
			source TEXT,
			intent TEXT,
			entities TEXT,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Create persists a new lead. The unique constraint on email_id maps to
// core.ErrConflict so the pipeline can treat replays as idempotent.
func (s *SQLiteStore) Create(ctx context.Context, lead *core.Lead) (*core.Lead, error) {
	entities, err := json.Marshal(lead.Entities)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entities: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leads (id, email_id, sender, subject, body, score, stage, source, intent, entities, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, lead.ID, lead.EmailID, lead.Sender, lead.Subject, lead.Body,
		lead.Score, string(lead.Stage), string(lead.Source), lead.Intent, string(entities), lead.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return nil, core.ErrConflict
		}
		return nil, fmt.Errorf("failed to insert lead: %w", err)
	}

	return lead, nil
}

// GetByEmailID returns the lead for an email ID
func (s *SQLiteStore) GetByEmailID(ctx context.Context, emailID string) (*core.Lead, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email_id, sender, subject, body, score, stage, source, intent, entities, created_at
		FROM leads
		WHERE email_id = ?
	`, emailID)

	lead, err := scanLead(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query lead: %w", err)
	}
	return lead, nil
}

// FindAll returns all leads in ascending creation order, ties broken by ID
func (s *SQLiteStore) FindAll(ctx context.Context) ([]core.Lead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email_id, sender, subject, body, score, stage, source, intent, entities, created_at
		FROM leads
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []core.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

// UpdateStage sets the stage of a lead
func (s *SQLiteStore) UpdateStage(ctx context.Context, id string, stage core.Stage) (*core.Lead, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE leads SET stage = ? WHERE id = ?
	`, string(stage), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead stage: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, core.ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, email_id, sender, subject, body, score, stage, source, intent, entities, created_at
		FROM leads
		WHERE id = ?
	`, id)
	lead, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}
	return lead, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*core.Lead, error) {
	var lead core.Lead
	var stage, source, entities string
	var createdAt time.Time

	err := row.Scan(&lead.ID, &lead.EmailID, &lead.Sender, &lead.Subject, &lead.Body,
		&lead.Score, &stage, &source, &lead.Intent, &entities, &createdAt)
	if err != nil {
		return nil, err
	}

	lead.Stage = core.Stage(stage)
	lead.Source = core.Source(source)
	lead.CreatedAt = createdAt
	if entities != "" && entities != "null" {
		if err := json.Unmarshal([]byte(entities), &lead.Entities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entities: %w", err)
		}
	}
	return &lead, nil
}
