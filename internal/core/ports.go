package core

import (
	"context"
)

// ScoringClient invokes the external scoring backend.
type ScoringClient interface {
	// ScoreMessage classifies a message into a score and stage.
	ScoreMessage(ctx context.Context, subject, body string) (*RawScore, error)

	// Model returns the identifier of the backing model.
	Model() string
}

// ScoreCache memoizes scoring results by content key.
type ScoreCache interface {
	// Get returns the live entry for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores an entry.
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes an entry.
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}

// LeadStore is the gateway to the persistent lead store.
type LeadStore interface {
	// Create persists a new lead. Returns ErrConflict if a lead with the
	// same email ID already exists.
	Create(ctx context.Context, lead *Lead) (*Lead, error)

	// GetByEmailID returns the lead for an email ID, or ErrNotFound.
	GetByEmailID(ctx context.Context, emailID string) (*Lead, error)

	// FindAll returns a snapshot of all leads in ascending creation
	// order (ties broken by ID) so duplicate scans are deterministic.
	FindAll(ctx context.Context) ([]Lead, error)

	// UpdateStage sets the stage of a lead, or returns ErrNotFound.
	// Exercised by the external update path, not by the pipeline.
	UpdateStage(ctx context.Context, id string, stage Stage) (*Lead, error)
}

// AuditSink records scoring calls. Append-only.
type AuditSink interface {
	Append(ctx context.Context, entry *AuditEntry) error
}

// Publisher broadcasts a lead change to live-update subscribers.
// Best effort: failures are logged by the caller, never propagated.
type Publisher interface {
	Publish(ctx context.Context, lead *Lead) error
}

// DeadLetterSink receives messages that exhausted their retries.
type DeadLetterSink interface {
	Push(ctx context.Context, dl *DeadLetter) error
}

// DuplicateMatcher decides whether a message duplicates a stored lead.
// Implementations must be read-only and deterministic for a fixed
// snapshot.
type DuplicateMatcher interface {
	Match(ctx context.Context, msg *InboundMessage, existing []Lead) (*MatchResult, error)
}

// Enrichment is the derived sentiment and term features for a message body.
type Enrichment struct {
	Polarity float64
	Terms    map[string]string
}

// Enricher derives sentiment polarity and salient terms from body text.
type Enricher interface {
	Enrich(body string) Enrichment
}
