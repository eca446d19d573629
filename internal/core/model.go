package core

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConflict is returned by a LeadStore when a lead with the same
	// email ID already exists.
	ErrConflict = errors.New("lead already exists")
	// ErrNotFound is returned when a lead cannot be located.
	ErrNotFound = errors.New("lead not found")
	// ErrCacheMiss is returned by a ScoreCache when no live entry exists.
	ErrCacheMiss = errors.New("cache entry not found")
)

// Stage is the qualification stage of a lead.
// NEW -> QUALIFIED -> WON is a convention, not enforced here.
type Stage string

const (
	StageNew       Stage = "NEW"
	StageQualified Stage = "QUALIFIED"
	StageWon       Stage = "WON"
)

// Valid reports whether s is a known stage label.
func (s Stage) Valid() bool {
	switch s {
	case StageNew, StageQualified, StageWon:
		return true
	}
	return false
}

// Source identifies the channel a message arrived on.
type Source string

const (
	SourceEmail   Source = "EMAIL"
	SourceWebform Source = "WEBFORM"
	SourceAPI     Source = "API"
)

// InboundMessage is a raw message handed to the pipeline by the ingestion
// collaborator.
type InboundMessage struct {
	EmailID string `json:"email_id"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Source  Source `json:"source,omitempty"`
}

// Validate checks the required fields of an inbound message.
func (m *InboundMessage) Validate() error {
	if m.EmailID == "" {
		return &ValidationError{Field: "email_id", Reason: "missing"}
	}
	return nil
}

// ValidationError marks a malformed inbound message. It is fatal for the
// message: never retried, surfaced to the operator.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid inbound message: %s %s", e.Field, e.Reason)
}

// Lead is a persisted lead record. EmailID is unique across all records.
type Lead struct {
	ID        string            `json:"id"`
	EmailID   string            `json:"email_id"`
	Sender    string            `json:"sender"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Score     float64           `json:"score"`
	Stage     Stage             `json:"stage"`
	Source    Source            `json:"source"`
	Intent    string            `json:"intent,omitempty"`
	Entities  map[string]string `json:"entities,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// RawScore is the result of a single call to the external scoring backend.
type RawScore struct {
	Score    float64
	Stage    Stage
	Prompt   string
	Response string
	Model    string
}

// ScoreResult is what the classifier returns to the pipeline.
type ScoreResult struct {
	Score  float64
	Stage  Stage
	Model  string
	Cached bool
}

// CacheEntry is a memoized scoring result keyed by message content.
type CacheEntry struct {
	Key       string
	Score     float64
	Stage     Stage
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuditEntry records one scoring call, success or failure. Append-only,
// never read by the pipeline.
type AuditEntry struct {
	ID        string
	Prompt    string
	Response  string
	Model     string
	CreatedAt time.Time
}

// MatchResult is the outcome of a duplicate check against the stored leads.
type MatchResult struct {
	Duplicate         bool
	LeadID            string
	SenderSimilarity  float64
	SubjectSimilarity float64
}

// TaskStatus is the terminal outcome of processing one inbound message.
type TaskStatus string

const (
	TaskProcessed    TaskStatus = "processed"
	TaskDeduplicated TaskStatus = "deduplicated"
	TaskFailed       TaskStatus = "failed"
	TaskRejected     TaskStatus = "rejected"
)

// TaskResult is the tagged outcome of one message delivery, including
// retries.
type TaskResult struct {
	Status    TaskStatus
	LeadID    string
	MatchedID string
	Attempts  int
	Err       error
}

// DeadLetter describes a message that exhausted its retries.
type DeadLetter struct {
	EmailID  string    `json:"email_id"`
	Sender   string    `json:"sender"`
	Subject  string    `json:"subject"`
	Reason   string    `json:"reason"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failed_at"`
}

// ContentKey derives the deterministic cache key for a message's scoring
// result from its subject and body.
func ContentKey(subject, body string) string {
	h := sha256.New()
	h.Write([]byte(subject))
	h.Write([]byte{0})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}
