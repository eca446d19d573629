// Package audit provides AuditSink implementations for the scoring trail.
package audit

import (
	"context"
	"sync"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// MemorySink is an in-memory implementation of the AuditSink port,
// used for tests and the one-shot CLI.
type MemorySink struct {
	mu      sync.Mutex
	entries []core.AuditEntry
}

// NewMemorySink creates an empty in-memory audit sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append records one scoring call
func (s *MemorySink) Append(ctx context.Context, entry *core.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	return nil
}

// Entries returns a copy of all recorded entries in append order
func (s *MemorySink) Entries() []core.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
