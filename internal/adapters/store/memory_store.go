// Package store provides LeadStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// MemoryStore is an in-memory implementation of the LeadStore port,
// used for tests and the one-shot CLI.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*core.Lead
	byEmail map[string]string
}

// NewMemoryStore creates an empty in-memory lead store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*core.Lead),
		byEmail: make(map[string]string),
	}
}

// Create persists a new lead, enforcing email ID uniqueness
func (s *MemoryStore) Create(ctx context.Context, lead *core.Lead) (*core.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[lead.EmailID]; ok {
		return nil, core.ErrConflict
	}

	cp := cloneLead(lead)
	s.byID[cp.ID] = cp
	s.byEmail[cp.EmailID] = cp.ID
	return cloneLead(cp), nil
}

// GetByEmailID returns the lead for an email ID
func (s *MemoryStore) GetByEmailID(ctx context.Context, emailID string) (*core.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[emailID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cloneLead(s.byID[id]), nil
}

// FindAll returns all leads in ascending creation order, ties broken by ID
func (s *MemoryStore) FindAll(ctx context.Context) ([]core.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]core.Lead, 0, len(s.byID))
	for _, lead := range s.byID {
		leads = append(leads, *cloneLead(lead))
	}
	sort.Slice(leads, func(i, j int) bool {
		if leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].ID < leads[j].ID
		}
		return leads[i].CreatedAt.Before(leads[j].CreatedAt)
	})
	return leads, nil
}

// UpdateStage sets the stage of a lead
func (s *MemoryStore) UpdateStage(ctx context.Context, id string, stage core.Stage) (*core.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	lead.Stage = stage
	return cloneLead(lead), nil
}

func cloneLead(lead *core.Lead) *core.Lead {
	cp := *lead
	if lead.Entities != nil {
		cp.Entities = make(map[string]string, len(lead.Entities))
		for k, v := range lead.Entities {
			cp.Entities[k] = v
		}
	}
	return &cp
}
