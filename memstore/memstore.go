// Package memstore is an in-process lead store. It backs the failover path
// and environments where the durable store's filesystem is unavailable.
package memstore

import (
	"context"
	"sort"
	"sync"

	leadqual "github.com/leadqual/leadqual"
)

// Store keeps leads in memory for the lifetime of the process.
type Store struct {
	mu    sync.RWMutex
	leads []leadqual.Lead
}

func NewStore() *Store {
	return &Store{}
}

// GetAll returns a copy of the collection, newest first.
func (s *Store) GetAll(ctx context.Context) ([]leadqual.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leadqual.Lead, len(s.leads))
	copy(out, s.leads)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (leadqual.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.leads {
		if l.Email == email {
			return l, nil
		}
	}
	return leadqual.Lead{}, leadqual.ErrLeadNotFound
}

// Create appends the lead. The duplicate-email gate is a check-then-create in
// the orchestrator, so two racing submissions with the same email can both
// land here; the durable store's unique index has no equivalent in memory.
func (s *Store) Create(ctx context.Context, lead leadqual.Lead) (leadqual.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = append(s.leads, lead)
	return lead, nil
}

func (s *Store) Update(ctx context.Context, id string, patch leadqual.LeadPatch) (leadqual.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.leads {
		if l.ID == id {
			s.leads[i] = patch.Apply(l)
			return s.leads[i], nil
		}
	}
	return leadqual.Lead{}, leadqual.ErrLeadNotFound
}
