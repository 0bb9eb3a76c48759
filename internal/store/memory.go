package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps leads in process memory with monotonically increasing
// IDs. Records are lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	seq   int64
	leads map[int64]Lead
}

// NewMemory creates an empty in-memory lead store.
func NewMemory() *MemoryStore {
	return &MemoryStore{leads: make(map[int64]Lead)}
}

// CreateLead assigns the next ID and creation timestamp and stores a copy of
// the lead.
func (s *MemoryStore) CreateLead(ctx context.Context, lead *Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	lead.ID = s.seq
	lead.CreatedAt = time.Now().UTC()
	s.leads[lead.ID] = *lead
	return nil
}

// GetLead returns a copy of the lead with the given ID, or ErrLeadNotFound.
func (s *MemoryStore) GetLead(ctx context.Context, id int64) (*Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return &lead, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
