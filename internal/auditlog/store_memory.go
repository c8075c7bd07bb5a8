package auditlog

import (
	"context"
	"sync"

	"theatreops/internal/domain"
)

type MemoryStore struct {
	mu     sync.RWMutex
	events []domain.DomainEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event domain.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns the newest events first.
func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]domain.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit > n {
		limit = n
	}
	out := make([]domain.DomainEvent, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// All returns every stored event in append order.
func (s *MemoryStore) All() []domain.DomainEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DomainEvent{}, s.events...)
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
