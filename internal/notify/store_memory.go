package notify

import (
	"context"
	"sync"

	"theatreops/internal/domain"
)

// MemorySuppressions is the in-memory SuppressionStore used by tests and
// single-process deployments.
type MemorySuppressions struct {
	mu   sync.RWMutex
	open map[string]string
}

func NewMemorySuppressions() *MemorySuppressions {
	return &MemorySuppressions{open: make(map[string]string)}
}

func (s *MemorySuppressions) ActiveBucket(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.open[key]
	return bucket, ok, nil
}

func (s *MemorySuppressions) Open(_ context.Context, key string, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[key] = bucket
	return nil
}

func (s *MemorySuppressions) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, key)
	return nil
}

// MemorySink collects notifications for tests.
type MemorySink struct {
	mu      sync.RWMutex
	written []domain.Notification
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, n)
	return nil
}

// Written returns a copy of everything the sink has received.
func (s *MemorySink) Written() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification{}, s.written...)
}

// ListRecent returns the latest notifications, newest first.
func (s *MemorySink) ListRecent(_ context.Context, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.written)
	if limit > n {
		limit = n
	}
	out := make([]domain.Notification, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.written[i])
	}
	return out, nil
}
