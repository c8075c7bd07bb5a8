package auditlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theatreops/internal/domain"
)

func testEvent(kind domain.EventKind) domain.DomainEvent {
	return domain.DomainEvent{
		ID:         uuid.New(),
		Kind:       kind,
		EntityType: domain.EntityProcedure,
		EntityID:   "proc-1",
		Summary:    "test event",
		OccurredAt: time.Now().UTC(),
	}
}

func TestPublisher_SyncMode(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), testEvent(domain.EventProcedureCreated))
	require.NoError(t, err)

	events, err := pub.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventProcedureCreated, events[0].Kind)
}

func TestPublisher_SyncMode_StoreErrorReturned(t *testing.T) {
	store := &failingStore{err: errors.New("store down")}
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), testEvent(domain.EventProcedureCreated))
	require.Error(t, err)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), testEvent(domain.EventProcedureBreached))
	require.NoError(t, err)

	// Wait for async processing
	require.Eventually(t, func() bool {
		return len(store.All()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, domain.EventProcedureBreached, store.All()[0].Kind)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), testEvent(domain.EventProcedureUpdated))
		require.NoError(t, err)
	}

	// Close should drain all buffered events
	pub.Close()

	assert.Len(t, store.All(), 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	// First emit occupies the worker, second fills the buffer, the rest
	// must drop without blocking the caller.
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), testEvent(domain.EventProcedureUpdated))
			assert.NoError(t, err, "async emit never returns an error")
		}()
	}
	wg.Wait()

	close(store.release)
	pub.Close()

	assert.Less(t, store.count(), 10, "a full buffer drops instead of blocking")
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(NewMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()
}

func TestPublisher_AsyncStoreFailureDoesNotStopWorker(t *testing.T) {
	store := &flakyStore{inner: NewMemoryStore(), failFirst: 1}
	pub := NewPublisher(store, WithAsyncBuffer(10))

	require.NoError(t, pub.Emit(context.Background(), testEvent(domain.EventProcedureCreated)))
	require.NoError(t, pub.Emit(context.Background(), testEvent(domain.EventProcedureUpdated)))
	pub.Close()

	events := store.inner.All()
	require.Len(t, events, 1, "the failed append is lost, the next succeeds")
	assert.Equal(t, domain.EventProcedureUpdated, events[0].Kind)
}

type failingStore struct {
	err error
}

func (s *failingStore) Append(context.Context, domain.DomainEvent) error {
	return s.err
}

func (s *failingStore) ListRecent(context.Context, int) ([]domain.DomainEvent, error) {
	return nil, s.err
}

// blockingStore holds every append until released, forcing the async buffer
// to fill.
type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	n       int
}

func (s *blockingStore) Append(context.Context, domain.DomainEvent) error {
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return nil
}

func (s *blockingStore) ListRecent(context.Context, int) ([]domain.DomainEvent, error) {
	return nil, nil
}

func (s *blockingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// flakyStore fails the first failFirst appends, then delegates.
type flakyStore struct {
	inner     *MemoryStore
	mu        sync.Mutex
	failFirst int
}

func (s *flakyStore) Append(ctx context.Context, event domain.DomainEvent) error {
	s.mu.Lock()
	if s.failFirst > 0 {
		s.failFirst--
		s.mu.Unlock()
		return errors.New("transient store failure")
	}
	s.mu.Unlock()
	return s.inner.Append(ctx, event)
}

func (s *flakyStore) ListRecent(ctx context.Context, limit int) ([]domain.DomainEvent, error) {
	return s.inner.ListRecent(ctx, limit)
}
