package changefeed

import (
	"context"
	"sync"

	"theatreops/internal/domain"
)

// memorySub pairs a subscriber channel with its cancellation signal so a
// publish never blocks on a subscriber that has already gone away.
type memorySub struct {
	ch   chan Change
	done <-chan struct{}
}

// MemoryFeed is a channel-backed Feed for tests and single-process use.
// Publish fans each change out to every subscriber of its entity, in call
// order, which preserves the per-stream ordering guarantee.
type MemoryFeed struct {
	mu     sync.Mutex
	subs   map[domain.EntityType][]memorySub
	closed bool
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[domain.EntityType][]memorySub)}
}

func (f *MemoryFeed) Subscribe(ctx context.Context, entity domain.EntityType) (<-chan Change, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		ch := make(chan Change)
		close(ch)
		return ch, nil
	}

	ch := make(chan Change, 64)
	f.subs[entity] = append(f.subs[entity], memorySub{ch: ch, done: ctx.Done()})

	go func() {
		<-ctx.Done()
		f.remove(entity, ch)
	}()

	return ch, nil
}

// Publish delivers one change to the entity's subscribers. Sends block when a
// live subscriber's buffer is full, so a test publishing faster than the
// monitor consumes still observes in-order delivery. A cancelled subscriber
// that has not been detached yet is skipped instead of wedging the feed.
func (f *MemoryFeed) Publish(change Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for _, sub := range f.subs[change.Entity] {
		select {
		case sub.ch <- change:
		case <-sub.done:
		}
	}
}

// Close terminates every subscription, simulating the underlying source
// going away.
func (f *MemoryFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for _, subs := range f.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	f.subs = make(map[domain.EntityType][]memorySub)
}

func (f *MemoryFeed) remove(entity domain.EntityType, ch chan Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	// Detach without closing: a concurrent Publish may still hold a
	// reference, and the subscriber has already stopped reading.
	subs := f.subs[entity]
	for i, sub := range subs {
		if sub.ch == ch {
			f.subs[entity] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
