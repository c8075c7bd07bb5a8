// Package auditlog persists every classified event as the engine's audit
// trail, whether or not the event produced a notification.
package auditlog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"theatreops/internal/domain"
)

var (
	writeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theatreops_audit_write_failures_total",
		Help: "Domain event store append failures",
	})
	droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "theatreops_audit_events_dropped_total",
		Help: "Domain events dropped because the async buffer was full",
	})
)

// Publisher records classified events. Synchronous by default; with an async
// buffer, Emit returns immediately so change-feed callbacks are never blocked
// on log-write latency, and failures stay observable through counters and
// logs instead of being returned.
type Publisher struct {
	store  Store
	logger *slog.Logger

	inbox chan domain.DomainEvent
	wg    sync.WaitGroup
	once  sync.Once
}

type Option func(p *Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithAsyncBuffer switches the publisher to fire-and-forget mode with the
// given buffer size. When the buffer is full the event is dropped and
// counted; classification must not stall behind a slow store.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan domain.DomainEvent, size)
		}
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records the event. In synchronous mode a store failure is returned to
// the caller; in async mode it is logged and counted by the drain worker.
func (p *Publisher) Emit(ctx context.Context, event domain.DomainEvent) error {
	if p.inbox == nil {
		if err := p.store.Append(ctx, event); err != nil {
			writeFailures.Inc()
			return err
		}
		return nil
	}

	select {
	case p.inbox <- event:
	default:
		droppedEvents.Inc()
		p.logger.Warn("audit buffer full, event dropped",
			"event_id", event.ID.String(),
			"kind", string(event.Kind),
		)
	}
	return nil
}

// drain persists buffered events until Close. Store failures never stop the
// worker; they are counted so operators can see audit loss.
func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			writeFailures.Inc()
			p.logger.Error("audit append failed",
				"event_id", event.ID.String(),
				"kind", string(event.Kind),
				"error", err,
			)
		}
	}
}

// Close drains any buffered events and stops the worker. Safe to call more
// than once.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}

// ListRecent exposes the audit trail for the console.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]domain.DomainEvent, error) {
	return p.store.ListRecent(ctx, limit)
}
