// Package monitor owns the lifecycle of the change-feed subscriptions and
// drives each observed change through classification, severity scoring, the
// audit trail, and notification dispatch.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"theatreops/internal/changefeed"
	"theatreops/internal/domain"
	"theatreops/internal/monitor/metrics"
)

// Classifier turns one change into zero or more domain events.
type Classifier interface {
	Classify(entity domain.EntityType, kind domain.ChangeKind, oldRaw, newRaw json.RawMessage) ([]domain.DomainEvent, error)
}

// SeverityEngine annotates events with their urgency.
type SeverityEngine interface {
	SeverityOf(event domain.DomainEvent) domain.Severity
}

// EventRecorder persists every classified event.
type EventRecorder interface {
	Emit(ctx context.Context, event domain.DomainEvent) error
}

// Dispatcher conditionally turns events into notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.DomainEvent) ([]domain.Notification, error)
}

// StreamStatusFunc is invoked when one stream's underlying feed terminates
// unexpectedly. The failure is fatal for that stream only; the caller decides
// whether to restart monitoring.
type StreamStatusFunc func(entity domain.EntityType, err error)

// Controller subscribes the pipeline to every configured entity stream.
// Start is idempotent and Stop is safe to call repeatedly; no subscription
// is ever dropped without being cancelled.
type Controller struct {
	feed         changefeed.Feed
	classifier   Classifier
	severity     SeverityEngine
	recorder     EventRecorder
	dispatcher   Dispatcher
	entities     []domain.EntityType
	logger       *slog.Logger
	onStreamDown StreamStatusFunc

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	pumps   sync.WaitGroup
}

type Option func(c *Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEntities narrows which streams the controller watches. Defaults to
// every known entity type.
func WithEntities(entities ...domain.EntityType) Option {
	return func(c *Controller) {
		if len(entities) > 0 {
			c.entities = entities
		}
	}
}

// WithStreamStatusFunc registers the callback for stream terminations.
func WithStreamStatusFunc(fn StreamStatusFunc) Option {
	return func(c *Controller) {
		c.onStreamDown = fn
	}
}

func NewController(feed changefeed.Feed, classifier Classifier, severity SeverityEngine, recorder EventRecorder, dispatcher Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		feed:       feed,
		classifier: classifier,
		severity:   severity,
		recorder:   recorder,
		dispatcher: dispatcher,
		entities:   domain.EntityTypes(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Start subscribes to every configured stream exactly once. Calling Start
// while already running is a no-op. A subscription failure tears down any
// streams already opened and is returned to the caller.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)

	streams := make(map[domain.EntityType]<-chan changefeed.Change, len(c.entities))
	for _, entity := range c.entities {
		ch, err := c.feed.Subscribe(runCtx, entity)
		if err != nil {
			cancel()
			return fmt.Errorf("subscribe %s stream: %w", entity, err)
		}
		streams[entity] = ch
	}

	for _, entity := range c.entities {
		c.pumps.Add(1)
		metrics.StreamStarted()
		go c.pump(runCtx, entity, streams[entity])
	}

	c.cancel = cancel
	c.running = true
	c.logger.Info("monitoring started", "streams", len(streams))
	return nil
}

// Stop cancels every subscription and waits for in-flight callbacks to
// finish. Safe to call multiple times; no new callbacks are dispatched once
// cancellation begins.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.cancel()
	c.pumps.Wait()
	c.running = false
	c.logger.Info("monitoring stopped")
}

// Running reports whether the controller currently holds live subscriptions.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// pump reads one stream in delivery order. Classification failures are
// isolated per change; only channel close ends the pump.
func (c *Controller) pump(ctx context.Context, entity domain.EntityType, stream <-chan changefeed.Change) {
	defer c.pumps.Done()
	defer metrics.StreamStopped()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-stream:
			if !ok {
				if ctx.Err() == nil && c.onStreamDown != nil {
					c.onStreamDown(entity, fmt.Errorf("%s change feed terminated", entity))
				}
				return
			}
			c.process(ctx, change)
		}
	}
}

// process runs one change through the pipeline. Classification and scoring
// are synchronous pure computations; the audit write and dispatch are the
// only I/O, and neither failure stops the stream.
func (c *Controller) process(ctx context.Context, change changefeed.Change) {
	events, err := c.classifier.Classify(change.Entity, change.Kind, change.Old, change.New)
	if err != nil {
		metrics.IncClassificationFailure(string(change.Entity))
		c.logger.Error("classification failed",
			"entity", string(change.Entity),
			"change", string(change.Kind),
			"error", err,
		)
		return
	}

	for _, event := range events {
		event.Severity = c.severity.SeverityOf(event)
		metrics.IncClassified(string(event.Kind))

		if err := c.recorder.Emit(ctx, event); err != nil {
			c.logger.Error("audit emit failed",
				"event_id", event.ID.String(),
				"error", err,
			)
		}

		if _, err := c.dispatcher.Dispatch(ctx, event); err != nil {
			c.logger.Error("dispatch failed",
				"event_id", event.ID.String(),
				"kind", string(event.Kind),
				"error", err,
			)
		}
	}
}
