// Package notify converts qualifying domain events into notifications and
// suppresses repeats for conditions that have already been surfaced.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"theatreops/internal/domain"
	"theatreops/internal/notify/metrics"
)

// Dispatcher builds notifications for events that cross the dispatch
// threshold. The suppression store is the only shared mutable state in the
// engine; everything else here is a pure function of the event.
type Dispatcher struct {
	suppressions SuppressionStore
	sink         Sink
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(d *Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock overrides the CreatedAt timestamp source for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(suppressions SuppressionStore, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		suppressions: suppressions,
		sink:         sink,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Dispatch writes one notification per affected recipient. The managers tag
// counts as one recipient: a set that is exactly the tag yields a single
// broadcast record, and a set naming individuals alongside the tag yields
// their records plus the broadcast. It returns the notifications written.
//
// No notification is produced when the event is below the dispatch threshold
// (low severity without a required action) or when the condition already has
// an open suppression at the same severity bucket. A below-threshold event
// for a previously suppressed condition clears the suppression: the condition
// has been observed to resolve, so its next occurrence notifies again.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.DomainEvent) ([]domain.Notification, error) {
	key := conditionKey(event)

	if !crossesThreshold(event) {
		metrics.IncBelowThreshold()
		if err := d.suppressions.Clear(ctx, key); err != nil {
			return nil, fmt.Errorf("clear suppression: %w", err)
		}
		return nil, nil
	}

	bucket := event.Severity.Bucket()
	active, open, err := d.suppressions.ActiveBucket(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check suppression: %w", err)
	}
	if open && active == bucket {
		metrics.IncSuppressed()
		d.logger.Debug("notification suppressed",
			"entity_id", event.EntityID,
			"kind", string(event.Kind),
			"bucket", bucket,
		)
		return nil, nil
	}

	notifications := d.build(event)

	var writeErr error
	written := notifications[:0]
	for _, n := range notifications {
		if err := d.sink.Write(ctx, n); err != nil {
			// Counted and logged rather than retried; losing this silently
			// would hide notification loss from operators.
			metrics.IncWriteFailure()
			d.logger.Error("notification write failed",
				"recipient", n.Recipient,
				"origin", n.Origin.String(),
				"error", err,
			)
			writeErr = err
			continue
		}
		metrics.IncSent(n.Severity.String())
		written = append(written, n)
	}

	if err := d.suppressions.Open(ctx, key, bucket); err != nil {
		return written, fmt.Errorf("open suppression: %w", err)
	}
	if writeErr != nil {
		return written, fmt.Errorf("write notification: %w", writeErr)
	}
	return written, nil
}

// build constructs one record per distinct recipient. The managers tag is a
// recipient in its own right, delivered as a single broadcast record; it
// never swallows the individually addressed entries next to it.
func (d *Dispatcher) build(event domain.DomainEvent) []domain.Notification {
	created := d.now().UTC()
	seen := make(map[string]struct{}, len(event.AffectedRecipients))
	out := make([]domain.Notification, 0, len(event.AffectedRecipients))
	for _, recipient := range event.AffectedRecipients {
		if _, dup := seen[recipient]; dup {
			continue
		}
		seen[recipient] = struct{}{}
		out = append(out, domain.Notification{
			ID:        uuid.New(),
			Recipient: recipient,
			Severity:  event.Severity,
			Title:     titleFor(event),
			Body:      bodyFor(event),
			ActionRef: actionRefFor(event),
			CreatedAt: created,
			Origin:    event.ID,
		})
	}
	return out
}

// crossesThreshold reports whether the event must surface to a human.
func crossesThreshold(event domain.DomainEvent) bool {
	return event.RequiresAction || event.Severity > domain.SeverityLow
}

// conditionKey is the dedup key minus the severity bucket; the bucket is the
// stored value so an escalation re-notifies while a repeat does not.
func conditionKey(event domain.DomainEvent) string {
	return string(event.EntityType) + "|" + event.EntityID + "|" + string(event.Kind)
}
