// Package classifier turns raw change-feed tuples into typed domain events.
// Classification is pure domain logic: no I/O, no hidden state. The same
// (old state, new state, change kind) triple always yields the same events,
// so changes can be replayed safely and tests stay deterministic.
package classifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"theatreops/internal/domain"
)

// Config carries the rule thresholds. The source system hard-codes these; we
// keep them as named settings with the same defaults rather than inventing a
// richer configuration mechanism.
type Config struct {
	// TargetWindowDays is the at-risk window: a procedure whose days-to-target
	// is positive and inside this window is near breach.
	TargetWindowDays int

	// NearCapacityMark is the utilization high-water mark for theatre
	// sessions, in percent.
	NearCapacityMark float64

	// ExpiryWindowDays is the expiring-soon window for inventory items.
	ExpiryWindowDays int
}

// DefaultConfig returns the thresholds the scheduling console has always used.
func DefaultConfig() Config {
	return Config{
		TargetWindowDays: 7,
		NearCapacityMark: 95,
		ExpiryWindowDays: 30,
	}
}

// Classifier evaluates the per-entity rule tables.
type Classifier struct {
	cfg Config
	now func() time.Time
}

type Option func(c *Classifier)

// WithClock overrides the classification timestamp source. Tests use a fixed
// clock so classified events compare byte-identical across runs.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

func New(cfg Config, opts ...Option) *Classifier {
	c := &Classifier{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Classify evaluates every rule for the entity's stream against one change.
// Rules fire independently: a single change can legitimately produce several
// events. The returned slice order is stable for identical input.
//
// Creation changes carry no old state and are never diffed; removal changes
// carry the last-known snapshot in oldRaw since no new state exists.
func (c *Classifier) Classify(entity domain.EntityType, kind domain.ChangeKind, oldRaw, newRaw json.RawMessage) ([]domain.DomainEvent, error) {
	switch entity {
	case domain.EntityProcedure:
		return classifyWith(c, kind, oldRaw, newRaw, c.classifyProcedure)
	case domain.EntitySession:
		return classifyWith(c, kind, oldRaw, newRaw, c.classifySession)
	case domain.EntityStaffing:
		return classifyWith(c, kind, oldRaw, newRaw, c.classifyStaffing)
	case domain.EntityInventory:
		return classifyWith(c, kind, oldRaw, newRaw, c.classifyInventory)
	case domain.EntityActivity:
		return classifyWith(c, kind, oldRaw, newRaw, c.classifyActivity)
	default:
		return nil, fmt.Errorf("classify: unknown entity type %q", entity)
	}
}

// classifyWith decodes the change payloads into the entity's record type and
// hands both states to the rule set. Decode failures surface as errors so the
// monitor can isolate the bad change without dropping the stream.
func classifyWith[T any](c *Classifier, kind domain.ChangeKind, oldRaw, newRaw json.RawMessage, rules func(domain.ChangeKind, *T, *T) []domain.DomainEvent) ([]domain.DomainEvent, error) {
	var oldRec, newRec *T
	if len(oldRaw) > 0 {
		oldRec = new(T)
		if err := json.Unmarshal(oldRaw, oldRec); err != nil {
			return nil, fmt.Errorf("decode old record: %w", err)
		}
	}
	if len(newRaw) > 0 {
		newRec = new(T)
		if err := json.Unmarshal(newRaw, newRec); err != nil {
			return nil, fmt.Errorf("decode new record: %w", err)
		}
	}

	switch kind {
	case domain.ChangeCreated:
		if newRec == nil {
			return nil, fmt.Errorf("creation change without new record")
		}
	case domain.ChangeModified:
		if newRec == nil {
			return nil, fmt.Errorf("modification change without new record")
		}
	case domain.ChangeRemoved:
		if oldRec == nil {
			return nil, fmt.Errorf("removal change without last-known record")
		}
	default:
		return nil, fmt.Errorf("unknown change kind %q", kind)
	}

	return rules(kind, oldRec, newRec), nil
}

// eventNamespace seeds deterministic event IDs so replayed changes reproduce
// the same event identity.
var eventNamespace = uuid.MustParse("5b9ab23e-1d0e-4a6f-9d3f-7c2f8e4a1b6d")

// newEvent builds the common event envelope. The ID is derived from the
// entity, kind, and classification time, keeping Classify reproducible.
func (c *Classifier) newEvent(kind domain.EventKind, entity domain.EntityType, entityID string) domain.DomainEvent {
	occurred := c.now().UTC()
	seed := fmt.Sprintf("%s|%s|%s|%d", entity, entityID, kind, occurred.UnixNano())
	return domain.DomainEvent{
		ID:         uuid.NewSHA1(eventNamespace, []byte(seed)),
		Kind:       kind,
		EntityType: entity,
		EntityID:   entityID,
		OccurredAt: occurred,
	}
}

// recipients drops empty IDs and falls back to the managers broadcast so no
// event ends up unaddressed.
func recipients(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		out = append(out, domain.BroadcastManagers)
	}
	return out
}
