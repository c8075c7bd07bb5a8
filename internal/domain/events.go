package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind identifies what happened to a record on its change feed.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// EntityType names one of the operational collections the monitor watches.
type EntityType string

const (
	EntityProcedure EntityType = "procedure"
	EntitySession   EntityType = "session"
	EntityStaffing  EntityType = "staffing"
	EntityInventory EntityType = "inventory"
	EntityActivity  EntityType = "activity"
)

// EntityTypes lists every watched collection in subscription order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityProcedure,
		EntitySession,
		EntityStaffing,
		EntityInventory,
		EntityActivity,
	}
}

// EventKind is the closed set of classified domain events. Downstream code
// matches exhaustively on the tag instead of probing payload fields.
type EventKind string

const (
	EventProcedureCreated   EventKind = "procedure_created"
	EventProcedureUpdated   EventKind = "procedure_updated"
	EventProcedureRemoved   EventKind = "procedure_removed"
	EventProcedureBreached  EventKind = "procedure_breached"
	EventProcedureAtRisk    EventKind = "procedure_at_risk"
	EventProcedureScheduled EventKind = "procedure_scheduled"
	EventProcedureCancelled EventKind = "procedure_cancelled"
	EventSessionCreated     EventKind = "session_created"
	EventSessionNearCap     EventKind = "session_near_capacity"
	EventStaffShortage      EventKind = "staff_shortage_detected"
	EventInventoryLow       EventKind = "inventory_low"
	EventInventoryExpiring  EventKind = "inventory_expiring_soon"
	EventInventoryExpired   EventKind = "inventory_expired"
	EventUserActivity       EventKind = "user_activity_logged"
)

// FieldChange records one tracked field transition between the old and new
// state of a modified record.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// DomainEvent is the immutable record of one classified change. It is fully
// determined by the (old state, new state, change kind) triple that produced
// it: classification holds no hidden state, so replaying the same change
// yields the same event.
type DomainEvent struct {
	ID           uuid.UUID
	Kind         EventKind
	EntityType   EntityType
	EntityID     string
	Summary      string
	Details      string
	FieldChanges []FieldChange

	// OccurredAt is assigned by the engine at classification time. Source
	// timestamps are not trusted for ordering across feeds.
	OccurredAt time.Time

	// Severity is assigned by the priority engine, never by the classifier.
	Severity Severity

	SuggestedActions []string

	// RequiresAction forces the event in front of a human regardless of
	// severity.
	RequiresAction bool

	// AffectedRecipients holds user IDs or broadcast-group tags.
	AffectedRecipients []string

	// Clinical carries the record attributes the priority engine scores on,
	// captured at classification time so scoring never re-reads the store.
	Clinical ClinicalAttrs
}

// ClinicalAttrs is the severity-relevant slice of the source record.
type ClinicalAttrs struct {
	// PriorityTier is the clinical priority code, when the record has one.
	PriorityTier string

	// DaysToTarget is days until the clinical target date; zero when the
	// record has no target.
	DaysToTarget int

	// Count is the kind-specific unit count a zero of which escalates the
	// event: stock remaining, allocated staff on the worst-covered role, or
	// remaining capacity percent.
	Count int
}

// BroadcastManagers is the recipient tag that fans a notification out to the
// theatre-managers group as a single broadcast record.
const BroadcastManagers = "all-managers"
