package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the outward-facing message derived from at most one
// DomainEvent. IsRead belongs to the delivery surface; this engine writes the
// record once and never updates it.
type Notification struct {
	ID        uuid.UUID
	Recipient string
	Severity  Severity
	Title     string
	Body      string
	ActionRef string
	CreatedAt time.Time
	IsRead    bool

	// Origin is the ID of the DomainEvent that produced this notification.
	Origin uuid.UUID
}
