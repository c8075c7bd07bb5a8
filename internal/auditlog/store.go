package auditlog

import (
	"context"

	"theatreops/internal/domain"
)

// Store persists classified events. Append-only: events are immutable after
// classification and are never updated.
type Store interface {
	Append(ctx context.Context, event domain.DomainEvent) error
	ListRecent(ctx context.Context, limit int) ([]domain.DomainEvent, error)
}
