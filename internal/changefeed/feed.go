// Package changefeed abstracts the per-collection live change streams the
// monitor subscribes to. The engine never implements the feed itself; it is
// an injected collaborator.
package changefeed

import (
	"context"
	"encoding/json"

	"theatreops/internal/domain"
)

// Change is one mutation observed on a collection. Old is absent for
// creations; New is absent for removals, in which case Old carries the
// last-known snapshot.
type Change struct {
	Entity domain.EntityType `json:"entity"`
	Kind   domain.ChangeKind `json:"kind"`
	Old    json.RawMessage   `json:"old,omitempty"`
	New    json.RawMessage   `json:"new,omitempty"`
}

// Feed delivers live changes for one collection per subscription.
//
// Delivery order is guaranteed within one subscription only; no cross-stream
// ordering exists. The returned channel is closed when the subscription ends:
// either the context was cancelled, or the underlying source terminated.
type Feed interface {
	Subscribe(ctx context.Context, entity domain.EntityType) (<-chan Change, error)
}
