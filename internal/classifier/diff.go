package classifier

import "theatreops/internal/domain"

// trackedField names one field the classifier diffs on modification, with a
// stable string rendering of its value.
type trackedField[T any] struct {
	name   string
	render func(rec *T) string
}

// diffFields compares every tracked field between the old and new state, in
// table order so identical input yields an identical change list. Creation
// and removal changes must never reach this: they have only one state.
func diffFields[T any](fields []trackedField[T], oldRec, newRec *T) []domain.FieldChange {
	var changes []domain.FieldChange
	for _, f := range fields {
		before := f.render(oldRec)
		after := f.render(newRec)
		if before != after {
			changes = append(changes, domain.FieldChange{
				Field:    f.name,
				OldValue: before,
				NewValue: after,
			})
		}
	}
	return changes
}
