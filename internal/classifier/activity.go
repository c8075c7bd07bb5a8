package classifier

import (
	"fmt"

	"theatreops/internal/domain"
)

// classifyActivity passes console activity straight through to the audit
// trail. These events carry the lowest severity and are never dispatched as
// notifications.
func (c *Classifier) classifyActivity(kind domain.ChangeKind, _, newRec *domain.ActivityEntry) []domain.DomainEvent {
	if kind != domain.ChangeCreated {
		return nil
	}

	ev := c.newEvent(domain.EventUserActivity, domain.EntityActivity, newRec.ID)
	ev.Summary = fmt.Sprintf("%s by %s", newRec.Action, newRec.UserID)
	ev.Details = fmt.Sprintf("User %s performed %q on %s.", newRec.UserID, newRec.Action, newRec.Target)
	ev.AffectedRecipients = []string{}
	return []domain.DomainEvent{ev}
}
