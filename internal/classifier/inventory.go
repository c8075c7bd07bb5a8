package classifier

import (
	"fmt"

	"theatreops/internal/domain"
)

func (c *Classifier) classifyInventory(kind domain.ChangeKind, _, newRec *domain.InventoryItem) []domain.DomainEvent {
	if kind == domain.ChangeRemoved {
		return nil
	}

	var events []domain.DomainEvent

	// The stock rule and the expiry rule are independent; both may fire for
	// the same record in the same change.
	if newRec.Stock <= newRec.ReorderLevel {
		ev := c.newEvent(domain.EventInventoryLow, domain.EntityInventory, newRec.ID)
		ev.Summary = fmt.Sprintf("Stock low: %s", newRec.Name)
		ev.Details = fmt.Sprintf("%d unit(s) left, reorder level is %d.",
			newRec.Stock, newRec.ReorderLevel)
		ev.RequiresAction = true
		ev.SuggestedActions = []string{"Raise a reorder with the supplier"}
		ev.AffectedRecipients = recipients(newRec.ManagerID)
		ev.Clinical = domain.ClinicalAttrs{Count: newRec.Stock}
		events = append(events, ev)
	}

	switch {
	case newRec.DaysToExpiry <= 0:
		// Already expired stock is a different, more severe condition than
		// stock approaching expiry.
		ev := c.newEvent(domain.EventInventoryExpired, domain.EntityInventory, newRec.ID)
		ev.Summary = fmt.Sprintf("Expired stock: %s", newRec.Name)
		ev.Details = fmt.Sprintf("%d unit(s) are past their expiry date and must not be used.", newRec.Stock)
		ev.RequiresAction = true
		ev.SuggestedActions = []string{
			"Quarantine the expired units",
			"Record the disposal",
		}
		ev.AffectedRecipients = recipients(newRec.ManagerID)
		ev.Clinical = domain.ClinicalAttrs{Count: newRec.Stock}
		events = append(events, ev)
	case newRec.DaysToExpiry <= c.cfg.ExpiryWindowDays:
		ev := c.newEvent(domain.EventInventoryExpiring, domain.EntityInventory, newRec.ID)
		ev.Summary = fmt.Sprintf("Expiring soon: %s", newRec.Name)
		ev.Details = fmt.Sprintf("%d unit(s) expire in %d day(s).", newRec.Stock, newRec.DaysToExpiry)
		ev.RequiresAction = true
		ev.SuggestedActions = []string{"Use or rotate this stock first"}
		ev.AffectedRecipients = recipients(newRec.ManagerID)
		ev.Clinical = domain.ClinicalAttrs{Count: newRec.Stock}
		events = append(events, ev)
	}

	return events
}
