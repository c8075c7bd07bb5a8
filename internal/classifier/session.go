package classifier

import (
	"fmt"
	"strconv"

	"theatreops/internal/domain"
)

var sessionFields = []trackedField[domain.TheatreSession]{
	{"utilization", func(s *domain.TheatreSession) string { return strconv.FormatFloat(s.Utilization, 'f', -1, 64) }},
	{"caseCount", func(s *domain.TheatreSession) string { return strconv.Itoa(s.CaseCount) }},
	{"date", func(s *domain.TheatreSession) string { return s.Date }},
	{"specialty", func(s *domain.TheatreSession) string { return s.Specialty }},
}

func (c *Classifier) classifySession(kind domain.ChangeKind, oldRec, newRec *domain.TheatreSession) []domain.DomainEvent {
	var events []domain.DomainEvent

	switch kind {
	case domain.ChangeCreated:
		ev := c.newEvent(domain.EventSessionCreated, domain.EntitySession, newRec.ID)
		ev.Summary = fmt.Sprintf("New %s theatre list on %s", newRec.Specialty, newRec.Date)
		ev.Details = fmt.Sprintf("List opened at %.0f%% utilization with %d case(s).",
			newRec.Utilization, newRec.CaseCount)
		ev.SuggestedActions = []string{"Review idle capacity on this list"}
		ev.AffectedRecipients = recipients(newRec.PlannerID)
		events = append(events, ev)

	case domain.ChangeModified:
		// Fire exactly once per crossing of the high-water mark. The old/new
		// utilization pair carries the crossing; no external flag store.
		if oldRec.Utilization < c.cfg.NearCapacityMark && newRec.Utilization >= c.cfg.NearCapacityMark {
			ev := c.newEvent(domain.EventSessionNearCap, domain.EntitySession, newRec.ID)
			ev.Summary = fmt.Sprintf("Theatre list on %s is near capacity", newRec.Date)
			ev.Details = fmt.Sprintf("Utilization moved from %.0f%% to %.0f%% (mark %.0f%%).",
				oldRec.Utilization, newRec.Utilization, c.cfg.NearCapacityMark)
			ev.FieldChanges = diffFields(sessionFields, oldRec, newRec)
			ev.RequiresAction = true
			ev.SuggestedActions = []string{
				"Stop adding cases to this list",
				"Check overrun risk with the anaesthetic lead",
			}
			ev.AffectedRecipients = recipients(newRec.PlannerID)
			ev.Clinical = domain.ClinicalAttrs{Count: remainingCapacity(newRec.Utilization)}
			events = append(events, ev)
		}
	}

	return events
}

// remainingCapacity is whole percentage points of capacity left; a fully
// booked list reports zero and escalates.
func remainingCapacity(utilization float64) int {
	left := int(100 - utilization)
	if left < 0 {
		return 0
	}
	return left
}
