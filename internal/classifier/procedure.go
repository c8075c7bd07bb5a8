package classifier

import (
	"fmt"
	"strconv"

	"theatreops/internal/domain"
)

// procedureFields lists the waiting-list fields worth surfacing to humans
// when a record changes.
var procedureFields = []trackedField[domain.Procedure]{
	{"status", func(p *domain.Procedure) string { return p.Status }},
	{"priorityTier", func(p *domain.Procedure) string { return p.PriorityTier }},
	{"daysToTarget", func(p *domain.Procedure) string { return strconv.Itoa(p.DaysToTarget) }},
	{"breached", func(p *domain.Procedure) string { return strconv.FormatBool(p.Breached) }},
	{"specialty", func(p *domain.Procedure) string { return p.Specialty }},
	{"consultantId", func(p *domain.Procedure) string { return p.ConsultantID }},
}

// procedureAttrs captures the severity-relevant fields once so every event
// from the same change scores identically.
func procedureAttrs(p *domain.Procedure) domain.ClinicalAttrs {
	return domain.ClinicalAttrs{
		PriorityTier: p.PriorityTier,
		DaysToTarget: p.DaysToTarget,
	}
}

func (c *Classifier) classifyProcedure(kind domain.ChangeKind, oldRec, newRec *domain.Procedure) []domain.DomainEvent {
	var events []domain.DomainEvent

	switch kind {
	case domain.ChangeCreated:
		ev := c.newEvent(domain.EventProcedureCreated, domain.EntityProcedure, newRec.ID)
		ev.Summary = fmt.Sprintf("New %s procedure added to the waiting list", newRec.Specialty)
		ev.Details = fmt.Sprintf("Procedure for %s (priority %s) has %d days to target.",
			newRec.PatientRef, newRec.PriorityTier, newRec.DaysToTarget)
		ev.RequiresAction = newRec.Breached
		ev.AffectedRecipients = recipients(newRec.ConsultantID, newRec.CoordinatorID)
		ev.Clinical = procedureAttrs(newRec)
		events = append(events, ev)

		if newRec.Breached {
			events = append(events, c.breachEvent(newRec))
		} else if c.withinTargetWindow(newRec) {
			events = append(events, c.atRiskEvent(newRec))
		}

	case domain.ChangeModified:
		changes := diffFields(procedureFields, oldRec, newRec)

		ev := c.newEvent(domain.EventProcedureUpdated, domain.EntityProcedure, newRec.ID)
		ev.Summary = fmt.Sprintf("Procedure for %s was updated", newRec.PatientRef)
		ev.Details = fmt.Sprintf("%d tracked field(s) changed.", len(changes))
		ev.FieldChanges = changes
		ev.AffectedRecipients = recipients(newRec.ConsultantID, newRec.CoordinatorID)
		ev.Clinical = procedureAttrs(newRec)
		events = append(events, ev)

		if oldRec.Status != domain.ProcedureStatusScheduled && newRec.Status == domain.ProcedureStatusScheduled {
			sched := c.newEvent(domain.EventProcedureScheduled, domain.EntityProcedure, newRec.ID)
			sched.Summary = fmt.Sprintf("Procedure for %s has been scheduled", newRec.PatientRef)
			sched.Details = fmt.Sprintf("Status moved from %q to %q.", oldRec.Status, newRec.Status)
			sched.AffectedRecipients = recipients(newRec.ConsultantID, newRec.CoordinatorID)
			sched.Clinical = procedureAttrs(newRec)
			events = append(events, sched)
		}
		if oldRec.Status != domain.ProcedureStatusCancelled && newRec.Status == domain.ProcedureStatusCancelled {
			cancel := c.newEvent(domain.EventProcedureCancelled, domain.EntityProcedure, newRec.ID)
			cancel.Summary = fmt.Sprintf("Procedure for %s was cancelled", newRec.PatientRef)
			cancel.Details = fmt.Sprintf("Status moved from %q to %q.", oldRec.Status, newRec.Status)
			cancel.RequiresAction = true
			cancel.SuggestedActions = []string{"Rebook the patient", "Release the theatre slot"}
			cancel.AffectedRecipients = recipients(newRec.ConsultantID, newRec.CoordinatorID)
			cancel.Clinical = procedureAttrs(newRec)
			events = append(events, cancel)
		}

		// A breach flip outranks whatever else changed in the same write.
		if !oldRec.Breached && newRec.Breached {
			events = append(events, c.breachEvent(newRec))
		}

	case domain.ChangeRemoved:
		// No new state exists; the event carries the last-known snapshot.
		ev := c.newEvent(domain.EventProcedureRemoved, domain.EntityProcedure, oldRec.ID)
		ev.Summary = fmt.Sprintf("Procedure for %s was removed from the waiting list", oldRec.PatientRef)
		ev.Details = fmt.Sprintf("Last known status was %q with %d days to target.",
			oldRec.Status, oldRec.DaysToTarget)
		ev.RequiresAction = true
		ev.SuggestedActions = []string{"Confirm the removal was intended"}
		ev.AffectedRecipients = recipients(oldRec.ConsultantID, oldRec.CoordinatorID)
		ev.Clinical = procedureAttrs(oldRec)
		events = append(events, ev)
	}

	return events
}

func (c *Classifier) withinTargetWindow(p *domain.Procedure) bool {
	return p.DaysToTarget > 0 && p.DaysToTarget <= c.cfg.TargetWindowDays
}

func (c *Classifier) breachEvent(p *domain.Procedure) domain.DomainEvent {
	ev := c.newEvent(domain.EventProcedureBreached, domain.EntityProcedure, p.ID)
	ev.Summary = fmt.Sprintf("Breach: procedure for %s is past its target date", p.PatientRef)
	ev.Details = fmt.Sprintf("Priority %s procedure in %s is clinically overdue.",
		p.PriorityTier, p.Specialty)
	ev.RequiresAction = true
	ev.SuggestedActions = []string{
		"Escalate to the specialty lead",
		"Offer the next available slot",
	}
	ev.AffectedRecipients = append(recipients(p.ConsultantID, p.CoordinatorID), domain.BroadcastManagers)
	ev.Clinical = procedureAttrs(p)
	return ev
}

func (c *Classifier) atRiskEvent(p *domain.Procedure) domain.DomainEvent {
	ev := c.newEvent(domain.EventProcedureAtRisk, domain.EntityProcedure, p.ID)
	ev.Summary = fmt.Sprintf("Procedure for %s is %d day(s) from breach", p.PatientRef, p.DaysToTarget)
	ev.Details = fmt.Sprintf("Target window is %d days; prioritise booking.", c.cfg.TargetWindowDays)
	ev.RequiresAction = true
	ev.SuggestedActions = []string{"Book into the earliest suitable list"}
	ev.AffectedRecipients = recipients(p.ConsultantID, p.CoordinatorID)
	ev.Clinical = procedureAttrs(p)
	return ev
}
