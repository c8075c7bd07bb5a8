package notify

import (
	"strings"

	"theatreops/internal/domain"
)

// titles maps event kinds to notification titles. The wording is load-bearing
// for humans only: downstream UI reads severity from the Severity field,
// never from this text, so changes here are safe but pointless churn.
var titles = map[domain.EventKind]string{
	domain.EventProcedureCreated:   "Procedure added",
	domain.EventProcedureUpdated:   "Procedure updated",
	domain.EventProcedureRemoved:   "Procedure removed",
	domain.EventProcedureBreached:  "Target breach",
	domain.EventProcedureAtRisk:    "Approaching target",
	domain.EventProcedureScheduled: "Procedure scheduled",
	domain.EventProcedureCancelled: "Procedure cancelled",
	domain.EventSessionCreated:     "Theatre list created",
	domain.EventSessionNearCap:     "List near capacity",
	domain.EventStaffShortage:      "Staffing shortfall",
	domain.EventInventoryLow:       "Stock low",
	domain.EventInventoryExpiring:  "Stock expiring",
	domain.EventInventoryExpired:   "Stock expired",
	domain.EventUserActivity:       "Activity",
}

func titleFor(event domain.DomainEvent) string {
	if t, ok := titles[event.Kind]; ok {
		return t
	}
	return event.Summary
}

// bodyFor renders the stable body format: summary, details, then suggested
// actions on their own lines.
func bodyFor(event domain.DomainEvent) string {
	var b strings.Builder
	b.WriteString(event.Summary)
	if event.Details != "" {
		b.WriteString("\n")
		b.WriteString(event.Details)
	}
	for _, action := range event.SuggestedActions {
		b.WriteString("\n- ")
		b.WriteString(action)
	}
	return b.String()
}

// actionRefFor links the notification back to the record that raised it.
func actionRefFor(event domain.DomainEvent) string {
	if event.EntityID == "" {
		return ""
	}
	return "/" + string(event.EntityType) + "s/" + event.EntityID
}
