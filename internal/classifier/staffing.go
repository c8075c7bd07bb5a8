package classifier

import (
	"fmt"
	"sort"
	"strings"

	"theatreops/internal/domain"
)

func (c *Classifier) classifyStaffing(kind domain.ChangeKind, _, newRec *domain.StaffAllocation) []domain.DomainEvent {
	if kind == domain.ChangeRemoved {
		return nil
	}

	shortfalls := roleShortfalls(newRec)
	if len(shortfalls) == 0 {
		return nil
	}

	// One event aggregates every shortfall on the record, not one per role.
	var parts []string
	for _, s := range shortfalls {
		parts = append(parts, fmt.Sprintf("%s short by %d", s.role, s.deficit))
	}

	ev := c.newEvent(domain.EventStaffShortage, domain.EntityStaffing, newRec.ID)
	ev.Summary = fmt.Sprintf("Staffing shortfall on session %s", newRec.SessionID)
	ev.Details = strings.Join(parts, "; ") + "."
	ev.RequiresAction = true
	ev.SuggestedActions = []string{
		"Request cover from the staff bank",
		"Check neighbouring sessions for spare staff",
	}
	ev.AffectedRecipients = recipients(newRec.RosterID)
	ev.Clinical = domain.ClinicalAttrs{Count: worstCoverage(newRec, shortfalls)}
	return []domain.DomainEvent{ev}
}

type shortfall struct {
	role    string
	deficit int
}

// roleShortfalls returns positive required-minus-allocated deficits in role
// name order so event details render identically across runs.
func roleShortfalls(a *domain.StaffAllocation) []shortfall {
	var out []shortfall
	for role, required := range a.Required {
		if deficit := required - a.Allocated[role]; deficit > 0 {
			out = append(out, shortfall{role: role, deficit: deficit})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].role < out[j].role })
	return out
}

// worstCoverage is the allocated headcount on the thinnest short role. A role
// with nobody allocated at all escalates the event.
func worstCoverage(a *domain.StaffAllocation, shortfalls []shortfall) int {
	worst := -1
	for _, s := range shortfalls {
		allocated := a.Allocated[s.role]
		if worst < 0 || allocated < worst {
			worst = allocated
		}
	}
	if worst < 0 {
		return 0
	}
	return worst
}
