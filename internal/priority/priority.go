// Package priority derives a severity for classified events. This is pure
// domain logic: no I/O, no side effects, total over every event kind.
package priority

import "theatreops/internal/domain"

// Engine scores events against the escalation rules. It carries the at-risk
// window so scoring agrees with the classifier about what "close to target"
// means.
type Engine struct {
	targetWindowDays int
}

// New builds an engine using the given at-risk window in days.
func New(targetWindowDays int) *Engine {
	return &Engine{targetWindowDays: targetWindowDays}
}

// SeverityOf applies the escalation rules top-down; the first matching rule
// wins.
//
//  1. Most urgent clinical tier on the record: critical.
//  2. Breach-style event kinds: urgent.
//  3. Urgent clinical tier, or target date inside the at-risk window: high.
//  4. Capacity, shortage, and low-stock kinds: normal, escalated to high when
//     the underlying count has hit zero.
//  5. Everything else: low.
func (e *Engine) SeverityOf(event domain.DomainEvent) domain.Severity {
	if event.Clinical.PriorityTier == domain.PriorityImmediate {
		return domain.SeverityCritical
	}

	if isBreachKind(event.Kind) {
		return domain.SeverityUrgent
	}

	if event.Clinical.PriorityTier == domain.PriorityUrgent || e.withinTargetWindow(event.Clinical.DaysToTarget) {
		return domain.SeverityHigh
	}

	if isCapacityKind(event.Kind) {
		if event.Clinical.Count == 0 {
			return domain.SeverityHigh
		}
		return domain.SeverityNormal
	}

	return domain.SeverityLow
}

func (e *Engine) withinTargetWindow(daysToTarget int) bool {
	return daysToTarget > 0 && daysToTarget <= e.targetWindowDays
}

// isBreachKind covers conditions that have already crossed a clinical line:
// an overdue procedure or stock past its expiry date.
func isBreachKind(kind domain.EventKind) bool {
	switch kind {
	case domain.EventProcedureBreached, domain.EventInventoryExpired:
		return true
	}
	return false
}

// isCapacityKind covers threshold conditions that have not yet breached.
func isCapacityKind(kind domain.EventKind) bool {
	switch kind {
	case domain.EventSessionNearCap, domain.EventStaffShortage, domain.EventInventoryLow:
		return true
	}
	return false
}
