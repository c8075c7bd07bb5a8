package domain

// Severity is the ordinal urgency level attached to a classified event. It
// drives dispatch and suppression decisions; downstream UI reads it from this
// field, never from notification text.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityNormal
	SeverityHigh
	SeverityUrgent
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "low",
	SeverityNormal:   "normal",
	SeverityHigh:     "high",
	SeverityUrgent:   "urgent",
	SeverityCritical: "critical",
}

// String returns the stable wire name for the severity. Unknown values map to
// "low" so a corrupt record never escalates.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "low"
}

// ParseSeverity maps a stored name back to its ordinal. Unknown names map to
// SeverityLow.
func ParseSeverity(name string) Severity {
	for sev, n := range severityNames {
		if n == name {
			return sev
		}
	}
	return SeverityLow
}

// Bucket collapses severities into the coarse grade used in dedup keys, so a
// condition oscillating between adjacent severities does not re-notify.
// low/normal share a bucket; high/urgent share a bucket; critical stands alone.
func (s Severity) Bucket() string {
	switch {
	case s >= SeverityCritical:
		return "critical"
	case s >= SeverityHigh:
		return "elevated"
	default:
		return "routine"
	}
}
