package query

// Response is the structured answer returned for an operational question.
// Confidence is 0-100; the fallback response carries zero confidence.
type Response struct {
	Topic        string        `json:"topic"`
	Answer       string        `json:"answer"`
	Confidence   int           `json:"confidence"`
	QuickActions []QuickAction `json:"quickActions,omitempty"`
}

// QuickAction is a follow-up the console can render next to the answer.
type QuickAction struct {
	Label string `json:"label"`
	Ref   string `json:"ref"`
}

// ProcedureStats aggregates waiting-list standing.
type ProcedureStats struct {
	Total    int
	Breached int
	AtRisk   int
	OnTrack  int
}

// SessionStats aggregates theatre list load.
type SessionStats struct {
	Total          int
	NearCapacity   int
	AvgUtilization float64
}

// StaffingStats aggregates allocation shortfalls.
type StaffingStats struct {
	RecordsShort int
	RolesShort   int
}

// InventoryStats aggregates stock conditions.
type InventoryStats struct {
	LowStock     int
	ExpiringSoon int
	Expired      int
}
