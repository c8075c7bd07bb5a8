package domain

// Clinical priority tiers as coded on procedure records. P1a is the most
// urgent tier; P1b the urgent tier; higher codes are routine.
const (
	PriorityImmediate = "P1a"
	PriorityUrgent    = "P1b"
)

// Procedure is a waiting-list entry for one planned theatre procedure.
type Procedure struct {
	ID            string `json:"id"`
	PatientRef    string `json:"patientRef"`
	Specialty     string `json:"specialty"`
	PriorityTier  string `json:"priorityTier"`
	Status        string `json:"status"`
	DaysToTarget  int    `json:"daysToTarget"`
	Breached      bool   `json:"breached"`
	ConsultantID  string `json:"consultantId"`
	CoordinatorID string `json:"coordinatorId"`
}

// Procedure status values with classification significance.
const (
	ProcedureStatusScheduled = "scheduled"
	ProcedureStatusCancelled = "cancelled"
)

// TheatreSession is one bookable theatre list with a utilization figure
// maintained by the scheduler.
type TheatreSession struct {
	ID          string  `json:"id"`
	TheatreID   string  `json:"theatreId"`
	Date        string  `json:"date"`
	Specialty   string  `json:"specialty"`
	Utilization float64 `json:"utilization"`
	CaseCount   int     `json:"caseCount"`
	PlannerID   string  `json:"plannerId"`
}

// StaffAllocation compares required against allocated headcount per role for
// one session or template.
type StaffAllocation struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Required  map[string]int `json:"required"`
	Allocated map[string]int `json:"allocated"`
	RosterID  string         `json:"rosterId"`
}

// InventoryItem is one tracked consumable or implant.
type InventoryItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorderLevel"`
	DaysToExpiry int    `json:"daysToExpiry"`
	ManagerID    string `json:"managerId"`
}

// ActivityEntry records one user action in the admin console.
type ActivityEntry struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Action string `json:"action"`
	Target string `json:"target"`
}
