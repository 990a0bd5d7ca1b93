package models

// Payout is the lump-sum disbursement to a cycle's designated recipient.
// (CycleID, MemberID) is unique; in practice there is one payout per cycle.
//
// Invariant: PaidAt is non-nil iff Status == completed.
type Payout struct {
	ID       int64        `json:"payout_id"`
	CycleID  int64        `json:"cycle_id"`
	MemberID int64        `json:"member_id"`
	Amount   float64      `json:"amount"`
	Status   PayoutStatus `json:"status"`
	PaidAt   *int64       `json:"paid_at"`
}

// PayoutPatch is a partial update. A status change recomputes PaidAt.
type PayoutPatch struct {
	Amount *float64
	Status *PayoutStatus
}

// PayoutDetail is a payout joined with the member's client name for display.
type PayoutDetail struct {
	Payout
	MemberName string `json:"member_name"`
	GroupID    int64  `json:"group_id"`
	GroupName  string `json:"group_name"`
}

// DashboardSummary aggregates the engine's read model for the admin
// dashboard.
type DashboardSummary struct {
	TotalMembers         int           `json:"total_members"`
	ActiveGroups         int           `json:"active_groups"`
	ScheduledPayoutTotal float64       `json:"scheduled_payout_total"`
	ActiveCycles         []*ActiveCycle `json:"active_cycles"`
}

// ActiveCycle is one row of the dashboard's cycle tracker: an active cycle
// with its group name and contributed pot.
type ActiveCycle struct {
	CycleID   int64   `json:"cycle_id"`
	GroupID   int64   `json:"group_id"`
	GroupName string  `json:"group_name"`
	Number    int     `json:"cycle_number"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Pot       float64 `json:"pot"`
}
