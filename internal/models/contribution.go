package models

// Contribution is one member's payment obligation for one cycle.
// (CycleID, MemberID) is unique.
//
// Invariant: PaidAt is non-nil iff Status == paid.
type Contribution struct {
	ID       int64              `json:"contribution_id"`
	CycleID  int64              `json:"cycle_id"`
	MemberID int64              `json:"member_id"`
	Amount   float64            `json:"amount"`
	Status   ContributionStatus `json:"status"`
	PaidAt   *int64             `json:"paid_at"`
	Notes    string             `json:"notes,omitempty"`
}

// ContributionPatch is a partial update. A status change recomputes PaidAt;
// the engine never accepts PaidAt from callers.
type ContributionPatch struct {
	Amount *float64
	Status *ContributionStatus
	Notes  *string
}

// ContributionDetail is a contribution joined with the member's client name
// for display.
type ContributionDetail struct {
	Contribution
	MemberName string `json:"member_name"`
	GroupID    int64  `json:"group_id"`
	GroupName  string `json:"group_name"`
}
