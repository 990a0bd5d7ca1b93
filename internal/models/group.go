package models

// Group is a fixed cohort of members taking turns contributing into a pool
// and receiving the payout.
type Group struct {
	ID          int64  `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// MaxCycles is the number of completed payouts that finishes the group.
	// Always > 0.
	MaxCycles int `json:"max_cycles"`

	Status GroupStatus `json:"status"`

	// CurrentCycle is the cycle_number of the group's active cycle, nil when
	// no cycle is active. Maintained by the cycle scheduler, never by
	// callers.
	CurrentCycle *int `json:"current_cycle"`

	// CreatedAt is the unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`

	// StatusChangedAt is stamped on every status write and only on status
	// writes. Nil until the first status change.
	StatusChangedAt *int64 `json:"status_changed_at"`
}

// GroupPatch is a partial update of a group's descriptive fields. Status is
// deliberately absent; it moves only through Activate/Terminate and the
// payout completion detector.
type GroupPatch struct {
	Name        *string
	Description *string
	MaxCycles   *int
}

// GroupSummary is the listing read model: a group with its member count.
type GroupSummary struct {
	Group
	MemberCount int `json:"member_count"`
}

// GroupTermination is one row of the append-only termination log, created
// exactly when a group transitions to terminated.
type GroupTermination struct {
	ID           int64  `json:"termination_id"`
	GroupID      int64  `json:"group_id"`
	Reason       string `json:"reason"`
	TerminatedAt int64  `json:"terminated_at"`
}

// GroupDetail is the eager read model for a single group: members with their
// client records, and cycles with their ledgers.
type GroupDetail struct {
	Group
	Members []*MemberDetail `json:"members"`
	Cycles  []*CycleDetail  `json:"cycles"`
}
