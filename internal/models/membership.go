package models

// Membership assigns a client to a group at a rotation position. Position is
// 1-based and unique within the group; the member at position n is the
// designated payout recipient for cycle n.
type Membership struct {
	ID       int64 `json:"member_id"`
	GroupID  int64 `json:"group_id"`
	ClientID int64 `json:"client_id"`
	Position int   `json:"position"`
	// JoinedAt is the unix timestamp when the member was added.
	JoinedAt int64 `json:"joined_at"`
}

// MemberDetail is a membership joined with its client record.
type MemberDetail struct {
	Membership
	Client Client `json:"client"`
}
