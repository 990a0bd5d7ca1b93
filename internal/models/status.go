package models

import "fmt"

// GroupStatus is the lifecycle state of a group.
//
// Machine: pending -> active -> finished; active -> terminated.
// finished and terminated are terminal.
type GroupStatus string

const (
	GroupPending    GroupStatus = "pending"
	GroupActive     GroupStatus = "active"
	GroupFinished   GroupStatus = "finished"
	GroupTerminated GroupStatus = "terminated"
)

func (s GroupStatus) Valid() bool {
	switch s {
	case GroupPending, GroupActive, GroupFinished, GroupTerminated:
		return true
	}
	return false
}

// CanTransition reports whether the machine permits moving to the given
// status. A same-status write is not a transition and is always permitted.
func (s GroupStatus) CanTransition(to GroupStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case GroupPending:
		return to == GroupActive
	case GroupActive:
		return to == GroupFinished || to == GroupTerminated
	}
	return false
}

// ParseGroupStatus validates a raw status string.
func ParseGroupStatus(raw string) (GroupStatus, error) {
	s := GroupStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown group status %q", ErrValidation, raw)
	}
	return s, nil
}

// CycleStatus is the state of one rotation period.
//
// Machine: pending -> active -> completed; pending -> cancelled and
// active -> cancelled are also permitted. completed and cancelled are
// terminal.
type CycleStatus string

const (
	CyclePending   CycleStatus = "pending"
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
	CycleCancelled CycleStatus = "cancelled"
)

func (s CycleStatus) Valid() bool {
	switch s {
	case CyclePending, CycleActive, CycleCompleted, CycleCancelled:
		return true
	}
	return false
}

func (s CycleStatus) CanTransition(to CycleStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case CyclePending:
		return to == CycleActive || to == CycleCancelled
	case CycleActive:
		return to == CycleCompleted || to == CycleCancelled
	}
	return false
}

func ParseCycleStatus(raw string) (CycleStatus, error) {
	s := CycleStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown cycle status %q", ErrValidation, raw)
	}
	return s, nil
}

// ContributionStatus is the payment state of one member's obligation for one
// cycle. There is no transition machine; any status may follow any other. The
// invariant is that PaidAt is set iff the status is paid.
type ContributionStatus string

const (
	ContributionPending ContributionStatus = "pending"
	ContributionPaid    ContributionStatus = "paid"
	ContributionMissed  ContributionStatus = "missed"
)

func (s ContributionStatus) Valid() bool {
	switch s {
	case ContributionPending, ContributionPaid, ContributionMissed:
		return true
	}
	return false
}

func ParseContributionStatus(raw string) (ContributionStatus, error) {
	s := ContributionStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown contribution status %q", ErrValidation, raw)
	}
	return s, nil
}

// PayoutStatus mirrors ContributionStatus for disbursements: PaidAt is set
// iff the status is completed.
type PayoutStatus string

const (
	PayoutScheduled PayoutStatus = "scheduled"
	PayoutCompleted PayoutStatus = "completed"
	PayoutFailed    PayoutStatus = "failed"
)

func (s PayoutStatus) Valid() bool {
	switch s {
	case PayoutScheduled, PayoutCompleted, PayoutFailed:
		return true
	}
	return false
}

func ParsePayoutStatus(raw string) (PayoutStatus, error) {
	s := PayoutStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown payout status %q", ErrValidation, raw)
	}
	return s, nil
}
