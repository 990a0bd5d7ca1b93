package models

import "errors"

// Engine error taxonomy. Every operation failure is one of these sentinels
// (usually wrapped with context); callers dispatch with errors.Is.
var (
	// ErrNotFound covers both missing entities and entities that exist but do
	// not belong to the parent scope implied by the call (e.g. a cycle
	// requested under the wrong group).
	ErrNotFound = errors.New("not found")

	// Constraint violations.
	ErrCapacityExceeded      = errors.New("group is at member capacity")
	ErrPositionTaken         = errors.New("rotation position already taken")
	ErrDuplicateMember       = errors.New("client is already a member of this group")
	ErrDuplicateCycleNumber  = errors.New("cycle number already exists for this group")
	ErrDuplicateContribution = errors.New("contribution already recorded for this member and cycle")
	ErrDuplicatePayout       = errors.New("payout already recorded for this member and cycle")
	ErrInvalidDateRange      = errors.New("end date is before start date")
	ErrClientInUse           = errors.New("client is referenced by group memberships")

	// ErrMemberNotInGroup rejects ledger rows for members outside the cycle's
	// group.
	ErrMemberNotInGroup = errors.New("member does not belong to the cycle's group")

	// ErrInvalidStateTransition rejects status changes not permitted by the
	// relevant state machine.
	ErrInvalidStateTransition = errors.New("status transition not allowed")

	// ErrValidation covers malformed input: negative amounts, unknown status
	// values, missing required fields.
	ErrValidation = errors.New("invalid input")
)
