// Package storage provides abstractions for persistent engine state.
package storage

import (
	"context"

	"github.com/rmagtibay/paluwagan/internal/models"
)

// Store is the engine's persistence boundary. Every mutating method is a
// single transactional unit: the uniqueness checks and cross-entity side
// effects it documents happen atomically with the write, and constraint
// violations surface as the sentinel errors from the models package.
//
// The abstraction exists so the SQLite backend can be swapped for another
// engine without touching the service layer.
type Store interface {
	// Clients.

	// CreateClient persists a new client, assigning ID and CreatedAt.
	CreateClient(ctx context.Context, c *models.Client) error
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	UpdateClient(ctx context.Context, c *models.Client) error
	// DeleteClient removes a client. With cascade false it fails with
	// ErrClientInUse while memberships reference the client; with cascade
	// true those memberships and their ledger rows go in the same
	// transaction.
	DeleteClient(ctx context.Context, id int64, cascade bool) error

	// Groups.

	// CreateGroup persists a new group, assigning ID and CreatedAt.
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	// GetGroupDetail eagerly loads members (with clients) and cycles (with
	// ledgers and contributed totals).
	GetGroupDetail(ctx context.Context, id int64) (*models.GroupDetail, error)
	// ListGroups returns all groups with member counts, optionally filtered
	// by status.
	ListGroups(ctx context.Context, status *models.GroupStatus) ([]*models.GroupSummary, error)
	UpdateGroupInfo(ctx context.Context, id int64, patch models.GroupPatch) error
	// UpdateGroupStatus conditionally moves a group from one status to
	// another, stamping status_changed_at. Returns
	// ErrInvalidStateTransition when the group is no longer in the expected
	// status.
	UpdateGroupStatus(ctx context.Context, id int64, from, to models.GroupStatus) error
	// TerminateGroup atomically sets status terminated and appends the
	// termination log row; either both happen or neither.
	TerminateGroup(ctx context.Context, id int64, reason string) error
	ListTerminations(ctx context.Context, groupID int64) ([]*models.GroupTermination, error)
	// DeleteGroup removes the group and everything it owns: memberships,
	// cycles, their contributions and payouts, and the termination log.
	DeleteGroup(ctx context.Context, id int64) error

	// Memberships.

	// AddMember inserts a membership, enforcing capacity and (unless
	// allowRepeat) the one-slot-per-client policy inside the transaction.
	// A position collision surfaces as ErrPositionTaken.
	AddMember(ctx context.Context, m *models.Membership, capacity int, allowRepeat bool) error
	GetMember(ctx context.Context, groupID, memberID int64) (*models.Membership, error)
	ListMembers(ctx context.Context, groupID int64) ([]*models.MemberDetail, error)
	// MemberAtPosition reports whether any member of the group holds the
	// given rotation position.
	MemberAtPosition(ctx context.Context, groupID int64, position int) (bool, error)
	ChangePosition(ctx context.Context, groupID, memberID int64, newPosition int) error
	// RemoveMember deletes the membership and that member's contributions
	// and payouts. Remaining positions are not renumbered.
	RemoveMember(ctx context.Context, groupID, memberID int64) error

	// Cycles.

	// CreateCycle inserts a cycle; when created active it also points the
	// group's current_cycle at it.
	CreateCycle(ctx context.Context, c *models.Cycle) error
	GetCycle(ctx context.Context, groupID, cycleID int64) (*models.Cycle, error)
	ListCycles(ctx context.Context, groupID int64) ([]*models.Cycle, error)
	// UpdateCycle writes the cycle's dates and status, conditional on the
	// cycle still holding prev status, and maintains the group's
	// current_cycle pointer across transitions into and out of active.
	UpdateCycle(ctx context.Context, groupID int64, c *models.Cycle, prev models.CycleStatus) error
	// DeleteCycle removes the cycle and its ledgers, clearing the group
	// pointer when it references the deleted cycle.
	DeleteCycle(ctx context.Context, groupID, cycleID int64) error

	// Contributions.

	// CreateContribution inserts a contribution after verifying the member
	// belongs to the cycle's group. PaidAt is stamped iff the status is
	// paid.
	CreateContribution(ctx context.Context, groupID int64, c *models.Contribution) error
	GetContribution(ctx context.Context, cycleID, id int64) (*models.Contribution, error)
	// UpdateContribution applies the patch, recomputing PaidAt on status
	// changes: into paid stamps now, paid-to-paid preserves the stamp, out
	// of paid clears it.
	UpdateContribution(ctx context.Context, cycleID, id int64, patch models.ContributionPatch) (*models.Contribution, error)
	DeleteContribution(ctx context.Context, cycleID, id int64) error
	ListContributionsByCycle(ctx context.Context, cycleID int64) ([]*models.ContributionDetail, error)
	// ListContributions returns every contribution: paid rows first, most
	// recently paid on top, then unpaid.
	ListContributions(ctx context.Context) ([]*models.ContributionDetail, error)

	// Payouts.

	// CreatePayout mirrors CreateContribution for disbursements. A payout
	// created completed runs completion detection in the same transaction.
	CreatePayout(ctx context.Context, groupID int64, p *models.Payout) error
	GetPayout(ctx context.Context, cycleID, id int64) (*models.Payout, error)
	// UpdatePayout applies the patch with the PaidAt discipline; a
	// transition into completed runs completion detection: when the group's
	// completed payout count reaches max_cycles, an active group is marked
	// finished in the same transaction.
	UpdatePayout(ctx context.Context, cycleID, id int64, patch models.PayoutPatch) (*models.Payout, error)
	DeletePayout(ctx context.Context, cycleID, id int64) error
	ListPayoutsByCycle(ctx context.Context, cycleID int64) ([]*models.PayoutDetail, error)
	ListPayouts(ctx context.Context) ([]*models.PayoutDetail, error)

	// DashboardSummary computes the aggregate read model for display.
	DashboardSummary(ctx context.Context) (*models.DashboardSummary, error)

	// Close releases any resources held by the store.
	Close() error
}
