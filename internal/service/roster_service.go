package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// RosterService manages group memberships and payout positions.
type RosterService struct {
	store storage.Store
	// capacity bounds how many members a group may hold.
	capacity int
	// allowRepeat permits the same client to hold more than one position in
	// a group.
	allowRepeat bool
}

// NewRosterService creates a RosterService with the given storage backend.
func NewRosterService(store storage.Store, capacity int, allowRepeat bool) *RosterService {
	return &RosterService{store: store, capacity: capacity, allowRepeat: allowRepeat}
}

// AddMember enrolls a client into a group at the given payout position.
func (s *RosterService) AddMember(ctx context.Context, groupID, clientID int64, position int) (*models.Membership, error) {
	if position < 1 {
		return nil, fmt.Errorf("%w: position must be at least 1", models.ErrValidation)
	}

	m := &models.Membership{
		GroupID:  groupID,
		ClientID: clientID,
		Position: position,
	}
	if err := s.store.AddMember(ctx, m, s.capacity, s.allowRepeat); err != nil {
		return nil, err
	}
	slog.Info("member added", "group_id", groupID, "client_id", clientID, "member_id", m.ID, "position", position)
	return m, nil
}

// GetMember retrieves a membership scoped to its group.
func (s *RosterService) GetMember(ctx context.Context, groupID, memberID int64) (*models.Membership, error) {
	return s.store.GetMember(ctx, groupID, memberID)
}

// ListMembers retrieves a group's roster in position order.
func (s *RosterService) ListMembers(ctx context.Context, groupID int64) ([]*models.MemberDetail, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, groupID)
}

// ChangePosition moves a member to a different payout position. The target
// position must be vacant.
func (s *RosterService) ChangePosition(ctx context.Context, groupID, memberID int64, newPosition int) (*models.Membership, error) {
	if newPosition < 1 {
		return nil, fmt.Errorf("%w: position must be at least 1", models.ErrValidation)
	}
	if err := s.store.ChangePosition(ctx, groupID, memberID, newPosition); err != nil {
		return nil, err
	}
	slog.Info("member position changed", "group_id", groupID, "member_id", memberID, "position", newPosition)
	return s.store.GetMember(ctx, groupID, memberID)
}

// RemoveMember drops a member from the group along with their ledger rows.
func (s *RosterService) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	if err := s.store.RemoveMember(ctx, groupID, memberID); err != nil {
		return err
	}
	slog.Info("member removed", "group_id", groupID, "member_id", memberID)
	return nil
}
