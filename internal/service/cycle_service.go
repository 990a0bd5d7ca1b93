package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// CycleService schedules rotation cycles within a group.
type CycleService struct {
	store storage.Store
}

// NewCycleService creates a CycleService with the given storage backend.
func NewCycleService(store storage.Store) *CycleService {
	return &CycleService{store: store}
}

// Create schedules a cycle for a group. rawStatus defaults to pending when
// empty. By convention cycle N pays out the member at position N; a missing
// member at that position is logged, not rejected, since rosters fill in
// any order.
func (s *CycleService) Create(ctx context.Context, groupID int64, number int, startDate, endDate, rawStatus string) (*models.Cycle, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if number < 1 {
		return nil, fmt.Errorf("%w: cycle number must be at least 1", models.ErrValidation)
	}
	if err := models.ValidateDateRange(startDate, endDate); err != nil {
		return nil, err
	}

	status := models.CyclePending
	if rawStatus != "" {
		parsed, err := models.ParseCycleStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	occupied, err := s.store.MemberAtPosition(ctx, groupID, number)
	if err != nil {
		return nil, err
	}
	if !occupied {
		slog.Warn("cycle has no member at its payout position", "group_id", groupID, "cycle_number", number)
	}

	c := &models.Cycle{
		GroupID:   groupID,
		Number:    number,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    status,
	}
	if err := s.store.CreateCycle(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("cycle created", "group_id", groupID, "cycle_id", c.ID, "cycle_number", number, "status", status)
	return c, nil
}

// Get retrieves a cycle scoped to its group.
func (s *CycleService) Get(ctx context.Context, groupID, cycleID int64) (*models.Cycle, error) {
	return s.store.GetCycle(ctx, groupID, cycleID)
}

// List retrieves a group's cycles in rotation order.
func (s *CycleService) List(ctx context.Context, groupID int64) ([]*models.Cycle, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListCycles(ctx, groupID)
}

// Update applies a partial update to a cycle's dates and status. Status may
// only move along pending -> active -> completed, with cancellation allowed
// from either non-terminal state.
func (s *CycleService) Update(ctx context.Context, groupID, cycleID int64, patch models.CyclePatch) (*models.Cycle, error) {
	cur, err := s.store.GetCycle(ctx, groupID, cycleID)
	if err != nil {
		return nil, err
	}

	next := *cur
	if patch.StartDate != nil {
		next.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		next.EndDate = *patch.EndDate
	}
	if err := models.ValidateDateRange(next.StartDate, next.EndDate); err != nil {
		return nil, err
	}

	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown cycle status %q", models.ErrValidation, *patch.Status)
		}
		if !cur.Status.CanTransition(*patch.Status) {
			return nil, fmt.Errorf("%w: cycle %d cannot move from %s to %s",
				models.ErrInvalidStateTransition, cycleID, cur.Status, *patch.Status)
		}
		next.Status = *patch.Status
	}

	if err := s.store.UpdateCycle(ctx, groupID, &next, cur.Status); err != nil {
		return nil, err
	}
	slog.Info("cycle updated", "group_id", groupID, "cycle_id", cycleID, "status", next.Status)
	return &next, nil
}

// Delete removes a cycle and its ledgers.
func (s *CycleService) Delete(ctx context.Context, groupID, cycleID int64) error {
	if err := s.store.DeleteCycle(ctx, groupID, cycleID); err != nil {
		return err
	}
	slog.Info("cycle deleted", "group_id", groupID, "cycle_id", cycleID)
	return nil
}
