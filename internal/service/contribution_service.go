package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// ContributionService manages the contribution ledger, the money flowing
// into each cycle's pot.
type ContributionService struct {
	store storage.Store
}

// NewContributionService creates a ContributionService with the given
// storage backend.
func NewContributionService(store storage.Store) *ContributionService {
	return &ContributionService{store: store}
}

// Record enters a contribution against a cycle. rawStatus defaults to
// pending when empty; a contribution recorded paid gets its paid_at stamp
// immediately.
func (s *ContributionService) Record(ctx context.Context, groupID, cycleID, memberID int64, amount float64, rawStatus, notes string) (*models.Contribution, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", models.ErrValidation)
	}

	status := models.ContributionPending
	if rawStatus != "" {
		parsed, err := models.ParseContributionStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	c := &models.Contribution{
		CycleID:  cycleID,
		MemberID: memberID,
		Amount:   amount,
		Status:   status,
		Notes:    notes,
	}
	if err := s.store.CreateContribution(ctx, groupID, c); err != nil {
		return nil, err
	}
	slog.Info("contribution recorded", "cycle_id", cycleID, "member_id", memberID, "contribution_id", c.ID, "amount", amount, "status", status)
	return c, nil
}

// Get retrieves a contribution scoped to its cycle.
func (s *ContributionService) Get(ctx context.Context, groupID, cycleID, id int64) (*models.Contribution, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	return s.store.GetContribution(ctx, cycleID, id)
}

// Update applies a partial update. Status changes drive the paid_at stamp:
// into paid sets it, out of paid clears it, paid-to-paid leaves it alone.
func (s *ContributionService) Update(ctx context.Context, groupID, cycleID, id int64, patch models.ContributionPatch) (*models.Contribution, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", models.ErrValidation)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown contribution status %q", models.ErrValidation, *patch.Status)
	}

	c, err := s.store.UpdateContribution(ctx, cycleID, id, patch)
	if err != nil {
		return nil, err
	}
	slog.Info("contribution updated", "cycle_id", cycleID, "contribution_id", id, "status", c.Status)
	return c, nil
}

// Delete removes a contribution from the ledger.
func (s *ContributionService) Delete(ctx context.Context, groupID, cycleID, id int64) error {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return err
	}
	if err := s.store.DeleteContribution(ctx, cycleID, id); err != nil {
		return err
	}
	slog.Info("contribution deleted", "cycle_id", cycleID, "contribution_id", id)
	return nil
}

// ListByCycle retrieves a cycle's contributions with member names.
func (s *ContributionService) ListByCycle(ctx context.Context, groupID, cycleID int64) ([]*models.ContributionDetail, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	return s.store.ListContributionsByCycle(ctx, cycleID)
}

// ListAll retrieves every contribution across all groups, settled rows
// first.
func (s *ContributionService) ListAll(ctx context.Context) ([]*models.ContributionDetail, error) {
	return s.store.ListContributions(ctx)
}
