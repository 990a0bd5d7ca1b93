package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// PayoutService manages the payout ledger. Completing a payout is what
// drives a group to the finished state: the store checks the group's
// completed payout count against max_cycles inside the same transaction.
type PayoutService struct {
	store storage.Store
}

// NewPayoutService creates a PayoutService with the given storage backend.
func NewPayoutService(store storage.Store) *PayoutService {
	return &PayoutService{store: store}
}

// Schedule enters a payout against a cycle. rawStatus defaults to scheduled
// when empty.
func (s *PayoutService) Schedule(ctx context.Context, groupID, cycleID, memberID int64, amount float64, rawStatus string) (*models.Payout, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", models.ErrValidation)
	}

	status := models.PayoutScheduled
	if rawStatus != "" {
		parsed, err := models.ParsePayoutStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	p := &models.Payout{
		CycleID:  cycleID,
		MemberID: memberID,
		Amount:   amount,
		Status:   status,
	}
	if err := s.store.CreatePayout(ctx, groupID, p); err != nil {
		return nil, err
	}
	slog.Info("payout scheduled", "cycle_id", cycleID, "member_id", memberID, "payout_id", p.ID, "amount", amount, "status", status)
	return p, nil
}

// Get retrieves a payout scoped to its cycle.
func (s *PayoutService) Get(ctx context.Context, groupID, cycleID, id int64) (*models.Payout, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	return s.store.GetPayout(ctx, cycleID, id)
}

// Update applies a partial update. Completing a payout stamps paid_at and
// may finish the group; reverting one clears the stamp.
func (s *PayoutService) Update(ctx context.Context, groupID, cycleID, id int64, patch models.PayoutPatch) (*models.Payout, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", models.ErrValidation)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown payout status %q", models.ErrValidation, *patch.Status)
	}

	p, err := s.store.UpdatePayout(ctx, cycleID, id, patch)
	if err != nil {
		return nil, err
	}
	slog.Info("payout updated", "cycle_id", cycleID, "payout_id", id, "status", p.Status)
	return p, nil
}

// Delete removes a payout from the ledger.
func (s *PayoutService) Delete(ctx context.Context, groupID, cycleID, id int64) error {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return err
	}
	if err := s.store.DeletePayout(ctx, cycleID, id); err != nil {
		return err
	}
	slog.Info("payout deleted", "cycle_id", cycleID, "payout_id", id)
	return nil
}

// ListByCycle retrieves a cycle's payouts with member names.
func (s *PayoutService) ListByCycle(ctx context.Context, groupID, cycleID int64) ([]*models.PayoutDetail, error) {
	if _, err := s.store.GetCycle(ctx, groupID, cycleID); err != nil {
		return nil, err
	}
	return s.store.ListPayoutsByCycle(ctx, cycleID)
}

// ListAll retrieves every payout across all groups, settled rows first.
func (s *PayoutService) ListAll(ctx context.Context) ([]*models.PayoutDetail, error) {
	return s.store.ListPayouts(ctx)
}
