package service

import (
	"context"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// DashboardService exposes the aggregate read model.
type DashboardService struct {
	store storage.Store
}

// NewDashboardService creates a DashboardService with the given storage
// backend.
func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Summary computes the dashboard aggregates: member headcount, active
// groups, outstanding payout value, and the recent active cycles with their
// pots.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	return s.store.DashboardSummary(ctx)
}
