package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// GroupService is the group lifecycle controller plus group CRUD. Status
// moves only through Activate and Terminate here; the finished state is
// reached by the payout ledger's completion detection (see PayoutService).
type GroupService struct {
	store storage.Store
	// defaultMaxCycles seeds max_cycles when the caller passes none;
	// conventionally the member capacity, one payout per rotation slot.
	defaultMaxCycles int
}

// NewGroupService creates a GroupService with the given storage backend.
func NewGroupService(store storage.Store, defaultMaxCycles int) *GroupService {
	return &GroupService{store: store, defaultMaxCycles: defaultMaxCycles}
}

// Create registers a new group in the pending state.
func (s *GroupService) Create(ctx context.Context, name, description string, maxCycles int) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: group name required", models.ErrValidation)
	}
	if maxCycles < 0 {
		return nil, fmt.Errorf("%w: max_cycles must be positive", models.ErrValidation)
	}
	if maxCycles == 0 {
		maxCycles = s.defaultMaxCycles
	}

	g := &models.Group{
		Name:        name,
		Description: description,
		MaxCycles:   maxCycles,
		Status:      models.GroupPending,
	}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	slog.Info("group created", "group_id", g.ID, "name", g.Name, "max_cycles", g.MaxCycles)
	return g, nil
}

// Get retrieves a group by ID.
func (s *GroupService) Get(ctx context.Context, id int64) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// GetDetail retrieves a group with members, cycles, and ledgers eagerly
// joined.
func (s *GroupService) GetDetail(ctx context.Context, id int64) (*models.GroupDetail, error) {
	return s.store.GetGroupDetail(ctx, id)
}

// List retrieves all groups with member counts. rawStatus filters by
// lifecycle state when non-empty.
func (s *GroupService) List(ctx context.Context, rawStatus string) ([]*models.GroupSummary, error) {
	var status *models.GroupStatus
	if rawStatus != "" {
		parsed, err := models.ParseGroupStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		status = &parsed
	}
	return s.store.ListGroups(ctx, status)
}

// Update applies a partial update of the group's descriptive fields.
func (s *GroupService) Update(ctx context.Context, id int64, patch models.GroupPatch) (*models.Group, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: group name required", models.ErrValidation)
	}
	if patch.MaxCycles != nil && *patch.MaxCycles < 1 {
		return nil, fmt.Errorf("%w: max_cycles must be positive", models.ErrValidation)
	}
	if err := s.store.UpdateGroupInfo(ctx, id, patch); err != nil {
		return nil, err
	}
	slog.Info("group updated", "group_id", id)
	return s.store.GetGroup(ctx, id)
}

// Delete removes a group and everything it owns.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteGroup(ctx, id); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", id)
	return nil
}

// Activate moves a pending group to active. Any other current state is
// rejected.
func (s *GroupService) Activate(ctx context.Context, id int64) (*models.Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status != models.GroupPending {
		return nil, fmt.Errorf("%w: cannot activate %s group %d", models.ErrInvalidStateTransition, g.Status, id)
	}

	if err := s.store.UpdateGroupStatus(ctx, id, models.GroupPending, models.GroupActive); err != nil {
		return nil, err
	}
	slog.Info("group activated", "group_id", id)
	return s.store.GetGroup(ctx, id)
}

// Terminate irreversibly ends an active group, appending a termination log
// entry in the same transaction as the status write.
func (s *GroupService) Terminate(ctx context.Context, id int64, reason string) (*models.Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Status != models.GroupActive {
		return nil, fmt.Errorf("%w: cannot terminate %s group %d", models.ErrInvalidStateTransition, g.Status, id)
	}

	if err := s.store.TerminateGroup(ctx, id, reason); err != nil {
		return nil, err
	}
	slog.Info("group terminated", "group_id", id, "reason", reason)
	return s.store.GetGroup(ctx, id)
}

// ListTerminations retrieves the group's termination log.
func (s *GroupService) ListTerminations(ctx context.Context, id int64) ([]*models.GroupTermination, error) {
	if _, err := s.store.GetGroup(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListTerminations(ctx, id)
}
