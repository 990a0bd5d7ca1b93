// Package service implements the paluwagan engine's operations over a
// storage.Store: the client registry, membership roster, cycle scheduler,
// contribution and payout ledgers, and the group lifecycle controller.
//
// Services validate input and state-machine transitions, then delegate to
// the store, whose transactions and unique constraints are the source of
// truth under concurrent callers. All failures are sentinels from the models
// package, wrapped with context; nothing here is fatal to the process.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmagtibay/paluwagan/internal/models"
	"github.com/rmagtibay/paluwagan/internal/storage"
)

// ClientService manages the client registry.
type ClientService struct {
	store storage.Store
	// cascadeDelete permits deleting clients that still hold memberships,
	// taking the memberships and their ledger rows along.
	cascadeDelete bool
}

// NewClientService creates a ClientService with the given storage backend.
func NewClientService(store storage.Store, cascadeDelete bool) *ClientService {
	return &ClientService{store: store, cascadeDelete: cascadeDelete}
}

func validateClient(c *models.Client) error {
	if strings.TrimSpace(c.FirstName) == "" {
		return fmt.Errorf("%w: first name required", models.ErrValidation)
	}
	if strings.TrimSpace(c.LastName) == "" {
		return fmt.Errorf("%w: last name required", models.ErrValidation)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: malformed email %q", models.ErrValidation, c.Email)
	}
	return nil
}

// Create registers a new client.
func (s *ClientService) Create(ctx context.Context, c *models.Client) (*models.Client, error) {
	if err := validateClient(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("client created", "client_id", c.ID)
	return c, nil
}

// Get retrieves a client by ID.
func (s *ClientService) Get(ctx context.Context, id int64) (*models.Client, error) {
	return s.store.GetClient(ctx, id)
}

// List retrieves all clients.
func (s *ClientService) List(ctx context.Context) ([]*models.Client, error) {
	return s.store.ListClients(ctx)
}

// Update overwrites a client's identity fields.
func (s *ClientService) Update(ctx context.Context, c *models.Client) (*models.Client, error) {
	if err := validateClient(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("client updated", "client_id", c.ID)
	return c, nil
}

// Delete removes a client. Clients referenced by memberships are protected
// unless the engine is configured to cascade.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteClient(ctx, id, s.cascadeDelete); err != nil {
		return err
	}
	slog.Info("client deleted", "client_id", id, "cascade", s.cascadeDelete)
	return nil
}
