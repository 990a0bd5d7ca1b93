package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmagtibay/paluwagan/internal/models"
)

// CreateClient inserts a new client and populates ID and CreatedAt.
func (s *SQLiteStore) CreateClient(ctx context.Context, c *models.Client) error {
	if c.CreatedAt == 0 {
		c.CreatedAt = now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (first_name, last_name, email, phone, address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.FirstName, c.LastName, nullString(c.Email), nullString(c.Phone), nullString(c.Address), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", translateConstraint(err))
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read client id: %w", err)
	}
	return nil
}

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	c := &models.Client{}
	var email, phone, address sql.NullString
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &email, &phone, &address, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.Phone = phone.String
	c.Address = address.String
	return c, nil
}

// GetClient retrieves a client by ID.
func (s *SQLiteStore) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT client_id, first_name, last_name, email, phone, address, created_at
		 FROM clients WHERE client_id = ?`, id)

	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: client %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// ListClients retrieves all clients ordered by name.
func (s *SQLiteStore) ListClients(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client_id, first_name, last_name, email, phone, address, created_at
		 FROM clients ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// UpdateClient overwrites the client's identity fields.
func (s *SQLiteStore) UpdateClient(ctx context.Context, c *models.Client) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE clients SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?
		 WHERE client_id = ?`,
		c.FirstName, c.LastName, nullString(c.Email), nullString(c.Phone), nullString(c.Address), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", translateConstraint(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check client update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: client %d", models.ErrNotFound, c.ID)
	}
	return nil
}

// DeleteClient removes a client. While memberships reference the client it
// fails with ErrClientInUse unless cascade is set, in which case those
// memberships and their ledger rows are deleted in the same transaction.
func (s *SQLiteStore) DeleteClient(ctx context.Context, id int64, cascade bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE client_id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: client %d", models.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to check client existence: %w", err)
		}

		var memberships int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM memberships WHERE client_id = ?`, id).Scan(&memberships); err != nil {
			return fmt.Errorf("failed to count memberships: %w", err)
		}

		if memberships > 0 {
			if !cascade {
				return fmt.Errorf("%w: client %d", models.ErrClientInUse, id)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM contributions WHERE member_id IN (SELECT member_id FROM memberships WHERE client_id = ?)`, id); err != nil {
				return fmt.Errorf("failed to delete contributions: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM payouts WHERE member_id IN (SELECT member_id FROM memberships WHERE client_id = ?)`, id); err != nil {
				return fmt.Errorf("failed to delete payouts: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM memberships WHERE client_id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete memberships: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE client_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		return nil
	})
}
