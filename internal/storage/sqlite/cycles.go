package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmagtibay/paluwagan/internal/models"
)

// CreateCycle inserts a cycle. A cycle created active also becomes the
// group's current cycle, in the same transaction.
func (s *SQLiteStore) CreateCycle(ctx context.Context, c *models.Cycle) error {
	if c.Status == "" {
		c.Status = models.CyclePending
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE group_id = ?`, c.GroupID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: group %d", models.ErrNotFound, c.GroupID)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO cycles (group_id, cycle_number, start_date, end_date, status)
			 VALUES (?, ?, ?, ?, ?)`,
			c.GroupID, c.Number, c.StartDate, c.EndDate, c.Status)
		if err != nil {
			return fmt.Errorf("failed to insert cycle: %w", translateConstraint(err))
		}

		c.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read cycle id: %w", err)
		}

		if c.Status == models.CycleActive {
			if _, err := tx.ExecContext(ctx,
				`UPDATE groups SET current_cycle = ? WHERE group_id = ?`,
				c.Number, c.GroupID); err != nil {
				return fmt.Errorf("failed to set current cycle: %w", err)
			}
		}
		return nil
	})
}

func scanCycle(row interface{ Scan(...any) error }) (*models.Cycle, error) {
	c := &models.Cycle{}
	if err := row.Scan(&c.ID, &c.GroupID, &c.Number, &c.StartDate, &c.EndDate, &c.Status); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCycle retrieves a cycle scoped to its group.
func (s *SQLiteStore) GetCycle(ctx context.Context, groupID, cycleID int64) (*models.Cycle, error) {
	c, err := scanCycle(s.db.QueryRowContext(ctx,
		`SELECT cycle_id, group_id, cycle_number, start_date, end_date, status
		 FROM cycles WHERE cycle_id = ? AND group_id = ?`, cycleID, groupID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: cycle %d in group %d", models.ErrNotFound, cycleID, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}
	return c, nil
}

// ListCycles retrieves a group's cycles in rotation order.
func (s *SQLiteStore) ListCycles(ctx context.Context, groupID int64) ([]*models.Cycle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cycle_id, group_id, cycle_number, start_date, end_date, status
		 FROM cycles WHERE group_id = ? ORDER BY cycle_number`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*models.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cycles: %w", err)
	}
	return cycles, nil
}

// UpdateCycle writes the cycle's dates and status, conditional on the cycle
// still holding prev status, and maintains the group's current_cycle pointer:
// a transition into active points the group at this cycle, a transition out
// of active clears the pointer if it references this cycle.
func (s *SQLiteStore) UpdateCycle(ctx context.Context, groupID int64, c *models.Cycle, prev models.CycleStatus) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE cycles SET start_date = ?, end_date = ?, status = ?
			 WHERE cycle_id = ? AND group_id = ? AND status = ?`,
			c.StartDate, c.EndDate, c.Status, c.ID, groupID, prev)
		if err != nil {
			return fmt.Errorf("failed to update cycle: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check cycle update: %w", err)
		}
		if n == 0 {
			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM cycles WHERE cycle_id = ? AND group_id = ?`,
				c.ID, groupID).Scan(&exists)
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: cycle %d in group %d", models.ErrNotFound, c.ID, groupID)
			}
			if err != nil {
				return fmt.Errorf("failed to check cycle existence: %w", err)
			}
			// The cycle moved status under us; the transition the caller
			// validated no longer applies.
			return fmt.Errorf("%w: cycle %d is no longer %s", models.ErrInvalidStateTransition, c.ID, prev)
		}

		switch {
		case c.Status == models.CycleActive && prev != models.CycleActive:
			if _, err := tx.ExecContext(ctx,
				`UPDATE groups SET current_cycle = ? WHERE group_id = ?`,
				c.Number, groupID); err != nil {
				return fmt.Errorf("failed to set current cycle: %w", err)
			}
		case c.Status != models.CycleActive && prev == models.CycleActive:
			if _, err := tx.ExecContext(ctx,
				`UPDATE groups SET current_cycle = NULL WHERE group_id = ? AND current_cycle = ?`,
				groupID, c.Number); err != nil {
				return fmt.Errorf("failed to clear current cycle: %w", err)
			}
		}
		return nil
	})
}

// DeleteCycle removes the cycle and its ledgers, clearing the group pointer
// when it references the deleted cycle.
func (s *SQLiteStore) DeleteCycle(ctx context.Context, groupID, cycleID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var number int
		err := tx.QueryRowContext(ctx,
			`SELECT cycle_number FROM cycles WHERE cycle_id = ? AND group_id = ?`,
			cycleID, groupID).Scan(&number)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: cycle %d in group %d", models.ErrNotFound, cycleID, groupID)
		}
		if err != nil {
			return fmt.Errorf("failed to get cycle: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM contributions WHERE cycle_id = ?`, cycleID); err != nil {
			return fmt.Errorf("failed to delete contributions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM payouts WHERE cycle_id = ?`, cycleID); err != nil {
			return fmt.Errorf("failed to delete payouts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cycles WHERE cycle_id = ?`, cycleID); err != nil {
			return fmt.Errorf("failed to delete cycle: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE groups SET current_cycle = NULL WHERE group_id = ? AND current_cycle = ?`,
			groupID, number); err != nil {
			return fmt.Errorf("failed to clear current cycle: %w", err)
		}
		return nil
	})
}
