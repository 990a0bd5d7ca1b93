package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmagtibay/paluwagan/internal/models"
)

const groupColumns = `group_id, name, description, max_cycles, status, current_cycle, created_at, status_changed_at`

func scanGroup(row interface{ Scan(...any) error }, g *models.Group) error {
	var description sql.NullString
	var currentCycle, statusChangedAt sql.NullInt64
	if err := row.Scan(&g.ID, &g.Name, &description, &g.MaxCycles, &g.Status, &currentCycle, &g.CreatedAt, &statusChangedAt); err != nil {
		return err
	}
	g.Description = description.String
	if currentCycle.Valid {
		n := int(currentCycle.Int64)
		g.CurrentCycle = &n
	} else {
		g.CurrentCycle = nil
	}
	if statusChangedAt.Valid {
		ts := statusChangedAt.Int64
		g.StatusChangedAt = &ts
	} else {
		g.StatusChangedAt = nil
	}
	return nil
}

// CreateGroup inserts a new group and populates ID and CreatedAt. New groups
// start pending with no current cycle.
func (s *SQLiteStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.CreatedAt == 0 {
		g.CreatedAt = now()
	}
	if g.Status == "" {
		g.Status = models.GroupPending
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (name, description, max_cycles, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		g.Name, nullString(g.Description), g.MaxCycles, g.Status, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	g.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read group id: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	g := &models.Group{}
	err := scanGroup(s.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE group_id = ?`, id), g)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: group %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}

// ListGroups retrieves all groups with member counts, optionally filtered by
// status.
func (s *SQLiteStore) ListGroups(ctx context.Context, status *models.GroupStatus) ([]*models.GroupSummary, error) {
	query := `SELECT g.group_id, g.name, g.description, g.max_cycles, g.status, g.current_cycle,
	                 g.created_at, g.status_changed_at, COUNT(m.member_id)
	            FROM groups g
	            LEFT JOIN memberships m ON m.group_id = g.group_id`
	var args []any
	if status != nil {
		query += ` WHERE g.status = ?`
		args = append(args, *status)
	}
	query += ` GROUP BY g.group_id ORDER BY g.group_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.GroupSummary
	for rows.Next() {
		gs := &models.GroupSummary{}
		var description sql.NullString
		var currentCycle, statusChangedAt sql.NullInt64
		if err := rows.Scan(&gs.ID, &gs.Name, &description, &gs.MaxCycles, &gs.Status,
			&currentCycle, &gs.CreatedAt, &statusChangedAt, &gs.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		gs.Description = description.String
		if currentCycle.Valid {
			n := int(currentCycle.Int64)
			gs.CurrentCycle = &n
		}
		if statusChangedAt.Valid {
			ts := statusChangedAt.Int64
			gs.StatusChangedAt = &ts
		}
		groups = append(groups, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// UpdateGroupInfo applies a partial update of the group's descriptive
// fields. Status is not touched here.
func (s *SQLiteStore) UpdateGroupInfo(ctx context.Context, id int64, patch models.GroupPatch) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		g := &models.Group{}
		err := scanGroup(tx.QueryRowContext(ctx,
			`SELECT `+groupColumns+` FROM groups WHERE group_id = ?`, id), g)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: group %d", models.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to get group: %w", err)
		}

		if patch.Name != nil {
			g.Name = *patch.Name
		}
		if patch.Description != nil {
			g.Description = *patch.Description
		}
		if patch.MaxCycles != nil {
			g.MaxCycles = *patch.MaxCycles
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE groups SET name = ?, description = ?, max_cycles = ? WHERE group_id = ?`,
			g.Name, nullString(g.Description), g.MaxCycles, id); err != nil {
			return fmt.Errorf("failed to update group: %w", err)
		}
		return nil
	})
}

// UpdateGroupStatus conditionally moves the group from one status to
// another, stamping status_changed_at. The WHERE clause carries the expected
// current status so concurrent writers cannot double-apply a transition.
func (s *SQLiteStore) UpdateGroupStatus(ctx context.Context, id int64, from, to models.GroupStatus) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return updateGroupStatusTx(ctx, tx, id, from, to, now())
	})
}

func updateGroupStatusTx(ctx context.Context, tx *sql.Tx, id int64, from, to models.GroupStatus, ts int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE groups SET status = ?, status_changed_at = ? WHERE group_id = ? AND status = ?`,
		to, ts, id, from)
	if err != nil {
		return fmt.Errorf("failed to update group status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check group status update: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE group_id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: group %d", models.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}
		return fmt.Errorf("%w: group %d is not %s", models.ErrInvalidStateTransition, id, from)
	}
	return nil
}

// TerminateGroup atomically moves an active group to terminated and appends
// the termination log row. If the status write does not apply, the log row
// is never written.
func (s *SQLiteStore) TerminateGroup(ctx context.Context, id int64, reason string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		if err := updateGroupStatusTx(ctx, tx, id, models.GroupActive, models.GroupTerminated, ts); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO group_terminations (group_id, reason, terminated_at) VALUES (?, ?, ?)`,
			id, nullString(reason), ts); err != nil {
			return fmt.Errorf("failed to insert termination log: %w", err)
		}
		return nil
	})
}

// ListTerminations retrieves the termination log for a group.
func (s *SQLiteStore) ListTerminations(ctx context.Context, groupID int64) ([]*models.GroupTermination, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT termination_id, group_id, reason, terminated_at
		 FROM group_terminations WHERE group_id = ? ORDER BY termination_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list terminations: %w", err)
	}
	defer rows.Close()

	var logs []*models.GroupTermination
	for rows.Next() {
		t := &models.GroupTermination{}
		var reason sql.NullString
		if err := rows.Scan(&t.ID, &t.GroupID, &reason, &t.TerminatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan termination: %w", err)
		}
		t.Reason = reason.String
		logs = append(logs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate terminations: %w", err)
	}
	return logs, nil
}

// DeleteGroup removes the group and everything it owns in one transaction:
// ledger rows, cycles, memberships, and the termination log.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE group_id = ?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: group %d", models.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}

		for _, stmt := range []string{
			`DELETE FROM contributions WHERE cycle_id IN (SELECT cycle_id FROM cycles WHERE group_id = ?)`,
			`DELETE FROM payouts WHERE cycle_id IN (SELECT cycle_id FROM cycles WHERE group_id = ?)`,
			`DELETE FROM cycles WHERE group_id = ?`,
			`DELETE FROM memberships WHERE group_id = ?`,
			`DELETE FROM group_terminations WHERE group_id = ?`,
			`DELETE FROM groups WHERE group_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to cascade group delete: %w", err)
			}
		}
		return nil
	})
}

// GetGroupDetail eagerly loads a group with its members, cycles, and
// ledgers.
func (s *SQLiteStore) GetGroupDetail(ctx context.Context, id int64) (*models.GroupDetail, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.GroupDetail{Group: *g}

	detail.Members, err = s.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}

	cycles, err := s.ListCycles(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range cycles {
		cd := &models.CycleDetail{Cycle: *c}
		cd.Contributions, err = s.ListContributionsByCycle(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		cd.Payouts, err = s.ListPayoutsByCycle(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		for _, contrib := range cd.Contributions {
			cd.ContributedTotal += contrib.Amount
		}
		detail.Cycles = append(detail.Cycles, cd)
	}
	return detail, nil
}
