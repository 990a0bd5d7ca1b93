package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmagtibay/paluwagan/internal/models"
)

// CreatePayout inserts a payout after verifying the member belongs to the
// cycle's group. A payout created completed runs completion detection in the
// same transaction.
func (s *SQLiteStore) CreatePayout(ctx context.Context, groupID int64, p *models.Payout) error {
	ts := now()
	if p.Status == models.PayoutCompleted {
		p.PaidAt = &ts
	} else {
		p.PaidAt = nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := memberInGroup(ctx, tx, groupID, p.MemberID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: member %d, group %d", models.ErrMemberNotInGroup, p.MemberID, groupID)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO payouts (cycle_id, member_id, amount, status, paid_at)
			 VALUES (?, ?, ?, ?, ?)`,
			p.CycleID, p.MemberID, p.Amount, p.Status, nullInt64(p.PaidAt))
		if err != nil {
			return fmt.Errorf("failed to insert payout: %w", translateConstraint(err))
		}

		p.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read payout id: %w", err)
		}

		if p.Status == models.PayoutCompleted {
			return detectCompletion(ctx, tx, p.CycleID, ts)
		}
		return nil
	})
}

// detectCompletion counts the group's completed payouts and, when the count
// reaches the group's max_cycles target, marks an active group finished.
// Runs inside the same transaction as the payout write that triggered it.
func detectCompletion(ctx context.Context, tx *sql.Tx, cycleID int64, ts int64) error {
	var groupID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT group_id FROM cycles WHERE cycle_id = ?`, cycleID).Scan(&groupID); err != nil {
		return fmt.Errorf("failed to resolve payout group: %w", err)
	}

	var completed, maxCycles int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payouts p
		   JOIN cycles c ON c.cycle_id = p.cycle_id
		  WHERE c.group_id = ? AND p.status = ?`,
		groupID, models.PayoutCompleted).Scan(&completed); err != nil {
		return fmt.Errorf("failed to count completed payouts: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT max_cycles FROM groups WHERE group_id = ?`, groupID).Scan(&maxCycles); err != nil {
		return fmt.Errorf("failed to read group target: %w", err)
	}

	if completed < maxCycles {
		return nil
	}

	// Only an active group finishes; pending or terminated groups are left
	// alone, which the conditional update handles without a prior read.
	if _, err := tx.ExecContext(ctx,
		`UPDATE groups SET status = ?, status_changed_at = ? WHERE group_id = ? AND status = ?`,
		models.GroupFinished, ts, groupID, models.GroupActive); err != nil {
		return fmt.Errorf("failed to finish group: %w", err)
	}
	return nil
}

func scanPayout(row interface{ Scan(...any) error }) (*models.Payout, error) {
	p := &models.Payout{}
	var paidAt sql.NullInt64
	if err := row.Scan(&p.ID, &p.CycleID, &p.MemberID, &p.Amount, &p.Status, &paidAt); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		ts := paidAt.Int64
		p.PaidAt = &ts
	}
	return p, nil
}

// GetPayout retrieves a payout scoped to its cycle.
func (s *SQLiteStore) GetPayout(ctx context.Context, cycleID, id int64) (*models.Payout, error) {
	p, err := scanPayout(s.db.QueryRowContext(ctx,
		`SELECT payout_id, cycle_id, member_id, amount, status, paid_at
		 FROM payouts WHERE payout_id = ? AND cycle_id = ?`, id, cycleID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: payout %d in cycle %d", models.ErrNotFound, id, cycleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return p, nil
}

// UpdatePayout applies the patch with the PaidAt discipline. A transition
// into completed runs completion detection in the same transaction.
func (s *SQLiteStore) UpdatePayout(ctx context.Context, cycleID, id int64, patch models.PayoutPatch) (*models.Payout, error) {
	var updated *models.Payout
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := scanPayout(tx.QueryRowContext(ctx,
			`SELECT payout_id, cycle_id, member_id, amount, status, paid_at
			 FROM payouts WHERE payout_id = ? AND cycle_id = ?`, id, cycleID))
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: payout %d in cycle %d", models.ErrNotFound, id, cycleID)
		}
		if err != nil {
			return fmt.Errorf("failed to get payout: %w", err)
		}

		ts := now()
		next := *cur
		if patch.Amount != nil {
			next.Amount = *patch.Amount
		}
		if patch.Status != nil {
			next.Status = *patch.Status
		}
		next.PaidAt = resolvePaidAt(
			cur.Status == models.PayoutCompleted,
			next.Status == models.PayoutCompleted,
			cur.PaidAt, ts)

		if _, err := tx.ExecContext(ctx,
			`UPDATE payouts SET amount = ?, status = ?, paid_at = ? WHERE payout_id = ?`,
			next.Amount, next.Status, nullInt64(next.PaidAt), id); err != nil {
			return fmt.Errorf("failed to update payout: %w", err)
		}

		if next.Status == models.PayoutCompleted && cur.Status != models.PayoutCompleted {
			if err := detectCompletion(ctx, tx, cycleID, ts); err != nil {
				return err
			}
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePayout removes a payout scoped to its cycle.
func (s *SQLiteStore) DeletePayout(ctx context.Context, cycleID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM payouts WHERE payout_id = ? AND cycle_id = ?`, id, cycleID)
	if err != nil {
		return fmt.Errorf("failed to delete payout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check payout delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: payout %d in cycle %d", models.ErrNotFound, id, cycleID)
	}
	return nil
}

const payoutDetailQuery = `
SELECT p.payout_id, p.cycle_id, p.member_id, p.amount, p.status, p.paid_at,
       cl.first_name || ' ' || cl.last_name, g.group_id, g.name
  FROM payouts p
  JOIN memberships m ON m.member_id = p.member_id
  JOIN clients cl ON cl.client_id = m.client_id
  JOIN cycles cy ON cy.cycle_id = p.cycle_id
  JOIN groups g ON g.group_id = cy.group_id`

func scanPayoutDetails(rows *sql.Rows) ([]*models.PayoutDetail, error) {
	var details []*models.PayoutDetail
	for rows.Next() {
		d := &models.PayoutDetail{}
		var paidAt sql.NullInt64
		if err := rows.Scan(&d.ID, &d.CycleID, &d.MemberID, &d.Amount, &d.Status, &paidAt,
			&d.MemberName, &d.GroupID, &d.GroupName); err != nil {
			return nil, fmt.Errorf("failed to scan payout: %w", err)
		}
		if paidAt.Valid {
			ts := paidAt.Int64
			d.PaidAt = &ts
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payouts: %w", err)
	}
	return details, nil
}

// ListPayoutsByCycle retrieves a cycle's payouts with member names.
func (s *SQLiteStore) ListPayoutsByCycle(ctx context.Context, cycleID int64) ([]*models.PayoutDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		payoutDetailQuery+` WHERE p.cycle_id = ? ORDER BY (p.paid_at IS NULL) ASC, p.paid_at DESC, p.payout_id DESC`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()
	return scanPayoutDetails(rows)
}

// ListPayouts retrieves every payout: completed rows first, most recently
// paid on top, then outstanding.
func (s *SQLiteStore) ListPayouts(ctx context.Context) ([]*models.PayoutDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		payoutDetailQuery+` ORDER BY (p.paid_at IS NULL) ASC, p.paid_at DESC, p.payout_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()
	return scanPayoutDetails(rows)
}
