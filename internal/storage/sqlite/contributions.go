package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmagtibay/paluwagan/internal/models"
)

// memberInGroup reports, inside a transaction, whether the member belongs to
// the group.
func memberInGroup(ctx context.Context, tx *sql.Tx, groupID, memberID int64) (bool, error) {
	var exists int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM memberships WHERE member_id = ? AND group_id = ?`,
		memberID, groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// CreateContribution inserts a contribution after verifying the member
// belongs to the cycle's group. PaidAt is stamped iff the status is paid.
func (s *SQLiteStore) CreateContribution(ctx context.Context, groupID int64, c *models.Contribution) error {
	if c.Status == models.ContributionPaid {
		ts := now()
		c.PaidAt = &ts
	} else {
		c.PaidAt = nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := memberInGroup(ctx, tx, groupID, c.MemberID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: member %d, group %d", models.ErrMemberNotInGroup, c.MemberID, groupID)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO contributions (cycle_id, member_id, amount, status, paid_at, notes)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.CycleID, c.MemberID, c.Amount, c.Status, nullInt64(c.PaidAt), nullString(c.Notes))
		if err != nil {
			return fmt.Errorf("failed to insert contribution: %w", translateConstraint(err))
		}

		c.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read contribution id: %w", err)
		}
		return nil
	})
}

func scanContribution(row interface{ Scan(...any) error }) (*models.Contribution, error) {
	c := &models.Contribution{}
	var paidAt sql.NullInt64
	var notes sql.NullString
	if err := row.Scan(&c.ID, &c.CycleID, &c.MemberID, &c.Amount, &c.Status, &paidAt, &notes); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		ts := paidAt.Int64
		c.PaidAt = &ts
	}
	c.Notes = notes.String
	return c, nil
}

// GetContribution retrieves a contribution scoped to its cycle.
func (s *SQLiteStore) GetContribution(ctx context.Context, cycleID, id int64) (*models.Contribution, error) {
	c, err := scanContribution(s.db.QueryRowContext(ctx,
		`SELECT contribution_id, cycle_id, member_id, amount, status, paid_at, notes
		 FROM contributions WHERE contribution_id = ? AND cycle_id = ?`, id, cycleID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: contribution %d in cycle %d", models.ErrNotFound, id, cycleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	return c, nil
}

// resolvePaidAt applies the paid_at discipline shared by contributions and
// payouts: transitioning into the settled status stamps ts, a settled-to-
// settled write preserves the existing stamp (stamping ts only if it was
// somehow missing), and any other status clears it.
func resolvePaidAt(wasSettled, isSettled bool, current *int64, ts int64) *int64 {
	switch {
	case isSettled && !wasSettled:
		return &ts
	case isSettled && wasSettled:
		if current != nil {
			return current
		}
		return &ts
	default:
		return nil
	}
}

// UpdateContribution applies the patch inside a transaction, recomputing
// PaidAt on status changes.
func (s *SQLiteStore) UpdateContribution(ctx context.Context, cycleID, id int64, patch models.ContributionPatch) (*models.Contribution, error) {
	var updated *models.Contribution
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := scanContribution(tx.QueryRowContext(ctx,
			`SELECT contribution_id, cycle_id, member_id, amount, status, paid_at, notes
			 FROM contributions WHERE contribution_id = ? AND cycle_id = ?`, id, cycleID))
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: contribution %d in cycle %d", models.ErrNotFound, id, cycleID)
		}
		if err != nil {
			return fmt.Errorf("failed to get contribution: %w", err)
		}

		next := *cur
		if patch.Amount != nil {
			next.Amount = *patch.Amount
		}
		if patch.Notes != nil {
			next.Notes = *patch.Notes
		}
		if patch.Status != nil {
			next.Status = *patch.Status
		}
		next.PaidAt = resolvePaidAt(
			cur.Status == models.ContributionPaid,
			next.Status == models.ContributionPaid,
			cur.PaidAt, now())

		if _, err := tx.ExecContext(ctx,
			`UPDATE contributions SET amount = ?, status = ?, paid_at = ?, notes = ?
			 WHERE contribution_id = ?`,
			next.Amount, next.Status, nullInt64(next.PaidAt), nullString(next.Notes), id); err != nil {
			return fmt.Errorf("failed to update contribution: %w", err)
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteContribution removes a contribution scoped to its cycle.
func (s *SQLiteStore) DeleteContribution(ctx context.Context, cycleID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contributions WHERE contribution_id = ? AND cycle_id = ?`, id, cycleID)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check contribution delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: contribution %d in cycle %d", models.ErrNotFound, id, cycleID)
	}
	return nil
}

const contributionDetailQuery = `
SELECT ct.contribution_id, ct.cycle_id, ct.member_id, ct.amount, ct.status, ct.paid_at, ct.notes,
       cl.first_name || ' ' || cl.last_name, g.group_id, g.name
  FROM contributions ct
  JOIN memberships m ON m.member_id = ct.member_id
  JOIN clients cl ON cl.client_id = m.client_id
  JOIN cycles cy ON cy.cycle_id = ct.cycle_id
  JOIN groups g ON g.group_id = cy.group_id`

func scanContributionDetails(rows *sql.Rows) ([]*models.ContributionDetail, error) {
	var details []*models.ContributionDetail
	for rows.Next() {
		d := &models.ContributionDetail{}
		var paidAt sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(&d.ID, &d.CycleID, &d.MemberID, &d.Amount, &d.Status, &paidAt, &notes,
			&d.MemberName, &d.GroupID, &d.GroupName); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		if paidAt.Valid {
			ts := paidAt.Int64
			d.PaidAt = &ts
		}
		d.Notes = notes.String
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return details, nil
}

// ListContributionsByCycle retrieves a cycle's contributions with member
// names.
func (s *SQLiteStore) ListContributionsByCycle(ctx context.Context, cycleID int64) ([]*models.ContributionDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		contributionDetailQuery+` WHERE ct.cycle_id = ? ORDER BY ct.contribution_id`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()
	return scanContributionDetails(rows)
}

// ListContributions retrieves every contribution: paid rows first, most
// recently paid on top, then unpaid.
func (s *SQLiteStore) ListContributions(ctx context.Context) ([]*models.ContributionDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		contributionDetailQuery+` ORDER BY (ct.paid_at IS NULL) ASC, ct.paid_at DESC, ct.contribution_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()
	return scanContributionDetails(rows)
}
