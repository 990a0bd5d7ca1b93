package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmagtibay/paluwagan/internal/models"
)

// AddMember inserts a membership. Capacity and the duplicate-client policy
// are checked inside the transaction; the (group_id, position) unique
// constraint is the final arbiter for position races and surfaces as
// ErrPositionTaken.
func (s *SQLiteStore) AddMember(ctx context.Context, m *models.Membership, capacity int, allowRepeat bool) error {
	if m.JoinedAt == 0 {
		m.JoinedAt = now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE group_id = ?`, m.GroupID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: group %d", models.ErrNotFound, m.GroupID)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}

		err = tx.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE client_id = ?`, m.ClientID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: client %d", models.ErrNotFound, m.ClientID)
		}
		if err != nil {
			return fmt.Errorf("failed to check client existence: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM memberships WHERE group_id = ?`, m.GroupID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}
		if count >= capacity {
			return fmt.Errorf("%w: group %d holds %d of %d members", models.ErrCapacityExceeded, m.GroupID, count, capacity)
		}

		if !allowRepeat {
			var dup int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM memberships WHERE group_id = ? AND client_id = ?`,
				m.GroupID, m.ClientID).Scan(&dup)
			if err == nil {
				return fmt.Errorf("%w: client %d in group %d", models.ErrDuplicateMember, m.ClientID, m.GroupID)
			}
			if err != sql.ErrNoRows {
				return fmt.Errorf("failed to check duplicate member: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO memberships (group_id, client_id, position, joined_at) VALUES (?, ?, ?, ?)`,
			m.GroupID, m.ClientID, m.Position, m.JoinedAt)
		if err != nil {
			return fmt.Errorf("failed to insert membership: %w", translateConstraint(err))
		}

		m.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read member id: %w", err)
		}
		return nil
	})
}

// GetMember retrieves a membership scoped to its group.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, memberID int64) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		`SELECT member_id, group_id, client_id, position, joined_at
		 FROM memberships WHERE member_id = ? AND group_id = ?`,
		memberID, groupID,
	).Scan(&m.ID, &m.GroupID, &m.ClientID, &m.Position, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: member %d in group %d", models.ErrNotFound, memberID, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// ListMembers retrieves a group's roster with client records, ordered by
// rotation position.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID int64) ([]*models.MemberDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.member_id, m.group_id, m.client_id, m.position, m.joined_at,
		        c.client_id, c.first_name, c.last_name, c.email, c.phone, c.address, c.created_at
		   FROM memberships m
		   JOIN clients c ON c.client_id = m.client_id
		  WHERE m.group_id = ?
		  ORDER BY m.position`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.MemberDetail
	for rows.Next() {
		md := &models.MemberDetail{}
		var email, phone, address sql.NullString
		if err := rows.Scan(&md.ID, &md.GroupID, &md.ClientID, &md.Position, &md.JoinedAt,
			&md.Client.ID, &md.Client.FirstName, &md.Client.LastName, &email, &phone, &address, &md.Client.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		md.Client.Email = email.String
		md.Client.Phone = phone.String
		md.Client.Address = address.String
		members = append(members, md)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// MemberAtPosition reports whether any member of the group holds the given
// rotation position.
func (s *SQLiteStore) MemberAtPosition(ctx context.Context, groupID int64, position int) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM memberships WHERE group_id = ? AND position = ?`,
		groupID, position).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check position: %w", err)
	}
	return true, nil
}

// ChangePosition moves a member to a new rotation position. A collision with
// another member surfaces as ErrPositionTaken.
func (s *SQLiteStore) ChangePosition(ctx context.Context, groupID, memberID int64, newPosition int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE memberships SET position = ? WHERE member_id = ? AND group_id = ?`,
		newPosition, memberID, groupID)
	if err != nil {
		return fmt.Errorf("failed to change position: %w", translateConstraint(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check position change: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: member %d in group %d", models.ErrNotFound, memberID, groupID)
	}
	return nil
}

// RemoveMember deletes the membership and that member's contributions and
// payouts in one transaction. Remaining positions are not renumbered.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM memberships WHERE member_id = ? AND group_id = ?`,
			memberID, groupID).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: member %d in group %d", models.ErrNotFound, memberID, groupID)
		}
		if err != nil {
			return fmt.Errorf("failed to check member existence: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM contributions WHERE member_id = ?`, memberID); err != nil {
			return fmt.Errorf("failed to delete contributions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM payouts WHERE member_id = ?`, memberID); err != nil {
			return fmt.Errorf("failed to delete payouts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM memberships WHERE member_id = ?`, memberID); err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}
		return nil
	})
}
