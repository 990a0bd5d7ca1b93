package sqlite

import (
	"context"
	"fmt"

	"github.com/rmagtibay/paluwagan/internal/models"
)

// DashboardSummary computes the aggregate read model: total members, active
// groups, outstanding payout value, and the most recent active cycles with
// their contributed pots.
func (s *SQLiteStore) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	sum := &models.DashboardSummary{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships`).Scan(&sum.TotalMembers); err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM groups WHERE status = ?`, models.GroupActive).Scan(&sum.ActiveGroups); err != nil {
		return nil, fmt.Errorf("failed to count active groups: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payouts WHERE status = ?`,
		models.PayoutScheduled).Scan(&sum.ScheduledPayoutTotal); err != nil {
		return nil, fmt.Errorf("failed to sum scheduled payouts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.cycle_id, c.group_id, g.name, c.cycle_number, c.start_date, c.end_date,
		        COALESCE(SUM(ct.amount), 0)
		   FROM cycles c
		   JOIN groups g ON g.group_id = c.group_id
		   LEFT JOIN contributions ct ON ct.cycle_id = c.cycle_id
		  WHERE c.status = ?
		  GROUP BY c.cycle_id
		  ORDER BY c.start_date DESC
		  LIMIT 5`, models.CycleActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active cycles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ac := &models.ActiveCycle{}
		if err := rows.Scan(&ac.CycleID, &ac.GroupID, &ac.GroupName, &ac.Number,
			&ac.StartDate, &ac.EndDate, &ac.Pot); err != nil {
			return nil, fmt.Errorf("failed to scan active cycle: %w", err)
		}
		sum.ActiveCycles = append(sum.ActiveCycles, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active cycles: %w", err)
	}
	return sum, nil
}
