package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for cycle start/end dates.
const DateLayout = "2006-01-02"

// Cycle is one rotation period of a group, bound to a date window.
// (GroupID, Number) is unique.
type Cycle struct {
	ID      int64 `json:"cycle_id"`
	GroupID int64 `json:"group_id"`
	// Number maps by convention to a membership position: the member at that
	// position is the cycle's payout recipient.
	Number    int         `json:"cycle_number"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Status    CycleStatus `json:"status"`
}

// CyclePatch is a partial update of a cycle's dates and status.
type CyclePatch struct {
	StartDate *string
	EndDate   *string
	Status    *CycleStatus
}

// CycleDetail is a cycle joined with its ledgers and the sum of its recorded
// contributions.
type CycleDetail struct {
	Cycle
	ContributedTotal float64               `json:"contributed_total"`
	Contributions    []*ContributionDetail `json:"contributions"`
	Payouts          []*PayoutDetail       `json:"payouts"`
}

// ParseDate validates an ISO date string.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", ErrValidation, raw)
	}
	return t, nil
}

// ValidateDateRange parses both bounds and enforces end >= start.
func ValidateDateRange(start, end string) error {
	s, err := ParseDate(start)
	if err != nil {
		return err
	}
	e, err := ParseDate(end)
	if err != nil {
		return err
	}
	if e.Before(s) {
		return fmt.Errorf("%w: %s < %s", ErrInvalidDateRange, end, start)
	}
	return nil
}
