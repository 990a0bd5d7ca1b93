package models

import (
	"errors"
	"testing"
)

func TestGroupStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to GroupStatus
		want     bool
	}{
		{GroupPending, GroupActive, true},
		{GroupPending, GroupFinished, false},
		{GroupPending, GroupTerminated, false},
		{GroupActive, GroupFinished, true},
		{GroupActive, GroupTerminated, true},
		{GroupActive, GroupPending, false},
		{GroupFinished, GroupActive, false},
		{GroupFinished, GroupTerminated, false},
		{GroupTerminated, GroupActive, false},
		// Same-status writes are no-ops, always allowed.
		{GroupPending, GroupPending, true},
		{GroupTerminated, GroupTerminated, true},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCycleStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to CycleStatus
		want     bool
	}{
		{CyclePending, CycleActive, true},
		{CyclePending, CycleCancelled, true},
		{CyclePending, CycleCompleted, false},
		{CycleActive, CycleCompleted, true},
		{CycleActive, CycleCancelled, true},
		{CycleActive, CyclePending, false},
		{CycleCompleted, CycleActive, false},
		{CycleCancelled, CycleActive, false},
		{CycleActive, CycleActive, true},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseStatuses(t *testing.T) {
	t.Run("valid values round-trip", func(t *testing.T) {
		if s, err := ParseGroupStatus("active"); err != nil || s != GroupActive {
			t.Errorf("ParseGroupStatus(active) = %v, %v", s, err)
		}
		if s, err := ParseCycleStatus("completed"); err != nil || s != CycleCompleted {
			t.Errorf("ParseCycleStatus(completed) = %v, %v", s, err)
		}
		if s, err := ParseContributionStatus("missed"); err != nil || s != ContributionMissed {
			t.Errorf("ParseContributionStatus(missed) = %v, %v", s, err)
		}
		if s, err := ParsePayoutStatus("failed"); err != nil || s != PayoutFailed {
			t.Errorf("ParsePayoutStatus(failed) = %v, %v", s, err)
		}
	})

	t.Run("unknown values wrap ErrValidation", func(t *testing.T) {
		if _, err := ParseGroupStatus("paused"); !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if _, err := ParsePayoutStatus(""); !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestValidateDateRange(t *testing.T) {
	if err := ValidateDateRange("2026-01-01", "2026-01-31"); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := ValidateDateRange("2026-01-01", "2026-01-01"); err != nil {
		t.Errorf("single-day range rejected: %v", err)
	}
	if err := ValidateDateRange("2026-02-01", "2026-01-01"); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
	if err := ValidateDateRange("01/01/2026", "2026-01-31"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for bad format, got %v", err)
	}
}

func TestClientFullName(t *testing.T) {
	c := &Client{FirstName: "Maria", LastName: "Santos"}
	if got := c.FullName(); got != "Maria Santos" {
		t.Errorf("FullName() = %q", got)
	}
	c = &Client{FirstName: "Maria"}
	if got := c.FullName(); got != "Maria" {
		t.Errorf("FullName() = %q", got)
	}
}
