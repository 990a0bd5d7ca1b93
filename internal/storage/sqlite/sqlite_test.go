package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rmagtibay/paluwagan/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "paluwagan-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedClient(t *testing.T, store *SQLiteStore, first, last string) *models.Client {
	t.Helper()
	c := &models.Client{FirstName: first, LastName: last}
	if err := store.CreateClient(context.Background(), c); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	return c
}

func seedGroup(t *testing.T, store *SQLiteStore, name string, maxCycles int) *models.Group {
	t.Helper()
	g := &models.Group{Name: name, MaxCycles: maxCycles, Status: models.GroupPending}
	if err := store.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return g
}

func seedMember(t *testing.T, store *SQLiteStore, groupID, clientID int64, position int) *models.Membership {
	t.Helper()
	m := &models.Membership{GroupID: groupID, ClientID: clientID, Position: position}
	if err := store.AddMember(context.Background(), m, 16, false); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	return m
}

func seedCycle(t *testing.T, store *SQLiteStore, groupID int64, number int, status models.CycleStatus) *models.Cycle {
	t.Helper()
	c := &models.Cycle{
		GroupID:   groupID,
		Number:    number,
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
		Status:    status,
	}
	if err := store.CreateCycle(context.Background(), c); err != nil {
		t.Fatalf("CreateCycle failed: %v", err)
	}
	return c
}

func activateGroup(t *testing.T, store *SQLiteStore, groupID int64) {
	t.Helper()
	if err := store.UpdateGroupStatus(context.Background(), groupID, models.GroupPending, models.GroupActive); err != nil {
		t.Fatalf("UpdateGroupStatus failed: %v", err)
	}
}

func TestClientStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Create assigns ID and CreatedAt", func(t *testing.T) {
		c := &models.Client{FirstName: "Maria", LastName: "Santos", Email: "maria@example.com"}
		if err := store.CreateClient(ctx, c); err != nil {
			t.Fatalf("CreateClient failed: %v", err)
		}
		if c.ID == 0 {
			t.Error("Expected client ID to be assigned")
		}
		if c.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := store.GetClient(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetClient failed: %v", err)
		}
		if got.Email != "maria@example.com" {
			t.Errorf("Email = %q, want maria@example.com", got.Email)
		}
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		c := &models.Client{FirstName: "Jose", LastName: "Reyes", Email: "maria@example.com"}
		err := store.CreateClient(ctx, c)
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation for duplicate email, got %v", err)
		}
	})

	t.Run("Empty emails do not collide", func(t *testing.T) {
		seedClient(t, store, "Ana", "Cruz")
		seedClient(t, store, "Ben", "Cruz")
	})

	t.Run("Get returns ErrNotFound for missing client", func(t *testing.T) {
		if _, err := store.GetClient(ctx, 9999); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update overwrites identity fields", func(t *testing.T) {
		c := seedClient(t, store, "Lea", "Dizon")
		c.Phone = "0917-555-0101"
		if err := store.UpdateClient(ctx, c); err != nil {
			t.Fatalf("UpdateClient failed: %v", err)
		}
		got, err := store.GetClient(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetClient failed: %v", err)
		}
		if got.Phone != "0917-555-0101" {
			t.Errorf("Phone = %q", got.Phone)
		}
	})

	t.Run("Delete refuses a client with memberships", func(t *testing.T) {
		c := seedClient(t, store, "Rico", "Bautista")
		g := seedGroup(t, store, "Barkada Fund", 3)
		seedMember(t, store, g.ID, c.ID, 1)

		if err := store.DeleteClient(ctx, c.ID, false); !errors.Is(err, models.ErrClientInUse) {
			t.Errorf("expected ErrClientInUse, got %v", err)
		}
		if _, err := store.GetClient(ctx, c.ID); err != nil {
			t.Errorf("client should survive refused delete: %v", err)
		}
	})

	t.Run("Cascade delete removes memberships and ledgers", func(t *testing.T) {
		c := seedClient(t, store, "Tess", "Lim")
		g := seedGroup(t, store, "Office Pool", 3)
		m := seedMember(t, store, g.ID, c.ID, 1)
		cy := seedCycle(t, store, g.ID, 1, models.CyclePending)

		ct := &models.Contribution{CycleID: cy.ID, MemberID: m.ID, Amount: 500, Status: models.ContributionPending}
		if err := store.CreateContribution(ctx, g.ID, ct); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}

		if err := store.DeleteClient(ctx, c.ID, true); err != nil {
			t.Fatalf("cascade DeleteClient failed: %v", err)
		}
		if _, err := store.GetClient(ctx, c.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected client gone, got %v", err)
		}
		if _, err := store.GetMember(ctx, g.ID, m.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected membership gone, got %v", err)
		}
		if _, err := store.GetContribution(ctx, cy.ID, ct.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected contribution gone, got %v", err)
		}
	})
}

func TestGroupLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Create starts pending with nil pointer", func(t *testing.T) {
		g := seedGroup(t, store, "Paluwagan ni Aling Nena", 5)
		got, err := store.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Status != models.GroupPending {
			t.Errorf("Status = %s, want pending", got.Status)
		}
		if got.CurrentCycle != nil {
			t.Errorf("CurrentCycle = %v, want nil", *got.CurrentCycle)
		}
		if got.StatusChangedAt != nil {
			t.Error("StatusChangedAt should be nil before any status write")
		}
	})

	t.Run("Activation stamps StatusChangedAt", func(t *testing.T) {
		g := seedGroup(t, store, "Weekly Savers", 4)
		activateGroup(t, store, g.ID)

		got, err := store.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Status != models.GroupActive {
			t.Errorf("Status = %s, want active", got.Status)
		}
		if got.StatusChangedAt == nil {
			t.Error("StatusChangedAt should be stamped on activation")
		}
	})

	t.Run("Conditional status write rejects stale state", func(t *testing.T) {
		g := seedGroup(t, store, "Stale Group", 4)
		activateGroup(t, store, g.ID)

		err := store.UpdateGroupStatus(ctx, g.ID, models.GroupPending, models.GroupActive)
		if !errors.Is(err, models.ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("Terminate writes status and log atomically", func(t *testing.T) {
		g := seedGroup(t, store, "Doomed Group", 4)
		activateGroup(t, store, g.ID)

		if err := store.TerminateGroup(ctx, g.ID, "organizer moved away"); err != nil {
			t.Fatalf("TerminateGroup failed: %v", err)
		}

		got, err := store.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Status != models.GroupTerminated {
			t.Errorf("Status = %s, want terminated", got.Status)
		}

		logs, err := store.ListTerminations(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListTerminations failed: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("expected 1 termination log row, got %d", len(logs))
		}
		if logs[0].Reason != "organizer moved away" {
			t.Errorf("Reason = %q", logs[0].Reason)
		}
		if got.StatusChangedAt == nil || logs[0].TerminatedAt != *got.StatusChangedAt {
			t.Error("termination log and status change should share one timestamp")
		}
	})

	t.Run("Terminate of non-active group leaves no log row", func(t *testing.T) {
		g := seedGroup(t, store, "Still Pending", 4)

		err := store.TerminateGroup(ctx, g.ID, "premature")
		if !errors.Is(err, models.ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}

		logs, err := store.ListTerminations(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListTerminations failed: %v", err)
		}
		if len(logs) != 0 {
			t.Errorf("rolled-back termination left %d log rows", len(logs))
		}

		got, _ := store.GetGroup(ctx, g.ID)
		if got.Status != models.GroupPending {
			t.Errorf("Status = %s, want pending untouched", got.Status)
		}
	})

	t.Run("Failed log insert rolls back the status write", func(t *testing.T) {
		g := seedGroup(t, store, "Unlucky Group", 4)
		activateGroup(t, store, g.ID)

		// Knock the log table out from under the transaction so the status
		// UPDATE applies but the INSERT fails.
		if _, err := store.db.Exec(`ALTER TABLE group_terminations RENAME TO group_terminations_hidden`); err != nil {
			t.Fatalf("failed to hide log table: %v", err)
		}
		err := store.TerminateGroup(ctx, g.ID, "doomed to fail")
		if _, rerr := store.db.Exec(`ALTER TABLE group_terminations_hidden RENAME TO group_terminations`); rerr != nil {
			t.Fatalf("failed to restore log table: %v", rerr)
		}
		if err == nil {
			t.Fatal("expected TerminateGroup to fail without its log table")
		}

		got, gerr := store.GetGroup(ctx, g.ID)
		if gerr != nil {
			t.Fatalf("GetGroup failed: %v", gerr)
		}
		if got.Status != models.GroupActive {
			t.Errorf("Status = %s, want active after rolled-back terminate", got.Status)
		}
		logs, lerr := store.ListTerminations(ctx, g.ID)
		if lerr != nil {
			t.Fatalf("ListTerminations failed: %v", lerr)
		}
		if len(logs) != 0 {
			t.Errorf("rolled-back termination left %d log rows", len(logs))
		}
	})

	t.Run("Double terminate fails", func(t *testing.T) {
		g := seedGroup(t, store, "Once Only", 4)
		activateGroup(t, store, g.ID)
		if err := store.TerminateGroup(ctx, g.ID, "first"); err != nil {
			t.Fatalf("TerminateGroup failed: %v", err)
		}
		if err := store.TerminateGroup(ctx, g.ID, "second"); !errors.Is(err, models.ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
		logs, _ := store.ListTerminations(ctx, g.ID)
		if len(logs) != 1 {
			t.Errorf("expected 1 log row after double terminate, got %d", len(logs))
		}
	})

	t.Run("List filters by status and counts members", func(t *testing.T) {
		g := seedGroup(t, store, "Counted Group", 4)
		activateGroup(t, store, g.ID)
		c1 := seedClient(t, store, "Member", "One")
		c2 := seedClient(t, store, "Member", "Two")
		seedMember(t, store, g.ID, c1.ID, 1)
		seedMember(t, store, g.ID, c2.ID, 2)

		active := models.GroupActive
		groups, err := store.ListGroups(ctx, &active)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		found := false
		for _, sum := range groups {
			if sum.Status != models.GroupActive {
				t.Errorf("filtered listing contains %s group %d", sum.Status, sum.ID)
			}
			if sum.ID == g.ID {
				found = true
				if sum.MemberCount != 2 {
					t.Errorf("MemberCount = %d, want 2", sum.MemberCount)
				}
			}
		}
		if !found {
			t.Error("active group missing from filtered listing")
		}
	})

	t.Run("UpdateGroupInfo patches fields without touching status", func(t *testing.T) {
		g := seedGroup(t, store, "Rename Me", 4)
		name := "Renamed"
		maxCycles := 6
		if err := store.UpdateGroupInfo(ctx, g.ID, models.GroupPatch{Name: &name, MaxCycles: &maxCycles}); err != nil {
			t.Fatalf("UpdateGroupInfo failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, g.ID)
		if got.Name != "Renamed" || got.MaxCycles != 6 {
			t.Errorf("patch not applied: %+v", got)
		}
		if got.Status != models.GroupPending {
			t.Errorf("Status = %s, info patch must not touch status", got.Status)
		}
	})

	t.Run("DeleteGroup removes everything it owns", func(t *testing.T) {
		g := seedGroup(t, store, "Teardown Group", 4)
		activateGroup(t, store, g.ID)
		c := seedClient(t, store, "Gone", "Soon")
		m := seedMember(t, store, g.ID, c.ID, 1)
		cy := seedCycle(t, store, g.ID, 1, models.CyclePending)
		ct := &models.Contribution{CycleID: cy.ID, MemberID: m.ID, Amount: 100, Status: models.ContributionPending}
		if err := store.CreateContribution(ctx, g.ID, ct); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}
		if err := store.TerminateGroup(ctx, g.ID, "cleanup"); err != nil {
			t.Fatalf("TerminateGroup failed: %v", err)
		}

		if err := store.DeleteGroup(ctx, g.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetGroup(ctx, g.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected group gone, got %v", err)
		}
		if _, err := store.GetCycle(ctx, g.ID, cy.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected cycle gone, got %v", err)
		}
		if _, err := store.GetContribution(ctx, cy.ID, ct.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected contribution gone, got %v", err)
		}
		// The client is referenced, not owned.
		if _, err := store.GetClient(ctx, c.ID); err != nil {
			t.Errorf("client should survive group delete: %v", err)
		}
	})
}

func TestRoster(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := seedGroup(t, store, "Roster Group", 5)
	alice := seedClient(t, store, "Alice", "Aquino")
	bob := seedClient(t, store, "Bob", "Bonifacio")

	t.Run("AddMember assigns ID and JoinedAt", func(t *testing.T) {
		m := seedMember(t, store, g.ID, alice.ID, 1)
		if m.ID == 0 || m.JoinedAt == 0 {
			t.Errorf("membership not fully populated: %+v", m)
		}
	})

	t.Run("Same client twice is rejected", func(t *testing.T) {
		m := &models.Membership{GroupID: g.ID, ClientID: alice.ID, Position: 2}
		if err := store.AddMember(ctx, m, 16, false); !errors.Is(err, models.ErrDuplicateMember) {
			t.Errorf("expected ErrDuplicateMember, got %v", err)
		}
	})

	t.Run("Repeat client allowed when policy permits", func(t *testing.T) {
		m := &models.Membership{GroupID: g.ID, ClientID: alice.ID, Position: 5}
		if err := store.AddMember(ctx, m, 16, true); err != nil {
			t.Errorf("AddMember with allowRepeat failed: %v", err)
		}
	})

	t.Run("Occupied position is rejected", func(t *testing.T) {
		m := &models.Membership{GroupID: g.ID, ClientID: bob.ID, Position: 1}
		if err := store.AddMember(ctx, m, 16, false); !errors.Is(err, models.ErrPositionTaken) {
			t.Errorf("expected ErrPositionTaken, got %v", err)
		}
	})

	t.Run("Capacity is enforced", func(t *testing.T) {
		m := &models.Membership{GroupID: g.ID, ClientID: bob.ID, Position: 3}
		if err := store.AddMember(ctx, m, 2, false); !errors.Is(err, models.ErrCapacityExceeded) {
			t.Errorf("expected ErrCapacityExceeded, got %v", err)
		}
	})

	t.Run("Unknown group or client is ErrNotFound", func(t *testing.T) {
		m := &models.Membership{GroupID: 9999, ClientID: bob.ID, Position: 1}
		if err := store.AddMember(ctx, m, 16, false); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound for group, got %v", err)
		}
		m = &models.Membership{GroupID: g.ID, ClientID: 9999, Position: 4}
		if err := store.AddMember(ctx, m, 16, false); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound for client, got %v", err)
		}
	})

	t.Run("ChangePosition moves to a vacant slot", func(t *testing.T) {
		m := seedMember(t, store, g.ID, bob.ID, 2)
		if err := store.ChangePosition(ctx, g.ID, m.ID, 4); err != nil {
			t.Fatalf("ChangePosition failed: %v", err)
		}
		got, err := store.GetMember(ctx, g.ID, m.ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if got.Position != 4 {
			t.Errorf("Position = %d, want 4", got.Position)
		}

		if err := store.ChangePosition(ctx, g.ID, m.ID, 1); !errors.Is(err, models.ErrPositionTaken) {
			t.Errorf("expected ErrPositionTaken, got %v", err)
		}
	})

	t.Run("MemberAtPosition reflects occupancy", func(t *testing.T) {
		occupied, err := store.MemberAtPosition(ctx, g.ID, 1)
		if err != nil || !occupied {
			t.Errorf("MemberAtPosition(1) = %v, %v, want true", occupied, err)
		}
		occupied, err = store.MemberAtPosition(ctx, g.ID, 13)
		if err != nil || occupied {
			t.Errorf("MemberAtPosition(13) = %v, %v, want false", occupied, err)
		}
	})

	t.Run("ListMembers orders by position", func(t *testing.T) {
		members, err := store.ListMembers(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		for i := 1; i < len(members); i++ {
			if members[i-1].Position > members[i].Position {
				t.Errorf("roster out of order at %d: %d > %d", i, members[i-1].Position, members[i].Position)
			}
		}
		if len(members) == 0 || members[0].Client.FirstName == "" {
			t.Error("expected joined client records in roster")
		}
	})

	t.Run("RemoveMember takes ledger rows along", func(t *testing.T) {
		carol := seedClient(t, store, "Carol", "Castro")
		m := seedMember(t, store, g.ID, carol.ID, 6)
		cy := seedCycle(t, store, g.ID, 1, models.CyclePending)
		ct := &models.Contribution{CycleID: cy.ID, MemberID: m.ID, Amount: 200, Status: models.ContributionPaid}
		if err := store.CreateContribution(ctx, g.ID, ct); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}

		if err := store.RemoveMember(ctx, g.ID, m.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if _, err := store.GetMember(ctx, g.ID, m.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected membership gone, got %v", err)
		}
		if _, err := store.GetContribution(ctx, cy.ID, ct.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected contribution gone, got %v", err)
		}
	})
}

func TestConcurrentAddMember(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := seedGroup(t, store, "Race Group", 5)
	clients := make([]*models.Client, 4)
	for i := range clients {
		clients[i] = seedClient(t, store, "Racer", string(rune('A'+i)))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(clients))
	for i, c := range clients {
		wg.Add(1)
		go func(i int, clientID int64) {
			defer wg.Done()
			m := &models.Membership{GroupID: g.ID, ClientID: clientID, Position: 1}
			errs[i] = store.AddMember(ctx, m, 16, false)
		}(i, c.ID)
	}
	wg.Wait()

	var ok, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrPositionTaken):
			taken++
		default:
			t.Errorf("unexpected error from racing AddMember: %v", err)
		}
	}
	if ok != 1 || taken != len(clients)-1 {
		t.Errorf("position race: %d succeeded, %d rejected, want 1/%d", ok, taken, len(clients)-1)
	}
}

func TestConcurrentAddMemberCapacity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// One slot left; two racers at distinct positions both read the same
	// count, so the capacity check itself must serialize.
	g := seedGroup(t, store, "Full Group", 2)
	seeded := seedClient(t, store, "Already", "In")
	seedMember(t, store, g.ID, seeded.ID, 1)

	a := seedClient(t, store, "Late", "One")
	b := seedClient(t, store, "Late", "Two")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, m := range []*models.Membership{
		{GroupID: g.ID, ClientID: a.ID, Position: 2},
		{GroupID: g.ID, ClientID: b.ID, Position: 3},
	} {
		wg.Add(1)
		go func(i int, m *models.Membership) {
			defer wg.Done()
			errs[i] = store.AddMember(ctx, m, 2, false)
		}(i, m)
	}
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrCapacityExceeded):
			full++
		default:
			t.Errorf("unexpected error from racing AddMember: %v", err)
		}
	}
	if ok != 1 || full != 1 {
		t.Errorf("capacity race: %d succeeded, %d rejected, want 1/1", ok, full)
	}

	members, err := store.ListMembers(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("roster size = %d, want 2", len(members))
	}
}

func TestCycleStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := seedGroup(t, store, "Cycle Group", 5)
	activateGroup(t, store, g.ID)

	t.Run("Duplicate cycle number is rejected", func(t *testing.T) {
		seedCycle(t, store, g.ID, 1, models.CyclePending)
		c := &models.Cycle{GroupID: g.ID, Number: 1, StartDate: "2026-02-01", EndDate: "2026-02-28"}
		if err := store.CreateCycle(ctx, c); !errors.Is(err, models.ErrDuplicateCycleNumber) {
			t.Errorf("expected ErrDuplicateCycleNumber, got %v", err)
		}
	})

	t.Run("Cycle created active sets the group pointer", func(t *testing.T) {
		seedCycle(t, store, g.ID, 2, models.CycleActive)
		got, _ := store.GetGroup(ctx, g.ID)
		if got.CurrentCycle == nil || *got.CurrentCycle != 2 {
			t.Errorf("CurrentCycle = %v, want 2", got.CurrentCycle)
		}
	})

	t.Run("Leaving active clears a matching pointer", func(t *testing.T) {
		cy := seedCycle(t, store, g.ID, 3, models.CycleActive)

		next := *cy
		next.Status = models.CycleCompleted
		if err := store.UpdateCycle(ctx, g.ID, &next, models.CycleActive); err != nil {
			t.Fatalf("UpdateCycle failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, g.ID)
		if got.CurrentCycle != nil {
			t.Errorf("CurrentCycle = %v, want nil after completion", *got.CurrentCycle)
		}
	})

	t.Run("Leaving active does not clear another cycle's pointer", func(t *testing.T) {
		four := seedCycle(t, store, g.ID, 4, models.CycleActive)
		five := seedCycle(t, store, g.ID, 5, models.CycleActive)

		// Pointer now references cycle 5. Cancelling cycle 4 must not clear it.
		fourDone := *four
		fourDone.Status = models.CycleCancelled
		if err := store.UpdateCycle(ctx, g.ID, &fourDone, models.CycleActive); err != nil {
			t.Fatalf("UpdateCycle failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, g.ID)
		if got.CurrentCycle == nil || *got.CurrentCycle != five.Number {
			t.Errorf("CurrentCycle = %v, want %d", got.CurrentCycle, five.Number)
		}
	})

	t.Run("Stale expected status is rejected", func(t *testing.T) {
		cy := seedCycle(t, store, g.ID, 6, models.CyclePending)
		next := *cy
		next.Status = models.CycleActive
		if err := store.UpdateCycle(ctx, g.ID, &next, models.CycleActive); !errors.Is(err, models.ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("Delete clears a matching pointer and drops ledgers", func(t *testing.T) {
		cy := seedCycle(t, store, g.ID, 7, models.CycleActive)
		c := seedClient(t, store, "Cycle", "Member")
		m := seedMember(t, store, g.ID, c.ID, 7)
		ct := &models.Contribution{CycleID: cy.ID, MemberID: m.ID, Amount: 100, Status: models.ContributionPending}
		if err := store.CreateContribution(ctx, g.ID, ct); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}

		if err := store.DeleteCycle(ctx, g.ID, cy.ID); err != nil {
			t.Fatalf("DeleteCycle failed: %v", err)
		}
		got, _ := store.GetGroup(ctx, g.ID)
		if got.CurrentCycle != nil {
			t.Errorf("CurrentCycle = %v, want nil after delete", *got.CurrentCycle)
		}
		if _, err := store.GetContribution(ctx, cy.ID, ct.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected contribution gone, got %v", err)
		}
	})
}

func TestContributionStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := seedGroup(t, store, "Ledger Group", 5)
	activateGroup(t, store, g.ID)
	c := seedClient(t, store, "Payer", "One")
	m := seedMember(t, store, g.ID, c.ID, 1)
	cy := seedCycle(t, store, g.ID, 1, models.CycleActive)

	t.Run("Recorded paid gets a stamp, pending does not", func(t *testing.T) {
		paid := &models.Contribution{CycleID: cy.ID, MemberID: m.ID, Amount: 500, Status: models.ContributionPaid}
		if err := store.CreateContribution(ctx, g.ID, paid); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}
		if paid.PaidAt == nil {
			t.Error("paid contribution should have PaidAt stamped")
		}

		c2 := seedClient(t, store, "Payer", "Two")
		m2 := seedMember(t, store, g.ID, c2.ID, 2)
		pending := &models.Contribution{CycleID: cy.ID, MemberID: m2.ID, Amount: 500, Status: models.ContributionPending}
		if err := store.CreateContribution(ctx, g.ID, pending); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}
		if pending.PaidAt != nil {
			t.Error("pending contribution should have nil PaidAt")
		}
	})

	t.Run("Second contribution for same member and cycle is rejected", func(t *testing.T) {
		dup := &models.Contribution{CycleID: cy.ID, MemberID: m.ID, Amount: 500, Status: models.ContributionPending}
		if err := store.CreateContribution(ctx, g.ID, dup); !errors.Is(err, models.ErrDuplicateContribution) {
			t.Errorf("expected ErrDuplicateContribution, got %v", err)
		}
	})

	t.Run("Member outside the group is rejected", func(t *testing.T) {
		other := seedGroup(t, store, "Other Group", 5)
		oc := seedClient(t, store, "Outside", "Member")
		om := seedMember(t, store, other.ID, oc.ID, 1)

		ct := &models.Contribution{CycleID: cy.ID, MemberID: om.ID, Amount: 500, Status: models.ContributionPending}
		if err := store.CreateContribution(ctx, g.ID, ct); !errors.Is(err, models.ErrMemberNotInGroup) {
			t.Errorf("expected ErrMemberNotInGroup, got %v", err)
		}
	})

	t.Run("Status changes drive the PaidAt stamp", func(t *testing.T) {
		c3 := seedClient(t, store, "Payer", "Three")
		m3 := seedMember(t, store, g.ID, c3.ID, 3)
		ct := &models.Contribution{CycleID: cy.ID, MemberID: m3.ID, Amount: 500, Status: models.ContributionPending}
		if err := store.CreateContribution(ctx, g.ID, ct); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}

		// pending -> paid stamps.
		paid := models.ContributionPaid
		got, err := store.UpdateContribution(ctx, cy.ID, ct.ID, models.ContributionPatch{Status: &paid})
		if err != nil {
			t.Fatalf("UpdateContribution failed: %v", err)
		}
		if got.PaidAt == nil {
			t.Fatal("PaidAt should be stamped on pending -> paid")
		}
		stamp := *got.PaidAt

		// paid -> paid (amount-only patch) preserves the stamp.
		amount := 750.0
		got, err = store.UpdateContribution(ctx, cy.ID, ct.ID, models.ContributionPatch{Amount: &amount})
		if err != nil {
			t.Fatalf("UpdateContribution failed: %v", err)
		}
		if got.PaidAt == nil || *got.PaidAt != stamp {
			t.Errorf("PaidAt = %v, want preserved %d", got.PaidAt, stamp)
		}
		if got.Amount != 750.0 {
			t.Errorf("Amount = %f, want 750", got.Amount)
		}

		// paid -> missed clears.
		missed := models.ContributionMissed
		got, err = store.UpdateContribution(ctx, cy.ID, ct.ID, models.ContributionPatch{Status: &missed})
		if err != nil {
			t.Fatalf("UpdateContribution failed: %v", err)
		}
		if got.PaidAt != nil {
			t.Errorf("PaidAt = %v, want nil after leaving paid", *got.PaidAt)
		}
	})

	t.Run("Global listing puts paid rows first", func(t *testing.T) {
		all, err := store.ListContributions(ctx)
		if err != nil {
			t.Fatalf("ListContributions failed: %v", err)
		}
		seenUnpaid := false
		for _, d := range all {
			if d.PaidAt == nil {
				seenUnpaid = true
			} else if seenUnpaid {
				t.Fatal("paid contribution listed after an unpaid one")
			}
			if d.MemberName == "" || d.GroupName == "" {
				t.Errorf("detail row missing joined names: %+v", d)
			}
		}
	})

	t.Run("Delete is scoped to the cycle", func(t *testing.T) {
		if err := store.DeleteContribution(ctx, 9999, 1); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPayoutCompletion(t *testing.T) {
	ctx := context.Background()

	// Builds a group with maxCycles members, all cycles created, and one
	// payout per cycle, the last one left in scheduled status.
	setup := func(t *testing.T, store *SQLiteStore, maxCycles int) (*models.Group, []*models.Cycle, []*models.Membership) {
		t.Helper()
		g := seedGroup(t, store, "Completion Group", maxCycles)
		activateGroup(t, store, g.ID)

		var cycles []*models.Cycle
		var members []*models.Membership
		for i := 1; i <= maxCycles; i++ {
			c := seedClient(t, store, "Member", string(rune('A'+i)))
			members = append(members, seedMember(t, store, g.ID, c.ID, i))
			cycles = append(cycles, seedCycle(t, store, g.ID, i, models.CyclePending))
		}
		return g, cycles, members
	}

	t.Run("Group stays active below the target", func(t *testing.T) {
		store := newTestStore(t)
		g, cycles, members := setup(t, store, 3)

		for i := 0; i < 2; i++ {
			p := &models.Payout{CycleID: cycles[i].ID, MemberID: members[i].ID, Amount: 1500, Status: models.PayoutCompleted}
			if err := store.CreatePayout(ctx, g.ID, p); err != nil {
				t.Fatalf("CreatePayout failed: %v", err)
			}
			if p.PaidAt == nil {
				t.Error("completed payout should have PaidAt stamped")
			}
		}

		got, _ := store.GetGroup(ctx, g.ID)
		if got.Status != models.GroupActive {
			t.Errorf("Status = %s after 2 of 3 payouts, want active", got.Status)
		}
	})

	t.Run("Reaching the target finishes the group", func(t *testing.T) {
		store := newTestStore(t)
		g, cycles, members := setup(t, store, 3)

		for i := 0; i < 3; i++ {
			p := &models.Payout{CycleID: cycles[i].ID, MemberID: members[i].ID, Amount: 1500, Status: models.PayoutCompleted}
			if err := store.CreatePayout(ctx, g.ID, p); err != nil {
				t.Fatalf("CreatePayout failed: %v", err)
			}
		}

		got, _ := store.GetGroup(ctx, g.ID)
		if got.Status != models.GroupFinished {
			t.Errorf("Status = %s after all payouts, want finished", got.Status)
		}
		if got.StatusChangedAt == nil {
			t.Error("StatusChangedAt should be stamped when the group finishes")
		}
	})

	t.Run("Completing via update also finishes the group", func(t *testing.T) {
		store := newTestStore(t)
		g, cycles, members := setup(t, store, 2)

		var payouts []*models.Payout
		for i := 0; i < 2; i++ {
			p := &models.Payout{CycleID: cycles[i].ID, MemberID: members[i].ID, Amount: 1000, Status: models.PayoutScheduled}
			if err := store.CreatePayout(ctx, g.ID, p); err != nil {
				t.Fatalf("CreatePayout failed: %v", err)
			}
			payouts = append(payouts, p)
		}

		completed := models.PayoutCompleted
		for i, p := range payouts {
			got, err := store.UpdatePayout(ctx, p.CycleID, p.ID, models.PayoutPatch{Status: &completed})
			if err != nil {
				t.Fatalf("UpdatePayout failed: %v", err)
			}
			if got.PaidAt == nil {
				t.Error("PaidAt should be stamped on completion")
			}

			grp, _ := store.GetGroup(ctx, g.ID)
			if i == 0 && grp.Status != models.GroupActive {
				t.Errorf("Status = %s after first payout, want active", grp.Status)
			}
			if i == 1 && grp.Status != models.GroupFinished {
				t.Errorf("Status = %s after last payout, want finished", grp.Status)
			}
		}
	})

	t.Run("Terminated group is not resurrected by completion", func(t *testing.T) {
		store := newTestStore(t)
		g, cycles, members := setup(t, store, 1)

		if err := store.TerminateGroup(ctx, g.ID, "ended early"); err != nil {
			t.Fatalf("TerminateGroup failed: %v", err)
		}

		p := &models.Payout{CycleID: cycles[0].ID, MemberID: members[0].ID, Amount: 1000, Status: models.PayoutCompleted}
		if err := store.CreatePayout(ctx, g.ID, p); err != nil {
			t.Fatalf("CreatePayout failed: %v", err)
		}

		got, _ := store.GetGroup(ctx, g.ID)
		if got.Status != models.GroupTerminated {
			t.Errorf("Status = %s, terminated group must stay terminated", got.Status)
		}
	})

	t.Run("Second payout for same member and cycle is rejected", func(t *testing.T) {
		store := newTestStore(t)
		g, cycles, members := setup(t, store, 2)

		p := &models.Payout{CycleID: cycles[0].ID, MemberID: members[0].ID, Amount: 1000, Status: models.PayoutScheduled}
		if err := store.CreatePayout(ctx, g.ID, p); err != nil {
			t.Fatalf("CreatePayout failed: %v", err)
		}
		dup := &models.Payout{CycleID: cycles[0].ID, MemberID: members[0].ID, Amount: 1000, Status: models.PayoutScheduled}
		if err := store.CreatePayout(ctx, g.ID, dup); !errors.Is(err, models.ErrDuplicatePayout) {
			t.Errorf("expected ErrDuplicatePayout, got %v", err)
		}
	})

	t.Run("Reverting a completed payout clears the stamp", func(t *testing.T) {
		store := newTestStore(t)
		g, cycles, members := setup(t, store, 2)

		p := &models.Payout{CycleID: cycles[0].ID, MemberID: members[0].ID, Amount: 1000, Status: models.PayoutCompleted}
		if err := store.CreatePayout(ctx, g.ID, p); err != nil {
			t.Fatalf("CreatePayout failed: %v", err)
		}

		failed := models.PayoutFailed
		got, err := store.UpdatePayout(ctx, p.CycleID, p.ID, models.PayoutPatch{Status: &failed})
		if err != nil {
			t.Fatalf("UpdatePayout failed: %v", err)
		}
		if got.PaidAt != nil {
			t.Errorf("PaidAt = %v, want nil after leaving completed", *got.PaidAt)
		}
	})
}

func TestDashboardSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := seedGroup(t, store, "Dashboard Group", 3)
	activateGroup(t, store, g.ID)
	c1 := seedClient(t, store, "Dash", "One")
	c2 := seedClient(t, store, "Dash", "Two")
	m1 := seedMember(t, store, g.ID, c1.ID, 1)
	seedMember(t, store, g.ID, c2.ID, 2)
	cy := seedCycle(t, store, g.ID, 1, models.CycleActive)

	ct := &models.Contribution{CycleID: cy.ID, MemberID: m1.ID, Amount: 500, Status: models.ContributionPaid}
	if err := store.CreateContribution(ctx, g.ID, ct); err != nil {
		t.Fatalf("CreateContribution failed: %v", err)
	}
	p := &models.Payout{CycleID: cy.ID, MemberID: m1.ID, Amount: 1000, Status: models.PayoutScheduled}
	if err := store.CreatePayout(ctx, g.ID, p); err != nil {
		t.Fatalf("CreatePayout failed: %v", err)
	}

	sum, err := store.DashboardSummary(ctx)
	if err != nil {
		t.Fatalf("DashboardSummary failed: %v", err)
	}
	if sum.TotalMembers != 2 {
		t.Errorf("TotalMembers = %d, want 2", sum.TotalMembers)
	}
	if sum.ActiveGroups != 1 {
		t.Errorf("ActiveGroups = %d, want 1", sum.ActiveGroups)
	}
	if sum.ScheduledPayoutTotal != 1000 {
		t.Errorf("ScheduledPayoutTotal = %f, want 1000", sum.ScheduledPayoutTotal)
	}
	if len(sum.ActiveCycles) != 1 {
		t.Fatalf("ActiveCycles count = %d, want 1", len(sum.ActiveCycles))
	}
	if sum.ActiveCycles[0].Pot != 500 {
		t.Errorf("Pot = %f, want 500", sum.ActiveCycles[0].Pot)
	}
	if sum.ActiveCycles[0].GroupName != "Dashboard Group" {
		t.Errorf("GroupName = %q", sum.ActiveCycles[0].GroupName)
	}
}

func TestGroupDetail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := seedGroup(t, store, "Detail Group", 2)
	activateGroup(t, store, g.ID)
	c1 := seedClient(t, store, "Det", "One")
	c2 := seedClient(t, store, "Det", "Two")
	m1 := seedMember(t, store, g.ID, c1.ID, 1)
	m2 := seedMember(t, store, g.ID, c2.ID, 2)
	cy := seedCycle(t, store, g.ID, 1, models.CycleActive)

	for _, m := range []*models.Membership{m1, m2} {
		ct := &models.Contribution{CycleID: cy.ID, MemberID: m.ID, Amount: 250, Status: models.ContributionPaid}
		if err := store.CreateContribution(ctx, g.ID, ct); err != nil {
			t.Fatalf("CreateContribution failed: %v", err)
		}
	}
	p := &models.Payout{CycleID: cy.ID, MemberID: m1.ID, Amount: 500, Status: models.PayoutScheduled}
	if err := store.CreatePayout(ctx, g.ID, p); err != nil {
		t.Fatalf("CreatePayout failed: %v", err)
	}

	detail, err := store.GetGroupDetail(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroupDetail failed: %v", err)
	}
	if len(detail.Members) != 2 {
		t.Errorf("Members = %d, want 2", len(detail.Members))
	}
	if len(detail.Cycles) != 1 {
		t.Fatalf("Cycles = %d, want 1", len(detail.Cycles))
	}
	cd := detail.Cycles[0]
	if cd.ContributedTotal != 500 {
		t.Errorf("ContributedTotal = %f, want 500", cd.ContributedTotal)
	}
	if len(cd.Contributions) != 2 || len(cd.Payouts) != 1 {
		t.Errorf("ledgers = %d contributions, %d payouts", len(cd.Contributions), len(cd.Payouts))
	}
}
