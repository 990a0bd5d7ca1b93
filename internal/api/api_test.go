package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rmagtibay/paluwagan/internal/service"
	"github.com/rmagtibay/paluwagan/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "paluwagan-api-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(
		service.NewClientService(store, false),
		service.NewGroupService(store, 16),
		service.NewRosterService(store, 16, false),
		service.NewCycleService(store),
		service.NewContributionService(store),
		service.NewPayoutService(store),
		service.NewDashboardService(store),
	)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestAPIRoundTrip(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api"

	var client struct {
		ClientID int64 `json:"client_id"`
	}
	status := doJSON(t, http.MethodPost, base+"/clients", map[string]string{
		"first_name": "Maria",
		"last_name":  "Santos",
		"email":      "maria@example.com",
	}, &client)
	if status != http.StatusCreated {
		t.Fatalf("create client: status = %d", status)
	}

	var group struct {
		GroupID int64  `json:"group_id"`
		Status  string `json:"status"`
	}
	status = doJSON(t, http.MethodPost, base+"/groups", map[string]any{
		"name":       "API Group",
		"max_cycles": 1,
	}, &group)
	if status != http.StatusCreated {
		t.Fatalf("create group: status = %d", status)
	}
	if group.Status != "pending" {
		t.Errorf("new group status = %q, want pending", group.Status)
	}
	groupURL := fmt.Sprintf("%s/groups/%d", base, group.GroupID)

	var member struct {
		MemberID int64 `json:"member_id"`
	}
	status = doJSON(t, http.MethodPost, groupURL+"/members", map[string]any{
		"client_id": client.ClientID,
		"position":  1,
	}, &member)
	if status != http.StatusCreated {
		t.Fatalf("add member: status = %d", status)
	}

	status = doJSON(t, http.MethodPost, groupURL+"/activate", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("activate: status = %d", status)
	}

	var cycle struct {
		CycleID int64 `json:"cycle_id"`
	}
	status = doJSON(t, http.MethodPost, groupURL+"/cycles", map[string]any{
		"cycle_number": 1,
		"start_date":   "2026-01-01",
		"end_date":     "2026-01-31",
		"status":       "active",
	}, &cycle)
	if status != http.StatusCreated {
		t.Fatalf("create cycle: status = %d", status)
	}
	cycleURL := fmt.Sprintf("%s/cycles/%d", groupURL, cycle.CycleID)

	var contribution struct {
		ContributionID int64  `json:"contribution_id"`
		PaidAt         *int64 `json:"paid_at"`
	}
	status = doJSON(t, http.MethodPost, cycleURL+"/contributions", map[string]any{
		"member_id": member.MemberID,
		"amount":    500,
		"status":    "paid",
	}, &contribution)
	if status != http.StatusCreated {
		t.Fatalf("record contribution: status = %d", status)
	}
	if contribution.PaidAt == nil {
		t.Error("paid contribution should carry paid_at")
	}

	var payout struct {
		PayoutID int64 `json:"payout_id"`
	}
	status = doJSON(t, http.MethodPost, cycleURL+"/payouts", map[string]any{
		"member_id": member.MemberID,
		"amount":    500,
		"status":    "completed",
	}, &payout)
	if status != http.StatusCreated {
		t.Fatalf("schedule payout: status = %d", status)
	}

	// max_cycles is 1, so the completed payout finishes the group.
	var detail struct {
		Status string `json:"status"`
	}
	status = doJSON(t, http.MethodGet, groupURL, nil, &detail)
	if status != http.StatusOK {
		t.Fatalf("get group: status = %d", status)
	}
	if detail.Status != "finished" {
		t.Errorf("group status = %q, want finished", detail.Status)
	}

	var dashboard struct {
		TotalMembers int `json:"total_members"`
	}
	status = doJSON(t, http.MethodGet, base+"/dashboard", nil, &dashboard)
	if status != http.StatusOK {
		t.Fatalf("dashboard: status = %d", status)
	}
	if dashboard.TotalMembers != 1 {
		t.Errorf("total_members = %d, want 1", dashboard.TotalMembers)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api"

	t.Run("missing entities are 404", func(t *testing.T) {
		if status := doJSON(t, http.MethodGet, base+"/clients/9999", nil, nil); status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
		if status := doJSON(t, http.MethodGet, base+"/groups/9999", nil, nil); status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})

	t.Run("malformed input is 422", func(t *testing.T) {
		status := doJSON(t, http.MethodPost, base+"/clients", map[string]string{"first_name": ""}, nil)
		if status != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", status)
		}
		status = doJSON(t, http.MethodGet, base+"/groups?status=frozen", nil, nil)
		if status != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", status)
		}
	})

	t.Run("state conflicts are 409", func(t *testing.T) {
		var group struct {
			GroupID int64 `json:"group_id"`
		}
		if status := doJSON(t, http.MethodPost, base+"/groups", map[string]any{"name": "Conflict Group"}, &group); status != http.StatusCreated {
			t.Fatalf("create group: status = %d", status)
		}
		groupURL := fmt.Sprintf("%s/groups/%d", base, group.GroupID)

		// Terminating a pending group conflicts with the state machine.
		if status := doJSON(t, http.MethodPost, groupURL+"/terminate", map[string]string{"reason": "x"}, nil); status != http.StatusConflict {
			t.Errorf("terminate pending: status = %d, want 409", status)
		}

		var client struct {
			ClientID int64 `json:"client_id"`
		}
		doJSON(t, http.MethodPost, base+"/clients", map[string]string{"first_name": "A", "last_name": "B"}, &client)
		var client2 struct {
			ClientID int64 `json:"client_id"`
		}
		doJSON(t, http.MethodPost, base+"/clients", map[string]string{"first_name": "C", "last_name": "D"}, &client2)

		if status := doJSON(t, http.MethodPost, groupURL+"/members", map[string]any{"client_id": client.ClientID, "position": 1}, nil); status != http.StatusCreated {
			t.Fatalf("add member: status = %d", status)
		}
		// Same position again.
		if status := doJSON(t, http.MethodPost, groupURL+"/members", map[string]any{"client_id": client2.ClientID, "position": 1}, nil); status != http.StatusConflict {
			t.Errorf("position collision: status = %d, want 409", status)
		}
	})

	t.Run("health and metrics respond", func(t *testing.T) {
		if status := doJSON(t, http.MethodGet, server.URL+"/healthz", nil, nil); status != http.StatusOK {
			t.Errorf("healthz: status = %d", status)
		}
		if status := doJSON(t, http.MethodGet, server.URL+"/metrics", nil, nil); status != http.StatusOK {
			t.Errorf("metrics: status = %d", status)
		}
	})
}
