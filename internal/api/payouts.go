package api

import (
	"net/http"

	"github.com/rmagtibay/paluwagan/internal/models"
)

type schedulePayoutRequest struct {
	MemberID int64   `json:"member_id"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
}

func (h *Handler) schedulePayout(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req schedulePayoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	p, err := h.payouts.Schedule(r.Context(), groupID, cycleID, req.MemberID, req.Amount, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) getPayout(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := urlID(r, "payoutID")
	if err != nil {
		respondError(w, err)
		return
	}

	p, err := h.payouts.Get(r.Context(), groupID, cycleID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type updatePayoutRequest struct {
	Amount *float64 `json:"amount"`
	Status *string  `json:"status"`
}

func (h *Handler) updatePayout(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := urlID(r, "payoutID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req updatePayoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	patch := models.PayoutPatch{Amount: req.Amount}
	if req.Status != nil {
		status, err := models.ParsePayoutStatus(*req.Status)
		if err != nil {
			respondError(w, err)
			return
		}
		patch.Status = &status
	}

	p, err := h.payouts.Update(r.Context(), groupID, cycleID, id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) deletePayout(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := urlID(r, "payoutID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.payouts.Delete(r.Context(), groupID, cycleID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) listCyclePayouts(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	payouts, err := h.payouts.ListByCycle(r.Context(), groupID, cycleID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payouts)
}

func (h *Handler) listAllPayouts(w http.ResponseWriter, r *http.Request) {
	payouts, err := h.payouts.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payouts)
}

func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	sum, err := h.dashboard.Summary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}
