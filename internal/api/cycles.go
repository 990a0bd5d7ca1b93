package api

import (
	"net/http"

	"github.com/rmagtibay/paluwagan/internal/models"
)

type createCycleRequest struct {
	CycleNumber int    `json:"cycle_number"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
}

func (h *Handler) createCycle(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req createCycleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	c, err := h.cycles.Create(r.Context(), groupID, req.CycleNumber, req.StartDate, req.EndDate, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) getCycle(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	cycleID, err := urlID(r, "cycleID")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.cycles.Get(r.Context(), groupID, cycleID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) listCycles(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	cycles, err := h.cycles.List(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cycles)
}

type updateCycleRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status"`
}

func (h *Handler) updateCycle(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	cycleID, err := urlID(r, "cycleID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req updateCycleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	patch := models.CyclePatch{StartDate: req.StartDate, EndDate: req.EndDate}
	if req.Status != nil {
		status, err := models.ParseCycleStatus(*req.Status)
		if err != nil {
			respondError(w, err)
			return
		}
		patch.Status = &status
	}

	c, err := h.cycles.Update(r.Context(), groupID, cycleID, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCycle(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	cycleID, err := urlID(r, "cycleID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.cycles.Delete(r.Context(), groupID, cycleID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
