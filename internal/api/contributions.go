package api

import (
	"net/http"

	"github.com/rmagtibay/paluwagan/internal/models"
)

type recordContributionRequest struct {
	MemberID int64   `json:"member_id"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
	Notes    string  `json:"notes"`
}

func (h *Handler) recordContribution(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req recordContributionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	c, err := h.contributions.Record(r.Context(), groupID, cycleID, req.MemberID, req.Amount, req.Status, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) getContribution(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := urlID(r, "contributionID")
	if err != nil {
		respondError(w, err)
		return
	}

	c, err := h.contributions.Get(r.Context(), groupID, cycleID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type updateContributionRequest struct {
	Amount *float64 `json:"amount"`
	Status *string  `json:"status"`
	Notes  *string  `json:"notes"`
}

func (h *Handler) updateContribution(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := urlID(r, "contributionID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req updateContributionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	patch := models.ContributionPatch{Amount: req.Amount, Notes: req.Notes}
	if req.Status != nil {
		status, err := models.ParseContributionStatus(*req.Status)
		if err != nil {
			respondError(w, err)
			return
		}
		patch.Status = &status
	}

	c, err := h.contributions.Update(r.Context(), groupID, cycleID, id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteContribution(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := urlID(r, "contributionID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.contributions.Delete(r.Context(), groupID, cycleID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) listCycleContributions(w http.ResponseWriter, r *http.Request) {
	groupID, cycleID, err := cycleScope(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contributions, err := h.contributions.ListByCycle(r.Context(), groupID, cycleID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contributions)
}

func (h *Handler) listAllContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.contributions.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contributions)
}

// cycleScope parses the groupID and cycleID URL parameters shared by the
// nested ledger routes.
func cycleScope(r *http.Request) (groupID, cycleID int64, err error) {
	groupID, err = urlID(r, "groupID")
	if err != nil {
		return 0, 0, err
	}
	cycleID, err = urlID(r, "cycleID")
	if err != nil {
		return 0, 0, err
	}
	return groupID, cycleID, nil
}
