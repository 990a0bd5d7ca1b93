package api

import (
	"net/http"
)

type addMemberRequest struct {
	ClientID int64 `json:"client_id"`
	Position int   `json:"position"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	m, err := h.roster.AddMember(r.Context(), groupID, req.ClientID, req.Position)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	memberID, err := urlID(r, "memberID")
	if err != nil {
		respondError(w, err)
		return
	}

	m, err := h.roster.GetMember(r.Context(), groupID, memberID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	members, err := h.roster.ListMembers(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

type changePositionRequest struct {
	Position int `json:"position"`
}

func (h *Handler) changePosition(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	memberID, err := urlID(r, "memberID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req changePositionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	m, err := h.roster.ChangePosition(r.Context(), groupID, memberID, req.Position)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	memberID, err := urlID(r, "memberID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.roster.RemoveMember(r.Context(), groupID, memberID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
