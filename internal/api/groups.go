package api

import (
	"net/http"

	"github.com/rmagtibay/paluwagan/internal/models"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxCycles   int    `json:"max_cycles"`
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	g, err := h.groups.Create(r.Context(), req.Name, req.Description, req.MaxCycles)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	g, err := h.groups.GetDetail(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	MaxCycles   *int    `json:"max_cycles"`
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req updateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	g, err := h.groups.Update(r.Context(), id, models.GroupPatch{
		Name:        req.Name,
		Description: req.Description,
		MaxCycles:   req.MaxCycles,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.groups.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) activateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	g, err := h.groups.Activate(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

type terminateGroupRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) terminateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	var req terminateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	g, err := h.groups.Terminate(r.Context(), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (h *Handler) listTerminations(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "groupID")
	if err != nil {
		respondError(w, err)
		return
	}
	logs, err := h.groups.ListTerminations(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}
