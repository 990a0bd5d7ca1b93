// Package api exposes the engine over a JSON REST surface routed with chi.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rmagtibay/paluwagan/internal/models"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps the models sentinels to HTTP statuses: missing entities
// are 404, malformed input 422, conflicts with current state 409, anything
// else 500.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrMemberNotInGroup):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidDateRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrCapacityExceeded),
		errors.Is(err, models.ErrPositionTaken),
		errors.Is(err, models.ErrDuplicateMember),
		errors.Is(err, models.ErrDuplicateCycleNumber),
		errors.Is(err, models.ErrDuplicateContribution),
		errors.Is(err, models.ErrDuplicatePayout),
		errors.Is(err, models.ErrClientInUse),
		errors.Is(err, models.ErrInvalidStateTransition):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.Error("internal error", "error", err)
		respondJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	respondJSON(w, status, errorBody{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", models.ErrValidation, err)
	}
	return nil
}

// urlID parses a chi URL parameter as an int64 ID.
func urlID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid %s %q", models.ErrValidation, name, raw)
	}
	return id, nil
}
