package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/waitwell/edflow/backend/internal/application/services"
)

// StatusSharer defines the sharing operations used by the handler.
type StatusSharer interface {
	Share(ctx context.Context, patientID string, emails []string) (*services.ShareResult, error)
}

// ShareHandler emails a patient's status to chosen recipients.
type ShareHandler struct {
	sharer StatusSharer
}

// NewShareHandler creates a new share handler
func NewShareHandler(sharer StatusSharer) *ShareHandler {
	return &ShareHandler{
		sharer: sharer,
	}
}

type shareRequest struct {
	Emails []string `json:"emails"`
}

// ShareStatus handles POST /api/patient/{id}/share
func (h *ShareHandler) ShareStatus(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	var payload shareRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.sharer.Share(r.Context(), patientID, payload.Emails)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
