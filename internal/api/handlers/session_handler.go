package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/waitwell/edflow/backend/internal/domain/identity"
)

// SessionManager defines the session operations used by the handler.
type SessionManager interface {
	StartSession(patientID string)
	StopSession(patientID string)
}

// SessionHandler starts and stops polling sessions from scanned
// wristband tokens.
type SessionHandler struct {
	validator *identity.Validator
	sessions  SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(validator *identity.Validator, sessions SessionManager) *SessionHandler {
	return &SessionHandler{
		validator: validator,
		sessions:  sessions,
	}
}

type createSessionRequest struct {
	Token string `json:"token"`
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	patientID, err := h.validator.Validate(payload.Token)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.sessions.StartSession(patientID)

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"patient_id": patientID,
	})
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	h.sessions.StopSession(patientID)
	w.WriteHeader(http.StatusNoContent)
}
