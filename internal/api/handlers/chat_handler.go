package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// Assistant defines the assistant operations used by the handler.
type Assistant interface {
	Answer(ctx context.Context, patientID, message string) (string, error)
}

// ChatHandler proxies waiting-room questions to the assistant.
type ChatHandler struct {
	assistant Assistant
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant Assistant) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	PatientID string `json:"patient_id"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	reply, err := h.assistant.Answer(r.Context(), payload.PatientID, payload.Message)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"reply": reply,
	})
}
