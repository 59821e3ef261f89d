package services

import (
	"context"
	"strings"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// ChatClient answers one patient question, optionally grounded in the
// patient's current visit snapshot.
type ChatClient interface {
	Chat(ctx context.Context, message string, snapshot *entities.VisitSnapshot) (string, error)
}

// VisitSource provides the latest visit snapshot for a patient. It is
// satisfied by the JourneySessionService.
type VisitSource interface {
	CurrentVisit(patientID string) (*entities.VisitSnapshot, error)
	CachedVisit(ctx context.Context, patientID string) (*entities.VisitSnapshot, error)
}

// AssistantService answers waiting-room questions. Each answer is
// enriched with the patient's current snapshot when one exists; without
// a session the assistant still answers, just without visit context.
type AssistantService struct {
	chat   ChatClient
	visits VisitSource
}

// NewAssistantService creates a new assistant service
func NewAssistantService(chat ChatClient, visits VisitSource) *AssistantService {
	return &AssistantService{
		chat:   chat,
		visits: visits,
	}
}

// Answer responds to one patient message.
func (s *AssistantService) Answer(ctx context.Context, patientID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperrors.NewValidationError("message is required")
	}

	snapshot := s.currentSnapshot(ctx, patientID)

	reply, err := s.chat.Chat(ctx, message, snapshot)
	if err != nil {
		return "", apperrors.NewExternalError("assistant request failed", err)
	}
	return reply, nil
}

// currentSnapshot resolves the freshest snapshot available, falling back
// to the cached last-good one. No snapshot at all is fine.
func (s *AssistantService) currentSnapshot(ctx context.Context, patientID string) *entities.VisitSnapshot {
	if patientID == "" {
		return nil
	}
	if snapshot, _ := s.visits.CurrentVisit(patientID); snapshot != nil {
		return snapshot
	}
	if snapshot, err := s.visits.CachedVisit(ctx, patientID); err == nil {
		return snapshot
	}
	return nil
}
