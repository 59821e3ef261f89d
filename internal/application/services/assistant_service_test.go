package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

type stubVisitSource struct {
	current *entities.VisitSnapshot
	cached  *entities.VisitSnapshot
}

func (s *stubVisitSource) CurrentVisit(_ string) (*entities.VisitSnapshot, error) {
	if s.current == nil {
		return nil, apperrors.NewNotFoundError("no active session for this patient")
	}
	return s.current, nil
}

func (s *stubVisitSource) CachedVisit(_ context.Context, _ string) (*entities.VisitSnapshot, error) {
	if s.cached == nil {
		return nil, apperrors.NewNotFoundError("cache miss")
	}
	return s.cached, nil
}

type stubChatClient struct {
	reply        string
	err          error
	lastMessage  string
	lastSnapshot *entities.VisitSnapshot
}

func (c *stubChatClient) Chat(_ context.Context, message string, snapshot *entities.VisitSnapshot) (string, error) {
	c.lastMessage = message
	c.lastSnapshot = snapshot
	return c.reply, c.err
}

func TestAssistantService_AnswerUsesLiveSnapshot(t *testing.T) {
	snapshot := testSnapshot(entities.PhaseTreatment)
	chat := &stubChatClient{reply: "You are currently in the treatment stage."}
	service := NewAssistantService(chat, &stubVisitSource{current: snapshot})

	reply, err := service.Answer(context.Background(), "anon_1234", "what stage am I in?")

	require.NoError(t, err)
	assert.Equal(t, "You are currently in the treatment stage.", reply)
	assert.Equal(t, snapshot, chat.lastSnapshot)
}

func TestAssistantService_AnswerFallsBackToCachedSnapshot(t *testing.T) {
	snapshot := testSnapshot(entities.PhaseTriaged)
	chat := &stubChatClient{reply: "ok"}
	service := NewAssistantService(chat, &stubVisitSource{cached: snapshot})

	_, err := service.Answer(context.Background(), "anon_1234", "how long still?")

	require.NoError(t, err)
	assert.Equal(t, snapshot, chat.lastSnapshot)
}

func TestAssistantService_AnswerWithoutAnySnapshot(t *testing.T) {
	chat := &stubChatClient{reply: "ok"}
	service := NewAssistantService(chat, &stubVisitSource{})

	_, err := service.Answer(context.Background(), "anon_1234", "what does triage mean?")

	require.NoError(t, err)
	assert.Nil(t, chat.lastSnapshot)
}

func TestAssistantService_AnswerRejectsEmptyMessage(t *testing.T) {
	service := NewAssistantService(&stubChatClient{}, &stubVisitSource{})

	_, err := service.Answer(context.Background(), "anon_1234", "   ")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestAssistantService_AnswerWrapsClientFailure(t *testing.T) {
	chat := &stubChatClient{err: assert.AnError}
	service := NewAssistantService(chat, &stubVisitSource{})

	_, err := service.Answer(context.Background(), "anon_1234", "hello")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}
