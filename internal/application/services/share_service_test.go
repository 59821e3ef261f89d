package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

type stubEmailSender struct {
	mu       sync.Mutex
	failFor  map[string]bool
	sent     []string
	lastBody string
}

func (s *stubEmailSender) Send(_ context.Context, to, _ string, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] {
		return errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, to)
	s.lastBody = body
	return nil
}

func TestShareService_SendsToEveryAddress(t *testing.T) {
	sender := &stubEmailSender{}
	service := NewShareService(sender, &stubVisitSource{current: testSnapshot(entities.PhaseTreatment)})

	result, err := service.Share(context.Background(), "anon_1234", []string{
		"parent@example.com",
		"sibling@example.com",
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"parent@example.com", "sibling@example.com"}, result.Sent)
	assert.Empty(t, result.Failed)
	assert.Contains(t, sender.lastBody, "treatment")
}

func TestShareService_OneBadMailboxDoesNotBlockTheRest(t *testing.T) {
	sender := &stubEmailSender{failFor: map[string]bool{"broken@example.com": true}}
	service := NewShareService(sender, &stubVisitSource{current: testSnapshot(entities.PhaseTriaged)})

	result, err := service.Share(context.Background(), "anon_1234", []string{
		"broken@example.com",
		"parent@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"parent@example.com"}, result.Sent)
	assert.Equal(t, []string{"broken@example.com"}, result.Failed)
}

func TestShareService_RejectsInvalidAddress(t *testing.T) {
	service := NewShareService(&stubEmailSender{}, &stubVisitSource{current: testSnapshot(entities.PhaseTriaged)})

	_, err := service.Share(context.Background(), "anon_1234", []string{"not-an-email"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestShareService_RejectsEmptyRecipients(t *testing.T) {
	service := NewShareService(&stubEmailSender{}, &stubVisitSource{current: testSnapshot(entities.PhaseTriaged)})

	_, err := service.Share(context.Background(), "anon_1234", nil)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
}

func TestShareService_NoSnapshotAvailable(t *testing.T) {
	service := NewShareService(&stubEmailSender{}, &stubVisitSource{})

	_, err := service.Share(context.Background(), "anon_1234", []string{"parent@example.com"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}
