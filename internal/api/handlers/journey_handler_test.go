package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitwell/edflow/backend/internal/api/handlers"
	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/repositories"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

type stubVisitReader struct {
	current *entities.VisitSnapshot
	lastErr error
	cached  *entities.VisitSnapshot
}

func (s *stubVisitReader) CurrentVisit(_ string) (*entities.VisitSnapshot, error) {
	return s.current, s.lastErr
}

func (s *stubVisitReader) CachedVisit(_ context.Context, _ string) (*entities.VisitSnapshot, error) {
	if s.cached == nil {
		return nil, apperrors.NewNotFoundError("cache miss")
	}
	return s.cached, nil
}

type stubHistoryRepo struct {
	records []*repositories.VisitRecord
	err     error
	filter  repositories.HistoryFilter
}

func (s *stubHistoryRepo) Append(_ context.Context, _ *repositories.VisitRecord) error { return nil }

func (s *stubHistoryRepo) ListByPatient(_ context.Context, _ string, filter repositories.HistoryFilter) ([]*repositories.VisitRecord, error) {
	s.filter = filter
	return s.records, s.err
}

func journeySnapshot(phase entities.Phase, expectedWait *int, elapsed int) *entities.VisitSnapshot {
	return &entities.VisitSnapshot{
		Patient: entities.PatientSnapshot{
			ID:                  "anon_1234",
			ArrivalTime:         time.Date(2025, 1, 25, 14, 30, 0, 0, time.UTC),
			TriageCategory:      3,
			CurrentPhase:        phase,
			TimeElapsedMinutes:  elapsed,
			ExpectedWaitMinutes: expectedWait,
			QueuePosition:       entities.QueuePosition{Global: 4, Category: 2},
		},
		Stats: entities.DepartmentStats{
			CategoryBreakdown:  map[int]int{1: 1, 2: 3, 3: 8, 4: 5, 5: 2},
			AverageWaitMinutes: map[int]int{3: 90},
		},
		Queue:     entities.QueueSnapshot{WaitingCount: 19, LongestWaitMinutes: 160},
		FetchedAt: time.Date(2025, 1, 25, 15, 0, 0, 0, time.UTC),
	}
}

func getJourney(t *testing.T, handler *handlers.JourneyHandler, patientID string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/journey/"+patientID, nil)
	req.SetPathValue("id", patientID)
	w := httptest.NewRecorder()
	handler.GetJourney(w, req)

	var body map[string]interface{}
	if w.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	}
	return w, body
}

func TestJourneyHandler_GetJourney_Success(t *testing.T) {
	expected := 90
	reader := &stubVisitReader{current: journeySnapshot(entities.PhaseInvestigationsPending, &expected, 40)}
	handler := handlers.NewJourneyHandler(reader, &stubHistoryRepo{})

	w, body := getJourney(t, handler, "anon_1234")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["stale"])

	stages := body["stages"].([]interface{})
	require.Len(t, stages, 6)
	byName := map[string]string{}
	for _, raw := range stages {
		stage := raw.(map[string]interface{})
		byName[stage["name"].(string)] = stage["status"].(string)
	}
	assert.Equal(t, "complete", byName["arrival"])
	assert.Equal(t, "complete", byName["registration"])
	assert.Equal(t, "complete", byName["triage"])
	assert.Equal(t, "active", byName["investigations"])
	assert.Equal(t, "pending", byName["treatment"])
	assert.Equal(t, "pending", byName["completion"])

	metrics := body["metrics"].(map[string]interface{})
	assert.Equal(t, float64(50), metrics["remaining_wait_minutes"])
	assert.Equal(t, "50m", metrics["remaining_wait_display"])
	assert.Equal(t, float64(44), metrics["progress_percent"])
	assert.NotEmpty(t, metrics["estimated_completion"])
}

func TestJourneyHandler_GetJourney_OverrunWaitClampsMetrics(t *testing.T) {
	expected := 90
	reader := &stubVisitReader{current: journeySnapshot(entities.PhaseTriaged, &expected, 130)}
	handler := handlers.NewJourneyHandler(reader, &stubHistoryRepo{})

	w, body := getJourney(t, handler, "anon_1234")

	assert.Equal(t, http.StatusOK, w.Code)
	metrics := body["metrics"].(map[string]interface{})
	assert.Equal(t, float64(0), metrics["remaining_wait_minutes"])
	assert.Equal(t, float64(100), metrics["progress_percent"])
}

func TestJourneyHandler_GetJourney_UnknownWaitOmitsRemaining(t *testing.T) {
	reader := &stubVisitReader{current: journeySnapshot(entities.PhaseRegistered, nil, 10)}
	handler := handlers.NewJourneyHandler(reader, &stubHistoryRepo{})

	w, body := getJourney(t, handler, "anon_1234")

	assert.Equal(t, http.StatusOK, w.Code)
	metrics := body["metrics"].(map[string]interface{})
	_, hasRemaining := metrics["remaining_wait_minutes"]
	assert.False(t, hasRemaining)
	assert.Equal(t, float64(0), metrics["progress_percent"])
}

func TestJourneyHandler_GetJourney_StaleAfterPollFailure(t *testing.T) {
	expected := 90
	reader := &stubVisitReader{
		current: journeySnapshot(entities.PhaseTreatment, &expected, 60),
		lastErr: apperrors.NewExternalError("hospital api returned status 503", nil),
	}
	handler := handlers.NewJourneyHandler(reader, &stubHistoryRepo{})

	w, body := getJourney(t, handler, "anon_1234")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["stale"])
	assert.Equal(t, "hospital api returned status 503", body["last_poll_error"])
}

func TestJourneyHandler_GetJourney_FallsBackToCache(t *testing.T) {
	expected := 90
	reader := &stubVisitReader{
		lastErr: apperrors.NewNotFoundError("no active session for this patient"),
		cached:  journeySnapshot(entities.PhaseTriaged, &expected, 40),
	}
	handler := handlers.NewJourneyHandler(reader, &stubHistoryRepo{})

	w, body := getJourney(t, handler, "anon_1234")

	assert.Equal(t, http.StatusOK, w.Code)
	patient := body["patient"].(map[string]interface{})
	assert.Equal(t, "anon_1234", patient["id"])
}

func TestJourneyHandler_GetJourney_NotFound(t *testing.T) {
	reader := &stubVisitReader{lastErr: apperrors.NewNotFoundError("no active session for this patient")}
	handler := handlers.NewJourneyHandler(reader, &stubHistoryRepo{})

	w, _ := getJourney(t, handler, "anon_9999")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJourneyHandler_GetHistory(t *testing.T) {
	history := &stubHistoryRepo{records: []*repositories.VisitRecord{
		{ID: "rec-1", PatientID: "anon_1234", RecordedAt: time.Now()},
	}}
	handler := handlers.NewJourneyHandler(&stubVisitReader{}, history)

	req := httptest.NewRequest("GET", "/api/journey/anon_1234/history?limit=5", nil)
	req.SetPathValue("id", "anon_1234")
	w := httptest.NewRecorder()
	handler.GetHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, history.filter.Limit)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, float64(1), body["count"])
}

func TestJourneyHandler_GetHistory_RejectsBadLimit(t *testing.T) {
	handler := handlers.NewJourneyHandler(&stubVisitReader{}, &stubHistoryRepo{})

	req := httptest.NewRequest("GET", "/api/journey/anon_1234/history?limit=zero", nil)
	req.SetPathValue("id", "anon_1234")
	w := httptest.NewRecorder()
	handler.GetHistory(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
