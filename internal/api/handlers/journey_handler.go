package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/waitwell/edflow/backend/internal/application/services"
	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/repositories"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// VisitReader provides the latest snapshot for a patient, live or
// cached.
type VisitReader interface {
	CurrentVisit(patientID string) (*entities.VisitSnapshot, error)
	CachedVisit(ctx context.Context, patientID string) (*entities.VisitSnapshot, error)
}

// JourneyHandler serves the patient-facing journey view model and the
// archived visit history.
type JourneyHandler struct {
	visits  VisitReader
	history repositories.VisitHistoryRepository
	now     func() time.Time
}

// NewJourneyHandler creates a new journey handler
func NewJourneyHandler(visits VisitReader, history repositories.VisitHistoryRepository) *JourneyHandler {
	return &JourneyHandler{
		visits:  visits,
		history: history,
		now:     time.Now,
	}
}

type stageView struct {
	Name   entities.StageName   `json:"name"`
	Status entities.StageStatus `json:"status"`
}

type metricsView struct {
	CategoryLoad         services.LoadLevel `json:"category_load"`
	RemainingWaitMinutes *int               `json:"remaining_wait_minutes,omitempty"`
	RemainingWaitDisplay string             `json:"remaining_wait_display,omitempty"`
	ProgressPercent      int                `json:"progress_percent"`
	EstimatedCompletion  string             `json:"estimated_completion,omitempty"`
	TimeElapsedDisplay   string             `json:"time_elapsed_display"`
}

type journeyView struct {
	Patient       entities.PatientSnapshot `json:"patient"`
	Stages        []stageView              `json:"stages"`
	Metrics       metricsView              `json:"metrics"`
	Department    entities.DepartmentStats `json:"department"`
	Queue         entities.QueueSnapshot   `json:"queue"`
	FetchedAt     time.Time                `json:"fetched_at"`
	Stale         bool                     `json:"stale"`
	LastPollError string                   `json:"last_poll_error,omitempty"`
}

// GetJourney handles GET /api/journey/{id}
func (h *JourneyHandler) GetJourney(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	snapshot, lastErr := h.visits.CurrentVisit(patientID)
	if snapshot == nil {
		// No live data yet: serve the last-good snapshot if one exists.
		cached, err := h.visits.CachedVisit(r.Context(), patientID)
		if err != nil {
			respondWithError(w, http.StatusNotFound, "no journey data for this patient")
			return
		}
		snapshot = cached
	}

	respondWithJSON(w, http.StatusOK, h.buildView(snapshot, lastErr))
}

// GetHistory handles GET /api/journey/{id}/history
func (h *JourneyHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	filter := repositories.HistoryFilter{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	records, err := h.history.ListByPatient(r.Context(), patientID, filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"patient_id": patientID,
		"records":    records,
		"count":      len(records),
	})
}

// buildView assembles the full journey view model from one snapshot.
// Stage statuses and metrics are derived fresh on every request.
func (h *JourneyHandler) buildView(snapshot *entities.VisitSnapshot, lastErr error) journeyView {
	statuses := entities.ClassifyStages(snapshot.Patient.CurrentPhase)
	stages := make([]stageView, 0, len(entities.StageNames))
	for _, name := range entities.StageNames {
		stages = append(stages, stageView{Name: name, Status: statuses[name]})
	}

	metrics := metricsView{
		CategoryLoad:       services.CategoryLoad(snapshot.Stats, snapshot.Patient.TriageCategory),
		TimeElapsedDisplay: services.FormatWait(snapshot.Patient.TimeElapsedMinutes),
	}
	if snapshot.Patient.ExpectedWaitMinutes != nil {
		expected := *snapshot.Patient.ExpectedWaitMinutes
		remaining := services.RemainingWait(expected, snapshot.Patient.TimeElapsedMinutes)
		metrics.RemainingWaitMinutes = &remaining
		metrics.RemainingWaitDisplay = services.FormatWait(remaining)
		metrics.ProgressPercent = services.Progress(expected, snapshot.Patient.TimeElapsedMinutes)
		metrics.EstimatedCompletion = services.EstimatedCompletion(h.now(), remaining)
	}

	view := journeyView{
		Patient:    snapshot.Patient,
		Stages:     stages,
		Metrics:    metrics,
		Department: snapshot.Stats,
		Queue:      snapshot.Queue,
		FetchedAt:  snapshot.FetchedAt,
		Stale:      lastErr != nil,
	}
	if lastErr != nil {
		view.LastPollError = pollErrorMessage(lastErr)
	}
	return view
}

// pollErrorMessage strips wrapped causes so upstream internals do not
// leak to patients.
func pollErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		return appErr.Message
	}
	return "polling is temporarily failing"
}
