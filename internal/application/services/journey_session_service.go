package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/providers"
	"github.com/waitwell/edflow/backend/internal/domain/repositories"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// snapshotCacheTTLSeconds controls how long a last-good snapshot stays
// readable after the session that produced it ends.
const snapshotCacheTTLSeconds = 600

// JourneySessionService owns the polling session for the patient being
// followed. At most one session is active at a time; starting a session
// for a different patient cancels the previous one. Each session polls
// the hospital provider on a fixed period and commits complete snapshots
// only, so readers never observe a half-updated journey.
type JourneySessionService struct {
	provider providers.HospitalDataProvider
	cache    providers.CacheProvider
	eventBus providers.EventBus
	history  repositories.VisitHistoryRepository
	interval time.Duration

	mu         sync.RWMutex
	generation uint64
	patientID  string
	cancel     context.CancelFunc
	snapshot   *entities.VisitSnapshot
	lastErr    error
	lastPhase  entities.Phase
}

// NewJourneySessionService creates a new journey session service
func NewJourneySessionService(
	provider providers.HospitalDataProvider,
	cache providers.CacheProvider,
	eventBus providers.EventBus,
	history repositories.VisitHistoryRepository,
	interval time.Duration,
) *JourneySessionService {
	return &JourneySessionService{
		provider: provider,
		cache:    cache,
		eventBus: eventBus,
		history:  history,
		interval: interval,
	}
}

// StartSession begins polling for the given patient. Starting the
// patient that is already active is a no-op; any other active session is
// cancelled first and its in-flight results are discarded.
func (s *JourneySessionService) StartSession(patientID string) {
	s.mu.Lock()
	if s.patientID == patientID && s.cancel != nil {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.generation++
	generation := s.generation
	s.patientID = patientID
	s.snapshot = nil
	s.lastErr = nil
	s.lastPhase = entities.PhaseUnknown

	// The poll loop outlives the request that started it.
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.pollLoop(ctx, generation, patientID)
}

// StopSession cancels the active session for the given patient. Stopping
// a patient that is not active, or stopping twice, is a no-op.
func (s *JourneySessionService) StopSession(patientID string) {
	s.mu.Lock()
	if s.patientID != patientID || s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	s.mu.Unlock()

	event := entities.NewJourneyEvent(patientID, entities.JourneyEventTypeSessionClosed, nil)
	if err := s.eventBus.Publish(context.Background(), providers.GetJourneyChannel(patientID), event); err != nil {
		log.Printf("Failed to publish session closed event for %s: %v", patientID, err)
	}
}

// CurrentVisit returns the latest committed snapshot for the patient and
// the error of the most recent failed tick, if any. A nil snapshot with
// a nil error means the session has not completed a tick yet.
func (s *JourneySessionService) CurrentVisit(patientID string) (*entities.VisitSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.patientID != patientID {
		return nil, apperrors.NewNotFoundError("no active session for this patient")
	}
	return s.snapshot, s.lastErr
}

// ActivePatientID returns the patient currently being polled, or an
// empty string when no session is active.
func (s *JourneySessionService) ActivePatientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cancel == nil {
		return ""
	}
	return s.patientID
}

// CachedVisit reads the last-good snapshot from the cache. It serves
// readers when no in-memory snapshot exists, for example right after a
// restart.
func (s *JourneySessionService) CachedVisit(ctx context.Context, patientID string) (*entities.VisitSnapshot, error) {
	data, err := s.cache.Get(ctx, snapshotCacheKey(patientID))
	if err != nil {
		return nil, err
	}
	var snapshot entities.VisitSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, apperrors.NewInternalError("failed to decode cached snapshot", err)
	}
	return &snapshot, nil
}

// pollLoop runs one session: an immediate first tick, then a tick per
// interval until the session context is cancelled.
func (s *JourneySessionService) pollLoop(ctx context.Context, generation uint64, patientID string) {
	log.Printf("Starting journey session for %s", patientID)

	s.tick(ctx, generation, patientID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Journey session for %s stopped", patientID)
			return
		case <-ticker.C:
			s.tick(ctx, generation, patientID)
		}
	}
}

// tick fetches one snapshot and commits it. A failed fetch keeps the
// previous snapshot and records the error; the loop stays alive either
// way.
func (s *JourneySessionService) tick(ctx context.Context, generation uint64, patientID string) {
	snapshot, err := s.provider.FetchVisit(ctx, patientID)

	s.mu.Lock()
	// A result from a cancelled session must not clobber the session
	// that replaced it.
	if s.generation != generation {
		s.mu.Unlock()
		return
	}

	if err != nil {
		s.lastErr = err
		s.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		log.Printf("Poll tick failed for %s: %v", patientID, err)
		failure := entities.NewJourneyEvent(patientID, entities.JourneyEventTypePollFailed, nil)
		failure.Error = err.Error()
		if pubErr := s.eventBus.Publish(ctx, providers.GetJourneyChannel(patientID), failure); pubErr != nil {
			log.Printf("Failed to publish poll failure for %s: %v", patientID, pubErr)
		}
		return
	}

	eventType := entities.JourneyEventTypeSnapshotUpdated
	if s.lastPhase != entities.PhaseUnknown && s.lastPhase != snapshot.Patient.CurrentPhase {
		eventType = entities.JourneyEventTypePhaseChanged
	}
	s.snapshot = snapshot
	s.lastErr = nil
	s.lastPhase = snapshot.Patient.CurrentPhase
	s.mu.Unlock()

	s.commit(ctx, patientID, snapshot, eventType)
}

// commit fans a committed snapshot out to the cache, the history store
// and the event bus. These are best-effort: a failure in any of them is
// logged and does not invalidate the in-memory snapshot.
func (s *JourneySessionService) commit(ctx context.Context, patientID string, snapshot *entities.VisitSnapshot, eventType entities.JourneyEventType) {
	if data, err := json.Marshal(snapshot); err != nil {
		log.Printf("Failed to encode snapshot for %s: %v", patientID, err)
	} else if err := s.cache.Set(ctx, snapshotCacheKey(patientID), data, snapshotCacheTTLSeconds); err != nil {
		log.Printf("Failed to cache snapshot for %s: %v", patientID, err)
	}

	record := &repositories.VisitRecord{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		Snapshot:   *snapshot,
		RecordedAt: snapshot.FetchedAt,
	}
	if err := s.history.Append(ctx, record); err != nil {
		log.Printf("Failed to archive snapshot for %s: %v", patientID, err)
	}

	event := entities.NewJourneyEvent(patientID, eventType, snapshot)
	if err := s.eventBus.Publish(ctx, providers.GetJourneyChannel(patientID), event); err != nil {
		log.Printf("Failed to publish journey event for %s: %v", patientID, err)
	}
}

func snapshotCacheKey(patientID string) string {
	return fmt.Sprintf("journey:snapshot:%s", patientID)
}
