package hospital

import (
	"context"
	"strconv"
	"time"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/providers"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/hospitalapi"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// MultiEndpointProvider normalizes the three-endpoint backend shape:
// separate patient, department-statistics and queue payloads. The three
// requests for one tick are issued concurrently; a failure of any one
// fails the whole fetch so no partial snapshot can be published.
type MultiEndpointProvider struct {
	client hospitalapi.Client
	now    func() time.Time
}

// NewMultiEndpointProvider creates a multi-endpoint hospital provider
func NewMultiEndpointProvider(client hospitalapi.Client) providers.HospitalDataProvider {
	return &MultiEndpointProvider{
		client: client,
		now:    time.Now,
	}
}

// FetchVisit fetches and normalizes one complete visit snapshot.
func (p *MultiEndpointProvider) FetchVisit(ctx context.Context, patientID string) (*entities.VisitSnapshot, error) {
	var (
		patient *hospitalapi.PatientRecord
		stats   *hospitalapi.StatsRecord
		queue   *hospitalapi.QueueRecord
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		patient, err = p.client.GetPatient(groupCtx, patientID)
		return err
	})
	group.Go(func() error {
		var err error
		stats, err = p.client.GetCurrentStats(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		queue, err = p.client.GetQueue(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return p.normalize(patient, stats, queue)
}

func (p *MultiEndpointProvider) normalize(
	patient *hospitalapi.PatientRecord,
	stats *hospitalapi.StatsRecord,
	queue *hospitalapi.QueueRecord,
) (*entities.VisitSnapshot, error) {
	if patient.ID == "" {
		return nil, apperrors.NewNormalizationError("patient payload is missing an id", nil)
	}

	arrival, err := parseArrivalTime(patient.ArrivalTime)
	if err != nil {
		return nil, err
	}

	triage := entities.TriageCategoryUnknown
	if patient.TriageCategory != nil && *patient.TriageCategory >= 1 && *patient.TriageCategory <= 5 {
		triage = *patient.TriageCategory
	}

	departmentStats := entities.DepartmentStats{
		CategoryBreakdown:  categoryMap(stats.CategoryBreakdown),
		AverageWaitMinutes: categoryMap(stats.AverageWaitTimes),
	}

	// This shape carries no per-patient estimate; the category average is
	// the expected total wait. Absent category data stays unknown rather
	// than becoming a fabricated zero.
	var expectedWait *int
	if triage != entities.TriageCategoryUnknown {
		if avg, ok := departmentStats.AverageWaitMinutes[triage]; ok {
			expectedWait = &avg
		}
	}

	snapshot := &entities.VisitSnapshot{
		Patient: entities.PatientSnapshot{
			ID:             patient.ID,
			ArrivalTime:    arrival,
			TriageCategory: triage,
			CurrentPhase:   entities.ParsePhase(patient.Status.CurrentPhase),
			Investigations: entities.Investigations{
				Labs:    entities.ParseInvestigationState(patient.Status.Investigations.Labs),
				Imaging: entities.ParseInvestigationState(patient.Status.Investigations.Imaging),
			},
			QueuePosition: entities.QueuePosition{
				Global:   patient.QueuePosition.Global,
				Category: patient.QueuePosition.Category,
			},
			TimeElapsedMinutes:  patient.TimeElapsed,
			ExpectedWaitMinutes: expectedWait,
		},
		Stats: departmentStats,
		Queue: entities.QueueSnapshot{
			WaitingCount:       queue.WaitingCount,
			LongestWaitMinutes: queue.LongestWaitTime,
		},
		FetchedAt: p.now(),
	}

	return snapshot, nil
}

// categoryMap converts the upstream string-keyed category mapping to int
// keys. Unparsable keys are dropped; consumers treat missing categories
// as zero.
func categoryMap(raw map[string]int) map[int]int {
	out := make(map[int]int, len(raw))
	for key, value := range raw {
		category, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[category] = value
	}
	return out
}

// parseArrivalTime accepts the timestamp formats the upstream has been
// observed to send.
func parseArrivalTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperrors.NewNormalizationError("patient payload is missing arrival_time", nil)
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, apperrors.NewNormalizationError("patient payload has an unparsable arrival_time", nil)
}
