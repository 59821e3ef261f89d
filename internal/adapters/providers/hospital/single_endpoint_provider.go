package hospital

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/providers"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/hospitalapi"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// SingleEndpointProvider normalizes the flat single-endpoint backend
// shape: one payload per patient carrying the visit record plus
// per-category sequences indexed by rank.
type SingleEndpointProvider struct {
	client hospitalapi.Client
	now    func() time.Time
}

// NewSingleEndpointProvider creates a single-endpoint hospital provider
func NewSingleEndpointProvider(client hospitalapi.Client) providers.HospitalDataProvider {
	return &SingleEndpointProvider{
		client: client,
		now:    time.Now,
	}
}

// FetchVisit fetches and normalizes one complete visit snapshot.
func (p *SingleEndpointProvider) FetchVisit(ctx context.Context, patientID string) (*entities.VisitSnapshot, error) {
	record, err := p.client.GetFlatVisit(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return p.normalize(patientID, record)
}

func (p *SingleEndpointProvider) normalize(patientID string, record *hospitalapi.FlatVisitRecord) (*entities.VisitSnapshot, error) {
	arrival, err := parseArrivalTime(record.ArrivalTime)
	if err != nil {
		return nil, err
	}

	triage, err := parseTriage(record.Triage)
	if err != nil {
		return nil, err
	}

	breakdown, averages, err := zipCategorySequences(record.PatientNumberByCat, record.ExpectedWaitTimesByCat)
	if err != nil {
		return nil, err
	}

	var expectedWait *int
	if record.ExpectedTime != nil {
		value := *record.ExpectedTime
		expectedWait = &value
	} else if triage != entities.TriageCategoryUnknown {
		if avg, ok := averages[triage]; ok {
			expectedWait = &avg
		}
	}

	snapshot := &entities.VisitSnapshot{
		Patient: entities.PatientSnapshot{
			ID:             patientID,
			ArrivalTime:    arrival,
			TriageCategory: triage,
			CurrentPhase:   entities.ParsePhase(record.CurrentPhase),
			Investigations: entities.Investigations{
				Labs:    entities.ParseInvestigationState(record.Labs),
				Imaging: entities.ParseInvestigationState(record.Imaging),
			},
			QueuePosition: entities.QueuePosition{
				Global:   record.QueuePositionGlobal,
				Category: record.QueuePositionLocal,
			},
			TimeElapsedMinutes:  record.ElapsedTime,
			ExpectedWaitMinutes: expectedWait,
		},
		Stats: entities.DepartmentStats{
			CategoryBreakdown:  breakdown,
			AverageWaitMinutes: averages,
		},
		Queue: entities.QueueSnapshot{
			WaitingCount:       record.AllPatients,
			LongestWaitMinutes: record.QueueMax,
		},
		FetchedAt: p.now(),
	}

	return snapshot, nil
}

// parseTriage maps the flat shape's numeric-string triage field. An
// empty field means the patient has not been triaged yet; anything else
// must parse to a valid category.
func parseTriage(raw string) (int, error) {
	if raw == "" {
		return entities.TriageCategoryUnknown, nil
	}
	category, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewNormalizationError(
			fmt.Sprintf("triage field %q is not numeric", raw), err)
	}
	if category < 1 || category > 5 {
		return 0, apperrors.NewNormalizationError(
			fmt.Sprintf("triage category %d is out of range", category), nil)
	}
	return category, nil
}

// zipCategorySequences converts the parallel by-rank sequences into
// 1-based category maps. Index 0 holds category 1. The sequences must
// be the same length; empty sequences are valid and mean no department
// data.
func zipCategorySequences(counts, waits []int) (map[int]int, map[int]int, error) {
	if len(counts) != len(waits) {
		return nil, nil, apperrors.NewNormalizationError(
			fmt.Sprintf("category sequences have mismatched lengths %d and %d", len(counts), len(waits)), nil)
	}
	breakdown := make(map[int]int, len(counts))
	averages := make(map[int]int, len(waits))
	for i := range counts {
		breakdown[i+1] = counts[i]
		averages[i+1] = waits[i]
	}
	return breakdown, averages, nil
}
