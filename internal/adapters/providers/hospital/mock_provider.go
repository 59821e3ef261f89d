package hospital

import (
	"context"
	"sync"
	"time"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/providers"
)

// MockProvider serves a canned visit that advances through the journey
// phases on successive fetches. It backs local development and tests
// when no upstream hospital backend is configured.
type MockProvider struct {
	mu     sync.Mutex
	ticks  map[string]int
	script []entities.Phase
}

// NewMockProvider creates a mock hospital provider
func NewMockProvider() providers.HospitalDataProvider {
	return &MockProvider{
		ticks: make(map[string]int),
		script: []entities.Phase{
			entities.PhaseRegistered,
			entities.PhaseTriaged,
			entities.PhaseInvestigationsPending,
			entities.PhaseTreatment,
			entities.PhaseDischargePending,
			entities.PhaseDischarged,
		},
	}
}

// FetchVisit returns the next scripted snapshot for the patient. Each
// patient advances through the script independently, so switching
// patients restarts the journey at registration.
func (p *MockProvider) FetchVisit(_ context.Context, patientID string) (*entities.VisitSnapshot, error) {
	p.mu.Lock()
	phase := p.script[min(p.ticks[patientID], len(p.script)-1)]
	p.ticks[patientID]++
	p.mu.Unlock()

	expectedWait := 45
	now := time.Now()
	return &entities.VisitSnapshot{
		Patient: entities.PatientSnapshot{
			ID:             patientID,
			ArrivalTime:    now.Add(-35 * time.Minute),
			TriageCategory: 3,
			CurrentPhase:   phase,
			Investigations: entities.Investigations{
				Labs:    entities.InvestigationPending,
				Imaging: entities.InvestigationNone,
			},
			QueuePosition: entities.QueuePosition{
				Global:   4,
				Category: 2,
			},
			TimeElapsedMinutes:  35,
			ExpectedWaitMinutes: &expectedWait,
		},
		Stats: entities.DepartmentStats{
			CategoryBreakdown:  map[int]int{1: 1, 2: 3, 3: 8, 4: 5, 5: 2},
			AverageWaitMinutes: map[int]int{1: 5, 2: 20, 3: 45, 4: 90, 5: 150},
		},
		Queue: entities.QueueSnapshot{
			WaitingCount:       19,
			LongestWaitMinutes: 160,
		},
		FetchedAt: now,
	}, nil
}
