package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/waitwell/edflow/backend/internal/adapters/database"
	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/repositories"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/postgres"
	"github.com/waitwell/edflow/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	_, err = pgClient.DB().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS visit_history (
			id UUID PRIMARY KEY,
			patient_id TEXT NOT NULL,
			snapshot JSONB NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_visit_history_patient_recorded
			ON visit_history (patient_id, recorded_at DESC);
	`)
	if err != nil {
		log.Fatalf("Failed to create visit_history schema: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE visit_history`); err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	historyRepo := database.NewVisitHistoryAdapter(pgClient)

	// Seed one demo journey: a category 3 patient moving from
	// registration through to treatment over roughly two hours.
	patientID := "anon_demo1"
	arrival := time.Now().Add(-2 * time.Hour)

	steps := []struct {
		phase   entities.Phase
		triage  int
		labs    entities.InvestigationState
		imaging entities.InvestigationState
		offset  time.Duration
	}{
		{entities.PhaseRegistered, entities.TriageCategoryUnknown, entities.InvestigationNone, entities.InvestigationNone, 0},
		{entities.PhaseTriaged, 3, entities.InvestigationNone, entities.InvestigationNone, 20 * time.Minute},
		{entities.PhaseInvestigationsPending, 3, entities.InvestigationPending, entities.InvestigationNone, 55 * time.Minute},
		{entities.PhaseInvestigationsPending, 3, entities.InvestigationReported, entities.InvestigationPending, 85 * time.Minute},
		{entities.PhaseTreatment, 3, entities.InvestigationReported, entities.InvestigationReported, 110 * time.Minute},
	}

	expectedWait := 90
	for _, step := range steps {
		recordedAt := arrival.Add(step.offset)

		snapshot := entities.VisitSnapshot{
			Patient: entities.PatientSnapshot{
				ID:                 patientID,
				ArrivalTime:        arrival,
				TriageCategory:     step.triage,
				CurrentPhase:       step.phase,
				Investigations:     entities.Investigations{Labs: step.labs, Imaging: step.imaging},
				QueuePosition:      entities.QueuePosition{Global: 7, Category: 2},
				TimeElapsedMinutes: int(step.offset.Minutes()),
			},
			Stats: entities.DepartmentStats{
				CategoryBreakdown:  map[int]int{1: 1, 2: 4, 3: 9, 4: 6, 5: 2},
				AverageWaitMinutes: map[int]int{1: 0, 2: 35, 3: 90, 4: 130, 5: 180},
			},
			Queue: entities.QueueSnapshot{
				WaitingCount:       22,
				LongestWaitMinutes: 210,
			},
			FetchedAt: recordedAt,
		}
		if step.triage != entities.TriageCategoryUnknown {
			snapshot.Patient.ExpectedWaitMinutes = &expectedWait
		}

		record := &repositories.VisitRecord{
			ID:         uuid.New().String(),
			PatientID:  patientID,
			Snapshot:   snapshot,
			RecordedAt: recordedAt,
		}
		if err := historyRepo.Append(ctx, record); err != nil {
			log.Printf("Failed to append history record at %s: %v", recordedAt.Format(time.RFC3339), err)
		}
	}

	log.Printf("Seeded %d history records for %s", len(steps), patientID)
}
