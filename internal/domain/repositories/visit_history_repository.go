package repositories

import (
	"context"
	"time"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
)

// VisitRecord is one archived poll result for a patient.
type VisitRecord struct {
	ID         string
	PatientID  string
	Snapshot   entities.VisitSnapshot
	RecordedAt time.Time
}

// HistoryFilter narrows history queries.
type HistoryFilter struct {
	Limit int
	Since time.Time
}

// VisitHistoryRepository archives published snapshots so the journey can
// be replayed after the fact. The live view never reads from here; it is
// an append-only record.
type VisitHistoryRepository interface {
	// Append stores one published snapshot.
	Append(ctx context.Context, record *VisitRecord) error

	// ListByPatient returns the most recent records for a patient,
	// newest first.
	ListByPatient(ctx context.Context, patientID string, filter HistoryFilter) ([]*VisitRecord, error)
}
