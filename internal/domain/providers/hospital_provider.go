package providers

import (
	"context"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
)

// HospitalDataProvider fetches and normalizes one patient's visit data
// from an upstream hospital backend. Implementations own the mapping from
// their backend's wire shape into the canonical model; callers never see
// raw payloads.
//
// FetchVisit returns the complete canonical tuple for one poll tick or an
// error. It never returns a partially populated snapshot: any sub-request
// or mapping failure fails the whole call.
type HospitalDataProvider interface {
	FetchVisit(ctx context.Context, patientID string) (*entities.VisitSnapshot, error)
}
