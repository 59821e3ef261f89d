package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/repositories"
	"github.com/waitwell/edflow/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// defaultHistoryLimit caps history queries that do not ask for a limit.
const defaultHistoryLimit = 50

// VisitHistoryAdapter implements the VisitHistoryRepository interface
// on Postgres. Snapshots are stored whole as JSON so the archive stays
// schema-stable while the canonical model evolves.
type VisitHistoryAdapter struct {
	conn *sql.DB
	db   *goqu.Database
}

// NewVisitHistoryAdapter creates a new visit history adapter
func NewVisitHistoryAdapter(client *postgres.Client) repositories.VisitHistoryRepository {
	return newVisitHistoryAdapter(client.DB())
}

func newVisitHistoryAdapter(conn *sql.DB) *VisitHistoryAdapter {
	return &VisitHistoryAdapter{
		conn: conn,
		db:   goqu.New("postgres", conn),
	}
}

// Append stores one published snapshot.
func (a *VisitHistoryAdapter) Append(ctx context.Context, record *repositories.VisitRecord) error {
	if record == nil {
		return apperrors.NewValidationError("visit record is nil")
	}

	snapshot, err := json.Marshal(record.Snapshot)
	if err != nil {
		return apperrors.NewInternalError("failed to encode visit snapshot", err)
	}

	row := goqu.Record{
		"id":          record.ID,
		"patient_id":  record.PatientID,
		"snapshot":    snapshot,
		"recorded_at": record.RecordedAt,
	}

	query, args, err := a.db.Insert("visit_history").Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build visit history insert query", err)
	}

	if _, err := a.conn.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to append visit history", err)
	}

	return nil
}

// ListByPatient returns the most recent records for a patient, newest
// first.
func (a *VisitHistoryAdapter) ListByPatient(ctx context.Context, patientID string, filter repositories.HistoryFilter) ([]*repositories.VisitRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	ds := a.db.From("visit_history").
		Select("id", "patient_id", "snapshot", "recorded_at").
		Where(goqu.C("patient_id").Eq(patientID))
	if !filter.Since.IsZero() {
		ds = ds.Where(goqu.C("recorded_at").Gte(filter.Since))
	}
	ds = ds.Order(goqu.C("recorded_at").Desc()).Limit(uint(limit))

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build visit history query", err)
	}

	rows, err := a.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query visit history", err)
	}
	defer rows.Close()

	var records []*repositories.VisitRecord
	for rows.Next() {
		record := &repositories.VisitRecord{}
		var snapshot []byte
		if err := rows.Scan(&record.ID, &record.PatientID, &snapshot, &record.RecordedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan visit history row", err)
		}
		var decoded entities.VisitSnapshot
		if err := json.Unmarshal(snapshot, &decoded); err != nil {
			return nil, apperrors.NewInternalError("failed to decode archived snapshot", err)
		}
		record.Snapshot = decoded
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read visit history rows", err)
	}

	return records, nil
}
