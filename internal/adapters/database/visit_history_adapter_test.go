package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/domain/repositories"
)

func setupHistoryAdapter(t *testing.T) (*VisitHistoryAdapter, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return newVisitHistoryAdapter(conn), mock
}

func archivedSnapshot() entities.VisitSnapshot {
	return entities.VisitSnapshot{
		Patient: entities.PatientSnapshot{
			ID:             "anon_1234",
			ArrivalTime:    time.Date(2025, 1, 25, 14, 30, 0, 0, time.UTC),
			TriageCategory: 3,
			CurrentPhase:   entities.PhaseTreatment,
		},
		Stats: entities.DepartmentStats{
			CategoryBreakdown:  map[int]int{3: 10},
			AverageWaitMinutes: map[int]int{3: 90},
		},
		Queue:     entities.QueueSnapshot{WaitingCount: 21, LongestWaitMinutes: 180},
		FetchedAt: time.Date(2025, 1, 25, 15, 0, 0, 0, time.UTC),
	}
}

func TestVisitHistoryAdapter_Append(t *testing.T) {
	adapter, mock := setupHistoryAdapter(t)

	mock.ExpectExec(`INSERT INTO "visit_history"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &repositories.VisitRecord{
		ID:         "rec-1",
		PatientID:  "anon_1234",
		Snapshot:   archivedSnapshot(),
		RecordedAt: time.Date(2025, 1, 25, 15, 0, 0, 0, time.UTC),
	}

	err := adapter.Append(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitHistoryAdapter_Append_NilRecord(t *testing.T) {
	adapter, _ := setupHistoryAdapter(t)

	err := adapter.Append(context.Background(), nil)
	require.Error(t, err)
}

func TestVisitHistoryAdapter_ListByPatient(t *testing.T) {
	adapter, mock := setupHistoryAdapter(t)

	snapshot := archivedSnapshot()
	encoded, err := json.Marshal(snapshot)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "patient_id", "snapshot", "recorded_at"}).
		AddRow("rec-2", "anon_1234", encoded, time.Date(2025, 1, 25, 15, 0, 30, 0, time.UTC)).
		AddRow("rec-1", "anon_1234", encoded, time.Date(2025, 1, 25, 15, 0, 0, 0, time.UTC))

	mock.ExpectQuery(`SELECT .+ FROM "visit_history"`).WillReturnRows(rows)

	records, err := adapter.ListByPatient(context.Background(), "anon_1234", repositories.HistoryFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "rec-2", records[0].ID)
	assert.Equal(t, "anon_1234", records[0].PatientID)
	assert.Equal(t, entities.PhaseTreatment, records[0].Snapshot.Patient.CurrentPhase)
	assert.Equal(t, 21, records[0].Snapshot.Queue.WaitingCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisitHistoryAdapter_ListByPatient_CorruptSnapshot(t *testing.T) {
	adapter, mock := setupHistoryAdapter(t)

	rows := sqlmock.NewRows([]string{"id", "patient_id", "snapshot", "recorded_at"}).
		AddRow("rec-1", "anon_1234", []byte("not json"), time.Now())

	mock.ExpectQuery(`SELECT .+ FROM "visit_history"`).WillReturnRows(rows)

	_, err := adapter.ListByPatient(context.Background(), "anon_1234", repositories.HistoryFilter{})
	require.Error(t, err)
}
