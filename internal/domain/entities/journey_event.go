package entities

import (
	"time"

	"github.com/google/uuid"
)

// JourneyEventType represents the type of journey event
type JourneyEventType string

const (
	JourneyEventTypeSnapshotUpdated JourneyEventType = "snapshot_updated"
	JourneyEventTypePhaseChanged    JourneyEventType = "phase_changed"
	JourneyEventTypePollFailed      JourneyEventType = "poll_failed"
	JourneyEventTypeSessionClosed   JourneyEventType = "session_closed"
)

// JourneyEvent represents a real-time update for one patient's journey.
type JourneyEvent struct {
	ID        string           `json:"id"`
	PatientID string           `json:"patient_id"`
	EventType JourneyEventType `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`

	// Snapshot is set for snapshot_updated and phase_changed events.
	Snapshot *VisitSnapshot `json:"snapshot,omitempty"`

	// Error carries the failure description for poll_failed events.
	Error string `json:"error,omitempty"`
}

// NewJourneyEvent creates a new journey event
func NewJourneyEvent(patientID string, eventType JourneyEventType, snapshot *VisitSnapshot) *JourneyEvent {
	return &JourneyEvent{
		ID:        uuid.NewString(),
		PatientID: patientID,
		EventType: eventType,
		Timestamp: time.Now(),
		Snapshot:  snapshot,
	}
}
