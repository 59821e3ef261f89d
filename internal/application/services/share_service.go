package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
	"github.com/waitwell/edflow/backend/internal/infrastructure/notifications"
	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// ShareResult reports delivery per recipient.
type ShareResult struct {
	Sent   []string `json:"sent"`
	Failed []string `json:"failed"`
}

// ShareService emails a patient's current status to the family members
// they choose. Delivery is per-address: one bad mailbox does not block
// the rest.
type ShareService struct {
	sender notifications.EmailSender
	visits VisitSource
}

// NewShareService creates a new share service
func NewShareService(sender notifications.EmailSender, visits VisitSource) *ShareService {
	return &ShareService{
		sender: sender,
		visits: visits,
	}
}

// Share sends the patient's current status to each address.
func (s *ShareService) Share(ctx context.Context, patientID string, emails []string) (*ShareResult, error) {
	if len(emails) == 0 {
		return nil, apperrors.NewValidationError("at least one email address is required")
	}
	for _, address := range emails {
		if _, err := mail.ParseAddress(address); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid email address: %s", address))
		}
	}

	snapshot := s.snapshotFor(ctx, patientID)
	if snapshot == nil {
		return nil, apperrors.NewNotFoundError("no status available for this patient")
	}

	subject := "Emergency department status update"
	body := buildShareEmail(snapshot)

	result := &ShareResult{Sent: []string{}, Failed: []string{}}
	for _, address := range emails {
		if err := s.sender.Send(ctx, address, subject, body); err != nil {
			result.Failed = append(result.Failed, address)
			continue
		}
		result.Sent = append(result.Sent, address)
	}
	return result, nil
}

func (s *ShareService) snapshotFor(ctx context.Context, patientID string) *entities.VisitSnapshot {
	if snapshot, _ := s.visits.CurrentVisit(patientID); snapshot != nil {
		return snapshot
	}
	if snapshot, err := s.visits.CachedVisit(ctx, patientID); err == nil {
		return snapshot
	}
	return nil
}

// buildShareEmail renders the plain-text status summary.
func buildShareEmail(snapshot *entities.VisitSnapshot) string {
	var b strings.Builder
	b.WriteString("Here is the latest update from the emergency department.\n\n")
	fmt.Fprintf(&b, "Current stage: %s\n", snapshot.Patient.CurrentPhase)
	if snapshot.Patient.KnownTriageCategory() {
		fmt.Fprintf(&b, "Triage category: %d\n", snapshot.Patient.TriageCategory)
	}
	fmt.Fprintf(&b, "Time in department: %s\n", FormatWait(snapshot.Patient.TimeElapsedMinutes))
	if snapshot.Patient.ExpectedWaitMinutes != nil {
		remaining := RemainingWait(*snapshot.Patient.ExpectedWaitMinutes, snapshot.Patient.TimeElapsedMinutes)
		fmt.Fprintf(&b, "Estimated remaining wait: %s\n", FormatWait(remaining))
	}
	fmt.Fprintf(&b, "Queue position: %d of %d waiting\n",
		snapshot.Patient.QueuePosition.Global, snapshot.Queue.WaitingCount)
	b.WriteString("\nThis update was shared by the patient. Times are estimates and can change.\n")
	return b.String()
}
