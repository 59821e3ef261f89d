package providers

import (
	"context"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// journey events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.JourneyEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.JourneyEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelJourneyPrefix is the prefix for patient-specific journey
// channels.
const EventChannelJourneyPrefix = "journey:"

// GetJourneyChannel returns the channel name for a specific patient
func GetJourneyChannel(patientID string) string {
	return EventChannelJourneyPrefix + patientID
}
