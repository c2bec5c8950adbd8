// Package notify publishes event notifications to the configured channel.
// Kafka and Redis pub/sub backends are available, plus a no-op publisher for
// deployments that run without a broker.
package notify

import (
	"context"

	"github.com/ihirwe/event-locator/internal/domain"
)

// EventNotification is the payload consumers receive when an event is
// created or becomes due.
type EventNotification struct {
	EventID  string `json:"eventId"`
	Title    string `json:"title"`
	Category string `json:"category"`
	City     string `json:"city"`
	Status   string `json:"status,omitempty"`
}

// For builds the notification payload for an event.
func For(ev domain.Event) EventNotification {
	return EventNotification{
		EventID:  ev.ID,
		Title:    ev.Title,
		Category: ev.Category,
		City:     ev.City,
		Status:   string(ev.Status),
	}
}

// Publisher delivers notifications. Implementations are safe for concurrent
// use.
type Publisher interface {
	Publish(ctx context.Context, n EventNotification) error
	Close() error
}

// NopPublisher discards notifications.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, EventNotification) error { return nil }
func (NopPublisher) Close() error                                     { return nil }
