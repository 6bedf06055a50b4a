package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher is the write-only view handed to services that emit events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Event is the envelope published on booking mutations. Notification
// delivery is handled by external consumers of these events.
type Event struct {
	Type          string      `json:"type"`
	AppointmentID string      `json:"appointment_id,omitempty"`
	SalonID       string      `json:"salon_id,omitempty"`
	StaffID       string      `json:"staff_id,omitempty"`
	Payload       interface{} `json:"payload,omitempty"`
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}
