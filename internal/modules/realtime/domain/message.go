package domain

import (
	"time"

	"mesaOps/internal/shared/events"
)

// Message is the envelope delivered to websocket clients.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// FromEvent converts a domain event into a client message.
func FromEvent(evt events.Event) *Message {
	at := evt.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return &Message{
		Topic:      evt.Topic(),
		Entity:     evt.Entity,
		Action:     evt.Action,
		ResourceID: evt.ResourceID,
		Metadata:   evt.Metadata,
		Data:       evt.Data,
		Timestamp:  at,
	}
}

// SnapshotMessage wraps the full current result set of entity for a restaurant.
func SnapshotMessage(entity, restaurantID string, data any) *Message {
	return &Message{
		Topic:      SnapshotTopic(entity),
		Entity:     entity,
		Action:     ActionSnapshot,
		ResourceID: restaurantID,
		Metadata:   map[string]string{MetadataRestaurantID: restaurantID},
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

// RestaurantID returns the restaurant the message is scoped to, if any.
func (m *Message) RestaurantID() string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	return m.Metadata[MetadataRestaurantID]
}
