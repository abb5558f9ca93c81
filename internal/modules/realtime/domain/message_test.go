package domain

import (
	"testing"
	"time"

	"mesaOps/internal/shared/events"
)

func TestFromEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := FromEvent(events.Event{
		Entity:     "orders",
		Action:     "updated",
		ResourceID: "o1",
		Metadata:   map[string]string{MetadataRestaurantID: "r1"},
		At:         at,
	})
	if msg.Topic != "orders.updated" || msg.ResourceID != "o1" || !msg.Timestamp.Equal(at) {
		t.Fatalf("unexpected message %#v", msg)
	}
	if msg.RestaurantID() != "r1" {
		t.Fatalf("expected restaurant r1, got %q", msg.RestaurantID())
	}
}

func TestTopics(t *testing.T) {
	cases := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "snapshot", got: SnapshotTopic("tables"), expected: "tables.snapshot"},
		{name: "error", got: ErrorTopic(" orders "), expected: "orders.error"},
		{name: "empty entity", got: CustomTopic("", "updated"), expected: ""},
		{name: "stream key", got: StreamKey("orders", "r1"), expected: "orders.snapshot:r1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, tc.got)
			}
		})
	}
}
