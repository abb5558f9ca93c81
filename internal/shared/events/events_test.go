package events

import (
	"context"
	"errors"
	"testing"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, evt Event) error {
	r.events = append(r.events, evt)
	return r.err
}

func TestTopic(t *testing.T) {
	cases := map[string]Event{
		"orders.created": {Entity: "orders", Action: "created"},
		"":               {Entity: "orders"},
	}
	for expected, evt := range cases {
		if got := evt.Topic(); got != expected {
			t.Fatalf("expected %q, got %q", expected, got)
		}
	}
}

func TestEmitStampsAndSwallowsErrors(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	Emit(context.Background(), rec, Event{Entity: "tables", Action: ActionUpdated, ResourceID: "t1"})
	Emit(context.Background(), nil, Event{Entity: "tables", Action: ActionUpdated})

	if len(rec.events) != 1 {
		t.Fatalf("expected one event, got %d", len(rec.events))
	}
	if rec.events[0].At.IsZero() {
		t.Fatal("expected emit to stamp the event time")
	}
}
