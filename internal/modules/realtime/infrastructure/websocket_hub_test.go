package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/shared/events"
)

type fakeConn struct {
	mu     sync.Mutex
	closed bool
}

func (f *fakeConn) ReadJSON(any) error { return errors.New("not readable") }
func (f *fakeConn) WriteMessage(int, []byte) error { return nil }
func (f *fakeConn) WriteControl(int, []byte, time.Time) error { return nil }
func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}
func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestClient(hub *Hub, user, restaurant, entity string) (*Client, *fakeConn) {
	conn := &fakeConn{}
	return NewClient(hub, conn, user, user+"-session", restaurant, entity, 4, nil), conn
}

func drain(c *Client) []domain.Message {
	var out []domain.Message
	for {
		select {
		case data := <-c.send:
			var msg domain.Message
			_ = json.Unmarshal(data, &msg)
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestBroadcastScopesByTopicAndRestaurant(t *testing.T) {
	hub := NewHub()
	r1, _ := newTestClient(hub, "u1", "r1", "tables")
	r2, _ := newTestClient(hub, "u2", "r2", "tables")
	orders, _ := newTestClient(hub, "u3", "r1", "orders")
	global, _ := newTestClient(hub, "u4", "", "notifications")

	hub.AttachClient(r1, []string{"tables.snapshot"})
	hub.AttachClient(r2, []string{"tables.snapshot"})
	hub.AttachClient(orders, []string{"orders.snapshot"})
	hub.AttachClientToAll(global)

	hub.Broadcast(context.Background(), domain.SnapshotMessage("tables", "r1", []string{}))

	cases := []struct {
		name   string
		client *Client
		want   int
	}{
		{name: "same restaurant", client: r1, want: 1},
		{name: "other restaurant", client: r2, want: 0},
		{name: "other topic", client: orders, want: 0},
		{name: "global", client: global, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(drain(tc.client)); got != tc.want {
				t.Fatalf("expected %d messages, got %d", tc.want, got)
			}
		})
	}
}

func TestDetachOnFullBuffer(t *testing.T) {
	hub := NewHub()
	client, conn := newTestClient(hub, "u1", "r1", "tables")
	hub.AttachClient(client, []string{"tables.updated"})

	for i := 0; i < 6; i++ {
		hub.Broadcast(context.Background(), &domain.Message{Topic: "tables.updated", Entity: "tables", Action: "updated"})
	}

	deadline := time.Now().Add(time.Second)
	for !conn.isClosed() {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not detached")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Clients() != 0 {
		t.Fatalf("expected no clients, got %d", hub.Clients())
	}
}

func TestReattachReplacesClientWithSameKey(t *testing.T) {
	hub := NewHub()
	first, firstConn := newTestClient(hub, "u1", "r1", "tables")
	second, _ := newTestClient(hub, "u1", "r1", "tables")
	hooked := make(chan struct{}, 1)
	first.AddCloseHook(func(*Client) { hooked <- struct{}{} })

	hub.AttachClient(first, []string{"tables.snapshot"})
	hub.AttachClient(second, []string{"tables.snapshot"})

	if !firstConn.isClosed() {
		t.Fatal("expected the first connection to be closed")
	}
	select {
	case <-hooked:
	default:
		t.Fatal("close hook not invoked")
	}
	if hub.Clients() != 1 {
		t.Fatalf("expected one client, got %d", hub.Clients())
	}
}

func TestCommandProcessor(t *testing.T) {
	hub := NewHub()
	client, _ := newTestClient(hub, "u1", "r1", "tables")
	hub.AttachClient(client, nil)

	client.processCommand(Command{Action: "SUBSCRIBE", Topic: "orders.snapshot"})
	client.processCommand(Command{Action: "subscribe", Topic: "tables.updated"})
	client.processCommand(Command{Action: "ping"})

	if _, ok := client.subscribed["orders.snapshot"]; ok {
		t.Fatal("subscription outside the client entity must be refused")
	}
	if _, ok := client.subscribed["tables.updated"]; !ok {
		t.Fatal("expected tables.updated subscription")
	}
	msgs := drain(client)
	want := []string{"tables.error", domain.TopicSystemSubscribed, domain.TopicSystemPong}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d replies, got %#v", len(want), msgs)
	}
	for i, topic := range want {
		if msgs[i].Topic != topic {
			t.Fatalf("reply %d: expected %s, got %s", i, topic, msgs[i].Topic)
		}
		if msgs[i].Metadata[domain.MetadataRestaurantID] != "r1" {
			t.Fatalf("reply %d: expected restaurant r1, got %#v", i, msgs[i].Metadata)
		}
	}
	if msgs[0].Metadata[domain.MetadataAction] != "subscribe" || msgs[0].Metadata[domain.MetadataReason] == "" {
		t.Fatalf("unexpected error reply %#v", msgs[0].Metadata)
	}
	if msgs[1].Metadata[domain.MetadataTopic] != "tables.updated" || msgs[2].Metadata[domain.MetadataSessionID] != "u1-session" {
		t.Fatalf("unexpected acknowledgements %#v %#v", msgs[1].Metadata, msgs[2].Metadata)
	}

	client.processCommand(Command{Action: "unsubscribe", Topic: "tables.updated"})
	if _, ok := client.subscribed["tables.updated"]; ok {
		t.Fatal("expected unsubscribe")
	}
	if msgs := drain(client); len(msgs) != 1 || msgs[0].Topic != domain.TopicSystemUnsubscribed {
		t.Fatalf("expected unsubscribe acknowledgement, got %#v", msgs)
	}
}

func TestCommandProcessorRejectsOtherRestaurant(t *testing.T) {
	hub := NewHub()
	client, _ := newTestClient(hub, "u1", "r1", "tables")
	hub.AttachClient(client, nil)

	cases := []struct {
		name       string
		restaurant string
		subscribed bool
	}{
		{name: "other restaurant", restaurant: "r2", subscribed: false},
		{name: "own restaurant", restaurant: "r1", subscribed: true},
		{name: "connection restaurant", restaurant: "", subscribed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			topic := "tables." + tc.name
			client.processCommand(Command{Action: "subscribe", Topic: topic, RestaurantID: tc.restaurant})
			if _, ok := client.subscribed[topic]; ok != tc.subscribed {
				t.Fatalf("expected subscribed=%v", tc.subscribed)
			}
			msgs := drain(client)
			if len(msgs) != 1 {
				t.Fatalf("expected one reply, got %#v", msgs)
			}
			if got := msgs[0].Topic == "tables.error"; got == tc.subscribed {
				t.Fatalf("unexpected reply %s", msgs[0].Topic)
			}
		})
	}
}

func TestCommandProcessorCapsSubscriptions(t *testing.T) {
	hub := NewHub()
	client, _ := newTestClient(hub, "u1", "r1", "tables")
	hub.AttachClient(client, nil)
	for i := 0; i < maxSubscriptions; i++ {
		if !hub.subscribe(client, fmt.Sprintf("tables.t%d", i)) {
			t.Fatalf("subscription %d refused", i)
		}
	}

	client.processCommand(Command{Action: "subscribe", Topic: "tables.overflow"})
	if _, ok := client.subscribed["tables.overflow"]; ok {
		t.Fatal("subscription beyond the limit must be refused")
	}
	msgs := drain(client)
	if len(msgs) != 1 || msgs[0].Topic != "tables.error" {
		t.Fatalf("expected error reply, got %#v", msgs)
	}

	client.processCommand(Command{Action: "subscribe", Topic: "tables.t0"})
	if msgs := drain(client); len(msgs) != 1 || msgs[0].Topic != domain.TopicSystemSubscribed {
		t.Fatalf("resubscribing an existing topic must succeed, got %#v", msgs)
	}
}

type recordingHandler struct {
	entity string
	got    []*domain.Message
}

func (h *recordingHandler) Entity() string { return h.entity }
func (h *recordingHandler) Handle(_ context.Context, msg *domain.Message) error {
	h.got = append(h.got, msg)
	return nil
}

func TestRegistryPublishDispatchesByEntity(t *testing.T) {
	registry := NewHandlerRegistry()
	orders := &recordingHandler{entity: "orders"}
	registry.Register(orders)

	ctx := context.Background()
	if err := registry.Publish(ctx, events.Event{Entity: "orders", Action: "updated", ResourceID: "o1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := registry.Publish(ctx, events.Event{Entity: "reports", Action: "created"}); err != nil {
		t.Fatalf("publish unknown entity: %v", err)
	}
	if len(orders.got) != 1 || orders.got[0].Topic != "orders.updated" || orders.got[0].ResourceID != "o1" {
		t.Fatalf("unexpected dispatch %#v", orders.got)
	}
}
