package usecase

import (
	"context"
	"testing"
	"time"
)

func TestFeedDeliversLatestFirst(t *testing.T) {
	feed := NewFeed[int]()
	feed.Publish("tables", 1)
	feed.Publish("tables", 2)

	ctx, cancel := context.WithCancel(context.Background())
	ch := feed.Subscribe(ctx, "tables")
	if got := next(t, ch); got != 2 {
		t.Fatalf("expected retained 2, got %d", got)
	}

	feed.Publish("orders", 9)
	feed.Publish("tables", 3)
	if got := next(t, ch); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestFeedSlowSubscriberSeesNewest(t *testing.T) {
	feed := NewFeed[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := feed.Subscribe(ctx, "orders")

	for i := 1; i <= 5; i++ {
		feed.Publish("orders", i)
	}
	if got := next(t, ch); got != 5 {
		t.Fatalf("expected newest value 5, got %d", got)
	}
	if v, ok := feed.Latest("orders"); !ok || v != 5 {
		t.Fatalf("unexpected latest %d %v", v, ok)
	}
	feed.Drop("orders")
	if _, ok := feed.Latest("orders"); ok {
		t.Fatal("expected dropped topic")
	}
}

func next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}
