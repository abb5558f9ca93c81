package usecase

import (
	"context"
	"sync"
)

// Feed is a publish/subscribe channel that retains the latest value of every topic.
// Subscribers receive the retained value first; a slow subscriber only ever sees the newest value.
type Feed[T any] struct {
	mu     sync.Mutex
	latest map[string]T
	subs   map[string]map[chan T]struct{}
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{
		latest: make(map[string]T),
		subs:   make(map[string]map[chan T]struct{}),
	}
}

// Publish retains v as the latest value of topic and hands it to every subscriber.
func (f *Feed[T]) Publish(topic string, v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest[topic] = v
	for ch := range f.subs[topic] {
		offer(ch, v)
	}
}

// Latest returns the retained value of topic.
func (f *Feed[T]) Latest(topic string) (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.latest[topic]
	return v, ok
}

// Drop forgets the retained value of topic.
func (f *Feed[T]) Drop(topic string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.latest, topic)
}

// Subscribe returns a channel carrying the values of topic until ctx is done, when it is closed.
func (f *Feed[T]) Subscribe(ctx context.Context, topic string) <-chan T {
	ch := make(chan T, 1)

	f.mu.Lock()
	if f.subs[topic] == nil {
		f.subs[topic] = make(map[chan T]struct{})
	}
	f.subs[topic][ch] = struct{}{}
	if v, ok := f.latest[topic]; ok {
		ch <- v
	}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs[topic], ch)
		if len(f.subs[topic]) == 0 {
			delete(f.subs, topic)
		}
		close(ch)
		f.mu.Unlock()
	}()
	return ch
}

// offer replaces any undelivered value; callers hold the feed lock so the send never blocks.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
