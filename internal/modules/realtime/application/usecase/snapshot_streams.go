package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ordersdomain "mesaOps/internal/modules/orders/domain"
	"mesaOps/internal/modules/realtime/application/port"
	"mesaOps/internal/modules/realtime/domain"
	tablesdomain "mesaOps/internal/modules/tables/domain"
	"mesaOps/internal/shared/apperr"
)

// SnapshotStreams keeps one live query per (entity, restaurant) while clients follow it. Every
// snapshot is retained on the feed and broadcast to the restaurant's clients.
type SnapshotStreams struct {
	propagation *Propagation
	feed        *Feed[*domain.Message]
	broadcaster port.Broadcaster

	mu     sync.Mutex
	active map[string]*stream
}

type stream struct {
	refs int
	stop func()
}

func NewSnapshotStreams(propagation *Propagation, feed *Feed[*domain.Message], broadcaster port.Broadcaster) *SnapshotStreams {
	return &SnapshotStreams{
		propagation: propagation,
		feed:        feed,
		broadcaster: broadcaster,
		active:      make(map[string]*stream),
	}
}

// Supports reports whether entity can be streamed.
func (s *SnapshotStreams) Supports(entity string) bool {
	return entity == domain.EntityOrders || entity == domain.EntityTables
}

// Acquire starts, or joins, the stream of entity for restaurantID. The returned release
// function is idempotent; the live query stops when the last holder releases it.
func (s *SnapshotStreams) Acquire(ctx context.Context, entity, restaurantID string) (func(), error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, fmt.Errorf("%w: missing restaurant", apperr.ErrInvariantViolation)
	}
	if !s.Supports(entity) {
		return nil, fmt.Errorf("%w: entity %q has no snapshot stream", apperr.ErrInvariantViolation, entity)
	}
	key := domain.StreamKey(entity, restaurantID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.active[key]; ok {
		current.refs++
		return s.releaser(key), nil
	}

	current := &stream{refs: 1}
	stop, err := s.start(context.WithoutCancel(ctx), current, entity, restaurantID, key)
	if err != nil {
		return nil, err
	}
	current.stop = stop
	s.active[key] = current
	slog.Info("snapshot stream started", slog.String("entity", entity), slog.String("restaurantId", restaurantID))
	return s.releaser(key), nil
}

// Latest returns the last snapshot of the stream, if one was delivered.
func (s *SnapshotStreams) Latest(entity, restaurantID string) (*domain.Message, bool) {
	return s.feed.Latest(domain.StreamKey(entity, restaurantID))
}

// Close stops every running stream.
func (s *SnapshotStreams) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, current := range s.active {
		current.stop()
		s.feed.Drop(key)
		delete(s.active, key)
	}
}

// start subscribes on behalf of owner. Snapshots that arrive after owner was released are
// dropped so the feed never retains a stale value for the key.
func (s *SnapshotStreams) start(ctx context.Context, owner *stream, entity, restaurantID, key string) (func(), error) {
	publish := func(data any) {
		msg := domain.SnapshotMessage(entity, restaurantID, data)
		if !s.retain(owner, key, msg) {
			return
		}
		if s.broadcaster != nil {
			s.broadcaster.Broadcast(ctx, msg)
		}
	}
	switch entity {
	case domain.EntityOrders:
		return s.propagation.SubscribeToOrders(ctx, restaurantID, func(items []ordersdomain.Order) { publish(items) })
	default:
		return s.propagation.SubscribeToTables(ctx, restaurantID, func(items []tablesdomain.Table) { publish(items) })
	}
}

// retain publishes msg on the feed while owner is still the registered stream for key.
func (s *SnapshotStreams) retain(owner *stream, key string, msg *domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[key] != owner {
		return false
	}
	s.feed.Publish(key, msg)
	return true
}

func (s *SnapshotStreams) releaser(key string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			current, ok := s.active[key]
			if !ok {
				return
			}
			current.refs--
			if current.refs > 0 {
				return
			}
			current.stop()
			s.feed.Drop(key)
			delete(s.active, key)
			slog.Info("snapshot stream stopped", slog.String("stream", key))
		})
	}
}
