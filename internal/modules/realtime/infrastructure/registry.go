package infrastructure

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"mesaOps/internal/modules/realtime/application/port"
	"mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/shared/events"
)

// HandlerRegistry dispatches messages to the handler registered for their entity. It also serves
// as the in-process event publisher when no broker is configured.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]port.EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.EventHandler)}
}

func (r *HandlerRegistry) Register(h port.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[strings.TrimSpace(h.Entity())] = h
}

func (r *HandlerRegistry) Dispatch(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	r.mu.RLock()
	handler, ok := r.handlers[strings.TrimSpace(msg.Entity)]
	r.mu.RUnlock()
	if !ok {
		slog.Debug("no handler for message", slog.String("entity", msg.Entity), slog.String("topic", msg.Topic))
		return nil
	}
	return handler.Handle(ctx, msg)
}

// Publish dispatches evt in-process.
func (r *HandlerRegistry) Publish(ctx context.Context, evt events.Event) error {
	return r.Dispatch(ctx, domain.FromEvent(evt))
}

var _ events.Publisher = (*HandlerRegistry)(nil)
