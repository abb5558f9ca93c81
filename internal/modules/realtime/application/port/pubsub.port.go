package port

import (
	"context"

	"mesaOps/internal/modules/realtime/domain"
)

// Broadcaster sends messages to the connected websocket clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// EventHandler handles the events of a single entity.
type EventHandler interface {
	Entity() string
	Handle(ctx context.Context, msg *domain.Message) error
}
