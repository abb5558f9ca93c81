package handler

import (
	"context"
	"log/slog"
	"strings"

	"mesaOps/internal/modules/realtime/application/port"
	"mesaOps/internal/modules/realtime/application/usecase"
	"mesaOps/internal/modules/realtime/domain"
)

// EntityStreamHandler forwards the events of one entity to the websocket clients, optionally
// restricted to a set of actions.
type EntityStreamHandler struct {
	entity         string
	allowedActions map[string]struct{}
	broadcastUC    *usecase.BroadcastUseCase
}

func NewEntityStreamHandler(entity string, allowedActions []string, broadcastUC *usecase.BroadcastUseCase) *EntityStreamHandler {
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &EntityStreamHandler{
		entity:         strings.TrimSpace(entity),
		allowedActions: actionSet,
		broadcastUC:    broadcastUC,
	}
}

func (h *EntityStreamHandler) Entity() string { return h.entity }

func (h *EntityStreamHandler) Handle(ctx context.Context, msg *domain.Message) error {
	if len(h.allowedActions) > 0 {
		if _, ok := h.allowedActions[strings.ToLower(msg.Action)]; !ok {
			slog.Debug("entity-stream action filtered", slog.String("entity", h.entity), slog.String("action", msg.Action))
			return nil
		}
	}
	if msg.Topic == "" {
		msg.Topic = domain.CustomTopic(msg.Entity, msg.Action)
	}
	h.broadcastUC.Execute(ctx, msg)
	return nil
}

var _ port.EventHandler = (*EntityStreamHandler)(nil)
