package usecase

import (
	"context"

	"mesaOps/internal/modules/realtime/application/port"
	"mesaOps/internal/modules/realtime/domain"
)

type BroadcastUseCase struct {
	broadcaster port.Broadcaster
}

func NewBroadcastUseCase(b port.Broadcaster) *BroadcastUseCase {
	return &BroadcastUseCase{broadcaster: b}
}

func (uc *BroadcastUseCase) Execute(ctx context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	if msg.Topic == "" {
		msg.Topic = domain.CustomTopic(msg.Entity, msg.Action)
	}
	uc.broadcaster.Broadcast(ctx, msg)
}
