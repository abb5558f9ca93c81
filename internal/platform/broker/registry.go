package broker

import (
	"context"
	"log/slog"
	"sync"

	"mesaOps/internal/modules/realtime/domain"
)

// Dispatcher routes consumed messages to their handlers.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *domain.Message) error
}

// StartKafkaConsumers runs one consumer per topic until ctx is done. The returned wait function
// blocks until every consumer has stopped.
func StartKafkaConsumers(ctx context.Context, dispatcher Dispatcher, brokers []string, groupID string, topics []string) func() {
	var wg sync.WaitGroup
	if len(brokers) == 0 {
		return wg.Wait
	}
	for _, topic := range topics {
		wg.Add(1)
		go func(tp string) {
			defer wg.Done()
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			slog.Info("kafka consumer started", slog.String("topic", tp), slog.String("group", groupID))
			_ = consumer.Consume(ctx, func(msg *domain.Message) error {
				return dispatcher.Dispatch(ctx, msg)
			})
			slog.Info("kafka consumer stopped", slog.String("topic", tp))
		}(topic)
	}
	return wg.Wait
}
