package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"mesaOps/internal/modules/realtime/domain"
)

// Command is a client request read from the websocket. RestaurantID, when set, must name the
// restaurant the connection was opened for.
type Command struct {
	Action       string          `json:"action"`
	Topic        string          `json:"topic,omitempty"`
	RestaurantID string          `json:"restaurantId,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

type CommandHandler func(ctx context.Context, client *Client, cmd Command)

// CommandProcessor answers subscribe, unsubscribe and ping itself and hands every other action
// to the fallback handler with a timeout.
type CommandProcessor struct {
	hub             *Hub
	builtin         map[string]CommandHandler
	fallback        CommandHandler
	fallbackTimeout time.Duration
}

func NewCommandProcessor(hub *Hub, fallback CommandHandler) *CommandProcessor {
	p := &CommandProcessor{hub: hub, fallback: fallback, fallbackTimeout: 10 * time.Second}
	p.builtin = map[string]CommandHandler{
		"subscribe":   p.subscribe,
		"unsubscribe": p.unsubscribe,
		"ping":        p.ping,
	}
	return p
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if client == nil {
		return
	}
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	if action == "" {
		return
	}
	if reason := scopeViolation(client, cmd); reason != "" {
		RejectCommand(client, action, reason)
		return
	}

	if handler, ok := p.builtin[action]; ok {
		handler(context.Background(), client, cmd)
		return
	}
	if p.fallback == nil {
		RejectCommand(client, action, "unsupported action")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.fallbackTimeout)
	go func() {
		defer cancel()
		p.fallback(ctx, client, cmd)
	}()
}

func (p *CommandProcessor) subscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		RejectCommand(client, "subscribe", "missing topic")
		return
	}
	if !p.hub.subscribe(client, topic) {
		RejectCommand(client, "subscribe", "too many subscriptions")
		return
	}
	slog.Debug("ws subscribe", append(client.logAttrs(), slog.String("topic", topic))...)
	acknowledge(client, domain.TopicSystemSubscribed, domain.ActionSubscribed, topic)
}

func (p *CommandProcessor) unsubscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		RejectCommand(client, "unsubscribe", "missing topic")
		return
	}
	p.hub.unsubscribe(client, topic)
	slog.Debug("ws unsubscribe", append(client.logAttrs(), slog.String("topic", topic))...)
	acknowledge(client, domain.TopicSystemUnsubscribed, domain.ActionUnsubscribed, topic)
}

func (p *CommandProcessor) ping(_ context.Context, client *Client, _ Command) {
	acknowledge(client, domain.TopicSystemPong, domain.ActionPong, "")
}

// scopeViolation explains why cmd reaches outside the client's restaurant or entity, or
// returns "" when it does not. Clients without a restaurant or entity are unrestricted.
func scopeViolation(client *Client, cmd Command) string {
	if restaurantID := strings.TrimSpace(cmd.RestaurantID); restaurantID != "" && client.restaurantID != "" && restaurantID != client.restaurantID {
		return "restaurant mismatch"
	}
	topic := strings.TrimSpace(cmd.Topic)
	if topic != "" && client.entity != "" && !strings.HasPrefix(topic, client.entity+".") {
		return "topic outside " + client.entity
	}
	return ""
}

func acknowledge(client *Client, topic, action, subject string) {
	metadata := map[string]string{
		domain.MetadataRestaurantID: client.restaurantID,
		domain.MetadataSessionID:    client.sessionID,
	}
	if subject != "" {
		metadata[domain.MetadataTopic] = subject
	}
	client.SendDomainMessage(&domain.Message{
		Topic:      topic,
		Entity:     domain.SystemEntity,
		Action:     action,
		ResourceID: client.restaurantID,
		Metadata:   metadata,
		Timestamp:  time.Now().UTC(),
	})
}

// RejectCommand answers a failed command on the client's <entity>.error topic.
func RejectCommand(client *Client, action, reason string) {
	entity := client.entity
	if entity == "" {
		entity = domain.SystemEntity
	}
	slog.Debug("ws command rejected", append(client.logAttrs(), slog.String("action", action), slog.String("reason", reason))...)
	client.SendDomainMessage(&domain.Message{
		Topic:      domain.ErrorTopic(entity),
		Entity:     entity,
		Action:     domain.ActionError,
		ResourceID: client.restaurantID,
		Metadata: map[string]string{
			domain.MetadataRestaurantID: client.restaurantID,
			domain.MetadataAction:       action,
			domain.MetadataReason:       reason,
		},
		Data:      map[string]string{"error": reason},
		Timestamp: time.Now().UTC(),
	})
}
