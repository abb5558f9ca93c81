package events

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionCancelled = "cancelled"
	ActionLowStock  = "low_stock"
)

// Event is a domain change published after a workflow has committed its writes.
type Event struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	At         time.Time         `json:"timestamp"`
}

// Topic returns the canonical "<entity>.<action>" routing key.
func (e Event) Topic() string {
	entity := strings.TrimSpace(e.Entity)
	action := strings.TrimSpace(e.Action)
	if entity == "" || action == "" {
		return ""
	}
	return entity + "." + action
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Emit publishes evt after the caller's writes have committed; failures are logged, not returned.
func Emit(ctx context.Context, p Publisher, evt Event) {
	if p == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	if err := p.Publish(ctx, evt); err != nil {
		slog.Warn("event publish failed",
			slog.String("topic", evt.Topic()),
			slog.String("resourceId", evt.ResourceID),
			slog.Any("error", err),
		)
	}
}
