package transport

import (
	"strings"

	domain "mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/shared/normalization"
)

func buildTopics(entity string, allowedActions []string) []string {
	entity = strings.TrimSpace(entity)
	baseTopics := []string{
		domain.SnapshotTopic(entity),
		domain.ErrorTopic(entity),
	}
	topics := make([]string, 0, len(baseTopics)+len(allowedActions))
	seen := make(map[string]struct{}, len(baseTopics)+len(allowedActions))
	for _, topic := range baseTopics {
		if topic == "" {
			continue
		}
		topics = append(topics, topic)
		seen[topic] = struct{}{}
	}
	for _, action := range allowedActions {
		action = strings.TrimSpace(strings.ToLower(action))
		if action == "" {
			continue
		}
		topic := domain.CustomTopic(entity, action)
		if _, exists := seen[topic]; exists {
			continue
		}
		topics = append(topics, topic)
		seen[topic] = struct{}{}
	}
	return topics
}

func normalizeEntity(raw string) string {
	return normalization.NormalizeEntity(raw)
}
