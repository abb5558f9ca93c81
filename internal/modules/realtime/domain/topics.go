package domain

import "strings"

const (
	SystemEntity = "system"

	TopicSystemConnected    = SystemEntity + ".connected"
	TopicSystemPong         = SystemEntity + ".pong"
	TopicSystemSubscribed   = SystemEntity + ".subscribed"
	TopicSystemUnsubscribed = SystemEntity + ".unsubscribed"

	ActionConnected    = "connected"
	ActionPong         = "pong"
	ActionError        = "error"
	ActionSnapshot     = "snapshot"
	ActionSubscribed   = "subscribed"
	ActionUnsubscribed = "unsubscribed"

	EntityOrders = "orders"
	EntityTables = "tables"

	MetadataRestaurantID = "restaurantId"
	MetadataUserID       = "userId"
	MetadataSessionID    = "sessionId"
	MetadataTopic        = "topic"
	MetadataAction       = "action"
	MetadataReason       = "reason"
)

// SnapshotTopic returns the canonical snapshot topic for the given entity.
func SnapshotTopic(entity string) string {
	return CustomTopic(entity, ActionSnapshot)
}

// ErrorTopic returns the canonical error topic for the given entity.
func ErrorTopic(entity string) string {
	return CustomTopic(entity, ActionError)
}

// CustomTopic returns the canonical topic for the given entity and action.
func CustomTopic(entity, action string) string {
	cleanEntity := strings.TrimSpace(entity)
	cleanAction := strings.TrimSpace(action)
	if cleanEntity == "" || cleanAction == "" {
		return ""
	}
	return cleanEntity + "." + cleanAction
}

// StreamKey identifies the snapshot stream of entity for one restaurant.
func StreamKey(entity, restaurantID string) string {
	return SnapshotTopic(entity) + ":" + strings.TrimSpace(restaurantID)
}
