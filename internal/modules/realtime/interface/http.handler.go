package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/realtime/application/usecase"
	domain "mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/modules/realtime/infrastructure"
	"mesaOps/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketOptions tune the entity stream endpoint.
type WebsocketOptions struct {
	AllowedActions []string
	SendBuffer     int
}

// NewWebsocketHandler serves /ws/:entity/:restaurant. The client receives the live snapshot of
// the entity for the restaurant followed by the entity events it is allowed to see.
func NewWebsocketHandler(hub *infrastructure.Hub, streams *usecase.SnapshotStreams, validator auth.TokenValidator, opts WebsocketOptions) echo.HandlerFunc {
	if len(opts.AllowedActions) == 0 {
		opts.AllowedActions = []string{"created", "updated", "cancelled"}
	}

	return func(c echo.Context) error {
		entity := normalizeEntity(c.Param("entity"))
		restaurantID := strings.TrimSpace(c.Param("restaurant"))
		peerIP := c.RealIP()

		if entity == "" || !streams.Supports(entity) {
			slog.Warn("ws rejected: entity not streamed", slog.String("entity", c.Param("entity")), slog.String("ip", peerIP))
			return echo.NewHTTPError(http.StatusNotFound, "entity "+entity+" is not streamed")
		}
		if restaurantID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing restaurant")
		}

		claims, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
		if err != nil {
			slog.Warn("ws rejected: auth failed", slog.String("entity", entity), slog.String("restaurantId", restaurantID), slog.String("ip", peerIP), slog.Any("error", err))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}
		if !claims.CanAccessRestaurant(restaurantID) {
			slog.Warn("ws rejected: restaurant forbidden", slog.String("userId", claims.Subject), slog.String("restaurantId", restaurantID))
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("entity", entity), slog.String("restaurantId", restaurantID), slog.Any("error", err))
			return err
		}

		client := infrastructure.NewClient(hub, conn, claims.Subject, claims.SessionID, restaurantID, entity, opts.SendBuffer, newSnapshotCommandHandler(streams))
		topics := buildTopics(entity, opts.AllowedActions)
		hub.AttachClient(client, topics)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(&domain.Message{
			Topic:  domain.TopicSystemConnected,
			Entity: domain.SystemEntity,
			Action: domain.ActionConnected,
			Metadata: map[string]string{
				domain.MetadataUserID:       claims.Subject,
				domain.MetadataSessionID:    claims.SessionID,
				domain.MetadataRestaurantID: restaurantID,
			},
			Data: map[string]any{
				"entity":        entity,
				"restaurantId":  restaurantID,
				"allowedTopics": topics,
				"roles":         claims.Roles,
			},
			Timestamp: time.Now().UTC(),
		})

		// The client is attached first so the first snapshot of a new stream reaches it.
		release, err := streams.Acquire(c.Request().Context(), entity, restaurantID)
		if err != nil {
			slog.Error("ws snapshot stream failed", slog.String("entity", entity), slog.String("restaurantId", restaurantID), slog.Any("error", err))
			sendCommandError(client, "connect", "stream unavailable")
			hub.Detach(client)
			return nil
		}
		client.AddCloseHook(func(*infrastructure.Client) { release() })
		if latest, ok := streams.Latest(entity, restaurantID); ok {
			client.SendDomainMessage(latest)
		}

		slog.Info("ws connected", slog.String("entity", entity), slog.String("restaurantId", restaurantID), slog.String("userId", claims.Subject), slog.String("sessionId", claims.SessionID), slog.String("ip", peerIP))
		return nil
	}
}

// newSnapshotCommandHandler answers "snapshot" with the latest retained snapshot.
func newSnapshotCommandHandler(streams *usecase.SnapshotStreams) infrastructure.CommandHandler {
	return func(_ context.Context, client *infrastructure.Client, cmd infrastructure.Command) {
		switch strings.ToLower(strings.TrimSpace(cmd.Action)) {
		case "snapshot", "refresh":
			if latest, ok := streams.Latest(client.Entity(), client.RestaurantID()); ok {
				client.SendDomainMessage(latest)
				return
			}
			sendCommandError(client, "snapshot", "snapshot not ready")
		default:
			sendCommandError(client, cmd.Action, "unsupported action")
		}
	}
}

func sendCommandError(client *infrastructure.Client, action, reason string) {
	infrastructure.RejectCommand(client, action, reason)
}
