package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	domain "mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/modules/realtime/infrastructure"
	"mesaOps/internal/shared/auth"
)

var notificationCounter atomic.Uint64

// NewNotificationsWebsocketHandler exposes /ws/notifications and streams every broadcast message
// the token's restaurant may see.
func NewNotificationsWebsocketHandler(hub *infrastructure.Hub, validator auth.TokenValidator, sendBuffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		claims, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
		if err != nil {
			slog.Warn("notifications ws auth failed", slog.String("ip", peerIP), slog.Any("error", err))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}
		if !claims.HasRole(auth.StaffRoles...) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("notifications ws upgrade failed", slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return err
		}

		userID := claims.Subject
		sessionID := fmt.Sprintf("notif-%d", notificationCounter.Add(1))
		client := infrastructure.NewClient(hub, conn, userID, sessionID, claims.RestaurantID, "notifications", sendBuffer, nil)
		hub.AttachClientToAll(client)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(&domain.Message{
			Topic:  domain.TopicSystemConnected,
			Entity: domain.SystemEntity,
			Action: domain.ActionConnected,
			Metadata: map[string]string{
				domain.MetadataSessionID: sessionID,
				domain.MetadataUserID:    userID,
			},
			Data: map[string]any{
				"mode":         "notifications",
				"restaurantId": claims.RestaurantID,
				"topics":       []string{"*"},
			},
			Timestamp: time.Now().UTC(),
		})

		slog.Info("notifications ws connected", slog.String("userId", userID), slog.String("sessionId", sessionID), slog.String("ip", peerIP), slog.String("reqID", requestID))
		return nil
	}
}
