package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	ordersdomain "mesaOps/internal/modules/orders/domain"
	"mesaOps/internal/modules/realtime/application/usecase"
	domain "mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/modules/realtime/infrastructure"
	"mesaOps/internal/shared/auth"
	"mesaOps/internal/shared/events"
)

const orderTrackingEntity = "order-tracking"

// NewOrderTrackingHandler serves /ws/order-tracking/:restaurant/:order. The client receives the
// order every time it changes; a deleted or foreign order ends the stream with an error message.
func NewOrderTrackingHandler(hub *infrastructure.Hub, propagation *usecase.Propagation, validator auth.TokenValidator, sendBuffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		restaurantID := strings.TrimSpace(c.Param("restaurant"))
		orderID := strings.TrimSpace(c.Param("order"))
		if restaurantID == "" || orderID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing restaurant or order")
		}
		claims, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
		}
		if !claims.CanAccessRestaurant(restaurantID) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("order tracking upgrade failed", slog.String("orderId", orderID), slog.Any("error", err))
			return err
		}
		client := infrastructure.NewClient(hub, conn, claims.Subject, claims.SessionID+":"+orderID, restaurantID, orderTrackingEntity, sendBuffer, nil)
		hub.AttachClient(client, nil)
		go client.WritePump()
		go client.ReadPump()

		ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request().Context()))
		client.AddCloseHook(func(*infrastructure.Client) { cancel() })
		stop, err := propagation.SubscribeToOrder(ctx, orderID, func(order *ordersdomain.Order) {
			if order == nil || order.RestaurantID != restaurantID {
				sendCommandError(client, "track", "order not found")
				go hub.Detach(client)
				return
			}
			client.SendDomainMessage(&domain.Message{
				Topic:      domain.CustomTopic(domain.EntityOrders, events.ActionUpdated),
				Entity:     domain.EntityOrders,
				Action:     events.ActionUpdated,
				ResourceID: order.ID,
				Metadata:   map[string]string{domain.MetadataRestaurantID: restaurantID},
				Data:       order,
				Timestamp:  time.Now().UTC(),
			})
		})
		if err != nil {
			slog.Error("order tracking subscription failed", slog.String("orderId", orderID), slog.Any("error", err))
			sendCommandError(client, "track", "stream unavailable")
			hub.Detach(client)
			return nil
		}
		client.AddCloseHook(func(*infrastructure.Client) { stop() })

		slog.Info("order tracking connected", slog.String("orderId", orderID), slog.String("restaurantId", restaurantID), slog.String("userId", claims.Subject))
		return nil
	}
}
