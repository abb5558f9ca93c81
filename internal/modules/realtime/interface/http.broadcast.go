package transport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/realtime/application/usecase"
	"mesaOps/internal/modules/realtime/domain"
	"mesaOps/internal/shared/auth"
	"mesaOps/internal/shared/normalization"
)

// BroadcastRequest is an operator notification pushed to a restaurant's clients.
type BroadcastRequest struct {
	Entity       string         `json:"entity"`
	Action       string         `json:"action"`
	ResourceID   string         `json:"resourceId,omitempty"`
	RestaurantID string         `json:"restaurantId"`
	Data         map[string]any `json:"data,omitempty"`
}

type BroadcastResponse struct {
	Success bool   `json:"success"`
	Topic   string `json:"topic"`
}

// NewBroadcastHTTPHandler serves POST /api/v1/broadcast.
func NewBroadcastHTTPHandler(broadcastUC *usecase.BroadcastUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req BroadcastRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		entity := normalizeEntity(req.Entity)
		action := strings.ToLower(strings.TrimSpace(req.Action))
		restaurantID := strings.TrimSpace(req.RestaurantID)
		if entity == "" || action == "" || restaurantID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "entity, action and restaurantId are required")
		}
		if !normalization.IsValidEntity(entity) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown entity "+entity)
		}
		if !auth.ClaimsFrom(c).CanAccessRestaurant(restaurantID) {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}

		msg := &domain.Message{
			Topic:      domain.CustomTopic(entity, action),
			Entity:     entity,
			Action:     action,
			ResourceID: req.ResourceID,
			Metadata:   map[string]string{domain.MetadataRestaurantID: restaurantID},
			Data:       req.Data,
			Timestamp:  time.Now().UTC(),
		}
		broadcastUC.Execute(c.Request().Context(), msg)

		slog.Info("broadcast http: message sent", slog.String("topic", msg.Topic), slog.String("restaurantId", restaurantID), slog.String("resourceId", req.ResourceID))
		return c.JSON(http.StatusOK, BroadcastResponse{Success: true, Topic: msg.Topic})
	}
}
