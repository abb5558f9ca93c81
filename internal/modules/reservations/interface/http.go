package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/reservations/application/usecase"
	"mesaOps/internal/modules/reservations/domain"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/clock"
	"mesaOps/internal/shared/httputil"
)

type Handler struct {
	workflow *usecase.Workflow
	location *time.Location
	errors   *httputil.ErrorMapper
}

// NewHandler wires the reservation routes. Day queries are read in loc, UTC when nil.
func NewHandler(workflow *usecase.Workflow, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{workflow: workflow, location: loc, errors: httputil.DomainErrors()}
}

// Register mounts the routes on a group already scoped to /restaurants/:restaurant.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/reservations", h.create)
	g.GET("/reservations", h.byDate)
	g.POST("/reservations/:id/cancel", h.close(h.workflow.CancelReservation))
	g.POST("/reservations/:id/complete", h.close(h.workflow.CompleteReservation))
}

func (h *Handler) create(c echo.Context) error {
	var reservation domain.Reservation
	if err := c.Bind(&reservation); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	reservation.RestaurantID = c.Param("restaurant")
	id, err := h.workflow.CreateReservation(c.Request().Context(), reservation)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// byDate lists the reservations of ?date=YYYY-MM-DD, today when absent.
func (h *Handler) byDate(c echo.Context) error {
	day, err := clock.ParseDay(c.QueryParam("date"), h.location)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	reservations, err := h.workflow.GetByDate(c.Request().Context(), c.Param("restaurant"), day)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, reservations)
}

func (h *Handler) close(action func(ctx context.Context, id string) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		reservation, err := h.workflow.Reservations().GetByID(c.Request().Context(), id)
		if err != nil {
			return h.errors.Respond(c, err)
		}
		if reservation == nil || reservation.RestaurantID != c.Param("restaurant") {
			return h.errors.Respond(c, apperr.NotFound("reservation", id))
		}
		if err := action(c.Request().Context(), id); err != nil {
			return h.errors.Respond(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
