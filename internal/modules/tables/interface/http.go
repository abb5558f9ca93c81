package transport

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/tables/application/usecase"
	"mesaOps/internal/modules/tables/domain"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/httputil"
)

type Handler struct {
	coordinator *usecase.Coordinator
	errors      *httputil.ErrorMapper
}

func NewHandler(coordinator *usecase.Coordinator) *Handler {
	return &Handler{coordinator: coordinator, errors: httputil.DomainErrors()}
}

// Register mounts the routes on a group already scoped to /restaurants/:restaurant.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/tables", h.register)
	g.GET("/tables", h.list)
	g.GET("/tables/number/:number", h.byNumber)
	g.PUT("/tables/:id/status", h.transition)
	g.POST("/tables/:id/seat", h.move(domain.StatusOccupied))
	g.POST("/tables/:id/release", h.move(domain.StatusAwaitingCleaning))
	g.POST("/tables/:id/clean", h.move(domain.StatusFree))
}

func (h *Handler) register(c echo.Context) error {
	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	raw["restauranteId"] = c.Param("restaurant")
	table, ok := domain.NormalizeTable(raw)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "table needs a number")
	}
	id, err := h.coordinator.Register(c.Request().Context(), table)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// list returns the restaurant's tables; ?available=true keeps only the free ones.
func (h *Handler) list(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		tables []domain.Table
		err    error
	)
	if available, _ := strconv.ParseBool(c.QueryParam("available")); available {
		tables, err = h.coordinator.GetAvailable(ctx, c.Param("restaurant"))
	} else {
		tables, err = h.coordinator.ListByRestaurant(ctx, c.Param("restaurant"))
	}
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, tables)
}

func (h *Handler) byNumber(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "table number must be an integer")
	}
	table, err := h.coordinator.GetByNumber(c.Request().Context(), c.Param("restaurant"), number)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if table == nil {
		return h.errors.Respond(c, apperr.NotFound("table", c.Param("number")))
	}
	return c.JSON(http.StatusOK, table)
}

func (h *Handler) transition(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	status := domain.NormalizeStatus(req.Status)
	if status == domain.StatusUnknown {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+req.Status)
	}
	return h.move(status)(c)
}

func (h *Handler) move(to domain.Status) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.owned(c); err != nil {
			return h.errors.Respond(c, err)
		}
		if err := h.coordinator.Transition(c.Request().Context(), c.Param("id"), to); err != nil {
			return h.errors.Respond(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *Handler) owned(c echo.Context) error {
	id := c.Param("id")
	table, err := h.coordinator.Tables().GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if table == nil || table.RestaurantID != c.Param("restaurant") {
		return apperr.NotFound("table", id)
	}
	return nil
}
