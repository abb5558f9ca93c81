package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/staff/application/usecase"
	"mesaOps/internal/modules/staff/domain"
	"mesaOps/internal/shared/httputil"
)

type Handler struct {
	roster *usecase.Roster
	errors *httputil.ErrorMapper
}

func NewHandler(roster *usecase.Roster) *Handler {
	return &Handler{roster: roster, errors: httputil.DomainErrors()}
}

// Register mounts the routes on a group already scoped to /restaurants/:restaurant.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/staff", h.hire)
	g.GET("/staff/role/:role", h.byRole)
	g.GET("/staff/waiters/next", h.nextWaiter)
}

func (h *Handler) hire(c echo.Context) error {
	var employee domain.Employee
	if err := c.Bind(&employee); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	employee.RestaurantID = c.Param("restaurant")
	id, err := h.roster.Hire(c.Request().Context(), employee)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) byRole(c echo.Context) error {
	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role "+c.Param("role"))
	}
	employees, err := h.roster.GetByRole(c.Request().Context(), c.Param("restaurant"), role)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, employees)
}

// nextWaiter answers 204 when the restaurant has no waiters.
func (h *Handler) nextWaiter(c echo.Context) error {
	waiter, err := h.roster.WaiterWithLeastWorkload(c.Request().Context(), c.Param("restaurant"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if waiter == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, waiter)
}
