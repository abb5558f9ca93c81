package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/restaurants/application/usecase"
	"mesaOps/internal/modules/restaurants/domain"
	"mesaOps/internal/shared/auth"
	"mesaOps/internal/shared/httputil"
)

type Handler struct {
	directory *usecase.Directory
	errors    *httputil.ErrorMapper
}

func NewHandler(directory *usecase.Directory) *Handler {
	return &Handler{directory: directory, errors: httputil.DomainErrors()}
}

// Register mounts the directory routes. Listing and registering live on the authenticated root
// group; the rest on the group scoped to /restaurants/:restaurant.
func (h *Handler) Register(root, scoped *echo.Group) {
	root.GET("/restaurants", h.list)
	root.POST("/restaurants", h.register, auth.RequireRoles(auth.RoleAdmin))
	scoped.GET("", h.get)
	scoped.PUT("/schedule", h.updateSchedule, auth.RequireRoles(auth.RoleManager))
	scoped.PUT("/capacity", h.updateCapacity, auth.RequireRoles(auth.RoleManager))
}

func (h *Handler) register(c echo.Context) error {
	var restaurant domain.Restaurant
	if err := c.Bind(&restaurant); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := h.directory.Register(c.Request().Context(), restaurant)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// list returns every restaurant for admins and unscoped tokens, otherwise the token's own.
func (h *Handler) list(c echo.Context) error {
	claims := auth.ClaimsFrom(c)
	if claims != nil && claims.RestaurantID != "" && !claims.HasRole(auth.RoleAdmin) {
		restaurant, err := h.directory.Get(c.Request().Context(), claims.RestaurantID)
		if err != nil {
			return h.errors.Respond(c, err)
		}
		return c.JSON(http.StatusOK, []domain.Restaurant{*restaurant})
	}
	restaurants, err := h.directory.List(c.Request().Context())
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, restaurants)
}

func (h *Handler) get(c echo.Context) error {
	restaurant, err := h.directory.Get(c.Request().Context(), c.Param("restaurant"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

func (h *Handler) updateSchedule(c echo.Context) error {
	var req struct {
		OpeningHours string `json:"openingHours"`
		DaysOpen     []any  `json:"daysOpen"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.directory.UpdateSchedule(c.Request().Context(), c.Param("restaurant"), req.OpeningHours, req.DaysOpen); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) updateCapacity(c echo.Context) error {
	var req struct {
		Capacity int `json:"capacity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.directory.UpdateCapacity(c.Request().Context(), c.Param("restaurant"), req.Capacity); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
