package transport

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/customers/application/usecase"
	"mesaOps/internal/modules/customers/domain"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/httputil"
)

type Handler struct {
	registry *usecase.Registry
	errors   *httputil.ErrorMapper
}

func NewHandler(registry *usecase.Registry) *Handler {
	return &Handler{registry: registry, errors: httputil.DomainErrors()}
}

// Register mounts the customer routes on the authenticated root group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/customers", h.register)
	g.GET("/customers", h.findByEmail)
	g.GET("/customers/:id", h.get)
	g.POST("/customers/:id/preferences", h.addPreference)
}

func (h *Handler) register(c echo.Context) error {
	var customer domain.Customer
	if err := c.Bind(&customer); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := h.registry.Register(c.Request().Context(), customer)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) findByEmail(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}
	customer, err := h.registry.FindByEmail(c.Request().Context(), email)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if customer == nil {
		return h.errors.Respond(c, apperr.NotFound("customer", email))
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *Handler) get(c echo.Context) error {
	customer, err := h.registry.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *Handler) addPreference(c echo.Context) error {
	var req struct {
		Preference string `json:"preference"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.registry.AddPreference(c.Request().Context(), c.Param("id"), req.Preference); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
