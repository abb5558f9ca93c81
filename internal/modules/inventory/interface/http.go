package transport

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/inventory/application/usecase"
	"mesaOps/internal/modules/inventory/domain"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/httputil"
	"mesaOps/internal/shared/normalization"
)

type Handler struct {
	ledger *usecase.Ledger
	errors *httputil.ErrorMapper
}

func NewHandler(ledger *usecase.Ledger) *Handler {
	return &Handler{ledger: ledger, errors: httputil.DomainErrors()}
}

// Register mounts the routes on a group already scoped to /restaurants/:restaurant.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/inventory", h.register)
	g.GET("/inventory", h.list)
	g.GET("/inventory/low", h.low)
	g.POST("/inventory/:id/adjust", h.adjust)
	g.POST("/suppliers", h.registerSupplier)
	g.GET("/suppliers", h.suppliers)
}

func (h *Handler) register(c echo.Context) error {
	var item domain.StockItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	item.RestaurantID = c.Param("restaurant")
	id, err := h.ledger.Register(c.Request().Context(), item)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) list(c echo.Context) error {
	items, err := h.ledger.ListByRestaurant(c.Request().Context(), c.Param("restaurant"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// low lists items at or below ?threshold, the configured threshold when absent.
func (h *Handler) low(c echo.Context) error {
	var threshold []float64
	if raw := strings.TrimSpace(c.QueryParam("threshold")); raw != "" {
		threshold = append(threshold, normalization.AsFloat64(raw))
	}
	items, err := h.ledger.GetLowStockItems(c.Request().Context(), c.Param("restaurant"), threshold...)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

type adjustResponse struct {
	Quantity float64 `json:"quantity"`
}

func (h *Handler) adjust(c echo.Context) error {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id := c.Param("id")
	item, err := h.ledger.Items().GetByID(c.Request().Context(), id)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if item == nil || item.RestaurantID != c.Param("restaurant") {
		return h.errors.Respond(c, apperr.NotFound("stock item", id))
	}
	quantity, err := h.ledger.UpdateStock(c.Request().Context(), id, req.Delta)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, adjustResponse{Quantity: quantity})
}

func (h *Handler) registerSupplier(c echo.Context) error {
	var supplier domain.Supplier
	if err := c.Bind(&supplier); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	supplier.RestaurantID = c.Param("restaurant")
	id, err := h.ledger.RegisterSupplier(c.Request().Context(), supplier)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) suppliers(c echo.Context) error {
	suppliers, err := h.ledger.Suppliers(c.Request().Context(), c.Param("restaurant"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, suppliers)
}
