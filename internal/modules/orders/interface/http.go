package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"mesaOps/internal/modules/orders/application/usecase"
	"mesaOps/internal/modules/orders/domain"
	staffdomain "mesaOps/internal/modules/staff/domain"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/httputil"
)

// WaiterPicker chooses and books the waiter that serves a new order.
type WaiterPicker interface {
	WaiterWithLeastWorkload(ctx context.Context, restaurantID string) (*staffdomain.Employee, error)
	RecordHandledOrder(ctx context.Context, employeeID, orderID string) error
}

// OrderRecorder appends an order to the customer's history.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, customerID, orderID string) error
}

type Handler struct {
	lifecycle *usecase.Lifecycle
	waiters   WaiterPicker
	customers OrderRecorder
	errors    *httputil.ErrorMapper
}

// NewHandler wires the order routes. waiters and customers may be nil.
func NewHandler(lifecycle *usecase.Lifecycle, waiters WaiterPicker, customers OrderRecorder) *Handler {
	return &Handler{lifecycle: lifecycle, waiters: waiters, customers: customers, errors: httputil.DomainErrors()}
}

// Register mounts the routes on a group already scoped to /restaurants/:restaurant.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/orders", h.create)
	g.GET("/orders", h.byStatus)
	g.GET("/orders/history", h.history)
	g.GET("/orders/:id", h.get)
	g.PUT("/orders/:id/status", h.updateStatus)
	g.PUT("/orders/:id/items/:item/status", h.updateItemStatus)
	g.PUT("/orders/:id/waiter", h.assignWaiter)
	g.PUT("/orders/:id/observations", h.addObservation)
	g.POST("/orders/:id/cancel", h.cancel)
	g.GET("/tables/:table/orders", h.byTable)
}

type statusRequest struct {
	Status string `json:"status"`
}

type createResponse struct {
	ID       string `json:"id"`
	WaiterID string `json:"waiterId,omitempty"`
}

func (h *Handler) create(c echo.Context) error {
	var order domain.Order
	if err := c.Bind(&order); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	order.RestaurantID = c.Param("restaurant")

	var waiter *staffdomain.Employee
	if order.WaiterID == "" && h.waiters != nil {
		picked, err := h.waiters.WaiterWithLeastWorkload(ctx, order.RestaurantID)
		if err != nil {
			return h.errors.Respond(c, err)
		}
		if picked != nil {
			waiter = picked
			order.WaiterID = picked.ID
		}
	}

	id, err := h.lifecycle.CreateNew(ctx, order)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	// The order exists at this point, so bookkeeping failures are logged and not returned.
	if waiter != nil {
		if err := h.waiters.RecordHandledOrder(ctx, waiter.ID, id); err != nil {
			slog.Warn("order waiter bookkeeping failed", slog.String("orderId", id), slog.String("waiterId", waiter.ID), slog.Any("error", err))
		}
	}
	if order.CustomerID != "" && h.customers != nil {
		if err := h.customers.RecordOrder(ctx, order.CustomerID, id); err != nil {
			slog.Warn("customer history update failed", slog.String("orderId", id), slog.String("customerId", order.CustomerID), slog.Any("error", err))
		}
	}
	return c.JSON(http.StatusCreated, createResponse{ID: id, WaiterID: order.WaiterID})
}

// byStatus lists the kitchen queue. Without ?status it returns the active orders.
func (h *Handler) byStatus(c echo.Context) error {
	statuses := domain.ActiveStatuses
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		statuses = nil
		for _, part := range strings.Split(raw, ",") {
			status, ok := domain.ParseStatus(part)
			if !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+strings.TrimSpace(part))
			}
			statuses = append(statuses, status)
		}
	}
	orders, err := h.lifecycle.GetByStatus(c.Request().Context(), c.Param("restaurant"), statuses...)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *Handler) history(c echo.Context) error {
	size := 20
	if raw := c.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "size must be a positive integer")
		}
		size = parsed
	}
	page, err := h.lifecycle.History(c.Request().Context(), c.Param("restaurant"), c.QueryParam("cursor"), size)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) get(c echo.Context) error {
	order, err := h.owned(c)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) updateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+req.Status)
	}
	order, err := h.owned(c)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if err := h.lifecycle.UpdateStatus(c.Request().Context(), order.ID, status); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) updateItemStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	status, ok := domain.ParseItemStatus(req.Status)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown item status "+req.Status)
	}
	order, err := h.owned(c)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if err := h.lifecycle.UpdateItemStatus(c.Request().Context(), order.ID, c.Param("item"), status); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) assignWaiter(c echo.Context) error {
	var req struct {
		WaiterID string `json:"waiterId"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.WaiterID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "waiterId is required")
	}
	order, err := h.owned(c)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if err := h.lifecycle.AssignWaiter(c.Request().Context(), order.ID, req.WaiterID); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) addObservation(c echo.Context) error {
	var req struct {
		Observation string `json:"observation"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	order, err := h.owned(c)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if err := h.lifecycle.AddObservation(c.Request().Context(), order.ID, req.Observation); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) cancel(c echo.Context) error {
	order, err := h.owned(c)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if err := h.lifecycle.CancelOrder(c.Request().Context(), order.ID); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// byTable lists the table's orders; ?active=true keeps only the unfinished ones.
func (h *Handler) byTable(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		orders []domain.Order
		err    error
	)
	if active, _ := strconv.ParseBool(c.QueryParam("active")); active {
		orders, err = h.lifecycle.GetActiveByTable(ctx, c.Param("table"))
	} else {
		orders, err = h.lifecycle.GetByTable(ctx, c.Param("table"))
	}
	if err != nil {
		return h.errors.Respond(c, err)
	}
	scoped := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if order.RestaurantID == c.Param("restaurant") {
			scoped = append(scoped, order)
		}
	}
	return c.JSON(http.StatusOK, scoped)
}

// owned loads the order named by :id and hides orders of other restaurants.
func (h *Handler) owned(c echo.Context) (*domain.Order, error) {
	id := c.Param("id")
	order, err := h.lifecycle.Orders().GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if order == nil || order.RestaurantID != c.Param("restaurant") {
		return nil, apperr.NotFound("order", id)
	}
	return order, nil
}
