package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"mesaOps/internal/modules/cart/application/usecase"
	"mesaOps/internal/modules/cart/domain"
	menu "mesaOps/internal/modules/menu/domain"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/httputil"
)

// ItemFinder looks up menu items by id.
type ItemFinder interface {
	GetByID(ctx context.Context, id string) (*menu.Item, error)
}

type Handler struct {
	checkout *usecase.Checkout
	items    ItemFinder
	errors   *httputil.ErrorMapper
}

func NewHandler(checkout *usecase.Checkout, items ItemFinder) *Handler {
	return &Handler{checkout: checkout, items: items, errors: httputil.DomainErrors()}
}

// Register mounts the guest cart routes on the authenticated root group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/carts", h.open)
	g.GET("/carts/:session", h.get)
	g.DELETE("/carts/:session", h.discard)
	g.POST("/carts/:session/items", h.addItem)
	g.PUT("/carts/:session/items/:line", h.updateLine)
	g.DELETE("/carts/:session/items/:line", h.removeLine)
	g.PUT("/carts/:session/table", h.bindTable)
	g.POST("/carts/:session/checkout", h.placeOrder)
}

type cartView struct {
	SessionID   string          `json:"sessionId"`
	Items       []domain.Line   `json:"items"`
	TableID     string          `json:"tableId,omitempty"`
	TableNumber int             `json:"tableNumber,omitempty"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
}

func view(sessionID string, cart *domain.Cart) cartView {
	tableID, number := cart.Table()
	return cartView{
		SessionID:   sessionID,
		Items:       cart.Lines(),
		TableID:     tableID,
		TableNumber: number,
		Total:       cart.Total(),
		ItemCount:   cart.ItemCount(),
	}
}

func (h *Handler) open(c echo.Context) error {
	cart := domain.New()
	session, err := h.checkout.Save(c.Request().Context(), "", cart)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, view(session, cart))
}

func (h *Handler) get(c echo.Context) error {
	cart, err := h.checkout.Load(c.Request().Context(), c.Param("session"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, view(c.Param("session"), cart))
}

func (h *Handler) discard(c echo.Context) error {
	if err := h.checkout.Discard(c.Request().Context(), c.Param("session")); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) addItem(c echo.Context) error {
	var req struct {
		MenuItemID string `json:"menuItemId"`
		Quantity   int    `json:"quantity"`
		Notes      string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil || req.MenuItemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "menuItemId is required")
	}
	ctx := c.Request().Context()
	item, err := h.items.GetByID(ctx, req.MenuItemID)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	if item == nil {
		return h.errors.Respond(c, apperr.NotFound("menu item", req.MenuItemID))
	}
	if !item.Available {
		return h.errors.Respond(c, fmt.Errorf("%w: menu item %s is not available", apperr.ErrResourceUnavailable, item.ID))
	}
	return h.mutate(c, func(cart *domain.Cart) { cart.Add(*item, req.Quantity, req.Notes) })
}

func (h *Handler) updateLine(c echo.Context) error {
	var req struct {
		Quantity *int    `json:"quantity"`
		Notes    *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	line := c.Param("line")
	return h.mutate(c, func(cart *domain.Cart) {
		if req.Notes != nil {
			cart.UpdateNotes(line, *req.Notes)
		}
		if req.Quantity != nil {
			cart.UpdateQuantity(line, *req.Quantity)
		}
	})
}

func (h *Handler) removeLine(c echo.Context) error {
	line := c.Param("line")
	return h.mutate(c, func(cart *domain.Cart) { cart.Remove(line) })
}

func (h *Handler) bindTable(c echo.Context) error {
	var req struct {
		TableID     string `json:"tableId"`
		TableNumber int    `json:"tableNumber"`
	}
	if err := c.Bind(&req); err != nil || req.TableID == "" || req.TableNumber <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "tableId and tableNumber are required")
	}
	return h.mutate(c, func(cart *domain.Cart) {
		domain.Reconcile(cart, domain.TableContext{TableID: req.TableID, TableNumber: req.TableNumber})
	})
}

type checkoutResponse struct {
	OrderID string `json:"orderId"`
}

func (h *Handler) placeOrder(c echo.Context) error {
	var req struct {
		CustomerID string `json:"customerId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	session := c.Param("session")
	cart, err := h.checkout.Load(ctx, session)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	orderID, err := h.checkout.PlaceOrder(ctx, cart, req.CustomerID)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	// The order is placed; a stale cart only means the guest sees the old lines again.
	if _, err := h.checkout.Save(ctx, session, cart); err != nil {
		slog.Warn("cart not cleared after checkout", slog.String("sessionId", session), slog.String("orderId", orderID), slog.Any("error", err))
	}
	return c.JSON(http.StatusCreated, checkoutResponse{OrderID: orderID})
}

// mutate loads the session cart, applies fn and saves it back.
func (h *Handler) mutate(c echo.Context, fn func(*domain.Cart)) error {
	ctx := c.Request().Context()
	session := c.Param("session")
	cart, err := h.checkout.Load(ctx, session)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	fn(cart)
	if _, err := h.checkout.Save(ctx, session, cart); err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, view(session, cart))
}
