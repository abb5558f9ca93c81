package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"mesaOps/internal/modules/inventory/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/events"
)

const entityName = "inventory"

// Ledger adjusts stock quantities through the store's guarded increment, so concurrent
// adjustments never leave an item below zero.
type Ledger struct {
	items     *repository.Repository[domain.StockItem]
	suppliers *repository.Repository[domain.Supplier]
	publisher events.Publisher
	threshold float64
}

// NewLedger builds a ledger that reports items at or below threshold as low stock.
// A non-positive threshold falls back to DefaultLowStockThreshold.
func NewLedger(store docstore.Store, publisher events.Publisher, threshold float64) *Ledger {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}
	return &Ledger{
		items:     repository.New[domain.StockItem](store, domain.Collection),
		suppliers: repository.New[domain.Supplier](store, domain.SupplierCollection),
		publisher: publisher,
		threshold: threshold,
	}
}

// Items exposes the stock repository for read-only composition.
func (uc *Ledger) Items() *repository.Repository[domain.StockItem] { return uc.items }

// Register adds a stock item with a non-negative opening quantity.
func (uc *Ledger) Register(ctx context.Context, item domain.StockItem) (string, error) {
	if strings.TrimSpace(item.RestaurantID) == "" {
		return "", fmt.Errorf("%w: stock item needs a restaurant", apperr.ErrInvariantViolation)
	}
	if item.Quantity < 0 {
		return "", fmt.Errorf("%w: stock quantity cannot be negative", apperr.ErrInvariantViolation)
	}
	item.ID = ""
	return uc.items.Create(ctx, item)
}

// UpdateStock adds delta to the item's quantity and returns the new quantity. A delta that would
// make the quantity negative fails with ErrInvariantViolation and leaves the item unchanged.
func (uc *Ledger) UpdateStock(ctx context.Context, id string, delta float64) (float64, error) {
	quantity, err := uc.items.Store().Increment(ctx, domain.Collection, id, domain.QuantityField, delta, 0)
	switch {
	case errors.Is(err, docstore.ErrBelowFloor):
		return quantity, fmt.Errorf("%w: stock of %s cannot go below zero (have %v, delta %v)", apperr.ErrInvariantViolation, id, quantity, delta)
	case errors.Is(err, docstore.ErrNotFound):
		return 0, apperr.NotFound("stock item", id)
	case err != nil:
		return 0, err
	}

	action := events.ActionUpdated
	if delta < 0 && quantity <= uc.threshold {
		action = events.ActionLowStock
		slog.Warn("stock item low", slog.String("itemId", id), slog.Float64("quantity", quantity))
	}
	uc.emit(ctx, action, id, quantity)
	return quantity, nil
}

// GetLowStockItems returns the restaurant's items whose quantity is at most threshold, lowest first.
// Without threshold the ledger's configured threshold applies.
func (uc *Ledger) GetLowStockItems(ctx context.Context, restaurantID string, threshold ...float64) ([]domain.StockItem, error) {
	limit := uc.threshold
	if len(threshold) > 0 {
		limit = threshold[0]
	}
	return uc.items.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where(domain.QuantityField, docstore.OpLte, limit),
		docstore.OrderBy(domain.QuantityField, docstore.Asc),
	)
}

// ListByRestaurant returns every stock item of the restaurant ordered by name.
func (uc *Ledger) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.StockItem, error) {
	return uc.items.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.OrderBy("nome", docstore.Asc),
	)
}

func (uc *Ledger) RegisterSupplier(ctx context.Context, supplier domain.Supplier) (string, error) {
	if strings.TrimSpace(supplier.RestaurantID) == "" || strings.TrimSpace(supplier.Name) == "" {
		return "", fmt.Errorf("%w: supplier needs a name and restaurant", apperr.ErrInvariantViolation)
	}
	supplier.ID = ""
	return uc.suppliers.Create(ctx, supplier)
}

func (uc *Ledger) Suppliers(ctx context.Context, restaurantID string) ([]domain.Supplier, error) {
	return uc.suppliers.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.OrderBy("nome", docstore.Asc),
	)
}

func (uc *Ledger) emit(ctx context.Context, action, id string, quantity float64) {
	if uc.publisher == nil {
		return
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil || item == nil {
		return
	}
	events.Emit(ctx, uc.publisher, events.Event{
		Entity:     entityName,
		Action:     action,
		ResourceID: id,
		Metadata: map[string]string{
			"restaurantId": item.RestaurantID,
			"quantity":     strconv.FormatFloat(quantity, 'f', -1, 64),
		},
		Data: item,
	})
}
