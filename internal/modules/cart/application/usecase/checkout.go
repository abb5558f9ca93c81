package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"mesaOps/internal/modules/cart/domain"
	orders "mesaOps/internal/modules/orders/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/shared/apperr"
)

// Collection holds persisted carts keyed by session id.
const Collection = "carrinhos"

// OrderCreator turns an order draft into a stored order.
type OrderCreator interface {
	CreateNew(ctx context.Context, order orders.Order) (string, error)
}

// Checkout persists guest carts and converts them into orders.
type Checkout struct {
	store  docstore.Store
	orders OrderCreator
}

func NewCheckout(store docstore.Store, creator OrderCreator) *Checkout {
	return &Checkout{store: store, orders: creator}
}

// Save stores the cart under sessionID and returns the session id, creating one when empty.
func (uc *Checkout) Save(ctx context.Context, sessionID string, cart *domain.Cart) (string, error) {
	data, err := cart.Encode()
	if err != nil {
		return "", err
	}
	if sessionID == "" {
		return uc.store.Insert(ctx, Collection, docstore.Document{"estado": string(data)})
	}
	return sessionID, uc.store.Update(ctx, Collection, sessionID, docstore.Fields{"estado": string(data)})
}

// Load restores the cart saved under sessionID.
func (uc *Checkout) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	doc, err := uc.store.Get(ctx, Collection, sessionID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("cart", sessionID)
	}
	raw, _ := doc["estado"].(string)
	return domain.Decode([]byte(raw))
}

// Discard removes a saved cart.
func (uc *Checkout) Discard(ctx context.Context, sessionID string) error {
	return uc.store.Delete(ctx, Collection, sessionID)
}

// PlaceOrder creates an order from the cart lines and clears the cart on success.
func (uc *Checkout) PlaceOrder(ctx context.Context, cart *domain.Cart, customerID string) (string, error) {
	if !cart.HasTable() {
		return "", fmt.Errorf("%w: cart is not bound to a table", apperr.ErrInvariantViolation)
	}
	lines := cart.Lines()
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: cart is empty", apperr.ErrInvariantViolation)
	}

	tableID, _ := cart.Table()
	order := orders.Order{
		CustomerID:   customerID,
		TableID:      tableID,
		RestaurantID: lines[0].Item.RestaurantID,
		Items:        make([]orders.Item, 0, len(lines)),
	}
	for _, line := range lines {
		if line.Item.RestaurantID != order.RestaurantID {
			return "", fmt.Errorf("%w: cart mixes restaurants", apperr.ErrInvariantViolation)
		}
		order.Items = append(order.Items, orders.Item{
			MenuItemID:   line.Item.ID,
			Quantity:     line.Quantity,
			UnitPrice:    line.Item.Price,
			Observations: line.Notes,
		})
	}

	id, err := uc.orders.CreateNew(ctx, order)
	if err != nil {
		return "", err
	}
	slog.Info("cart checked out", slog.String("orderId", id), slog.Int("items", cart.ItemCount()))
	cart.Clear()
	return id, nil
}
