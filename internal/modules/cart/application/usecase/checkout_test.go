package usecase

import (
	"context"
	"errors"
	"testing"

	"mesaOps/internal/modules/cart/domain"
	menu "mesaOps/internal/modules/menu/domain"
	orderuc "mesaOps/internal/modules/orders/application/usecase"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/shared/apperr"
)

func TestSaveAndLoad(t *testing.T) {
	uc := NewCheckout(docstore.NewMemory(), nil)
	ctx := context.Background()

	cart := domain.New()
	cart.Add(menu.Item{ID: "m1", Price: 10, RestaurantID: "r1"}, 2, "")
	cart.SetTable("t1", 3)

	session, err := uc.Save(ctx, "", cart)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	cart.Add(menu.Item{ID: "m2", Price: 5, RestaurantID: "r1"}, 1, "")
	if _, err := uc.Save(ctx, session, cart); err != nil {
		t.Fatalf("save again: %v", err)
	}

	restored, err := uc.Load(ctx, session)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.ItemCount() != 3 || !restored.HasTable() {
		t.Fatalf("unexpected cart %#v", restored.Lines())
	}

	uc.Discard(ctx, session)
	if _, err := uc.Load(ctx, session); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPlaceOrder(t *testing.T) {
	store := docstore.NewMemory()
	lifecycle := orderuc.NewLifecycle(store, nil)
	uc := NewCheckout(store, lifecycle)
	ctx := context.Background()

	cart := domain.New()
	cart.Add(menu.Item{ID: "m1", Price: 12.5, RestaurantID: "r1"}, 2, "sem gelo")
	if _, err := uc.PlaceOrder(ctx, cart, "c1"); !errors.Is(err, apperr.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation without table, got %v", err)
	}

	cart.SetTable("t1", 3)
	id, err := uc.PlaceOrder(ctx, cart, "c1")
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	order, err := lifecycle.Orders().GetByID(ctx, id)
	if err != nil || order == nil {
		t.Fatalf("order not stored: %v", err)
	}
	if order.Total != 25 || order.TableID != "t1" || order.RestaurantID != "r1" || order.Items[0].Observations != "sem gelo" {
		t.Fatalf("unexpected order %#v", order)
	}
	if cart.ItemCount() != 0 || cart.HasTable() {
		t.Fatal("cart must be cleared after checkout")
	}
}

func TestPlaceOrderRejectsEmptyOrMixedCarts(t *testing.T) {
	uc := NewCheckout(docstore.NewMemory(), orderuc.NewLifecycle(docstore.NewMemory(), nil))
	ctx := context.Background()

	empty := domain.New()
	empty.SetTable("t1", 1)
	if _, err := uc.PlaceOrder(ctx, empty, ""); !errors.Is(err, apperr.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}

	mixed := domain.New()
	mixed.SetTable("t1", 1)
	mixed.Add(menu.Item{ID: "m1", RestaurantID: "r1"}, 1, "")
	mixed.Add(menu.Item{ID: "m2", RestaurantID: "r2"}, 1, "")
	if _, err := uc.PlaceOrder(ctx, mixed, ""); !errors.Is(err, apperr.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if mixed.ItemCount() != 2 {
		t.Fatal("failed checkout must keep the cart")
	}
}
