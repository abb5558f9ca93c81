package usecase

import (
	"context"

	ordersdomain "mesaOps/internal/modules/orders/domain"
	tablesdomain "mesaOps/internal/modules/tables/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
)

// Propagation composes restaurant-scoped live queries for the views that follow orders and tables.
type Propagation struct {
	orders *repository.Repository[ordersdomain.Order]
	tables *repository.Repository[tablesdomain.Table]
}

func NewPropagation(store docstore.Store) *Propagation {
	return &Propagation{
		orders: repository.New[ordersdomain.Order](store, ordersdomain.Collection),
		tables: repository.New[tablesdomain.Table](store, tablesdomain.Collection),
	}
}

// SubscribeToOrders streams the restaurant's active orders, oldest first.
func (uc *Propagation) SubscribeToOrders(ctx context.Context, restaurantID string, fn func([]ordersdomain.Order)) (func(), error) {
	return uc.orders.Subscribe(ctx, fn,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("status", docstore.OpIn, ordersdomain.ActiveStatuses),
		docstore.OrderBy("hora_criacao", docstore.Asc),
	)
}

// SubscribeToTables streams every table of the restaurant by number.
func (uc *Propagation) SubscribeToTables(ctx context.Context, restaurantID string, fn func([]tablesdomain.Table)) (func(), error) {
	return uc.tables.Subscribe(ctx, fn,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.OrderBy("numero", docstore.Asc),
	)
}

// SubscribeToOrder streams a single order; fn receives nil while the order does not exist.
func (uc *Propagation) SubscribeToOrder(ctx context.Context, id string, fn func(*ordersdomain.Order)) (func(), error) {
	return uc.orders.SubscribeDocument(ctx, id, fn)
}
