package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"mesaOps/internal/modules/orders/domain"
	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/repository"
	"mesaOps/internal/shared/apperr"
	"mesaOps/internal/shared/events"
)

const entityName = "orders"

// Lifecycle drives the order and order-line state machines.
type Lifecycle struct {
	orders    *repository.Repository[domain.Order]
	publisher events.Publisher
	now       func() time.Time
}

func NewLifecycle(store docstore.Store, publisher events.Publisher) *Lifecycle {
	return &Lifecycle{
		orders:    repository.New[domain.Order](store, domain.Collection),
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Orders exposes the underlying repository for read-only composition.
func (uc *Lifecycle) Orders() *repository.Repository[domain.Order] { return uc.orders }

// CreateNew stores a new order stamped with the creation time, status new and the total of its lines.
func (uc *Lifecycle) CreateNew(ctx context.Context, order domain.Order) (string, error) {
	if strings.TrimSpace(order.RestaurantID) == "" || strings.TrimSpace(order.TableID) == "" {
		return "", fmt.Errorf("%w: order needs restaurant and table", apperr.ErrInvariantViolation)
	}
	lineIDs := make(map[string]struct{}, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		if item.Quantity <= 0 {
			return "", fmt.Errorf("%w: item %q quantity must be positive", apperr.ErrInvariantViolation, item.MenuItemID)
		}
		if item.UnitPrice < 0 {
			return "", fmt.Errorf("%w: item %q price must not be negative", apperr.ErrInvariantViolation, item.MenuItemID)
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		// item status updates address lines by id
		if _, dup := lineIDs[item.ID]; dup {
			return "", fmt.Errorf("%w: duplicate item id %q", apperr.ErrInvariantViolation, item.ID)
		}
		lineIDs[item.ID] = struct{}{}
		if item.Status == "" {
			item.Status = domain.ItemPending
		}
	}

	order.ID = ""
	order.CreatedAt = uc.now()
	order.DeliveredAt = nil
	order.Status = domain.StatusNew
	order.Total = order.ItemsTotal().InexactFloat64()

	id, err := uc.orders.Create(ctx, order)
	if err != nil {
		return "", err
	}
	order.ID = id
	slog.Info("order created", slog.String("orderId", id), slog.String("tableId", order.TableID), slog.Float64("total", order.Total))
	uc.emit(ctx, events.ActionCreated, order)
	return id, nil
}

// UpdateStatus moves the order to status. Delivering stamps the delivery time; a terminal order
// cannot move to a different status.
func (uc *Lifecycle) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	if _, ok := domain.ParseStatus(string(status)); !ok {
		return fmt.Errorf("%w: unknown order status %q", apperr.ErrInvariantViolation, status)
	}
	order, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == status {
		return nil
	}
	if order.Status.Terminal() {
		return fmt.Errorf("%w: order %s is already %s", apperr.ErrInvariantViolation, id, order.Status)
	}

	fields := docstore.Fields{"status": status}
	if status == domain.StatusDelivered {
		deliveredAt := uc.now()
		fields["hora_entrega"] = deliveredAt
		order.DeliveredAt = &deliveredAt
	}
	if err := uc.orders.Update(ctx, id, fields); err != nil {
		return err
	}
	order.Status = status
	uc.emit(ctx, events.ActionUpdated, *order)
	return nil
}

// UpdateItemStatus sets the status of one line. When every line is ready the order itself
// becomes ready unless it is already delivered or cancelled. Repeating a call is a no-op.
func (uc *Lifecycle) UpdateItemStatus(ctx context.Context, orderID, itemID string, status domain.ItemStatus) error {
	if _, ok := domain.ParseItemStatus(string(status)); !ok {
		return fmt.Errorf("%w: unknown item status %q", apperr.ErrInvariantViolation, status)
	}

	var (
		updated domain.Order
		changed bool
	)
	err := uc.orders.Store().RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, domain.Collection, orderID)
		if err != nil {
			return err
		}
		if doc == nil {
			return apperr.NotFound("order", orderID)
		}
		order, err := uc.orders.Decode(doc)
		if err != nil {
			return err
		}

		index := -1
		for i, item := range order.Items {
			if item.ID == itemID {
				index = i
				break
			}
		}
		if index < 0 {
			return apperr.NotFound("order item", itemID)
		}
		if order.Items[index].Status == status {
			return nil
		}

		order.Items[index].Status = status
		fields := docstore.Fields{"itens": order.Items}
		if domain.AllItemsReady(order.Items) && !order.Status.Terminal() && order.Status != domain.StatusReady {
			order.Status = domain.StatusReady
			fields["status"] = order.Status
		}
		if err := tx.Update(ctx, domain.Collection, orderID, fields); err != nil {
			return err
		}
		updated, changed = order, true
		return nil
	})
	if err != nil || !changed {
		return err
	}
	uc.emit(ctx, events.ActionUpdated, updated)
	return nil
}

func (uc *Lifecycle) AssignWaiter(ctx context.Context, orderID, waiterID string) error {
	if err := uc.orders.Update(ctx, orderID, docstore.Fields{"garcom_id": strings.TrimSpace(waiterID)}); err != nil {
		return err
	}
	uc.emitID(ctx, orderID)
	return nil
}

func (uc *Lifecycle) AddObservation(ctx context.Context, orderID, observation string) error {
	if err := uc.orders.Update(ctx, orderID, docstore.Fields{"observacoes": observation}); err != nil {
		return err
	}
	uc.emitID(ctx, orderID)
	return nil
}

// CancelOrder cancels an order that is not yet delivered or cancelled.
func (uc *Lifecycle) CancelOrder(ctx context.Context, orderID string) error {
	order, err := uc.load(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status.Terminal() {
		return fmt.Errorf("%w: order %s is already %s", apperr.ErrInvariantViolation, orderID, order.Status)
	}
	if err := uc.orders.Update(ctx, orderID, docstore.Fields{"status": domain.StatusCancelled}); err != nil {
		return err
	}
	order.Status = domain.StatusCancelled
	uc.emit(ctx, events.ActionCancelled, *order)
	return nil
}

// GetByTable returns every order of the table, newest first.
func (uc *Lifecycle) GetByTable(ctx context.Context, tableID string) ([]domain.Order, error) {
	return uc.orders.Query(ctx,
		docstore.Where("mesa_id", docstore.OpEq, tableID),
		docstore.OrderBy("hora_criacao", docstore.Desc),
	)
}

// GetActiveByTable returns the table's orders that are new, preparing or ready, newest first.
func (uc *Lifecycle) GetActiveByTable(ctx context.Context, tableID string) ([]domain.Order, error) {
	return uc.orders.Query(ctx,
		docstore.Where("mesa_id", docstore.OpEq, tableID),
		docstore.Where("status", docstore.OpIn, domain.ActiveStatuses),
		docstore.OrderBy("hora_criacao", docstore.Desc),
	)
}

// GetByStatus returns the restaurant's orders in any of statuses, oldest first (kitchen queue).
func (uc *Lifecycle) GetByStatus(ctx context.Context, restaurantID string, statuses ...domain.Status) ([]domain.Order, error) {
	if len(statuses) == 0 {
		return []domain.Order{}, nil
	}
	return uc.orders.Query(ctx,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.Where("status", docstore.OpIn, statuses),
		docstore.OrderBy("hora_criacao", docstore.Asc),
	)
}

// History pages through the restaurant's orders, newest first.
func (uc *Lifecycle) History(ctx context.Context, restaurantID, cursor string, pageSize int) (repository.Page[domain.Order], error) {
	return uc.orders.Paginate(ctx, cursor, pageSize,
		docstore.Where("restauranteId", docstore.OpEq, restaurantID),
		docstore.OrderBy("hora_criacao", docstore.Desc),
	)
}

func (uc *Lifecycle) load(ctx context.Context, id string) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order", id)
	}
	return order, nil
}

func (uc *Lifecycle) emitID(ctx context.Context, id string) {
	if uc.publisher == nil {
		return
	}
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil || order == nil {
		return
	}
	uc.emit(ctx, events.ActionUpdated, *order)
}

func (uc *Lifecycle) emit(ctx context.Context, action string, order domain.Order) {
	events.Emit(ctx, uc.publisher, events.Event{
		Entity:     entityName,
		Action:     action,
		ResourceID: order.ID,
		Metadata: map[string]string{
			"restaurantId": order.RestaurantID,
			"tableId":      order.TableID,
			"status":       string(order.Status),
		},
		Data: order,
		At:   uc.now(),
	})
}
