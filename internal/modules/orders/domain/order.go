package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Collection is the document collection holding orders.
const Collection = "pedidos"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusNew       Status = "novo"
	StatusPreparing Status = "em_preparo"
	StatusReady     Status = "pronto"
	StatusDelivered Status = "entregue"
	StatusCancelled Status = "cancelado"
)

// ActiveStatuses are the statuses of orders still being worked on.
var ActiveStatuses = []Status{StatusNew, StatusPreparing, StatusReady}

var statusAliases = map[string]Status{
	"novo":       StatusNew,
	"new":        StatusNew,
	"em_preparo": StatusPreparing,
	"preparing":  StatusPreparing,
	"pronto":     StatusReady,
	"ready":      StatusReady,
	"entregue":   StatusDelivered,
	"delivered":  StatusDelivered,
	"cancelado":  StatusCancelled,
	"cancelled":  StatusCancelled,
	"canceled":   StatusCancelled,
}

// ParseStatus accepts both the stored and the english spelling of a status.
func ParseStatus(raw string) (Status, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Active reports whether the order is still in the kitchen or waiting to be served.
func (s Status) Active() bool {
	return s == StatusNew || s == StatusPreparing || s == StatusReady
}

// ItemStatus is the state of a single order line.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pendente"
	ItemPreparing ItemStatus = "preparando"
	ItemReady     ItemStatus = "pronto"
	ItemDelivered ItemStatus = "entregue"
)

var itemStatusAliases = map[string]ItemStatus{
	"pendente":   ItemPending,
	"pending":    ItemPending,
	"preparando": ItemPreparing,
	"preparing":  ItemPreparing,
	"pronto":     ItemReady,
	"ready":      ItemReady,
	"entregue":   ItemDelivered,
	"delivered":  ItemDelivered,
}

func ParseItemStatus(raw string) (ItemStatus, bool) {
	status, ok := itemStatusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// Item is one line of an order, embedded in the order document.
type Item struct {
	ID           string     `bson:"id" json:"id"`
	OrderID      string     `bson:"pedido_id,omitempty" json:"orderId,omitempty"`
	MenuItemID   string     `bson:"item_id" json:"menuItemId"`
	Quantity     int        `bson:"quantidade" json:"quantity"`
	UnitPrice    float64    `bson:"preco_unitario" json:"unitPrice"`
	Observations string     `bson:"observacoes,omitempty" json:"observations,omitempty"`
	Status       ItemStatus `bson:"status" json:"status"`
}

// Subtotal returns quantity times unit price.
func (i Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.UnitPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer order placed at a table.
type Order struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	CustomerID   string     `bson:"cliente_id" json:"customerId"`
	TableID      string     `bson:"mesa_id" json:"tableId"`
	WaiterID     string     `bson:"garcom_id,omitempty" json:"waiterId,omitempty"`
	Status       Status     `bson:"status" json:"status"`
	Total        float64    `bson:"valor_total" json:"total"`
	CreatedAt    time.Time  `bson:"hora_criacao" json:"createdAt"`
	DeliveredAt  *time.Time `bson:"hora_entrega,omitempty" json:"deliveredAt,omitempty"`
	Items        []Item     `bson:"itens" json:"items"`
	Observations string     `bson:"observacoes,omitempty" json:"observations,omitempty"`
	RestaurantID string     `bson:"restauranteId" json:"restaurantId"`
}

func (o Order) DocumentID() string { return o.ID }

// ItemsTotal sums the subtotal of every line.
func (o Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// AllItemsReady reports whether the order has lines and every line is ready.
func AllItemsReady(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Status != ItemReady {
			return false
		}
	}
	return true
}
