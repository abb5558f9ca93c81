package domain

import "time"

const (
	// Collection is the document collection holding reports.
	Collection = "relatorios"

	TypeDaily   = "diario"
	GeneratedBy = "sistema"
)

// Details holds the figures computed for a daily report.
type Details struct {
	TotalOrders     int64   `bson:"totalPedidos" json:"totalOrders"`
	DeliveredOrders int64   `bson:"pedidosEntregues" json:"deliveredOrders"`
	Revenue         float64 `bson:"revenue" json:"revenue"`
}

// Report is an immutable snapshot of a restaurant's figures.
type Report struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	RestaurantID string    `bson:"restauranteId" json:"restaurantId"`
	Type         string    `bson:"tipo" json:"type"`
	Date         time.Time `bson:"data" json:"date"`
	Details      Details   `bson:"detalhes" json:"details"`
	GeneratedBy  string    `bson:"gerado_por" json:"generatedBy"`
}

func (r Report) DocumentID() string { return r.ID }
