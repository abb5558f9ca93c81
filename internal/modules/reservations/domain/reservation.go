package domain

import (
	"strings"
	"time"
)

// Collection is the document collection holding reservations.
const Collection = "reservas"

// Status represents the lifecycle of a reservation.
type Status string

const (
	StatusUnknown   Status = ""
	StatusActive    Status = "ativa"
	StatusCompleted Status = "concluida"
	StatusCancelled Status = "cancelada"
)

var allowedStatuses = map[string]Status{
	"ativa":     StatusActive,
	"active":    StatusActive,
	"concluida": StatusCompleted,
	"completed": StatusCompleted,
	"cancelada": StatusCancelled,
	"cancelled": StatusCancelled,
	"canceled":  StatusCancelled,
}

// NormalizeStatus returns the canonical Status for the given input, or StatusUnknown.
func NormalizeStatus(value any) Status {
	s, ok := value.(string)
	if !ok {
		return StatusUnknown
	}
	return allowedStatuses[strings.ToLower(strings.TrimSpace(s))]
}

// Reservation is a booking of a table for a party at a given time.
type Reservation struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	CustomerID   string    `bson:"cliente_id" json:"customerId"`
	TableID      string    `bson:"mesa_id" json:"tableId"`
	At           time.Time `bson:"data_hora" json:"at"`
	PartySize    int       `bson:"numero_pessoas" json:"partySize"`
	Status       Status    `bson:"status" json:"status"`
	Observations string    `bson:"observacoes,omitempty" json:"observations,omitempty"`
	RestaurantID string    `bson:"restauranteId" json:"restaurantId"`
}

func (r Reservation) DocumentID() string { return r.ID }
