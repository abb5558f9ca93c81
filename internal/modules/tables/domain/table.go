package domain

import (
	"strings"

	"mesaOps/internal/shared/normalization"
)

// Collection is the document collection holding tables.
const Collection = "mesas"

// Status represents the occupancy of a table.
type Status string

const (
	StatusUnknown          Status = ""
	StatusFree             Status = "livre"
	StatusOccupied         Status = "ocupada"
	StatusAwaitingCleaning Status = "aguardando_limpeza"
	StatusReserved         Status = "reservada"
)

var allowedStatuses = map[string]Status{
	"livre":              StatusFree,
	"free":               StatusFree,
	"available":          StatusFree,
	"ocupada":            StatusOccupied,
	"occupied":           StatusOccupied,
	"seated":             StatusOccupied,
	"aguardando_limpeza": StatusAwaitingCleaning,
	"awaiting_cleaning":  StatusAwaitingCleaning,
	"cleaning":           StatusAwaitingCleaning,
	"reservada":          StatusReserved,
	"reserved":           StatusReserved,
}

// NormalizeStatus coerces any input into a canonical table status.
// Unrecognised values yield StatusUnknown.
func NormalizeStatus(value any) Status {
	s, ok := value.(string)
	if !ok {
		return StatusUnknown
	}
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	return allowedStatuses[key]
}

// transitions lists the statuses reachable from each status.
var transitions = map[Status]map[Status]struct{}{
	StatusFree: {
		StatusOccupied:         {},
		StatusAwaitingCleaning: {},
		StatusReserved:         {},
	},
	StatusOccupied: {
		StatusFree:             {},
		StatusAwaitingCleaning: {},
	},
	StatusAwaitingCleaning: {
		StatusFree:     {},
		StatusOccupied: {},
	},
	StatusReserved: {
		StatusFree: {},
		// the reserved party arrives
		StatusOccupied: {},
	},
}

// CanTransition reports whether a table may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to Status) bool {
	if to == StatusUnknown {
		return false
	}
	if from == to {
		return true
	}
	_, ok := transitions[from][to]
	return ok
}

// Table is a seating resource of a restaurant. Number is unique within the restaurant.
type Table struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	Number       int    `bson:"numero" json:"number"`
	Status       Status `bson:"status" json:"status"`
	Capacity     int    `bson:"capacidade" json:"capacity"`
	RestaurantID string `bson:"restauranteId" json:"restaurantId"`
}

func (t Table) DocumentID() string { return t.ID }

// NormalizeTable builds a Table from a loosely typed payload such as a request body or a broker
// event. Payloads without a table number are rejected.
func NormalizeTable(raw map[string]any) (Table, bool) {
	number := normalization.AsInt(firstPresent(raw, "numero", "number"))
	if number == 0 {
		return Table{}, false
	}
	table := Table{
		ID:           normalization.AsString(firstPresent(raw, "id", "_id")),
		Number:       number,
		Capacity:     normalization.AsInt(firstPresent(raw, "capacidade", "capacity")),
		RestaurantID: normalization.AsString(firstPresent(raw, "restauranteId", "restaurantId")),
	}
	table.Status = NormalizeStatus(raw["status"])
	if table.Status == StatusUnknown {
		table.Status = NormalizeStatus(raw["state"])
	}
	return table, true
}

func firstPresent(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value
		}
	}
	return nil
}
