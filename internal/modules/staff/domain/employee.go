package domain

import "strings"

// Collection is the document collection holding employees.
const Collection = "funcionarios"

type Role string

const (
	RoleWaiter  Role = "garcom"
	RoleCook    Role = "cozinheiro"
	RoleManager Role = "gerente"
	RoleCashier Role = "caixa"
)

var roleAliases = map[string]Role{
	"garcom":     RoleWaiter,
	"waiter":     RoleWaiter,
	"cozinheiro": RoleCook,
	"cook":       RoleCook,
	"gerente":    RoleManager,
	"manager":    RoleManager,
	"caixa":      RoleCashier,
	"cashier":    RoleCashier,
}

// ParseRole accepts both the stored and the english spelling of a role.
func ParseRole(raw string) (Role, bool) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]
	return role, ok
}

type Shift string

const (
	ShiftMorning   Shift = "manha"
	ShiftAfternoon Shift = "tarde"
	ShiftNight     Shift = "noite"
)

// Employee is a member of a restaurant's staff.
type Employee struct {
	ID            string   `bson:"_id,omitempty" json:"id"`
	Name          string   `bson:"nome" json:"name"`
	Role          Role     `bson:"cargo" json:"role"`
	Shift         Shift    `bson:"turno" json:"shift"`
	ClockIn       string   `bson:"horario_entrada,omitempty" json:"clockIn,omitempty"`
	ClockOut      string   `bson:"horario_saida,omitempty" json:"clockOut,omitempty"`
	TablesServed  []string `bson:"mesas_atendidas" json:"tablesServed"`
	OrdersHandled []string `bson:"pedidos_atendidos" json:"ordersHandled"`
	RatingCount   int      `bson:"total_avaliacoes" json:"ratingCount"`
	RatingAverage float64  `bson:"avaliacao_media" json:"ratingAverage"`
	RestaurantID  string   `bson:"restauranteId" json:"restaurantId"`
	UserID        string   `bson:"user_id,omitempty" json:"userId,omitempty"`
}

func (e Employee) DocumentID() string { return e.ID }
