package normalization

import "strings"

// entityAliases maps english and portuguese entity names, singular or plural, to the canonical
// event entity.
var entityAliases = map[string]string{
	"":        "",
	"-":       "",
	"default": "",

	"order":   "orders",
	"orders":  "orders",
	"pedido":  "orders",
	"pedidos": "orders",

	"table":  "tables",
	"tables": "tables",
	"mesa":   "tables",
	"mesas":  "tables",

	"reservation":  "reservations",
	"reservations": "reservations",
	"reserva":      "reservations",
	"reservas":     "reservations",

	"inventory": "inventory",
	"stock":     "inventory",
	"estoque":   "inventory",

	"report":     "reports",
	"reports":    "reports",
	"relatorio":  "reports",
	"relatorios": "reports",

	"menu":      "menu",
	"menus":     "menu",
	"cardapio":  "menu",
	"cardapios": "menu",

	"restaurant":   "restaurants",
	"restaurants":  "restaurants",
	"restaurante":  "restaurants",
	"restaurantes": "restaurants",

	"staff":        "staff",
	"employee":     "staff",
	"employees":    "staff",
	"funcionario":  "staff",
	"funcionarios": "staff",

	"customer":  "customers",
	"customers": "customers",
	"cliente":   "customers",
	"clientes":  "customers",

	"notification":  "notifications",
	"notifications": "notifications",
}

var validEntities = []string{
	"orders",
	"tables",
	"reservations",
	"inventory",
	"reports",
	"menu",
	"restaurants",
	"staff",
	"customers",
	"notifications",
}

// NormalizeEntity converts an entity name to its canonical form. Unknown names are returned
// lowercased with underscores turned into hyphens.
//
//	NormalizeEntity("Pedido") => "orders"
//	NormalizeEntity("MESAS")  => "tables"
func NormalizeEntity(raw string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	if canonical, found := entityAliases[normalized]; found {
		return canonical
	}
	return normalized
}

// IsValidEntity checks if the given entity name is a known entity type.
func IsValidEntity(raw string) bool {
	normalized := NormalizeEntity(raw)
	for _, entity := range validEntities {
		if entity == normalized {
			return true
		}
	}
	return false
}

// GetAllValidEntities returns a list of all valid canonical entity names.
func GetAllValidEntities() []string {
	return append([]string(nil), validEntities...)
}
