package domain

const (
	// Collection is the document collection holding menu items.
	Collection = "cardapio"
	// CategoryCollection is the document collection holding menu categories.
	CategoryCollection = "categorias"
)

// Item is a dish or drink offered by a restaurant. Price is never negative.
type Item struct {
	ID              string   `bson:"_id,omitempty" json:"id"`
	Name            string   `bson:"nome" json:"name"`
	Category        string   `bson:"categoria" json:"category"`
	Price           float64  `bson:"preco" json:"price"`
	Description     string   `bson:"descricao,omitempty" json:"description,omitempty"`
	PrepTimeMinutes int      `bson:"tempo_preparo_estimado" json:"prepTimeMinutes"`
	Available       bool     `bson:"disponivel" json:"available"`
	ImageURL        string   `bson:"imagem_url,omitempty" json:"imageUrl,omitempty"`
	Ingredients     []string `bson:"ingredientes,omitempty" json:"ingredients,omitempty"`
	RestaurantID    string   `bson:"restauranteId" json:"restaurantId"`
}

func (i Item) DocumentID() string { return i.ID }

// Category groups menu items; Position orders categories on the menu.
type Category struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	Name         string `bson:"nome" json:"name"`
	Position     int    `bson:"ordem" json:"position"`
	RestaurantID string `bson:"restauranteId" json:"restaurantId"`
}

func (c Category) DocumentID() string { return c.ID }
