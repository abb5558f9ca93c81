package domain

// Collection is the document collection holding customers.
const Collection = "clientes"

// Customer is a guest known to the platform.
type Customer struct {
	ID            string   `bson:"_id,omitempty" json:"id"`
	Name          string   `bson:"nome" json:"name"`
	Phone         string   `bson:"telefone" json:"phone"`
	Email         string   `bson:"email" json:"email"`
	Preferences   []string `bson:"preferencias" json:"preferences"`
	OrderHistory  []string `bson:"historico_pedidos" json:"orderHistory"`
	RatingAverage float64  `bson:"avaliacao_media" json:"ratingAverage"`
}

func (c Customer) DocumentID() string { return c.ID }
