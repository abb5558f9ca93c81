package domain

// Collection is the document collection holding restaurants.
const Collection = "restaurantes"

// Restaurant is the tenant every other document belongs to. Capacity is never negative.
type Restaurant struct {
	ID           string      `bson:"_id,omitempty" json:"id"`
	Name         string      `bson:"nome" json:"name"`
	TaxID        string      `bson:"cnpj" json:"taxId"`
	Address      string      `bson:"endereco" json:"address"`
	Phone        string      `bson:"telefone,omitempty" json:"phone,omitempty"`
	Capacity     int         `bson:"capacidade_total" json:"capacity"`
	OpeningHours string      `bson:"horario_funcionamento,omitempty" json:"openingHours,omitempty"`
	DaysOpen     []DayOfWeek `bson:"dias_funcionamento,omitempty" json:"daysOpen,omitempty"`
}

func (r Restaurant) DocumentID() string { return r.ID }
