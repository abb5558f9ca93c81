package domain

const (
	// Collection is the document collection holding stock items.
	Collection = "estoque"
	// SupplierCollection is the document collection holding suppliers.
	SupplierCollection = "fornecedores"

	// QuantityField is the stored field adjusted by the ledger.
	QuantityField = "quantidade"

	// DefaultLowStockThreshold is the quantity at or below which an item counts as low.
	DefaultLowStockThreshold = 5.0
)

// StockItem is an ingredient or supply kept by a restaurant. Quantity never drops below zero.
type StockItem struct {
	ID           string  `bson:"_id,omitempty" json:"id"`
	Name         string  `bson:"nome" json:"name"`
	Quantity     float64 `bson:"quantidade" json:"quantity"`
	Unit         string  `bson:"unidade,omitempty" json:"unit,omitempty"`
	SupplierID   string  `bson:"fornecedor_id,omitempty" json:"supplierId,omitempty"`
	RestaurantID string  `bson:"restauranteId" json:"restaurantId"`
}

func (s StockItem) DocumentID() string { return s.ID }

// Supplier provides stock items to a restaurant.
type Supplier struct {
	ID           string   `bson:"_id,omitempty" json:"id"`
	Name         string   `bson:"nome" json:"name"`
	TaxID        string   `bson:"cnpj,omitempty" json:"taxId,omitempty"`
	Phone        string   `bson:"telefone,omitempty" json:"phone,omitempty"`
	Email        string   `bson:"email,omitempty" json:"email,omitempty"`
	Products     []string `bson:"produtos,omitempty" json:"products,omitempty"`
	RestaurantID string   `bson:"restauranteId" json:"restaurantId"`
}

func (s Supplier) DocumentID() string { return s.ID }
