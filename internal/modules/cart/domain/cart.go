package domain

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	menu "mesaOps/internal/modules/menu/domain"
)

// Line is one menu item in the cart. ID is stable for the life of the line.
type Line struct {
	ID       string    `json:"id"`
	Item     menu.Item `json:"item"`
	Quantity int       `json:"quantity"`
	Notes    string    `json:"notes,omitempty"`
}

// Cart is a customer's order draft bound to a table. Safe for concurrent use.
type Cart struct {
	mu          sync.Mutex
	lines       []Line
	tableID     string
	tableNumber int
}

func New() *Cart { return &Cart{} }

// Add appends item, or raises the quantity of the line already holding it.
func (c *Cart) Add(item menu.Item, quantity int, notes string) string {
	if quantity <= 0 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Item.ID == item.ID {
			c.lines[i].Quantity += quantity
			return c.lines[i].ID
		}
	}
	id := item.ID + "-" + uuid.NewString()
	c.lines = append(c.lines, Line{ID: id, Item: item, Quantity: quantity, Notes: notes})
	return id
}

func (c *Cart) Remove(lineID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(lineID)
}

// UpdateQuantity sets the line quantity; zero or less removes the line.
func (c *Cart) UpdateQuantity(lineID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.remove(lineID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines[i].Quantity = quantity
		}
	}
}

func (c *Cart) UpdateNotes(lineID, notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			c.lines[i].Notes = notes
		}
	}
}

func (c *Cart) SetTable(tableID string, number int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID, c.tableNumber = tableID, number
}

// Table returns the bound table id and number.
func (c *Cart) Table() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableID, c.tableNumber
}

// HasTable reports whether both the table id and number are set.
func (c *Cart) HasTable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableID != "" && c.tableNumber != 0
}

// Clear drops every line and the table binding.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines, c.tableID, c.tableNumber = nil, "", 0
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(decimal.NewFromFloat(line.Item.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// ItemCount sums the quantities of every line.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) remove(lineID string) {
	kept := c.lines[:0]
	for _, line := range c.lines {
		if line.ID != lineID {
			kept = append(kept, line)
		}
	}
	c.lines = kept
}
