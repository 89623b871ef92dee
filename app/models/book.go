package models

import "github.com/shopspring/decimal"

// Book is a catalog item. Price decodes from either a decimal string or a
// JSON number.
type Book struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// InStock reports whether at least one copy can be added to a cart.
func (b Book) InStock() bool { return b.Stock > 0 }

// CartLine is a Book extended with a quantity. It serialises flat, the same
// shape the cart has always been stored in.
type CartLine struct {
	Book
	Quantity int `json:"quantity"`
}

// Subtotal is price × quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
