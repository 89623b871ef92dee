package api

import (
	"strconv"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/attachment"
)

// Provider is how an order is paid.
type Provider string

const (
	ProviderManual Provider = "MANUAL"
	ProviderTest   Provider = "TEST"
)

// Valid reports whether p is a provider the backend accepts.
func (p Provider) Valid() bool { return p == ProviderManual || p == ProviderTest }

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// BookForm is the admin create/update payload. Numeric fields travel as the
// strings the operator typed; the server parses them.
type BookForm struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
	Stock       string `json:"stock" validate:"required"`
	Category    string `json:"category"`

	Image *attachment.File `json:"-"`
}

// BookFormFrom pre-fills a form from an existing book, as the edit view does.
func BookFormFrom(b models.Book) BookForm {
	return BookForm{
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price.String(),
		Stock:       strconv.Itoa(b.Stock),
		Category:    b.Category,
	}
}

func (f BookForm) fields() map[string]string {
	return map[string]string{
		"title":       f.Title,
		"author":      f.Author,
		"description": f.Description,
		"price":       f.Price,
		"stock":       f.Stock,
		"category":    f.Category,
	}
}

// AddressForm is a new delivery address.
type AddressForm struct {
	Village  string `json:"village" validate:"required"`
	Mandal   string `json:"mandal" validate:"required"`
	District string `json:"district" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required"`
}

// DefaultState pre-fills AddressForm.State.
const DefaultState = "Andhra Pradesh"

// OrderLine is one requested (book, quantity) pair.
type OrderLine struct {
	BookID   uint `json:"bookId"`
	Quantity int  `json:"quantity"`
}

type OrderRequest struct {
	Items     []OrderLine `json:"items"`
	AddressID uint        `json:"addressId"`
}

// OrderRequestFrom builds the order payload from cart lines.
func OrderRequestFrom(lines []models.CartLine, addressID uint) OrderRequest {
	items := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderLine{BookID: l.ID, Quantity: l.Quantity})
	}
	return OrderRequest{Items: items, AddressID: addressID}
}

// PaymentForm is the payment record for an order. Proof is optional.
type PaymentForm struct {
	OrderID  uint
	Provider Provider
	Note     string
	Proof    *attachment.File
}
