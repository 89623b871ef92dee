package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order. Only the admin console
// changes it, and only through an explicit status request.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderItem is one (book, quantity) line of an order.
type OrderItem struct {
	ID       uint       `json:"id,omitempty"`
	BookID   uint       `json:"bookId"`
	Quantity int        `json:"quantity"`
	Book     *OrderBook `json:"book,omitempty"`
}

// OrderBook is the book snapshot embedded in an order line.
type OrderBook struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price,omitempty"`
}

// Payment is the payment record attached to an order.
type Payment struct {
	Provider      string `json:"provider"`
	ProofImageURL string `json:"proofImageUrl,omitempty"`
}

// Order is the server-owned order aggregate.
type Order struct {
	ID          uint            `json:"id"`
	UserID      uint            `json:"userId,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	Items       []OrderItem     `json:"items,omitempty"`
	Payment     *Payment        `json:"payment,omitempty"`
	Address     *Address        `json:"address,omitempty"`
	User        *User           `json:"user,omitempty"`
}
