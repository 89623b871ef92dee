package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/ctx"
	"github.com/shashiranjanraj/bookstore/pkg/visitor"
)

type OrderController struct{}

func NewOrderController() *OrderController { return &OrderController{} }

// Checkout runs the whole checkout in one multipart request: addressId,
// provider (default MANUAL), note and an optional proof file. On success the
// confirmation is kept as a flash for the order history page.
func (oc *OrderController) Checkout(c *ctx.Context) {
	if !c.ParseMultipart() {
		return
	}
	addressID, err := strconv.ParseUint(c.FormValue("addressId"), 10, 64)
	if err != nil || addressID == 0 {
		c.Error(http.StatusUnprocessableEntity, "Please select a delivery address")
		return
	}
	provider := api.Provider(c.FormValue("provider"))
	if provider == "" {
		provider = api.ProviderManual
	}
	proof, err := c.FormFile("proof")
	if err != nil {
		c.Error(http.StatusUnprocessableEntity, err.Error())
		return
	}

	a := c.App()
	co := a.Checkout()
	rctx := c.Context()

	if err := co.Load(rctx); err != nil {
		c.Fail(err)
		return
	}
	if err := co.Select(uint(addressID)); err != nil {
		c.Fail(err)
		return
	}
	if err := co.Next(); err != nil {
		c.Fail(err)
		return
	}
	if err := co.SetPayment(provider, c.FormValue("note"), proof); err != nil {
		c.Fail(err)
		return
	}

	receipt, err := co.PlaceOrder(rctx)
	if err != nil {
		c.Fail(err)
		return
	}
	visitor.SetFlash(a, receipt.Message)
	c.Created(receipt.Message, receipt.Order)
}

// History lists the visitor's orders with any pending confirmation.
func (oc *OrderController) History(c *ctx.Context) {
	a := c.App()
	orders, err := a.Orders.History(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Notice(visitor.TakeFlash(a), orders)
}
