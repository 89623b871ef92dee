package controllers

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/cart"
	"github.com/shashiranjanraj/bookstore/pkg/ctx"
)

type CatalogController struct{}

func NewCatalogController() *CatalogController { return &CatalogController{} }

type cartPayload struct {
	Lines []models.CartLine `json:"lines"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

func cartView(lines []models.CartLine) cartPayload {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return cartPayload{Lines: lines, Count: len(lines), Total: cart.Total(lines)}
}

func (cc *CatalogController) Books(c *ctx.Context) {
	books, err := c.App().Catalog.Books(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(books)
}

func (cc *CatalogController) Cart(c *ctx.Context) {
	c.Success(cartView(c.App().Cart.Lines()))
}

func (cc *CatalogController) AddItem(c *ctx.Context) {
	var in struct {
		BookID uint `json:"bookId" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}
	a := c.App()
	notice, err := a.Catalog.AddToCartByID(c.Context(), in.BookID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Notice(notice, cartView(a.Cart.Lines()))
}

func (cc *CatalogController) RemoveItem(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	a := c.App()
	a.Cart.Remove(id)
	c.Success(cartView(a.Cart.Lines()))
}

func (cc *CatalogController) ClearCart(c *ctx.Context) {
	a := c.App()
	a.Cart.Clear()
	c.Success(cartView(a.Cart.Lines()))
}
