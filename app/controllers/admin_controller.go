package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/ctx"
)

type AdminController struct{}

func NewAdminController() *AdminController { return &AdminController{} }

func (ac *AdminController) Orders(c *ctx.Context) {
	orders, err := c.App().Admin.Orders(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (ac *AdminController) Logs(c *ctx.Context) {
	logs, err := c.App().Admin.Logs(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(logs)
}

func (ac *AdminController) SetStatus(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	var in struct {
		Status models.OrderStatus `json:"status" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}
	notice, err := c.App().Admin.SetStatus(c.Context(), id, in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Notice(notice, nil)
}

func (ac *AdminController) CreateBook(c *ctx.Context) {
	ac.saveBook(c, 0)
}

func (ac *AdminController) UpdateBook(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	ac.saveBook(c, id)
}

// saveBook reads the book form from multipart fields plus an optional
// "image" file.
func (ac *AdminController) saveBook(c *ctx.Context, id uint) {
	if !c.ParseMultipart() {
		return
	}
	image, err := c.FormFile("image")
	if err != nil {
		c.Error(http.StatusUnprocessableEntity, err.Error())
		return
	}
	form := api.BookForm{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Stock:       c.FormValue("stock"),
		Category:    c.FormValue("category"),
		Image:       image,
	}
	notice, err := c.App().Admin.SaveBook(c.Context(), id, form)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Notice(notice, nil)
}

func (ac *AdminController) DeleteBook(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	notice, err := c.App().Admin.DeleteBook(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Notice(notice, nil)
}
