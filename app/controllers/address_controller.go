package controllers

import (
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/ctx"
)

type AddressController struct{}

func NewAddressController() *AddressController { return &AddressController{} }

func (ac *AddressController) List(c *ctx.Context) {
	list, err := c.App().Addresses.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(list)
}

func (ac *AddressController) Create(c *ctx.Context) {
	var form api.AddressForm
	if !c.BindJSON(&form) {
		return
	}
	addr, err := c.App().Addresses.Create(c.Context(), form)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("Address saved", addr)
}

// Geocode pre-fills an address form from coordinates.
func (ac *AddressController) Geocode(c *ctx.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.Error(http.StatusBadRequest, "lat and lon are required")
		return
	}
	form, err := c.App().Addresses.Locate(c.Context(), lat, lon)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(form)
}
