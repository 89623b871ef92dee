package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/pkg/testkit"
)

func TestAddToCart_RequiresLogin(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCatalogService(f.client, f.session, f.cart)

	_, err := svc.AddToCart(book(1, "Gita", "10.00", 2))
	assert.Equal(t, "Please login to add to cart", services.Message(err))
	assert.Zero(t, f.cart.Len())
}

func TestAddToCart_StockCapScenario(t *testing.T) {
	f := newFixture(t)
	f.session.Login(customer)
	svc := services.NewCatalogService(f.client, f.session, f.cart)
	b := book(1, "Gita", "10.00", 2)

	notice, err := svc.AddToCart(b)
	require.NoError(t, err)
	assert.Equal(t, `Added "Gita" to cart`, notice)

	_, _ = svc.AddToCart(b)
	notice, err = svc.AddToCart(b)
	require.NoError(t, err)
	assert.Equal(t, `Only 2 of "Gita" in stock`, notice)

	assert.Equal(t, 2, f.cart.Quantity(1))
	assert.True(t, decimal.RequireFromString("20.00").Equal(f.cart.Total()))
}

func TestAddToCart_OutOfStock(t *testing.T) {
	f := newFixture(t)
	f.session.Login(customer)

	notice, err := services.NewCatalogService(f.client, f.session, f.cart).AddToCart(book(5, "Rare", "99", 0))
	require.NoError(t, err)
	assert.Equal(t, `"Rare" is out of stock`, notice)
	assert.Zero(t, f.cart.Len())
}

func TestAddToCartByID(t *testing.T) {
	f := newFixture(t, testkit.Step{
		Method: http.MethodGet, Path: "/api/books",
		Body: `[{"id":1,"title":"Gita","author":"Vyasa","price":"10.00","stock":2}]`,
	})
	f.session.Login(customer)
	svc := services.NewCatalogService(f.client, f.session, f.cart)
	ctx := context.Background()

	_, err := svc.AddToCartByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cart.Quantity(1))

	_, err = svc.AddToCartByID(ctx, 99)
	assert.Equal(t, "Book not found", services.Message(err))
}

func TestBooks_FailureMessage(t *testing.T) {
	f := newFixture(t, testkit.Step{Method: http.MethodGet, Path: "/api/books", Status: http.StatusBadGateway})

	_, err := services.NewCatalogService(f.client, f.session, f.cart).Books(context.Background())
	assert.Equal(t, "Failed to load books", services.Message(err))
}
