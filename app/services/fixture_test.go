package services_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/cart"
	"github.com/shashiranjanraj/bookstore/pkg/session"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
	"github.com/shashiranjanraj/bookstore/pkg/testkit"
)

const backend = "http://backend.test/api"

type fixture struct {
	mt      *testkit.MockTransport
	store   storage.Store
	client  *api.Client
	cart    *cart.Cart
	session *session.Session
}

func newFixture(t *testing.T, steps ...testkit.Step) *fixture {
	t.Helper()
	mt := testkit.NewMockTransport(steps...)
	store := storage.NewMemory()
	client := api.New(backend, api.WithTransport(mt))
	c := cart.New(store, nil)
	return &fixture{
		mt:      mt,
		store:   store,
		client:  client,
		cart:    c,
		session: session.New(store, nil, client, c),
	}
}

var (
	customer = models.User{ID: 2, Email: "reader@example.com", Name: "Reader", Role: models.RoleCustomer}
	admin    = models.User{ID: 1, Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin}
)

func book(id uint, title, price string, stock int) models.Book {
	return models.Book{ID: id, Title: title, Author: "Author", Price: decimal.RequireFromString(price), Stock: stock}
}
