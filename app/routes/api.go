// Package routes declares the storefront's HTTP surface.
package routes

import (
	"github.com/shashiranjanraj/bookstore/app/controllers"
	"github.com/shashiranjanraj/bookstore/pkg/ctx"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/router"
	"github.com/shashiranjanraj/bookstore/pkg/visitor"
)

// RegisterAPI mounts the JSON routes the storefront pages call. mw runs in
// front of every route and must include the visitor middleware.
func RegisterAPI(r *router.Router, mw ...router.Middleware) {
	auth := controllers.NewAuthController()
	catalog := controllers.NewCatalogController()
	addresses := controllers.NewAddressController()
	orders := controllers.NewOrderController()
	admin := controllers.NewAdminController()

	loggedIn := guard.Login(visitor.Subject)
	adminOnly := guard.Admin(visitor.Subject)

	api := r.Group("/api", mw...)
	api.Get("/me", "me", ctx.Wrap(auth.Me))
	api.Post("/auth/login", "auth.login", ctx.Wrap(auth.Login))
	api.Post("/auth/register", "auth.register", ctx.Wrap(auth.Register))
	api.Post("/auth/google", "auth.google", ctx.Wrap(auth.Google))
	api.Post("/auth/logout", "auth.logout", ctx.Wrap(auth.Logout))

	api.Get("/books", "books.index", ctx.Wrap(catalog.Books))

	api.Get("/cart", "cart.show", ctx.Wrap(catalog.Cart))
	api.Post("/cart/items", "cart.add", ctx.Wrap(catalog.AddItem))
	api.Delete("/cart/items/{id}", "cart.remove", ctx.Wrap(catalog.RemoveItem))
	api.Delete("/cart", "cart.clear", ctx.Wrap(catalog.ClearCart))

	member := api.Group("", loggedIn)
	member.Get("/addresses", "addresses.index", ctx.Wrap(addresses.List))
	member.Post("/addresses", "addresses.store", ctx.Wrap(addresses.Create))
	member.Get("/geocode", "addresses.geocode", ctx.Wrap(addresses.Geocode))
	member.Post("/checkout", "checkout", ctx.Wrap(orders.Checkout))
	member.Get("/orders", "orders.index", ctx.Wrap(orders.History))

	back := api.Group("/admin", adminOnly)
	back.Get("/orders", "admin.orders.index", ctx.Wrap(admin.Orders))
	back.Put("/orders/{id}/status", "admin.orders.status", ctx.Wrap(admin.SetStatus))
	back.Get("/logs", "admin.logs", ctx.Wrap(admin.Logs))
	back.Post("/books", "admin.books.store", ctx.Wrap(admin.CreateBook))
	back.Put("/books/{id}", "admin.books.update", ctx.Wrap(admin.UpdateBook))
	back.Delete("/books/{id}", "admin.books.destroy", ctx.Wrap(admin.DeleteBook))
}
