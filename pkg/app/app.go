// Package app assembles one bookstore client: its state containers, the
// backend client and the page services, all over a single storage.Store.
//
// The CLI builds one App for the configured store:
//
//	store, _ := storage.Open(config.StateDriver())
//	a, err := app.New(store, app.Options{})
//	notice, err := a.Catalog.AddToCartByID(ctx, 7)
//
// The storefront builds one per request over the visitor's namespace:
//
//	a, err := app.New(storage.Prefixed(store, "visitor:"+id+":"), opts)
package app

import (
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/config"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/cart"
	"github.com/shashiranjanraj/bookstore/pkg/event"
	"github.com/shashiranjanraj/bookstore/pkg/session"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
)

// Options overrides configuration. Zero fields fall back to config.
type Options struct {
	APIBaseURL     string
	AppKey         string
	GoogleClientID string
	GeocoderURL    string

	// Transport replaces the network transport of the backend client.
	Transport http.RoundTripper

	// Bus receives cart.changed and session.changed. A private bus is
	// created when nil.
	Bus *event.Bus
}

func (o Options) withDefaults() Options {
	if o.APIBaseURL == "" {
		o.APIBaseURL = config.APIBaseURL()
	}
	if o.AppKey == "" {
		o.AppKey = config.AppKey()
	}
	if o.GoogleClientID == "" {
		o.GoogleClientID = config.GoogleClientID()
	}
	if o.GeocoderURL == "" {
		o.GeocoderURL = config.GeocoderURL()
	}
	if o.Bus == nil {
		o.Bus = event.NewBus()
	}
	return o
}

// App is one client's state and services.
type App struct {
	Store   storage.Store
	Bus     *event.Bus
	API     *api.Client
	Cart    *cart.Cart
	Session *session.Session

	Auth      *services.AuthService
	Catalog   *services.CatalogService
	Addresses *services.AddressService
	Orders    *services.OrderService
	Admin     *services.AdminService
}

// New restores the cart, the session and the backend cookies from store
// and wires the services over them.
func New(store storage.Store, opts Options) (*App, error) {
	opts = opts.withDefaults()

	jar, err := api.NewJar(store, opts.APIBaseURL, opts.AppKey)
	if err != nil {
		return nil, fmt.Errorf("app: cookie jar: %w", err)
	}

	clientOpts := []api.Option{api.WithJar(jar)}
	if opts.Transport != nil {
		clientOpts = append(clientOpts, api.WithTransport(opts.Transport))
	}
	client := api.New(opts.APIBaseURL, clientOpts...)

	ct := cart.New(store, opts.Bus)
	sess := session.New(store, opts.Bus, client, ct)

	return &App{
		Store:   store,
		Bus:     opts.Bus,
		API:     client,
		Cart:    ct,
		Session: sess,

		Auth:      services.NewAuthService(client, sess, opts.GoogleClientID),
		Catalog:   services.NewCatalogService(client, sess, ct),
		Addresses: services.NewAddressService(client, opts.GeocoderURL),
		Orders:    services.NewOrderService(client, sess),
		Admin:     services.NewAdminService(client, sess),
	}, nil
}

// Checkout starts a new checkout at address selection.
func (a *App) Checkout() *services.Checkout {
	return services.NewCheckout(a.API, a.Session, a.Cart)
}
