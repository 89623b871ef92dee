package services_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/attachment"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/testkit"
)

var (
	addressesNoDefault = testkit.Step{Method: http.MethodGet, Path: "/api/addresses",
		Body: `[{"id":4,"village":"A","mandal":"B","district":"C","state":"D","pincode":"1"}]`}
	addressesWithDefault = testkit.Step{Method: http.MethodGet, Path: "/api/addresses",
		Body: `[{"id":4,"village":"A","mandal":"B","district":"C","state":"D","pincode":"1"},
		        {"id":6,"village":"E","mandal":"F","district":"G","state":"H","pincode":"2","isDefault":true}]`}
	orderCreated = testkit.Step{Method: http.MethodPost, Path: "/api/orders", Status: http.StatusCreated,
		Body: `{"id":77,"totalAmount":"20.00","status":"PENDING"}`}
)

func readyCheckout(t *testing.T, steps ...testkit.Step) (*fixture, *services.Checkout) {
	t.Helper()
	f := newFixture(t, steps...)
	f.session.Login(customer)
	f.cart.Add(book(1, "Gita", "10.00", 2))
	f.cart.Add(book(1, "Gita", "10.00", 2))
	return f, services.NewCheckout(f.client, f.session, f.cart)
}

func TestCheckout_StartsAtAddressSelection(t *testing.T) {
	_, co := readyCheckout(t)
	assert.Equal(t, services.StepAddress, co.Step())
	assert.Equal(t, "ADDRESS_SELECTION", co.Step().String())
}

func TestCheckout_NoAddressBlocksNext(t *testing.T) {
	_, co := readyCheckout(t, addressesNoDefault)
	require.NoError(t, co.Load(context.Background()))

	assert.ErrorIs(t, co.Next(), services.ErrNoAddress)
	assert.Equal(t, services.StepAddress, co.Step())

	require.NoError(t, co.Select(4))
	require.NoError(t, co.Next())
	assert.Equal(t, services.StepPayment, co.Step())

	co.Back()
	assert.Equal(t, services.StepAddress, co.Step())
	sel, ok := co.Selected()
	assert.True(t, ok)
	assert.Equal(t, uint(4), sel.ID, "going back keeps the selection")
}

func TestCheckout_PreselectsDefaultAddress(t *testing.T) {
	_, co := readyCheckout(t, addressesWithDefault)
	require.NoError(t, co.Load(context.Background()))

	sel, ok := co.Selected()
	require.True(t, ok)
	assert.Equal(t, uint(6), sel.ID)
	assert.NoError(t, co.Next())
}

func TestCheckout_SelectUnknownAddress(t *testing.T) {
	_, co := readyCheckout(t, addressesNoDefault)
	require.NoError(t, co.Load(context.Background()))
	assert.ErrorIs(t, co.Select(999), services.ErrUnknownAddress)
}

func TestCheckout_AddAddressSelectsIt(t *testing.T) {
	_, co := readyCheckout(t,
		testkit.Step{Method: http.MethodGet, Path: "/api/addresses", Body: `[]`},
		testkit.Step{Method: http.MethodPost, Path: "/api/addresses", Status: http.StatusCreated,
			Body: `{"id":9,"village":"v","mandal":"m","district":"d","state":"s","pincode":"5"}`},
	)
	ctx := context.Background()
	require.NoError(t, co.Load(ctx))
	assert.ErrorIs(t, co.Next(), services.ErrNoAddress)

	_, err := co.AddAddress(ctx, api.AddressForm{Village: "v", Mandal: "m", District: "d", State: "s", Pincode: "5"})
	require.NoError(t, err)
	assert.NoError(t, co.Next())
}

func TestCheckout_LoadGuards(t *testing.T) {
	f := newFixture(t)
	co := services.NewCheckout(f.client, f.session, f.cart)
	assert.ErrorIs(t, co.Load(context.Background()), guard.ErrLoginRequired)

	f.session.Login(customer)
	assert.ErrorIs(t, co.Load(context.Background()), services.ErrEmptyCart)
}

func TestCheckout_Success(t *testing.T) {
	f, co := readyCheckout(t,
		addressesWithDefault,
		testkit.Step{Method: http.MethodPost, Path: "/api/orders/pay", Body: `{"ok":true}`},
		orderCreated,
	)
	ctx := context.Background()
	require.NoError(t, co.Load(ctx))
	require.NoError(t, co.Next())
	proof := attachment.File{Name: "upi.png", ContentType: "image/png", Data: []byte("png")}
	require.NoError(t, co.SetPayment(api.ProviderTest, "paid via UPI", &proof))

	receipt, err := co.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(77), receipt.Order.ID)
	assert.Equal(t, "Order placed! Waiting for admin to verify payment.", receipt.Message)
	assert.Zero(t, f.cart.Len())

	orders := f.mt.CallsTo(http.MethodPost, "/api/orders")
	require.Len(t, orders, 2) // /orders and /orders/pay share the prefix
	testkit.AssertJSONBody(t, `{"items":[{"bookId":1,"quantity":2}],"addressId":6}`, orders[0].Body)
	assert.Contains(t, string(orders[1].Body), "paid via UPI")
	assert.Contains(t, string(orders[1].Body), "TEST")
}

func TestCheckout_PaymentFailureKeepsCart(t *testing.T) {
	f, co := readyCheckout(t,
		addressesWithDefault,
		testkit.Step{Method: http.MethodPost, Path: "/api/orders/pay", Status: http.StatusInternalServerError, Body: `{}`},
		orderCreated,
	)
	ctx := context.Background()
	require.NoError(t, co.Load(ctx))
	require.NoError(t, co.Next())

	_, err := co.PlaceOrder(ctx)
	require.Error(t, err)

	assert.Equal(t, "Checkout failed", services.Message(err))
	assert.Equal(t, 2, f.cart.Quantity(1), "cart is not cleared")
	assert.Equal(t, services.StepPayment, co.Step())

	orderID, partial := services.IsPartial(err)
	assert.True(t, partial)
	assert.Equal(t, uint(77), orderID)
}

func TestCheckout_OrderFailureUsesServerMessage(t *testing.T) {
	f, co := readyCheckout(t,
		addressesWithDefault,
		testkit.Step{Method: http.MethodPost, Path: "/api/orders", Status: http.StatusConflict,
			Body: `{"message":"Insufficient stock for Gita"}`},
	)
	ctx := context.Background()
	require.NoError(t, co.Load(ctx))
	require.NoError(t, co.Next())

	_, err := co.PlaceOrder(ctx)
	assert.Equal(t, "Insufficient stock for Gita", services.Message(err))
	_, partial := services.IsPartial(err)
	assert.False(t, partial)
	assert.Equal(t, 2, f.cart.Quantity(1))
	assert.Empty(t, f.mt.CallsTo(http.MethodPost, "/api/orders/pay"))
}

func TestCheckout_PlaceOrderNeedsReview(t *testing.T) {
	_, co := readyCheckout(t, addressesWithDefault)
	require.NoError(t, co.Load(context.Background()))

	_, err := co.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, services.ErrNotReviewed)
}

func TestCheckout_EmptyCartAtPlaceOrder(t *testing.T) {
	f, co := readyCheckout(t, addressesWithDefault)
	ctx := context.Background()
	require.NoError(t, co.Load(ctx))
	require.NoError(t, co.Next())
	f.cart.Clear()

	_, err := co.PlaceOrder(ctx)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckout_RejectsUnknownProvider(t *testing.T) {
	_, co := readyCheckout(t)
	err := co.SetPayment(api.Provider("CARD"), "", nil)
	assert.Equal(t, "The selected provider is invalid.", services.Message(err))
}

func TestCheckout_RejectsOverlongNote(t *testing.T) {
	_, co := readyCheckout(t)
	err := co.SetPayment(api.ProviderManual, strings.Repeat("x", 501), nil)
	assert.Equal(t, "The note must not exceed 500 characters.", services.Message(err))

	assert.NoError(t, co.SetPayment(api.ProviderManual, strings.Repeat("x", 500), nil))
}
