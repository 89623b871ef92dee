package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/testkit"
)

func TestAdmin_RequiresAdminRole(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAdminService(f.client, f.session)
	ctx := context.Background()

	_, err := svc.Orders(ctx)
	assert.ErrorIs(t, err, guard.ErrLoginRequired)

	f.session.Login(customer)
	_, err = svc.Logs(ctx)
	assert.ErrorIs(t, err, guard.ErrForbidden)
	assert.Equal(t, "Admin access required", services.Message(err))
	assert.Empty(t, f.mt.Calls())
}

func TestAdmin_SetStatus(t *testing.T) {
	f := newFixture(t,
		testkit.Step{Method: http.MethodPut, Path: "/api/admin/orders/3/status", Body: `{}`, Once: true},
		testkit.Step{Method: http.MethodPut, Path: "/api/admin/orders/3/status", Status: http.StatusInternalServerError},
	)
	f.session.Login(admin)
	svc := services.NewAdminService(f.client, f.session)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, 3, models.OrderStatus("LOST"))
	assert.Error(t, err)
	assert.Empty(t, f.mt.Calls())

	notice, err := svc.SetStatus(ctx, 3, models.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, "Status updated successfully", notice)

	_, err = svc.SetStatus(ctx, 3, models.StatusDelivered)
	assert.Equal(t, "Failed to save status", services.Message(err))
}

func TestAdmin_SaveBook(t *testing.T) {
	f := newFixture(t,
		testkit.Step{Method: http.MethodPost, Path: "/api/books", Status: http.StatusCreated, Body: `{}`},
		testkit.Step{Method: http.MethodPut, Path: "/api/books/8", Status: http.StatusUnprocessableEntity,
			Body: `{"errors":[{"message":"Price must be positive"}]}`},
	)
	f.session.Login(admin)
	svc := services.NewAdminService(f.client, f.session)
	ctx := context.Background()
	form := api.BookForm{Title: "T", Author: "A", Price: "10", Stock: "1"}

	notice, err := svc.SaveBook(ctx, 0, form)
	require.NoError(t, err)
	assert.Equal(t, "Book added successfully", notice)

	form.Price = "-1"
	_, err = svc.SaveBook(ctx, 8, form)
	assert.Equal(t, "Price must be positive", services.Message(err))

	_, err = svc.SaveBook(ctx, 0, api.BookForm{})
	assert.Contains(t, services.Message(err), "The title field is required.")
}

func TestAdmin_LogsAndOrders(t *testing.T) {
	f := newFixture(t,
		testkit.Step{Method: http.MethodGet, Path: "/api/admin/logs",
			Body: `[{"id":1,"action":"LOGIN","details":{"ip":"1.2.3.4"},"createdAt":"2024-05-01T10:00:00Z","user":{"email":"a@b.c"}}]`},
		testkit.Step{Method: http.MethodGet, Path: "/api/admin/orders",
			Body: `[{"id":5,"totalAmount":12.5,"status":"PAID","createdAt":"2024-05-01T10:00:00Z"}]`},
	)
	f.session.Login(admin)
	svc := services.NewAdminService(f.client, f.session)
	ctx := context.Background()

	logs, err := svc.Logs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "LOGIN", logs[0].Action)

	orders, err := svc.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusPaid, orders[0].Status)
}

func TestOrderHistory(t *testing.T) {
	f := newFixture(t, testkit.Step{Method: http.MethodGet, Path: "/api/orders", Status: http.StatusBadGateway})
	svc := services.NewOrderService(f.client, f.session)

	_, err := svc.History(context.Background())
	assert.ErrorIs(t, err, guard.ErrLoginRequired)

	f.session.Login(customer)
	_, err = svc.History(context.Background())
	assert.Equal(t, "Failed to load orders", services.Message(err))
}
