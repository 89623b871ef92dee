package cart_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/cart"
	"github.com/shashiranjanraj/bookstore/pkg/event"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
	"github.com/shashiranjanraj/bookstore/pkg/testkit"
)

func book(id uint, price string, stock int) models.Book {
	return models.Book{
		ID:     id,
		Title:  "Book",
		Author: "Author",
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
	}
}

func TestAdd_NewBookAppendsLine(t *testing.T) {
	c := cart.New(storage.NewMemory(), nil)

	c.Add(book(1, "10.00", 5))
	c.Add(book(2, "4.50", 5))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, uint(1), lines[0].ID)
	assert.Equal(t, uint(2), lines[1].ID)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestAdd_CapsAtStock(t *testing.T) {
	c := cart.New(storage.NewMemory(), nil)
	b := book(1, "10.00", 2)

	c.Add(b)
	c.Add(b)
	c.Add(b)

	assert.Equal(t, 2, c.Quantity(1))
	assert.True(t, decimal.RequireFromString("20.00").Equal(c.Total()), "total = %s", c.Total())
}

func TestAdd_OutOfStockIsIgnored(t *testing.T) {
	store := storage.NewMemory()
	c := cart.New(store, nil)

	c.Add(book(1, "10.00", 0))

	assert.Zero(t, c.Len())
	_, err := store.Get(storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound, "no write for an ignored add")
}

func TestRemove(t *testing.T) {
	c := cart.New(storage.NewMemory(), nil)
	c.Add(book(1, "1.00", 3))
	c.Add(book(2, "2.00", 3))
	c.Add(book(3, "3.00", 3))

	c.Remove(2)
	c.Remove(42)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, uint(1), lines[0].ID)
	assert.Equal(t, uint(3), lines[1].ID)
}

func TestClear_PersistsEmptyList(t *testing.T) {
	store := storage.NewMemory()
	c := cart.New(store, nil)
	c.Add(book(1, "1.00", 3))

	c.Clear()

	raw, err := store.Get(storage.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
	assert.Zero(t, c.Len())
}

func TestDiscard_RemovesKey(t *testing.T) {
	store := storage.NewMemory()
	c := cart.New(store, nil)
	c.Add(book(1, "1.00", 3))

	c.Discard()

	_, err := store.Get(storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, c.Len())
}

func TestPersistAndRestore(t *testing.T) {
	store := storage.NewMemory()
	c := cart.New(store, nil)
	c.Add(book(1, "12.50", 3))
	c.Add(book(1, "12.50", 3))
	c.Add(book(7, "3.00", 1))

	restored := cart.New(store, nil)

	assert.Equal(t, c.Lines(), restored.Lines())
	assert.True(t, decimal.RequireFromString("28.00").Equal(restored.Total()))
}

func TestRestore_AcceptsNumericPrices(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(storage.KeyCart,
		[]byte(`[{"id":3,"title":"Gita","author":"Vyasa","price":199.5,"stock":4,"quantity":2}]`)))

	c := cart.New(store, nil)

	assert.Equal(t, 2, c.Quantity(3))
	assert.True(t, decimal.RequireFromString("399").Equal(c.Total()))
}

func TestRestore_CorruptValueStartsEmpty(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(storage.KeyCart, []byte(`{not json`)))

	c := cart.New(store, nil)

	assert.Zero(t, c.Len())
	_, err := store.Get(storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound, "unreadable value is dropped")
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	store := testkit.NewFlakyStore()
	c := cart.New(store, nil)
	store.FailWrites(true)

	c.Add(book(1, "5.00", 2))

	assert.Equal(t, 1, c.Quantity(1))
}

func TestReadFailureStartsEmpty(t *testing.T) {
	store := testkit.NewFlakyStore()
	store.FailReads(true)

	c := cart.New(store, nil)

	assert.Zero(t, c.Len())
}

func TestChangeEvents(t *testing.T) {
	bus := event.NewBus()
	c := cart.New(storage.NewMemory(), bus)

	var seen [][]models.CartLine
	bus.Listen(event.CartChanged, func(p interface{}) {
		seen = append(seen, p.([]models.CartLine))
	})

	c.Add(book(1, "1.00", 1))
	c.Add(book(1, "1.00", 1)) // capped: no event
	c.Remove(1)

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Empty(t, seen[1])
}

func TestLinesReturnsCopy(t *testing.T) {
	c := cart.New(storage.NewMemory(), nil)
	c.Add(book(1, "1.00", 5))

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.Quantity(1))
}

func TestListenersMayReadTheCart(t *testing.T) {
	bus := event.NewBus()
	c := cart.New(storage.NewMemory(), bus)

	var totals []string
	bus.Listen(event.CartChanged, func(interface{}) {
		totals = append(totals, c.Total().StringFixed(2))
		_ = c.Lines()
		_ = c.Quantity(1)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Add(book(1, "10.00", 2))
		c.Add(book(1, "10.00", 2))
		c.Remove(1)
		c.Add(book(2, "3.00", 1))
		c.Clear()
		c.Discard()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cart.changed listener reading the cart never returned")
	}
	assert.Equal(t, []string{"10.00", "20.00", "0.00", "3.00", "0.00", "0.00"}, totals)
}
