// Package cart is the client-held shopping cart.
//
// A Cart owns an ordered list of lines, one per book id, and mirrors it to
// the "cart" storage key after every mutation. The in-memory list is the
// source of truth; storage failures are logged and never surface to callers.
//
// Stock limits are enforced silently: Add on an out-of-stock book, or past
// the stock ceiling, leaves the cart unchanged without an error. Callers that
// need feedback compare Quantity before and after.
package cart

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/event"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/metrics"
	"github.com/shashiranjanraj/bookstore/pkg/storage"
)

// Cart is safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines []models.CartLine
	store storage.Store
	bus   *event.Bus
}

// New restores the cart from store once. A missing or unreadable value
// yields an empty cart.
func New(store storage.Store, bus *event.Bus) *Cart {
	c := &Cart{store: store, bus: bus}
	c.lines = restore(store)
	return c
}

func restore(store storage.Store) []models.CartLine {
	raw, err := store.Get(storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		logger.Warn("cart: restore failed", "error", err)
		return nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		logger.Warn("cart: discarding unreadable cart", "error", err)
		_ = store.Remove(storage.KeyCart)
		return nil
	}
	return lines
}

// Add puts one copy of book in the cart. Out-of-stock books and increments
// past book.Stock are ignored.
func (c *Cart) Add(book models.Book) {
	if book.Stock <= 0 {
		return
	}

	c.mu.Lock()
	added := false
	for i := range c.lines {
		if c.lines[i].ID != book.ID {
			continue
		}
		if c.lines[i].Quantity < book.Stock {
			c.lines[i].Quantity++
			added = true
		}
		break
	}
	if !added && c.quantity(book.ID) == 0 {
		c.lines = append(c.lines, models.CartLine{Book: book, Quantity: 1})
		added = true
	}
	if !added {
		c.mu.Unlock()
		return
	}
	snap := c.persist("add")
	c.mu.Unlock()

	c.notify(snap)
}

// Remove drops the line for bookID, if any.
func (c *Cart) Remove(bookID uint) {
	c.mu.Lock()
	for i := range c.lines {
		if c.lines[i].ID == bookID {
			c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
			snap := c.persist("remove")
			c.mu.Unlock()
			c.notify(snap)
			return
		}
	}
	c.mu.Unlock()
}

// Clear empties the cart and persists the empty list.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	snap := c.persist("clear")
	c.mu.Unlock()

	c.notify(snap)
}

// Discard empties the cart and deletes the storage key instead of writing
// an empty list. Logout uses it.
func (c *Cart) Discard() {
	c.mu.Lock()
	c.lines = nil
	if err := c.store.Remove(storage.KeyCart); err != nil {
		logger.Warn("cart: remove failed", "error", err)
	}
	metrics.CartMutations.WithLabelValues("discard").Inc()
	snap := c.snapshot()
	c.mu.Unlock()

	c.notify(snap)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Quantity returns the quantity held for bookID, 0 when absent.
func (c *Cart) Quantity(bookID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantity(bookID)
}

func (c *Cart) quantity(bookID uint) int {
	for _, l := range c.lines {
		if l.ID == bookID {
			return l.Quantity
		}
	}
	return 0
}

// Len is the number of distinct books in the cart.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Total is the sum of price × quantity, computed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.lines)
}

// Total sums price × quantity over lines.
func Total(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (c *Cart) snapshot() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// persist writes the full cart and returns a snapshot for listeners.
// Caller holds mu.
func (c *Cart) persist(op string) []models.CartLine {
	lines := c.snapshot()

	raw, err := json.Marshal(lines)
	if err == nil {
		err = c.store.Set(storage.KeyCart, raw)
	}
	if err != nil {
		logger.Warn("cart: persist failed", "op", op, "error", err)
	}

	metrics.CartMutations.WithLabelValues(op).Inc()
	return lines
}

// notify fires cart.changed. Caller must not hold mu, so listeners may read
// the cart back.
func (c *Cart) notify(lines []models.CartLine) {
	c.bus.Fire(event.CartChanged, lines)
}
