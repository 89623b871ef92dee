package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/attachment"
	"github.com/shashiranjanraj/bookstore/pkg/cart"
	"github.com/shashiranjanraj/bookstore/pkg/guard"
	"github.com/shashiranjanraj/bookstore/pkg/logger"
	"github.com/shashiranjanraj/bookstore/pkg/metrics"
	"github.com/shashiranjanraj/bookstore/pkg/session"
	"github.com/shashiranjanraj/bookstore/pkg/validate"
)

// OrderPlaced is the confirmation carried to the order history view.
const OrderPlaced = "Order placed! Waiting for admin to verify payment."

// Step is a checkout screen.
type Step int

const (
	StepAddress Step = iota + 1
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "ADDRESS_SELECTION"
	case StepPayment:
		return "PAYMENT_REVIEW"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

var (
	ErrNoAddress      = &Failure{Text: "Please select a delivery address"}
	ErrUnknownAddress = &Failure{Text: "Unknown address"}
	ErrEmptyCart      = &Failure{Text: "Your cart is empty"}
	ErrNotReviewed    = &Failure{Text: "Review your order before placing it"}
	ErrInProgress     = &Failure{Text: "Checkout already in progress"}
)

// Stage names the checkout request that failed.
type Stage string

const (
	StageOrder   Stage = "order"
	StagePayment Stage = "payment"
)

// CheckoutError reports a failed PlaceOrder. When Stage is StagePayment the
// order OrderID exists on the server, unpaid; nothing cancels or retries it.
type CheckoutError struct {
	Stage   Stage
	OrderID uint
	Text    string
	Err     error
}

func (e *CheckoutError) Error() string {
	if e.Stage == StagePayment {
		return fmt.Sprintf("checkout: payment for order %d failed: %v", e.OrderID, e.Err)
	}
	return fmt.Sprintf("checkout: order creation failed: %v", e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

func (e *CheckoutError) UserMessage() string { return e.Text }

// Partial reports whether an unpaid order was left behind.
func (e *CheckoutError) Partial() bool { return e.Stage == StagePayment && e.OrderID != 0 }

// Receipt is a successful checkout.
type Receipt struct {
	Order   models.Order
	Message string
}

type paymentInput struct {
	Provider string `json:"provider" validate:"required,in=MANUAL,TEST"`
	Note     string `json:"note" validate:"nullable,max=500"`
}

// Checkout walks ADDRESS_SELECTION → PAYMENT_REVIEW → order. The step is not
// persisted; a new Checkout always starts at address selection.
type Checkout struct {
	api     *api.Client
	session *session.Session
	cart    *cart.Cart

	mu        sync.Mutex
	step      Step
	addresses []models.Address
	selected  uint
	provider  api.Provider
	note      string
	proof     *attachment.File
	placing   bool
}

func NewCheckout(c *api.Client, s *session.Session, ct *cart.Cart) *Checkout {
	return &Checkout{
		api:      c,
		session:  s,
		cart:     ct,
		step:     StepAddress,
		provider: api.ProviderManual,
	}
}

// Load requires a signed-in user and a non-empty cart, fetches the saved
// addresses and preselects the default one.
func (c *Checkout) Load(ctx context.Context) error {
	if err := guard.Require(c.session); err != nil {
		return err
	}
	if c.cart.Len() == 0 {
		return ErrEmptyCart
	}

	list, err := c.api.Addresses(ctx)
	if err != nil {
		logger.WithCtx(ctx).Warn("checkout: loading addresses failed", "error", err)
		return fail(err, "Failed to load addresses")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.addresses = list
	for _, a := range list {
		if a.IsDefault {
			c.selected = a.ID
			break
		}
	}
	return nil
}

// Addresses returns the loaded addresses.
func (c *Checkout) Addresses() []models.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Address(nil), c.addresses...)
}

// Selected returns the chosen address.
func (c *Checkout) Selected() (models.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.addresses {
		if a.ID == c.selected {
			return a, true
		}
	}
	return models.Address{}, false
}

// Select chooses one of the loaded addresses.
func (c *Checkout) Select(id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range c.addresses {
		if a.ID == id {
			c.selected = id
			return nil
		}
	}
	return ErrUnknownAddress
}

// AddAddress saves a new address and selects it.
func (c *Checkout) AddAddress(ctx context.Context, form api.AddressForm) (models.Address, error) {
	if err := validate.Check(form); err != nil {
		return models.Address{}, invalid(err)
	}
	addr, err := c.api.CreateAddress(ctx, form)
	if err != nil {
		return models.Address{}, fail(err, "Failed to save address")
	}

	c.mu.Lock()
	c.addresses = append(c.addresses, addr)
	c.selected = addr.ID
	c.mu.Unlock()
	return addr, nil
}

// Next advances to payment review. It needs a selected address.
func (c *Checkout) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepAddress && c.selected == 0 {
		return ErrNoAddress
	}
	c.step = StepPayment
	return nil
}

// Back returns to address selection. The selection is kept.
func (c *Checkout) Back() {
	c.mu.Lock()
	c.step = StepAddress
	c.mu.Unlock()
}

func (c *Checkout) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// SetPayment records the payment choice. proof may be nil.
func (c *Checkout) SetPayment(provider api.Provider, note string, proof *attachment.File) error {
	if err := validate.Check(paymentInput{Provider: string(provider), Note: note}); err != nil {
		return invalid(err)
	}
	c.mu.Lock()
	c.provider, c.note, c.proof = provider, note, proof
	c.mu.Unlock()
	return nil
}

// Total is the cart total at this moment.
func (c *Checkout) Total() decimal.Decimal { return c.cart.Total() }

// PlaceOrder creates the order from the cart, then submits its payment.
// The cart is cleared only when both succeed. If the payment fails the
// order stays on the server unpaid and a *CheckoutError with Stage
// StagePayment is returned; the cart is left intact.
func (c *Checkout) PlaceOrder(ctx context.Context) (Receipt, error) {
	if err := guard.Require(c.session); err != nil {
		return Receipt{}, err
	}

	c.mu.Lock()
	switch {
	case c.placing:
		c.mu.Unlock()
		return Receipt{}, ErrInProgress
	case c.step != StepPayment:
		c.mu.Unlock()
		return Receipt{}, ErrNotReviewed
	case c.selected == 0:
		c.mu.Unlock()
		return Receipt{}, ErrNoAddress
	}
	c.placing = true
	addressID, provider, note, proof := c.selected, c.provider, c.note, c.proof
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.placing = false
		c.mu.Unlock()
	}()

	lines := c.cart.Lines()
	if len(lines) == 0 {
		metrics.CheckoutOutcomes.WithLabelValues("empty_cart").Inc()
		return Receipt{}, ErrEmptyCart
	}

	log := logger.WithCtx(ctx)

	order, err := c.api.CreateOrder(ctx, api.OrderRequestFrom(lines, addressID))
	if err != nil {
		metrics.CheckoutOutcomes.WithLabelValues("order_failed").Inc()
		log.Warn("checkout: order creation failed", "error", err)
		return Receipt{}, &CheckoutError{Stage: StageOrder, Text: api.Display(err, "Checkout failed"), Err: err}
	}

	err = c.api.Pay(ctx, api.PaymentForm{OrderID: order.ID, Provider: provider, Note: note, Proof: proof})
	if err != nil {
		metrics.CheckoutOutcomes.WithLabelValues("payment_failed").Inc()
		log.Error("checkout: payment failed, order left unpaid", "order_id", order.ID, "error", err)
		return Receipt{}, &CheckoutError{
			Stage:   StagePayment,
			OrderID: order.ID,
			Text:    api.Display(err, "Checkout failed"),
			Err:     err,
		}
	}

	c.cart.Clear()
	metrics.CheckoutOutcomes.WithLabelValues("paid").Inc()
	log.Info("checkout: order placed", "order_id", order.ID, "provider", string(provider))

	return Receipt{Order: order, Message: OrderPlaced}, nil
}

// IsPartial reports whether err left an unpaid order behind.
func IsPartial(err error) (uint, bool) {
	var ce *CheckoutError
	if errors.As(err, &ce) && ce.Partial() {
		return ce.OrderID, true
	}
	return 0, false
}
