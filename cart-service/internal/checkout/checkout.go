// Package checkout turns a cart snapshot plus shipping details into a
// committed order, either cash on delivery or through the payment gateway.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/ledger"
	"github.com/RajDalvi08/CamousKart/pkg/money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	RedirectDelay = 2 * time.Second
	RedirectPath  = "/"
	// PaymentTimeout matches how long the gateway keeps an order payable.
	PaymentTimeout = 30 * time.Minute

	storeName        = "CampusKart"
	orderDescription = "Order Payment"
	themeColor       = "#3399cc"
)

// Cart is the part of the ledger checkout reads from and clears.
type Cart interface {
	Lines() []domain.CartLine
	Clear(ctx context.Context) error
}

type ShippingInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

type PaymentResult struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature,omitempty"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// WidgetOptions is what the client passes to the gateway's payment widget.
type WidgetOptions struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Prefill     Prefill           `json:"prefill"`
	Theme       map[string]string `json:"theme"`
	Method      map[string]bool   `json:"method,omitempty"`
}

// View is a point-in-time copy of the checkout.
type View struct {
	State      State
	Items      []domain.CartLine
	Total      decimal.Decimal
	Shipping   ShippingInfo
	Method     PaymentMethod
	Message    string
	Order      *GatewayOrder
	Widget     *WidgetOptions
	RedirectAt time.Time
	// RedirectTo is set once the post-success delay has elapsed.
	RedirectTo string
}

// Timer is the handle returned by the scheduling function.
type Timer interface {
	Stop() bool
}

type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Checkout is one session's order intent. Enter starts a new intent;
// everything else moves it through its states.
type Checkout struct {
	mu       sync.Mutex
	cart     Cart
	gateway  PaymentGateway
	validate *validator.Validate
	after    AfterFunc
	now      func() time.Time
	timeout  time.Duration
	log      *zap.Logger

	state       State
	items       []domain.CartLine
	total       decimal.Decimal
	shipping    ShippingInfo
	method      PaymentMethod
	message     string
	order       *GatewayOrder
	widget      *WidgetOptions
	redirectAt  time.Time
	redirectTo  string
	timer       Timer
	attempt     uint64
	submittedAt time.Time
}

func New(cart Cart, gateway PaymentGateway, log *zap.Logger, opts ...Option) *Checkout {
	c := &Checkout{
		cart:     cart,
		gateway:  gateway,
		validate: validator.New(),
		after:    realAfterFunc,
		now:      time.Now,
		timeout:  PaymentTimeout,
		log:      log,
		state:    StateIdle,
		method:   MethodCOD,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enter snapshots the handed lines, or the cart when none are handed over.
// An empty snapshot parks the checkout in StateEmpty without touching the
// gateway.
func (c *Checkout) Enter(_ context.Context, handed []domain.CartLine) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireStale()
	if c.state == StateSubmitting {
		return c.view(), ErrCheckoutInProgress
	}
	c.reset()

	items := handed
	if len(items) == 0 {
		items = c.cart.Lines()
	}
	c.items = domain.MergeLines(items)

	if len(c.items) == 0 {
		c.state = StateEmpty
		c.message = msgEmptyCart
		return c.view(), nil
	}
	c.total = ledger.Total(c.items)
	c.state = StateFilling
	return c.view(), nil
}

func (c *Checkout) UpdateShipping(info ShippingInfo) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireStale()
	if err := c.toFilling(); err != nil {
		return c.view(), err
	}
	c.shipping = info
	return c.view(), nil
}

func (c *Checkout) SelectPaymentMethod(method PaymentMethod) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !method.Valid() {
		return c.view(), ErrInvalidPaymentMethod
	}
	c.expireStale()
	if err := c.toFilling(); err != nil {
		return c.view(), err
	}
	c.method = method
	return c.view(), nil
}

// Submit places the order. Cash on delivery succeeds at once. Gateway
// methods create a gateway order and wait in StateSubmitting for
// PaymentSucceeded or PaymentFailed.
func (c *Checkout) Submit(ctx context.Context) (View, error) {
	c.mu.Lock()
	c.expireStale()
	if c.state == StateSubmitting {
		defer c.mu.Unlock()
		return c.view(), ErrCheckoutInProgress
	}
	if !c.state.CanTransitionTo(StateSubmitting) {
		defer c.mu.Unlock()
		return c.view(), ErrIllegalTransition
	}
	if err := c.validate.Struct(c.shipping); err != nil {
		defer c.mu.Unlock()
		c.state = StateFilling
		c.message = msgShippingIncomplete
		return c.view(), apperr.Wrap(apperr.Validation, msgShippingIncomplete, err)
	}

	if !c.method.ViaGateway() {
		defer c.mu.Unlock()
		c.succeed(ctx)
		return c.view(), nil
	}

	c.state = StateSubmitting
	c.message = ""
	c.order = nil
	c.widget = nil
	c.attempt++
	c.submittedAt = c.now()
	attempt := c.attempt
	amount := money.ToMinor(c.total)
	shipping := c.shipping
	method := c.method
	c.mu.Unlock()

	order, err := c.gateway.CreateOrder(ctx, amount, money.Currency)

	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt != c.attempt || c.state != StateSubmitting {
		return c.view(), ErrIllegalTransition
	}
	if err != nil {
		c.state = StateFailed
		c.message = apperr.MessageOf(err, msgPaymentNotStarted)
		c.log.Warn("failed to create payment order", zap.Int64("amount", amount), zap.Error(err))
		return c.view(), fmt.Errorf("failed to create payment order: %w", err)
	}

	c.order = &order
	c.widget = widgetOptions(order, shipping, method)
	c.log.Info("payment order created", zap.String("order_id", order.ID), zap.Int64("amount", order.Amount))
	return c.view(), nil
}

// PaymentSucceeded completes a gateway payment. A repeat of the callback
// that already succeeded is ignored. A late callback for an order that
// failed or timed out is still honoured until the checkout is re-entered.
func (c *Checkout) PaymentSucceeded(ctx context.Context, result PaymentResult) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireStale()
	if c.state == StateSuccess && c.order != nil && c.order.ID == result.OrderID {
		return c.view(), nil
	}
	if (c.state != StateSubmitting && c.state != StateFailed) || c.order == nil {
		return c.view(), ErrIllegalTransition
	}
	if result.OrderID != c.order.ID {
		return c.view(), ErrOrderMismatch
	}

	c.log.Info("payment succeeded", zap.String("order_id", result.OrderID), zap.String("payment_id", result.PaymentID))
	c.succeed(ctx)
	return c.view(), nil
}

// PaymentFailed records a declined or abandoned gateway payment. The cart
// is left untouched so the user can retry.
func (c *Checkout) PaymentFailed(orderID, reason string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireStale()
	if c.state != StateSubmitting {
		return c.view(), ErrIllegalTransition
	}
	if orderID != "" && c.order != nil && orderID != c.order.ID {
		return c.view(), ErrOrderMismatch
	}

	c.state = StateFailed
	if reason == "" {
		reason = "cancelled"
	}
	c.message = fmt.Sprintf("Payment failed: %s. Please try again.", reason)
	c.log.Info("payment failed", zap.String("order_id", orderID), zap.String("reason", reason))
	return c.view(), nil
}

func (c *Checkout) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireStale()
	return c.view()
}

// expireStale abandons a gateway payment nobody reported back on within
// the payment timeout. The cart is left untouched.
func (c *Checkout) expireStale() {
	if c.state != StateSubmitting || c.now().Sub(c.submittedAt) < c.timeout {
		return
	}
	c.state = StateFailed
	c.message = msgPaymentTimedOut
	orderID := ""
	if c.order != nil {
		orderID = c.order.ID
	}
	c.log.Info("payment abandoned", zap.String("order_id", orderID), zap.Duration("after", c.timeout))
}

// rebind points the checkout at the session's current cart.
func (c *Checkout) rebind(cart Cart) {
	c.mu.Lock()
	c.cart = cart
	c.mu.Unlock()
}

// settled reports whether no gateway payment is outstanding.
func (c *Checkout) settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireStale()
	return c.state != StateSubmitting
}

func (c *Checkout) succeed(ctx context.Context) {
	c.state = StateSuccess
	c.message = msgOrderPlaced
	if err := c.cart.Clear(ctx); err != nil {
		c.log.Error("failed to clear cart after order", zap.Error(err))
	}

	c.redirectAt = c.now().Add(RedirectDelay)
	attempt := c.attempt
	c.timer = c.after(RedirectDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.attempt == attempt && c.state == StateSuccess {
			c.redirectTo = RedirectPath
		}
	})
}

func (c *Checkout) toFilling() error {
	if c.state == StateSubmitting {
		return ErrCheckoutInProgress
	}
	// Idle may only reach Filling through Enter
	if c.state == StateIdle || !c.state.CanTransitionTo(StateFilling) {
		return ErrIllegalTransition
	}
	c.state = StateFilling
	c.message = ""
	return nil
}

func (c *Checkout) reset() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.attempt++
	c.state = StateIdle
	c.items = nil
	c.total = decimal.Zero
	c.shipping = ShippingInfo{}
	c.method = MethodCOD
	c.message = ""
	c.order = nil
	c.widget = nil
	c.redirectAt = time.Time{}
	c.redirectTo = ""
	c.submittedAt = time.Time{}
}

func (c *Checkout) view() View {
	v := View{
		State:      c.state,
		Items:      make([]domain.CartLine, len(c.items)),
		Total:      c.total,
		Shipping:   c.shipping,
		Method:     c.method,
		Message:    c.message,
		RedirectAt: c.redirectAt,
		RedirectTo: c.redirectTo,
	}
	copy(v.Items, c.items)
	if c.order != nil {
		o := *c.order
		v.Order = &o
	}
	if c.widget != nil {
		w := *c.widget
		v.Widget = &w
	}
	return v
}

func widgetOptions(order GatewayOrder, shipping ShippingInfo, method PaymentMethod) *WidgetOptions {
	w := &WidgetOptions{
		Key:         order.Key,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        storeName,
		Description: orderDescription,
		OrderID:     order.ID,
		Prefill: Prefill{
			Name:    shipping.Name,
			Email:   shipping.Email,
			Contact: shipping.Phone,
		},
		Theme: map[string]string{"color": themeColor},
	}
	if method == MethodUPI {
		w.Method = map[string]bool{"upi": true}
	}
	return w
}
