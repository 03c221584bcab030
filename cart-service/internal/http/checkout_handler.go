package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/checkout"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/ledger"
	"github.com/RajDalvi08/CamousKart/pkg/money"
	"github.com/shopspring/decimal"
)

type CheckoutHandler struct {
	sessions  *ledger.Sessions
	checkouts *checkout.Registry
	timeout   time.Duration
}

func NewCheckoutHandler(sessions *ledger.Sessions, checkouts *checkout.Registry, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions:  sessions,
		checkouts: checkouts,
		timeout:   timeout,
	}
}

// HandedLineDTO is a cart line passed straight from the cart page.
type HandedLineDTO struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    json.RawMessage `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

type EnterRequestDTO struct {
	Items []HandedLineDTO `json:"items"`
}

type PaymentMethodRequestDTO struct {
	Method string `json:"method"`
}

type PaymentFailureRequestDTO struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

func (h *CheckoutHandler) Enter(w http.ResponseWriter, r *http.Request) {
	// the body is optional: without items the current cart is used
	var req EnterRequestDTO
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body", err.Error())
		return
	}
	c, ok := h.checkout(w, r)
	if !ok {
		return
	}

	handed := make([]domain.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			continue
		}
		price, ok := money.Coerce(it.Price)
		if !ok || price.IsNegative() {
			price = decimal.Zero
		}
		handed = append(handed, domain.CartLine{
			ProductID: it.ID,
			Title:     it.Title,
			Price:     price,
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}

	v, err := c.Enter(r.Context(), handed)
	h.respond(w, r, v, err)
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.checkout(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, toCheckout(c.View()))
}

func (h *CheckoutHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	var info checkout.ShippingInfo
	if !decode(w, r, &info) {
		return
	}
	c, ok := h.checkout(w, r)
	if !ok {
		return
	}
	v, err := c.UpdateShipping(info)
	h.respond(w, r, v, err)
}

func (h *CheckoutHandler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req PaymentMethodRequestDTO
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.checkout(w, r)
	if !ok {
		return
	}
	v, err := c.SelectPaymentMethod(checkout.PaymentMethod(req.Method))
	h.respond(w, r, v, err)
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	c, ok := h.checkout(w, r)
	if !ok {
		return
	}
	v, err := c.Submit(ctx)
	h.respond(w, r, v, err)
}

func (h *CheckoutHandler) PaymentSucceeded(w http.ResponseWriter, r *http.Request) {
	var res checkout.PaymentResult
	if !decode(w, r, &res) {
		return
	}
	c, ok := h.checkout(w, r)
	if !ok {
		return
	}
	v, err := c.PaymentSucceeded(r.Context(), res)
	h.respond(w, r, v, err)
}

func (h *CheckoutHandler) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	var req PaymentFailureRequestDTO
	if !decode(w, r, &req) {
		return
	}
	c, ok := h.checkout(w, r)
	if !ok {
		return
	}
	v, err := c.PaymentFailed(req.OrderID, req.Reason)
	h.respond(w, r, v, err)
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) (*checkout.Checkout, bool) {
	session := sessionFrom(r.Context())
	l, err := h.sessions.Cart(r.Context(), session)
	if err != nil {
		respondAppError(w, r, err, nil)
		return nil, false
	}
	return h.checkouts.For(session, l), true
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, v checkout.View, err error) {
	if err != nil {
		respondAppError(w, r, err, toCheckout(v))
		return
	}
	respondJSON(w, r, http.StatusOK, toCheckout(v))
}
