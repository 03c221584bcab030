package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RajDalvi08/CamousKart/payment-service/internal/store"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/RajDalvi08/CamousKart/pkg/money"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 16

type PaymentHandler struct {
	orders   store.OrderStore
	keyID    string
	validate *validator.Validate
}

func NewPaymentHandler(orders store.OrderStore, keyID string) *PaymentHandler {
	return &PaymentHandler{
		orders:   orders,
		keyID:    keyID,
		validate: validator.New(),
	}
}

// CreateOrderRequest carries the amount already in minor units. It is never
// rescaled here.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount" validate:"min=1"`
	Currency string `json:"currency" validate:"omitempty,oneof=INR"`
	Receipt  string `json:"receipt" validate:"omitempty,max=40"`
}

type OrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	KeyID    string `json:"key,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", "amount must be an integer number of minor units", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_amount", "amount must be at least 1 minor unit", err.Error())
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = money.Currency
	}

	order, err := h.orders.Create(req.Amount, currency, req.Receipt)
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to create order", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal_error", "failed to create order", "")
		return
	}

	logger.FromContext(r.Context()).Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency))

	respondJSON(w, r, http.StatusOK, OrderResponse{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   string(order.Status),
		KeyID:    h.keyID,
	})
}

func (h *PaymentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			respondError(w, r, http.StatusNotFound, "not_found", "order not found", "")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "internal_error", "failed to load order", "")
		return
	}

	respondJSON(w, r, http.StatusOK, OrderResponse{
		ID:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   string(order.Status),
	})
}

func NewRouter(h *PaymentHandler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/payment", func(r chi.Router) {
		r.Post("/create-order", h.CreateOrder)
		r.Get("/orders/{id}", h.GetOrder)
	})

	return r
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	respondJSON(w, r, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
