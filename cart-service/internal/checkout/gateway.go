package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/pkg/circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// GatewayOrder is the payment gateway's handle for one payment attempt.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	Key      string `json:"key"`
}

// PaymentGateway creates orders. amount is in minor units and is sent as is.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string) (GatewayOrder, error)
}

type rejectedError struct {
	status int
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("payment service responded %d", e.status)
}

// HTTPGateway talks to the payment service's create-order endpoint.
type HTTPGateway struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.Breaker[GatewayOrder]
}

func NewHTTPGateway(baseURL string, timeout time.Duration, log *zap.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[GatewayOrder]("payment", 30*time.Second, log, func(err error) bool {
			var re *rejectedError
			return errors.As(err, &re) && re.status < 500
		}),
	}
}

func (g *HTTPGateway) CreateOrder(ctx context.Context, amount int64, currency string) (GatewayOrder, error) {
	order, err := g.breaker.Execute(func() (GatewayOrder, error) {
		return g.createOrder(ctx, amount, currency)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return GatewayOrder{}, apperr.Wrap(apperr.NetworkFailure, msgPaymentNotStarted, err)
	}
	return order, err
}

func (g *HTTPGateway) createOrder(ctx context.Context, amount int64, currency string) (GatewayOrder, error) {
	body, err := json.Marshal(map[string]any{"amount": amount, "currency": currency})
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("failed to encode create-order request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/payment/create-order", bytes.NewReader(body))
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("failed to build create-order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return GatewayOrder{}, apperr.Wrap(apperr.NetworkFailure, msgPaymentNotStarted, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return GatewayOrder{}, apperr.Wrap(apperr.NetworkFailure, msgPaymentNotStarted, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := msgPaymentNotStarted
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return GatewayOrder{}, apperr.Wrap(apperr.PaymentFailure, msg, &rejectedError{status: resp.StatusCode})
	}

	var order GatewayOrder
	if err := json.Unmarshal(data, &order); err != nil || order.ID == "" {
		return GatewayOrder{}, apperr.Wrap(apperr.PaymentFailure, msgPaymentNotStarted, fmt.Errorf("invalid create-order response: %s", data))
	}
	return order, nil
}
