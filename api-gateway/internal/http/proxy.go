package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Upstreams struct {
	Products string
	Cart     string
	Payment  string
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// NewRouter routes the public API to the services behind the gateway.
func NewRouter(up Upstreams, timeout time.Duration, log *zap.Logger) (http.Handler, error) {
	products, err := newProxy("product-service", up.Products)
	if err != nil {
		return nil, err
	}
	cart, err := newProxy("cart-service", up.Cart)
	if err != nil {
		return nil, err
	}
	payment, err := newProxy("payment-service", up.Payment)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// uploads and listings can be large and slow; no gateway deadline
	r.Handle("/uploads/*", products)
	r.Handle("/api/products", products)
	r.Handle("/api/products/*", products)
	r.Handle("/api/admin/*", products)

	r.Group(func(r chi.Router) {
		if timeout > 0 {
			r.Use(middleware.Timeout(timeout))
		}
		r.Handle("/api/payment/*", payment)
		r.Handle("/api/v1/*", cart)
	})

	return r, nil
}

func newProxy(name, rawURL string) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid %s upstream %q", name, rawURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = otelhttp.NewTransport(http.DefaultTransport)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.FromContext(r.Context()).Warn("upstream request failed",
			zap.String("upstream", name),
			zap.Error(err))
		status := http.StatusBadGateway
		if r.Context().Err() != nil {
			status = http.StatusGatewayTimeout
		}
		respondError(w, r, status, "upstream_unavailable", name+" is unavailable")
	}
	return proxy, nil
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
