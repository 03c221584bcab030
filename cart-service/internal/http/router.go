package http

import (
	"context"
	"net/http"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(cart *CartHandler, catalog *CatalogHandler, co *CheckoutHandler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Post("/items", cart.AddItem)
			r.Post("/items/{id}/decrement", cart.DecrementItem)
			r.Delete("/items/{key}", cart.RemoveLine)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", cart.GetFavorites)
			r.Post("/toggle", cart.ToggleFavorite)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalog.List)
			r.Get("/{category}", catalog.Get)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", co.Get)
			r.Post("/", co.Enter)
			r.Put("/shipping", co.UpdateShipping)
			r.Put("/payment-method", co.SelectPaymentMethod)
			r.Post("/submit", co.Submit)
			r.Post("/payment/success", co.PaymentSucceeded)
			r.Post("/payment/failure", co.PaymentFailed)
		})
	})

	return r
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), d)
}
