package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RajDalvi08/CamousKart/api-gateway/internal/config"
	h "github.com/RajDalvi08/CamousKart/api-gateway/internal/http"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("api-gateway", &cfg.Log)
	defer func() { _ = log.Sync() }()

	router, err := h.NewRouter(h.Upstreams{
		Products: cfg.ProductServiceURL,
		Cart:     cfg.CartServiceURL,
		Payment:  cfg.PaymentServiceURL,
	}, cfg.RequestTimeout, log)
	if err != nil {
		log.Fatal("invalid upstream configuration", zap.Error(err))
	}

	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     otelhttp.NewHandler(router, "api-gateway"),
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("API gateway starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
