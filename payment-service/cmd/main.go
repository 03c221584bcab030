package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RajDalvi08/CamousKart/payment-service/internal/config"
	paymenthttp "github.com/RajDalvi08/CamousKart/payment-service/internal/http"
	"github.com/RajDalvi08/CamousKart/payment-service/internal/store"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("payment-service", &cfg.Log)
	defer func() { _ = log.Sync() }()

	orders := store.NewMemoryStore()
	handler := paymenthttp.NewPaymentHandler(orders, cfg.GatewayKeyID)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(paymenthttp.NewRouter(handler, log), "payment-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("payment service listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down payment service")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := orders.Close(); err != nil {
		log.Error("failed to stop order store", zap.Error(err))
	}
	log.Info("payment service stopped")
}
