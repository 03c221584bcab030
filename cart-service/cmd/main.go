package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/broadcast"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/catalogview"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/checkout"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/config"
	carthttp "github.com/RajDalvi08/CamousKart/cart-service/internal/http"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/ledger"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/poller"
	"github.com/RajDalvi08/CamousKart/cart-service/internal/repository"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("cart-service", &cfg.Log)
	defer func() { _ = log.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open cart store", zap.String("backend", cfg.Backend), zap.Error(err))
	}
	defer closeBackend()

	store := repository.NewStore(backend, log)
	sessions := ledger.NewSessions(ctx, store, ledger.NewBoard(cfg.FlashDuration), log,
		ledger.WithIdleTimeout(cfg.SessionIdle))

	bus := broadcast.New()
	if len(cfg.KafkaBrokers) > 0 {
		relay := poller.NewPoller(bus, log, cfg.KafkaBrokers...)
		defer relay.Close()
		go relay.Run(ctx)
		log.Info("catalog event relay started", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	catalogClient := catalogview.NewClient(cfg.CatalogURL, cfg.UpstreamTimeout, log)
	views := catalogview.NewRegistry(catalogview.DefaultCategories, catalogClient, bus, log)
	views.MountAll(ctx)
	defer views.UnmountAll()

	gateway := checkout.NewHTTPGateway(cfg.PaymentURL, cfg.UpstreamTimeout, log)
	checkouts := checkout.NewRegistry(gateway, log, checkout.WithPaymentTimeout(cfg.PaymentTimeout))
	go checkouts.Run(ctx, cfg.SessionIdle)

	router := carthttp.NewRouter(
		carthttp.NewCartHandler(sessions, cfg.RequestTimeout),
		carthttp.NewCatalogHandler(views),
		carthttp.NewCheckoutHandler(sessions, checkouts, cfg.RequestTimeout),
		log,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "cart-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("cart service listening", zap.String("port", cfg.HTTPPort), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down cart service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	stop()
	log.Info("cart service stopped")
}

func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Backend, func(), error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		backend := repository.NewRedisBackend(client)
		return backend, func() {
			_ = backend.Close()
			_ = client.Close()
		}, nil
	case "mongo":
		backend, closeFn, err := repository.OpenMongoBackend(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))
		return backend, closeFn, nil
	default:
		log.Warn("using in-memory cart store; carts are lost on restart")
		return repository.NewMemoryBackend(), func() {}, nil
	}
}
