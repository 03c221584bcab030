package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/logger"
	"github.com/RajDalvi08/CamousKart/product-service/internal/cache"
	"github.com/RajDalvi08/CamousKart/product-service/internal/config"
	producthttp "github.com/RajDalvi08/CamousKart/product-service/internal/http"
	"github.com/RajDalvi08/CamousKart/product-service/internal/images"
	"github.com/RajDalvi08/CamousKart/product-service/internal/publisher"
	"github.com/RajDalvi08/CamousKart/product-service/internal/repository"
	"github.com/RajDalvi08/CamousKart/product-service/internal/service"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New("product-service", &cfg.Log)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	repo, err := openRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open product store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer repo.Close()

	var listingCache cache.ListingCache = cache.Nop{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		listingCache = cache.NewRedisCache(redisClient, cfg.CacheTTL)
		log.Info("listing cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	var pub publisher.Publisher = publisher.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = publisher.NewKafkaPublisher(log, cfg.KafkaBrokers...)
		log.Info("catalog events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}
	defer pub.Close()

	var (
		imageStore images.Store
		uploadDir  string
	)
	switch cfg.ImageStore {
	case "s3":
		imageStore, err = images.NewS3Store(ctx, cfg.S3, images.WithLogger(log))
	default:
		var disk *images.DiskStore
		disk, err = images.NewDiskStore(cfg.UploadDir, "/uploads")
		imageStore, uploadDir = disk, cfg.UploadDir
	}
	if err != nil {
		log.Fatal("failed to set up image store", zap.Error(err))
	}

	svc := service.NewCatalogService(repo, listingCache, imageStore, pub, log)
	handler := producthttp.NewProductHandler(svc, cfg.AdminToken, cfg.RequestTimeout)
	router := producthttp.NewRouter(handler, log, uploadDir)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "product-service"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("product service listening", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down product service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("product service stopped")
}

func openRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.ProductRepository, error) {
	switch cfg.StoreDriver {
	case "mongo":
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoRepository(db)
		if indexer, ok := repo.(interface{ CreateIndexes(context.Context) error }); ok {
			if err := indexer.CreateIndexes(ctx); err != nil {
				return nil, err
			}
		}
		log.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))
		return repo, nil
	case "sqlite":
		repo, err := repository.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(); err != nil {
			_ = repo.Close()
			return nil, err
		}
		log.Info("migrations completed", zap.String("path", cfg.SQLitePath))
		return repo, nil
	default:
		log.Warn("using in-memory product store; listings are lost on restart")
		return repository.NewMemoryRepository(), nil
	}
}
