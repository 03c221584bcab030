package config

import (
	"fmt"
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/config"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	UpstreamTimeout time.Duration
	ShutdownTimeout time.Duration

	Backend       string // redis, mongo, memory
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string

	CatalogURL   string
	PaymentURL   string
	KafkaBrokers []string

	FlashDuration  time.Duration
	SessionIdle    time.Duration
	PaymentTimeout time.Duration
	Log            logger.Config
}

var defaults = map[string]any{
	"CART_SERVICE_PORT": "5002",
	"REQUEST_TIMEOUT":   "15s",
	"UPSTREAM_TIMEOUT":  "10s",
	"SHUTDOWN_TIMEOUT":  "10s",
	"CART_BACKEND":      "redis",
	"REDIS_ADDR":        "localhost:6379",
	"REDIS_PASSWORD":    "",
	"MONGO_URI":         "mongodb://localhost:27017",
	"MONGO_DB_NAME":     "cartdb",
	"CATALOG_URL":       "http://localhost:5000",
	"PAYMENT_URL":       "http://localhost:5001",
	"KAFKA_BROKERS":     "",
	"FLASH_DURATION":    "3s",
	"SESSION_IDLE":      "30m",
	"PAYMENT_TIMEOUT":   "30m",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "console",
	"LOG_OUTPUT":        "stdout",
}

func Load() (*Config, error) {
	v, err := config.New(defaults)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:        v.GetString("CART_SERVICE_PORT"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		UpstreamTimeout: v.GetDuration("UPSTREAM_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		Backend:         v.GetString("CART_BACKEND"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDBName:     v.GetString("MONGO_DB_NAME"),
		CatalogURL:      v.GetString("CATALOG_URL"),
		PaymentURL:      v.GetString("PAYMENT_URL"),
		KafkaBrokers:    config.List(v, "KAFKA_BROKERS"),
		FlashDuration:   v.GetDuration("FLASH_DURATION"),
		SessionIdle:     v.GetDuration("SESSION_IDLE"),
		PaymentTimeout:  v.GetDuration("PAYMENT_TIMEOUT"),
		Log: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}

	switch cfg.Backend {
	case "redis", "mongo", "memory":
	default:
		return nil, fmt.Errorf("unsupported CART_BACKEND %q", cfg.Backend)
	}
	if cfg.CatalogURL == "" || cfg.PaymentURL == "" {
		return nil, fmt.Errorf("CATALOG_URL and PAYMENT_URL are required")
	}
	return cfg, nil
}
