package config

import (
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/config"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
)

type Config struct {
	HTTPPort          string
	ProductServiceURL string
	CartServiceURL    string
	PaymentServiceURL string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	Log               logger.Config
}

var defaults = map[string]any{
	"HTTP_PORT":           "8080",
	"PRODUCT_SERVICE_URL": "http://localhost:5000",
	"PAYMENT_SERVICE_URL": "http://localhost:5001",
	"CART_SERVICE_URL":    "http://localhost:5002",
	"REQUEST_TIMEOUT":     "30s",
	"SHUTDOWN_TIMEOUT":    "10s",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "console",
	"LOG_OUTPUT":          "stdout",
}

func Load() (*Config, error) {
	v, err := config.New(defaults)
	if err != nil {
		return nil, err
	}
	return &Config{
		HTTPPort:          v.GetString("HTTP_PORT"),
		ProductServiceURL: v.GetString("PRODUCT_SERVICE_URL"),
		CartServiceURL:    v.GetString("CART_SERVICE_URL"),
		PaymentServiceURL: v.GetString("PAYMENT_SERVICE_URL"),
		RequestTimeout:    v.GetDuration("REQUEST_TIMEOUT"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
		Log: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}, nil
}
