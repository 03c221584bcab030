package config

import (
	"time"

	"github.com/RajDalvi08/CamousKart/pkg/config"
	"github.com/RajDalvi08/CamousKart/pkg/logger"
)

type Config struct {
	HTTPPort        string
	ShutdownTimeout time.Duration
	// GatewayKeyID is the public key handed to the payment widget.
	GatewayKeyID string
	Log          logger.Config
}

func Load() (*Config, error) {
	v, err := config.New(map[string]any{
		"PAYMENT_SERVICE_PORT": "5001",
		"SHUTDOWN_TIMEOUT":     "10s",
		"RAZORPAY_KEY_ID":      "rzp_test_campuskart",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "console",
		"LOG_OUTPUT":           "stdout",
	})
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPPort:        v.GetString("PAYMENT_SERVICE_PORT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		GatewayKeyID:    v.GetString("RAZORPAY_KEY_ID"),
		Log: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}, nil
}
