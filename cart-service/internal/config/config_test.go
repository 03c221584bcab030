package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5002", cfg.HTTPPort)
	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, "http://localhost:5000", cfg.CatalogURL)
	assert.Equal(t, 3*time.Second, cfg.FlashDuration)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
	assert.Equal(t, 30*time.Minute, cfg.PaymentTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CART_BACKEND", "mongo")
	t.Setenv("KAFKA_BROKERS", "k1:9092,,k2:9092")
	t.Setenv("PAYMENT_URL", "http://payments:5001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://payments:5001", cfg.PaymentURL)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("CART_BACKEND", "localstorage")

	_, err := Load()
	assert.Error(t, err)
}
