package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_live_x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5001", cfg.HTTPPort)
	assert.Equal(t, "rzp_live_x", cfg.GatewayKeyID)
}
