package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinor(t *testing.T) {
	assert.Equal(t, int64(25000), ToMinor(decimal.NewFromInt(250)))
	assert.Equal(t, int64(1999), ToMinor(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1), ToMinor(decimal.RequireFromString("0.005")))
	assert.True(t, FromMinor(25000).Equal(decimal.NewFromInt(250)))
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`100`, "100", true},
		{`"50"`, "50", true},
		{`" 12.50 "`, "12.5", true},
		{`"abc"`, "0", false},
		{`null`, "0", false},
		{`true`, "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Coerce(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse(" 99.5 ")
	require.NoError(t, err)
	assert.Equal(t, "99.5", d.String())

	_, err = Parse("ninety")
	assert.Error(t, err)
}
