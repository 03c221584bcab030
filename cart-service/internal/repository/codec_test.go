package repository

import (
	"testing"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRoundTrip_PreservesIDsAndQuantities(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: "p1", Title: "Engineering Drawing", Price: decimal.RequireFromString("100"), Image: "/uploads/a.png", Quantity: 2},
		{ProductID: "p2", Title: "Lab Coat", Price: decimal.RequireFromString("49.99"), Quantity: 1},
		{ProductID: "p3", Title: "Drafter", Price: decimal.Zero, Quantity: 7},
	}

	data, err := EncodeCart(lines)
	require.NoError(t, err)

	decoded, report := DecodeCart(data)
	assert.True(t, report.Clean())
	require.Len(t, decoded, len(lines))
	for i := range lines {
		assert.Equal(t, lines[i].ProductID, decoded[i].ProductID)
		assert.Equal(t, lines[i].Quantity, decoded[i].Quantity)
		assert.True(t, lines[i].Price.Equal(decoded[i].Price))
		assert.Equal(t, lines[i].Title, decoded[i].Title)
	}
}

func TestDecodeCart_MixedPriceEncodings(t *testing.T) {
	data := []byte(`[{"id":"p1","title":"A","price":100,"quantity":2},{"id":"p2","title":"B","price":"50","quantity":1}]`)

	lines, report := DecodeCart(data)
	assert.True(t, report.Clean())
	require.Len(t, lines, 2)

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	assert.True(t, decimal.NewFromInt(250).Equal(total), total.String())
}

func TestDecodeCart_CorruptValue(t *testing.T) {
	for _, data := range []string{`{not json`, `{"id":"p1"}`, `"cart"`, `42`} {
		lines, report := DecodeCart([]byte(data))
		assert.True(t, report.Corrupt, data)
		assert.NotNil(t, lines)
		assert.Empty(t, lines)
	}
}

func TestDecodeCart_Empty(t *testing.T) {
	lines, report := DecodeCart(nil)
	assert.True(t, report.Clean())
	assert.Empty(t, lines)

	lines, report = DecodeCart([]byte("null"))
	assert.True(t, report.Clean())
	assert.Empty(t, lines)
}

func TestDecodeCart_LegacyEntries(t *testing.T) {
	data := []byte(`[
		{"id":1699999999999,"title":"Casio","price":"650.50","quantity":1},
		{"_id":"abc","title":"Coat","price":420,"images":["/uploads/c.png"],"quantity":3},
		{"title":"Mystery Kit","price":10,"quantity":2},
		{"title":"Mystery Kit","price":10},
		"garbage",
		null,
		{"id":"p9","title":"Zero","price":5,"quantity":0},
		{"id":"p8","title":"Bad price","price":"free","quantity":1}
	]`)

	lines, report := DecodeCart(data)
	require.Len(t, lines, 5)

	assert.Equal(t, "1699999999999", lines[0].ProductID)
	assert.True(t, decimal.RequireFromString("650.5").Equal(lines[0].Price))

	assert.Equal(t, "abc", lines[1].ProductID)
	assert.Equal(t, "/uploads/c.png", lines[1].Image)

	assert.Empty(t, lines[2].ProductID)
	assert.Equal(t, "legacy-2-Mystery-Kit", lines[2].Key())
	assert.Equal(t, 2, lines[2].Quantity)
	assert.Equal(t, "legacy-3-Mystery-Kit", lines[3].Key())
	assert.Equal(t, 1, lines[3].Quantity, "missing quantity defaults to one")
	assert.NotEqual(t, lines[2].Key(), lines[3].Key(), "id-less lines are never merged")

	assert.Equal(t, "p8", lines[4].ProductID)
	assert.True(t, lines[4].Price.IsZero())

	assert.Equal(t, 3, report.SkippedEntries)
	assert.Equal(t, []string{`"free"`}, report.CoercedPrices)
}

func TestDecodeCart_MergesDuplicateIDs(t *testing.T) {
	data := []byte(`[{"id":"p1","title":"A","price":10,"quantity":1},{"id":"p2","title":"B","price":10,"quantity":1},{"id":"p1","title":"A","price":10,"quantity":4}]`)

	lines, report := DecodeCart(data)
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, []string{"p1"}, report.MergedIDs)
}

func TestEncodeCart_PriceIsNumeric(t *testing.T) {
	data, err := EncodeCart([]domain.CartLine{{ProductID: "p1", Title: "A", Price: decimal.RequireFromString("12.50"), Quantity: 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","title":"A","price":12.5,"quantity":1}]`, string(data))
}

func TestFavoritesRoundTrip(t *testing.T) {
	favs := []domain.Favorite{
		{ProductID: "p1", Title: "Calc", Price: decimal.NewFromInt(25), Image: "/uploads/x.png"},
		{ProductID: "p2", Title: "Book", Price: decimal.NewFromInt(15)},
	}
	data, err := EncodeFavorites(favs)
	require.NoError(t, err)

	decoded, report := DecodeFavorites(data)
	assert.True(t, report.Clean())
	require.Len(t, decoded, 2)
	assert.Equal(t, "p1", decoded[0].ProductID)
	assert.Equal(t, "/uploads/x.png", decoded[0].Image)
	assert.True(t, decimal.NewFromInt(15).Equal(decoded[1].Price))
}

func TestDecodeFavorites_DropsEntriesWithoutID(t *testing.T) {
	decoded, report := DecodeFavorites([]byte(`[{"title":"no id","price":1},{"id":2,"title":"two","price":"2"},{"id":2,"title":"dup","price":2}]`))
	require.Len(t, decoded, 1)
	assert.Equal(t, "2", decoded[0].ProductID)
	assert.Equal(t, 2, report.SkippedEntries)

	_, report = DecodeFavorites([]byte(`oops`))
	assert.True(t, report.Corrupt)
}
