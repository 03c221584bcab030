package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RajDalvi08/CamousKart/payment-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) http.Handler {
	orders := store.NewMemoryStore()
	t.Cleanup(func() { _ = orders.Close() })
	return NewRouter(NewPaymentHandler(orders, "rzp_test_key"), zap.NewNop())
}

func createOrder(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment/create-order", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_AmountIsNotRescaled(t *testing.T) {
	router := setupRouter(t)

	rec := createOrder(t, router, `{"amount":25000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(25000), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "created", resp.Status)
	assert.Equal(t, "rzp_test_key", resp.KeyID)
	assert.NotEmpty(t, resp.ID)
	assert.NotEmpty(t, resp.Receipt)
}

func TestCreateOrder_Invalid(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero", `{"amount":0}`},
		{"negative", `{"amount":-100}`},
		{"missing", `{}`},
		{"fractional", `{"amount":250.5}`},
		{"string", `{"amount":"250"}`},
		{"other currency", `{"amount":100,"currency":"USD"}`},
		{"not json", `amount=100`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := createOrder(t, router, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Code)
		})
	}
}

func TestGetOrder(t *testing.T) {
	router := setupRouter(t)

	rec := createOrder(t, router, `{"amount":1500,"receipt":"cart-42"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payment/orders/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(1500), got.Amount)
	assert.Equal(t, "cart-42", got.Receipt)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payment/orders/order_nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
