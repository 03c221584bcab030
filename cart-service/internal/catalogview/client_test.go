package catalogview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/apperr"
	"github.com/RajDalvi08/CamousKart/pkg/circuitbreaker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_FetchCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/category/Books", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"_id":"a1","title":"Thermo","category":"Books","price":250,"condition":"new","images":["uploads/a.png"]},
			{"id":"b2","title":"Maths","category":"Books","price":"99.5","condition":"used","images":["https://cdn.example.com/b.png"]},
			{"_id":"c3","title":"Broken","category":"Books","price":"free","condition":"refurbished"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	products, err := c.FetchCategory(context.Background(), "/api/products/category/Books")
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "a1", products[0].ID)
	assert.True(t, decimal.NewFromInt(250).Equal(products[0].Price))
	assert.Equal(t, srv.URL+"/uploads/a.png", products[0].Images[0])

	assert.Equal(t, "b2", products[1].ID)
	assert.True(t, decimal.RequireFromString("99.5").Equal(products[1].Price))
	assert.Equal(t, "https://cdn.example.com/b.png", products[1].Images[0])

	assert.True(t, products[2].Price.IsZero())
}

func TestClient_ServerRejectionCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Server error"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.FetchCategory(context.Background(), "/api/products/category/Books")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.Of(apperr.ServerRejection))
	assert.Equal(t, "Server error", apperr.MessageOf(err, "fallback"))
}

func TestClient_ServerRejectionWithoutMessageUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.FetchCategory(context.Background(), "/api/products/category/Books")
	assert.ErrorIs(t, err, apperr.Of(apperr.ServerRejection))
	assert.Equal(t, "fallback", apperr.MessageOf(err, "fallback"))
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, zap.NewNop())
	_, err := c.FetchCategory(context.Background(), "/api/products/category/Books")
	assert.ErrorIs(t, err, apperr.Of(apperr.NetworkFailure))
	assert.Equal(t, "fallback", apperr.MessageOf(err, "fallback"))
}

func TestClient_BreakerOpensOnServerErrorsOnly(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadRequest)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := c.FetchCategory(ctx, "/x")
		assert.ErrorIs(t, err, apperr.Of(apperr.ServerRejection))
	}

	status.Store(http.StatusBadGateway)
	for i := 0; i < 5; i++ {
		_, _ = c.FetchCategory(ctx, "/x")
	}
	_, err := c.FetchCategory(ctx, "/x")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.ErrorIs(t, err, apperr.Of(apperr.NetworkFailure))
}

func TestClient_ResolveImage(t *testing.T) {
	c := NewClient("http://catalog:5000/", time.Second, zap.NewNop())
	assert.Equal(t, "http://catalog:5000/uploads/x.png", c.ResolveImage("uploads\\x.png"))
	assert.Equal(t, "http://catalog:5000/uploads/x.png", c.ResolveImage("/uploads/x.png"))
	assert.Equal(t, "", c.ResolveImage(""))
}
