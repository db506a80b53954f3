package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"freshmart/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestSignAndVerify(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)

	assert.True(t, verify("secret", "order_1", "pay_1", sig))
	assert.False(t, verify("secret", "order_1", "pay_2", sig))
	assert.False(t, verify("other", "order_1", "pay_1", sig))
	assert.False(t, verify("", "order_1", "pay_1", sig))
	assert.False(t, verify("secret", "order_1", "pay_1", ""))
}

func TestRazorpayCreateOrder(t *testing.T) {
	var got createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_ABC","amount":29950,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	rp := NewRazorpay("rzp_key", "rzp_secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	intent, err := rp.CreateOrder(context.Background(), 29950, "receipt_1")
	require.NoError(t, err)

	assert.Equal(t, createOrderRequest{Amount: 29950, Currency: "INR", Receipt: "receipt_1"}, got)
	assert.Equal(t, "order_ABC", intent.OrderID)
	assert.Equal(t, int64(29950), intent.Amount)
	assert.Equal(t, "rzp_key", intent.KeyID)
	assert.False(t, intent.IsMock)

	sig := Sign("rzp_secret", "order_ABC", "pay_1")
	assert.True(t, rp.VerifySignature("order_ABC", "pay_1", sig))
}

func TestRazorpayCreateOrderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	rp := NewRazorpay("k", "s", WithBaseURL(srv.URL+"/"))
	_, err := rp.CreateOrder(context.Background(), 100, "r")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "status 401"))
	assert.True(t, strings.Contains(err.Error(), "Authentication failed"))
}

func TestMockGateway(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	m := NewMock(fixedClock{t: now})

	intent, err := m.CreateOrder(context.Background(), 5000, "r")
	require.NoError(t, err)
	assert.Equal(t, usecase.MockOrderPrefix+"1700000000123", intent.OrderID)
	assert.Equal(t, int64(5000), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.True(t, intent.IsMock)

	assert.False(t, m.VerifySignature(intent.OrderID, "pay", "sig"))
}
