package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MercadoPagoClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewMercadoPagoClient(MercadoPagoConfig{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		RedirectURL:  "https://shop.example.test/mercadopago/webhook",
		AuthURL:      "https://auth.example.test/authorization",
		APIBaseURL:   srv.URL,
		Timeout:      time.Second,
	})
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func TestAuthorizationURL(t *testing.T) {
	c := NewMercadoPagoClient(MercadoPagoConfig{
		ClientID:    "client-1",
		RedirectURL: "https://shop.example.test/mercadopago/webhook",
		AuthURL:     "https://auth.example.test/authorization",
	})

	u, err := url.Parse(c.AuthorizationURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "auth.example.test", u.Host)
	q := u.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "https://shop.example.test/mercadopago/webhook", q.Get("redirect_uri"))
}

func TestExchangeCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)

		var req tokenRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "authorization_code", req.GrantType)
		assert.Equal(t, "code-1", req.Code)
		assert.Equal(t, "secret-1", req.ClientSecret)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"APP_USR-1","refresh_token":"TG-1","public_key":"pk","scope":"offline_access read write","user_id":123456789,"live_mode":true,"expires_in":15552000}`))
	})

	creds, err := c.ExchangeCode(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "123456789", creds.ProviderUserID)
	assert.Equal(t, "APP_USR-1", creds.AccessToken)
	assert.True(t, creds.LiveMode)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Add(180*24*time.Hour), creds.ExpiresAt)
}

func TestExchangeCode_ProviderRejects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})

	_, err := c.ExchangeCode(context.Background(), "code-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestGetPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/987", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":987,"status":"approved","status_detail":"accredited","external_reference":"order-1","transaction_amount":1500.25,"currency_id":"MXN","date_approved":"2026-01-02T10:00:00.000-06:00","date_last_updated":"2026-01-02T10:00:01.250-06:00"}`))
	})

	p, err := c.GetPayment(context.Background(), "token-1", "987")
	require.NoError(t, err)
	assert.Equal(t, "987", p.ProviderID)
	assert.Equal(t, "order-1", p.OrderID)
	assert.Equal(t, domain.PaymentStatusApproved, p.Status)
	assert.Equal(t, int64(150025), p.AmountCents)
	require.NotNil(t, p.ApprovedAt)
	assert.Equal(t, time.Date(2026, 1, 2, 16, 0, 0, 0, time.UTC), p.ApprovedAt.UTC())
	assert.Equal(t, time.Date(2026, 1, 2, 16, 0, 1, 250_000_000, time.UTC), p.UpdatedAt)
}

func TestGetPayment_PendingHasNoApproval(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":988,"status":"pending","external_reference":"order-2","transaction_amount":10,"currency_id":"MXN","date_approved":null}`))
	})

	p, err := c.GetPayment(context.Background(), "token-1", "988")
	require.NoError(t, err)
	assert.Nil(t, p.ApprovedAt)
	assert.Equal(t, int64(1000), p.AmountCents)
	// no provider timestamp: the fetch time orders the write
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), p.UpdatedAt)
}

func TestGetPayment_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetPayment(context.Background(), "expired", "987")
	assert.Error(t, err)
}
