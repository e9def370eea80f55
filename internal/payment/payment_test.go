package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

func newTestCharger(t *testing.T, h http.HandlerFunc) *StripeCharger {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	c, err := newStripeCharger("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	require.NoError(t, err)
	return c
}

func TestNewStripeCharger_RequiresKey(t *testing.T) {
	_, err := NewStripeCharger("")
	assert.Error(t, err)
}

func TestStripeCharger_Charge(t *testing.T) {
	var form url.Values
	var idem string
	c := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		idem = r.Header.Get("Idempotency-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"ch_1","object":"charge","amount":4500,"currency":"usd","paid":true,"status":"succeeded"}`)
	})

	res, err := c.Charge(context.Background(), ChargeRequest{
		Amount: 4500, Currency: "usd", Source: "tok_visa", Description: "Order of 3 items", IdempotencyKey: "order-1", OrderID: "order-1",
	})
	require.NoError(t, err)
	assert.Equal(t, &ChargeResult{ID: "ch_1", Amount: 4500, Currency: "usd", Paid: true}, res)

	assert.Equal(t, "4500", form.Get("amount"))
	assert.Equal(t, "usd", form.Get("currency"))
	assert.Equal(t, "tok_visa", form.Get("source"))
	assert.Equal(t, "order-1", idem)
	assert.Equal(t, "order-1", form.Get("metadata[order_id]"))
}

func TestStripeCharger_Charge_CardDeclined(t *testing.T) {
	c := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
	})

	_, err := c.Charge(context.Background(), ChargeRequest{Amount: 100, Currency: "usd", Source: "tok_chargeDeclined"})
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestStripeCharger_Refund(t *testing.T) {
	var charge string
	c := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		charge = form.Get("charge")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"re_1","object":"refund","charge":"ch_1","status":"succeeded"}`)
	})

	require.NoError(t, c.Refund(context.Background(), "ch_1"))
	assert.Equal(t, "ch_1", charge)
}

func TestStripeCharger_FindCharge(t *testing.T) {
	var query string
	c := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/charges/search", r.URL.Path)
		query = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"search_result","url":"/v1/charges/search","has_more":false,"data":[`+
			`{"id":"ch_old","object":"charge","paid":true,"refunded":true},`+
			`{"id":"ch_live","object":"charge","paid":true,"refunded":false}]}`)
	})

	id, err := c.FindCharge(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "ch_live", id)
	assert.Equal(t, "metadata['order_id']:'order-1'", query)
}

func TestStripeCharger_FindCharge_None(t *testing.T) {
	c := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object":"search_result","url":"/v1/charges/search","has_more":false,"data":[]}`)
	})

	id, err := c.FindCharge(context.Background(), "order-2")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestStripeCharger_FindCharge_Error(t *testing.T) {
	c := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"type":"api_error","message":"boom"}}`)
	})

	_, err := c.FindCharge(context.Background(), "order-3")
	assert.Error(t, err)
}
