package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-orchestrator/internal/transport"
)

func TestHTTPSender_SubmitPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, paymentsPath, r.URL.Path)
		assert.Equal(t, "JWT_TOKEN", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Idempotency-Key"), "payment-")

		var body RequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "4111111111111111", body.Payment.CCNumber)

		_, _ = w.Write([]byte(`{"id":"pay_1","status":"ok"}`))
	}))
	defer server.Close()

	sender := NewHTTPSender(transport.New(server.URL))
	resp, err := sender.SubmitPayment(context.Background(), RequestBody{
		AuthToken: "JWT_TOKEN",
		Payment:   &Data{CCNumber: "4111111111111111"},
	})
	require.NoError(t, err)
	assert.Equal(t, Response{ID: "pay_1", Status: "ok"}, resp)
}

func TestHTTPSender_SubmitPayment_Declined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","errors":["card_declined"]}`))
	}))
	defer server.Close()

	sender := NewHTTPSender(transport.New(server.URL, transport.WithRetry(0, time.Millisecond)))
	_, err := sender.SubmitPayment(context.Background(), RequestBody{AuthToken: "JWT_TOKEN"})

	var httpErr *transport.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}
