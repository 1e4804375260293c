package paymentmethod

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/transport"
)

func TestLoadPaymentMethods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, methodsPath, r.URL.Path)
		assert.Equal(t, "cart-1", r.URL.Query().Get("cartId"))
		_, _ = w.Write([]byte(`{
			"methods": [
				{"id": "braintree", "type": "PAYMENT_TYPE_API", "method": "credit-card"},
				{"id": "klarna", "method": "multi-option", "initializationData": {"gateway": "klarna"}}
			],
			"meta": {"deviceSessionId": "dsi", "sessionHash": "hash"}
		}`))
	}))
	defer server.Close()

	store := checkout.NewStore(checkout.State{
		Checkout:       &checkout.Checkout{ID: "c-1", Cart: checkout.Cart{ID: "cart-1"}},
		PaymentMethods: []checkout.PaymentMethod{{ID: "stale"}},
	})
	creator := NewActionCreator(NewHTTPSender(transport.New(server.URL)))

	require.NoError(t, store.Dispatch(context.Background(), creator.LoadPaymentMethods()))

	state := store.GetState()
	require.Len(t, state.PaymentMethods, 2)
	_, ok := state.GetPaymentMethod("stale", "")
	assert.False(t, ok)
	klarna, ok := state.GetPaymentMethod("klarna", "")
	require.True(t, ok)
	assert.Equal(t, "klarna", klarna.InitializationData.String("gateway"))
	assert.Equal(t, "hash", state.GetPaymentMethodsMeta().SessionHash)
}

func TestLoadPaymentMethods_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := checkout.NewStore(checkout.State{Checkout: &checkout.Checkout{Cart: checkout.Cart{ID: "cart-1"}}})
	creator := NewActionCreator(NewHTTPSender(transport.New(server.URL, transport.WithRetry(0, time.Millisecond))))

	err := store.Dispatch(context.Background(), creator.LoadPaymentMethods())
	failed, ok := action.FailedAction(err)
	require.True(t, ok)
	assert.Equal(t, action.LoadPaymentMethodsFailed, failed.Type)
}

func TestLoadPaymentMethods_MissingCheckout(t *testing.T) {
	err := checkout.NewStore(checkout.State{}).Dispatch(context.Background(), NewActionCreator(nil).LoadPaymentMethods())
	assert.True(t, apperr.IsMissing(err, apperr.MissingCheckout))
}
