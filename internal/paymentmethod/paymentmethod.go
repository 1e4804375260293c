// Package paymentmethod loads the payment methods available to a cart.
package paymentmethod

import (
	"context"
	"fmt"
	"net/url"

	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/transport"
)

const methodsPath = "/api/storefront/payments"

// RequestSender fetches payment methods.
type RequestSender interface {
	LoadPaymentMethods(ctx context.Context, cartID string) (*checkout.PaymentMethodsLoaded, error)
}

// HTTPSender is a RequestSender over the JSON transport.
type HTTPSender struct {
	client *transport.Client
}

// NewHTTPSender creates an HTTPSender.
func NewHTTPSender(client *transport.Client) *HTTPSender {
	return &HTTPSender{client: client}
}

func (s *HTTPSender) LoadPaymentMethods(ctx context.Context, cartID string) (*checkout.PaymentMethodsLoaded, error) {
	var loaded checkout.PaymentMethodsLoaded
	path := methodsPath + "?" + url.Values{"cartId": {cartID}}.Encode()
	if err := s.client.Get(ctx, path, &loaded); err != nil {
		return nil, fmt.Errorf("paymentmethod: load for cart %s: %w", cartID, err)
	}
	return &loaded, nil
}

// ActionCreator builds payment method thunks.
type ActionCreator struct {
	sender RequestSender
}

// NewActionCreator creates an ActionCreator.
func NewActionCreator(sender RequestSender) *ActionCreator {
	return &ActionCreator{sender: sender}
}

// LoadPaymentMethods replaces the method list with the one available to the
// current cart.
func (c *ActionCreator) LoadPaymentMethods() checkout.Thunk {
	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) error {
		co := store.GetState().GetCheckout()
		if co == nil {
			return action.Fail(emit, action.LoadPaymentMethodsFailed, apperr.NewMissingDataError(apperr.MissingCheckout), action.Meta{})
		}

		emit(action.New(action.LoadPaymentMethodsRequested, nil, action.Meta{}))

		loaded, err := c.sender.LoadPaymentMethods(ctx, co.Cart.ID)
		if err != nil {
			return action.Fail(emit, action.LoadPaymentMethodsFailed, err, action.Meta{})
		}

		emit(action.New(action.LoadPaymentMethodsSucceeded, loaded, action.Meta{}))
		return nil
	}
}
