// Package spam runs checkout spam protection before a payment is attempted.
package spam

import (
	"context"
	"fmt"

	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/transport"
)

// TokenProvider produces a challenge token (for example a captcha response).
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Verifier verifies a checkout and returns its updated snapshot. A nil
// checkout means the verifier has nothing new to report.
type Verifier interface {
	Verify(ctx context.Context, checkoutID string) (*checkout.Checkout, error)
}

// HTTPVerifier posts a challenge token to the storefront spam protection endpoint.
type HTTPVerifier struct {
	client *transport.Client
	tokens TokenProvider
}

// NewHTTPVerifier creates an HTTPVerifier.
func NewHTTPVerifier(client *transport.Client, tokens TokenProvider) *HTTPVerifier {
	return &HTTPVerifier{client: client, tokens: tokens}
}

func (v *HTTPVerifier) Verify(ctx context.Context, checkoutID string) (*checkout.Checkout, error) {
	token, err := v.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("spam: obtain token: %w", err)
	}
	var updated checkout.Checkout
	path := "/api/storefront/checkouts/" + checkoutID + "/spam-protection"
	if err := v.client.Post(ctx, path, map[string]string{"token": token}, &updated, nil); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ActionCreator builds spam protection thunks.
type ActionCreator struct {
	verifier Verifier
}

// NewActionCreator creates an ActionCreator.
func NewActionCreator(v Verifier) *ActionCreator {
	return &ActionCreator{verifier: v}
}

// VerifyCheckoutSpamProtection verifies the current checkout. Failures wrap
// apperr.ErrSpamProtectionFailed.
func (c *ActionCreator) VerifyCheckoutSpamProtection() checkout.Thunk {
	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) error {
		co := store.GetState().GetCheckout()
		if co == nil {
			return action.Fail(emit, action.VerifyCheckoutFailed, apperr.NewMissingDataError(apperr.MissingCheckout), action.Meta{})
		}

		emit(action.New(action.VerifyCheckoutRequested, nil, action.Meta{}))

		updated, err := c.verifier.Verify(ctx, co.ID)
		if err != nil {
			return action.Fail(emit, action.VerifyCheckoutFailed, fmt.Errorf("%w: %w", apperr.ErrSpamProtectionFailed, err), action.Meta{})
		}

		emit(action.New(action.VerifyCheckoutSucceeded, updated, action.Meta{}))
		return nil
	}
}
