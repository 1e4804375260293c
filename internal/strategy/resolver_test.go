package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/integration"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
	"github.com/yourorg/checkout-orchestrator/internal/strategy/mock"
)

func newResolver(t *testing.T, built map[string]int) (*Resolver, *mock.Strategy) {
	t.Helper()
	v2Strategy := mock.NewStrategy("paypalcommerce")
	v2 := integration.NewRegistry(nil)
	v2.Register(func(integration.Service) (integration.PaymentStrategy, error) {
		built["v2:paypalcommerce"]++
		return v2Strategy, nil
	}, integration.ResolveID{ID: "paypalcommerce"})

	return NewResolver(v2, newLegacyRegistry(built), nil), v2Strategy
}

func TestResolver_V2OnlyMethodSkipsLegacy(t *testing.T) {
	built := map[string]int{}
	r, v2Strategy := newResolver(t, built)

	resolved, err := r.Resolve(checkout.PaymentMethod{ID: "paypalcommerce"})
	require.NoError(t, err)
	assert.Equal(t, SourceV2, resolved.Source)
	assert.Same(t, v2Strategy, resolved.Strategy())
	assert.Equal(t, map[string]int{"v2:paypalcommerce": 1}, built)
}

func TestResolver_FallsBackToLegacyByGateway(t *testing.T) {
	built := map[string]int{}
	r, _ := newResolver(t, built)

	resolved, err := r.Resolve(checkout.PaymentMethod{ID: "amex", Gateway: "adyen"})
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, resolved.Source)
	m, ok := resolved.Strategy().(*mock.Strategy)
	require.True(t, ok)
	assert.Equal(t, "adyen", m.Name)
}

func TestResolver_V2ConstructionErrorDoesNotFallBack(t *testing.T) {
	cause := errors.New("sdk failed to load")
	v2 := integration.NewRegistry(nil)
	v2.Register(func(integration.Service) (integration.PaymentStrategy, error) { return nil, cause },
		integration.ResolveID{ID: "braintree"})
	built := map[string]int{}
	r := NewResolver(v2, newLegacyRegistry(built), nil)

	_, err := r.Resolve(checkout.PaymentMethod{ID: "braintree"})
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, built["braintree"])
}

func TestResolver_NotFoundAnywhere(t *testing.T) {
	r := NewResolver(integration.NewRegistry(nil), NewRegistry(), nil)
	_, err := r.Resolve(checkout.PaymentMethod{ID: "nothing"})
	assert.ErrorIs(t, err, apperr.ErrStrategyNotFound)
}

func TestResolver_ResolveType(t *testing.T) {
	built := map[string]int{}
	r, _ := newResolver(t, built)

	resolved, err := r.ResolveType(CreditCard)
	require.NoError(t, err)
	assert.Equal(t, SourceLegacy, resolved.Source)

	_, err = r.ResolveType(NoPaymentDataRequired)
	assert.ErrorIs(t, err, apperr.ErrStrategyNotFound)
}

func TestResolved_DispatchesToUnderlyingStrategy(t *testing.T) {
	ctx := context.Background()
	opts := payment.RequestOptions{MethodID: "paypalcommerce"}

	for _, resolved := range []Resolved{FromV2(mock.NewStrategy("v2")), FromLegacy(mock.NewStrategy("legacy"))} {
		require.NoError(t, resolved.Initialize(ctx, payment.InitializeOptions{RequestOptions: opts}))
		require.NoError(t, resolved.Execute(ctx, order.RequestBody{}, opts))
		require.NoError(t, resolved.Finalize(ctx, opts))
		require.NoError(t, resolved.Deinitialize(ctx, opts))

		m := resolved.Strategy().(*mock.Strategy)
		assert.Len(t, m.Calls(), 4, string(resolved.Source))
	}
}
