package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
)

func TestNewStrategy(t *testing.T) {
	s := NewStrategy("test_mock")
	require.NotNil(t, s)
	assert.Equal(t, "test_mock", s.Name)
	assert.Empty(t, s.Calls())
}

func TestStrategy_DefaultBehavior(t *testing.T) {
	s := NewStrategy("default_mock")
	ctx := context.Background()
	opts := payment.RequestOptions{MethodID: "braintree"}

	require.NoError(t, s.Initialize(ctx, payment.InitializeOptions{RequestOptions: opts}))
	require.NoError(t, s.Execute(ctx, order.RequestBody{UseStoreCredit: true}, opts))
	require.NoError(t, s.Finalize(ctx, opts))
	require.NoError(t, s.Deinitialize(ctx, opts))

	calls := s.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "execute", calls[1].Phase)
	require.NotNil(t, calls[1].Payload)
	assert.True(t, calls[1].Payload.UseStoreCredit)
	assert.Equal(t, "braintree", calls[3].Options.MethodID)
	assert.Equal(t, 1, s.CallCount("finalize"))
}

func TestStrategy_WithCustomFunc(t *testing.T) {
	s := NewStrategy("failing_mock")
	cause := errors.New("declined")
	s.ExecuteFunc = func(context.Context, order.RequestBody, payment.RequestOptions) error { return cause }

	err := s.Execute(context.Background(), order.RequestBody{}, payment.RequestOptions{})
	assert.Same(t, cause, err)
	assert.Equal(t, 1, s.CallCount("execute"))

	s.Reset()
	assert.Empty(t, s.Calls())
}
