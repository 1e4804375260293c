package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-orchestrator/internal/checkout"
)

func stateWith(outstanding, credit float64) checkout.State {
	return checkout.State{
		Checkout: &checkout.Checkout{ID: "b20deef40f9699e48671bbc3fef6ca44dc80e3c7", GrandTotal: outstanding, OutstandingBalance: outstanding},
		Customer: &checkout.Customer{ID: 4, StoreCredit: credit},
	}
}

func TestPolicy_PaymentDataRequired(t *testing.T) {
	p := Default()

	tests := []struct {
		name           string
		state          checkout.State
		useStoreCredit bool
		want           bool
	}{
		{"balance without store credit", stateWith(190, 200), false, true},
		{"store credit covers balance", stateWith(190, 200), true, false},
		{"store credit partially covers balance", stateWith(190, 50), true, true},
		{"nothing outstanding", stateWith(0, 0), false, false},
		{"no checkout", checkout.State{}, false, false},
		{"no customer", checkout.State{Checkout: &checkout.Checkout{OutstandingBalance: 10}}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.PaymentDataRequired(tt.state, tt.useStoreCredit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_EmptyExpressionUsesDefault(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPaymentDataRequired, p.Expression())
}

func TestNew_CompilationError(t *testing.T) {
	_, err := New("outstanding_balance >")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile payment requirement rule")
}

func TestPolicy_CustomRule(t *testing.T) {
	p, err := New("grand_total >= 1 && !use_store_credit")
	require.NoError(t, err)

	got, err := p.PaymentDataRequired(stateWith(0.5, 0), false)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = p.PaymentDataRequired(stateWith(10, 0), true)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = p.PaymentDataRequired(stateWith(10, 0), false)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestPolicy_EvaluationErrors(t *testing.T) {
	t.Run("unknown parameter", func(t *testing.T) {
		p, err := New("undefinedParam > 10")
		require.NoError(t, err)
		_, err = p.PaymentDataRequired(stateWith(10, 0), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No parameter 'undefinedParam' found.")
	})

	t.Run("non boolean result", func(t *testing.T) {
		p, err := New("outstanding_balance - applied_store_credit")
		require.NoError(t, err)
		_, err = p.PaymentDataRequired(stateWith(10, 0), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want bool")
	})
}

func TestShouldExecuteSpamCheck(t *testing.T) {
	assert.False(t, ShouldExecuteSpamCheck(checkout.State{}))
	assert.False(t, ShouldExecuteSpamCheck(checkout.State{Checkout: &checkout.Checkout{}}))
	assert.True(t, ShouldExecuteSpamCheck(checkout.State{Checkout: &checkout.Checkout{ShouldExecuteSpamCheck: true}}))
}
