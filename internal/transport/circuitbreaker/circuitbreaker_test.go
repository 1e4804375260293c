package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	paymentsAPI = "payments"
	ordersAPI   = "orders"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.Now
	return cb, clock
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb, _ := newTestBreaker(Config{})
	for i := 0; i < defaultFailureThreshold-1; i++ {
		cb.RecordFailure(paymentsAPI)
	}
	assert.True(t, cb.AllowRequest(paymentsAPI))

	cb.RecordFailure(paymentsAPI)
	assert.False(t, cb.AllowRequest(paymentsAPI))
}

func TestCircuitBreaker_StateTransitions(t *testing.T) {
	cfg := Config{FailureThreshold: 2, ResetTimeout: time.Minute}

	t.Run("Closed_To_Open", func(t *testing.T) {
		cb, _ := newTestBreaker(cfg)
		cb.RecordFailure(paymentsAPI)
		state, failures := cb.Status(paymentsAPI)
		assert.Equal(t, StateClosed, state)
		assert.Equal(t, 1, failures)

		cb.RecordFailure(paymentsAPI)
		state, failures = cb.Status(paymentsAPI)
		assert.Equal(t, StateOpen, state)
		assert.Equal(t, 2, failures)
		assert.False(t, cb.AllowRequest(paymentsAPI))
	})

	t.Run("Open_To_HalfOpen_To_Closed", func(t *testing.T) {
		cb, clock := newTestBreaker(cfg)
		cb.RecordFailure(paymentsAPI)
		cb.RecordFailure(paymentsAPI)
		require.False(t, cb.AllowRequest(paymentsAPI))

		clock.Advance(time.Minute)
		assert.True(t, cb.AllowRequest(paymentsAPI))
		state, failures := cb.Status(paymentsAPI)
		assert.Equal(t, StateHalfOpen, state)
		assert.Equal(t, 0, failures)

		cb.RecordSuccess(paymentsAPI)
		state, _ = cb.Status(paymentsAPI)
		assert.Equal(t, StateClosed, state)
	})

	t.Run("HalfOpen_To_Open_OnFailure", func(t *testing.T) {
		cb, clock := newTestBreaker(cfg)
		cb.RecordFailure(paymentsAPI)
		cb.RecordFailure(paymentsAPI)
		clock.Advance(time.Minute)
		require.True(t, cb.AllowRequest(paymentsAPI))

		cb.RecordFailure(paymentsAPI)
		state, _ := cb.Status(paymentsAPI)
		assert.Equal(t, StateOpen, state)
		assert.False(t, cb.AllowRequest(paymentsAPI))
	})

	t.Run("SuccessResetsFailuresWhenClosed", func(t *testing.T) {
		cb, _ := newTestBreaker(cfg)
		cb.RecordFailure(paymentsAPI)
		cb.RecordSuccess(paymentsAPI)
		cb.RecordFailure(paymentsAPI)
		assert.True(t, cb.AllowRequest(paymentsAPI))
	})
}

func TestCircuitBreaker_EndpointsAreIndependent(t *testing.T) {
	cb, _ := newTestBreaker(Config{FailureThreshold: 1})
	cb.RecordFailure(paymentsAPI)

	assert.False(t, cb.AllowRequest(paymentsAPI))
	assert.True(t, cb.AllowRequest(ordersAPI))
	state, _ := cb.Status(ordersAPI)
	assert.Equal(t, StateClosed, state)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
}
