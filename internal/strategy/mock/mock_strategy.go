// Package mock provides a scriptable payment strategy usable in either
// registry, for tests and for the demo server.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
)

// Call records one lifecycle invocation.
type Call struct {
	Phase   string
	Options payment.RequestOptions
	Payload *order.RequestBody
	At      time.Time
}

// Strategy is a payment strategy whose phases succeed unless a Func is set.
type Strategy struct {
	Name string

	InitializeFunc   func(ctx context.Context, opts payment.InitializeOptions) error
	ExecuteFunc      func(ctx context.Context, payload order.RequestBody, opts payment.RequestOptions) error
	FinalizeFunc     func(ctx context.Context, opts payment.RequestOptions) error
	DeinitializeFunc func(ctx context.Context, opts payment.RequestOptions) error

	mu    sync.Mutex
	calls []Call
}

// NewStrategy creates a Strategy.
func NewStrategy(name string) *Strategy {
	return &Strategy{Name: name}
}

func (s *Strategy) record(phase string, opts payment.RequestOptions, payload *order.RequestBody) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Phase: phase, Options: opts, Payload: payload, At: time.Now()})
}

func (s *Strategy) Initialize(ctx context.Context, opts payment.InitializeOptions) error {
	s.record("initialize", opts.RequestOptions, nil)
	if s.InitializeFunc != nil {
		return s.InitializeFunc(ctx, opts)
	}
	return nil
}

func (s *Strategy) Execute(ctx context.Context, payload order.RequestBody, opts payment.RequestOptions) error {
	s.record("execute", opts, &payload)
	if s.ExecuteFunc != nil {
		return s.ExecuteFunc(ctx, payload, opts)
	}
	return nil
}

func (s *Strategy) Finalize(ctx context.Context, opts payment.RequestOptions) error {
	s.record("finalize", opts, nil)
	if s.FinalizeFunc != nil {
		return s.FinalizeFunc(ctx, opts)
	}
	return nil
}

func (s *Strategy) Deinitialize(ctx context.Context, opts payment.RequestOptions) error {
	s.record("deinitialize", opts, nil)
	if s.DeinitializeFunc != nil {
		return s.DeinitializeFunc(ctx, opts)
	}
	return nil
}

// Calls returns the recorded invocations in order.
func (s *Strategy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times phase was invoked.
func (s *Strategy) CallCount(phase string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Phase == phase {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls.
func (s *Strategy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
