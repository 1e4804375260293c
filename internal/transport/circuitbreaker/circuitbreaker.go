// Package circuitbreaker stops calling an upstream endpoint after repeated
// failures and probes it again once a cool-down has elapsed.
package circuitbreaker

import (
	"sync"
	"time"
)

// State of an endpoint's circuit.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

const (
	defaultFailureThreshold  = 5
	defaultResetTimeout      = 30 * time.Second
	defaultHalfOpenSuccesses = 1
)

// Config tunes a CircuitBreaker. Zero fields take defaults.
type Config struct {
	FailureThreshold  int
	ResetTimeout      time.Duration
	HalfOpenSuccesses int
}

type endpointState struct {
	state     State
	failures  int
	successes int
	openUntil time.Time
}

// CircuitBreaker tracks circuits per endpoint key.
type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       Config
	endpoints map[string]*endpointState
	now       func() time.Time
}

// NewCircuitBreaker creates a CircuitBreaker.
func NewCircuitBreaker(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	if cfg.HalfOpenSuccesses <= 0 {
		cfg.HalfOpenSuccesses = defaultHalfOpenSuccesses
	}
	return &CircuitBreaker{
		cfg:       cfg,
		endpoints: make(map[string]*endpointState),
		now:       time.Now,
	}
}

func (cb *CircuitBreaker) endpoint(key string) *endpointState {
	es, ok := cb.endpoints[key]
	if !ok {
		es = &endpointState{}
		cb.endpoints[key] = es
	}
	return es
}

// AllowRequest reports whether a call to key may proceed. An open circuit
// whose cool-down has elapsed moves to half-open and lets the call through.
func (cb *CircuitBreaker) AllowRequest(key string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	es := cb.endpoint(key)
	if es.state != StateOpen {
		return true
	}
	if cb.now().Before(es.openUntil) {
		return false
	}
	es.state = StateHalfOpen
	es.failures = 0
	es.successes = 0
	return true
}

// RecordFailure records a failed call to key.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	es := cb.endpoint(key)
	switch es.state {
	case StateClosed:
		es.failures++
		if es.failures >= cb.cfg.FailureThreshold {
			cb.trip(es)
		}
	case StateHalfOpen:
		es.failures = 1
		cb.trip(es)
	}
}

// RecordSuccess records a successful call to key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	es := cb.endpoint(key)
	switch es.state {
	case StateClosed:
		es.failures = 0
	case StateHalfOpen:
		es.successes++
		if es.successes >= cb.cfg.HalfOpenSuccesses {
			es.state = StateClosed
			es.failures = 0
			es.successes = 0
		}
	}
}

// Status returns the circuit state of key and its consecutive failure count.
// It never changes state.
func (cb *CircuitBreaker) Status(key string) (State, int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	es, ok := cb.endpoints[key]
	if !ok {
		return StateClosed, 0
	}
	return es.state, es.failures
}

func (cb *CircuitBreaker) trip(es *endpointState) {
	es.state = StateOpen
	es.successes = 0
	es.openUntil = cb.now().Add(cb.cfg.ResetTimeout)
}
