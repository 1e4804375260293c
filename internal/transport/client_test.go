package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/checkout-orchestrator/internal/transport/circuitbreaker"
)

type echo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestIdempotencyKey(t *testing.T) {
	key1 := IdempotencyKey("order")
	key2 := IdempotencyKey("order")

	assert.NotEqual(t, key1, key2)
	assert.Contains(t, key1, "order-")
	assert.LessOrEqual(t, len(key1), maxIdempotencyKeyLen)
}

func TestClient_Post_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "JWT abc", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var in map[string]string
		require.NoError(t, json.Unmarshal(body, &in))
		assert.Equal(t, "authorizenet", in["methodId"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p-1","status":"ok"}`))
	}))
	defer server.Close()

	c := New(server.URL, WithHeader("Authorization", "JWT abc"))
	var out echo
	err := c.Post(context.Background(), "/api/payments", map[string]string{"methodId": "authorizenet"}, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, echo{ID: "p-1", Status: "ok"}, out)
}

func TestClient_RetriesServerErrorsWithSameKey(t *testing.T) {
	var calls int32
	keys := make(chan string, 3)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotency-Key")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"p-2"}`))
	}))
	defer server.Close()

	c := New(server.URL, WithRetry(2, time.Millisecond))
	var out echo
	require.NoError(t, c.Post(context.Background(), "/x", struct{}{}, &out, nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "p-2", out.ID)

	first := <-keys
	assert.Equal(t, first, <-keys)
	assert.Equal(t, first, <-keys)
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"declined"}`))
	}))
	defer server.Close()

	c := New(server.URL, WithRetry(2, time.Millisecond))
	err := c.Post(context.Background(), "/x", struct{}{}, nil, nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.False(t, httpErr.Retryable())
	assert.Contains(t, string(httpErr.Body), "declined")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ExhaustedRetriesReturnLastError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := New(server.URL, WithRetry(1, time.Millisecond))
	err := c.Get(context.Background(), "/orders/1", nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.True(t, httpErr.Retryable())
}

func TestClient_ContextCanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := New(server.URL, WithRetry(5, time.Second))
	err := c.Get(ctx, "/slow", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_GetSendsNoIdempotencyKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Idempotency-Key"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"id":"o-1"}`))
	}))
	defer server.Close()

	var out echo
	require.NoError(t, New(server.URL+"/").Get(context.Background(), "/orders/1", &out))
	assert.Equal(t, "o-1", out.ID)
}

func TestClient_CircuitBreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{FailureThreshold: 2, ResetTimeout: time.Hour})
	c := New(server.URL, WithRetry(0, 0), WithCircuitBreaker(cb, "payments"))

	for i := 0; i < 2; i++ {
		var httpErr *HTTPError
		require.True(t, errors.As(c.Get(context.Background(), "/x", nil), &httpErr))
	}

	err := c.Get(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	state, _ := cb.Status("payments")
	assert.Equal(t, circuitbreaker.StateOpen, state)
}

func TestClient_ClientErrorsKeepCircuitClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{FailureThreshold: 1})
	c := New(server.URL, WithCircuitBreaker(cb, "orders"))

	for i := 0; i < 3; i++ {
		assert.Error(t, c.Get(context.Background(), "/x", nil))
	}
	state, _ := cb.Status("orders")
	assert.Equal(t, circuitbreaker.StateClosed, state)
}
