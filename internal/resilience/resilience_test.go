package resilience

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("github", CircuitBreakerConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	failing := func() error { return fmt.Errorf("connection refused") }

	assert.Error(t, cb.Call(failing))
	assert.Equal(t, StateClosed, cb.State())
	assert.Error(t, cb.Call(failing))
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error {
		called = true
		return nil
	})

	var cbErr *CircuitBreakerError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, "github", cbErr.Name)
	assert.False(t, called)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("huggingface", CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Second,
		SuccessThreshold: 2,
	})
	cb.now = func() time.Time { return now }

	var transitions []string
	cb.OnStateChange(func(_ string, from, to CircuitBreakerState) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	_ = cb.Call(func() error { return fmt.Errorf("timeout") })
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(11 * time.Second)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("github", CircuitBreakerConfig{FailureThreshold: 3, RecoveryTimeout: time.Second, SuccessThreshold: 1})
	cb.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_ = cb.Call(func() error { return fmt.Errorf("fail") })
	}
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Second)
	_ = cb.Call(func() error { return fmt.Errorf("still failing") })
	assert.Equal(t, StateOpen, cb.State())
}

func TestConnectionPool_DoRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "frugal-test", r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1})
	pool := NewConnectionPool(DefaultPoolConfig(), cb)
	defer pool.Close()

	headers := map[string]string{"User-Agent": "frugal-test"}

	resp, err := pool.DoRequest(context.Background(), http.MethodGet, server.URL+"/ok", headers)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = pool.DoRequest(context.Background(), http.MethodGet, server.URL+"/missing", headers)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, StateClosed, cb.State(), "HTTP error statuses must not trip the breaker")

	stats := pool.GetStats()
	assert.EqualValues(t, 2, stats["total_requests"])
	assert.EqualValues(t, 0, stats["failed_requests"])
}

func TestConnectionPool_TransportFailureTripsBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, RecoveryTimeout: time.Minute})
	pool := NewConnectionPool(DefaultPoolConfig(), cb)

	_, err := pool.DoRequest(context.Background(), http.MethodGet, url, nil)
	require.Error(t, err)
	assert.Equal(t, StateOpen, cb.State())
}
