package resilience

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// ConnectionPool is a shared HTTP transport guarded by a circuit breaker.
// Only transport failures count against the breaker; a registry answering
// 404 is healthy.
type ConnectionPool struct {
	client         *http.Client
	transport      *http.Transport
	circuitBreaker *CircuitBreaker
	requestTimeout time.Duration

	inFlight int64
	total    int64
	failed   int64
}

// PoolConfig sizes the pool
type PoolConfig struct {
	MaxIdle        int
	MaxPerHost     int
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DefaultPoolConfig returns the sizing used for registry adapters
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdle:        10,
		MaxPerHost:     20,
		IdleTimeout:    30 * time.Second,
		RequestTimeout: defaultRequestTimeout,
	}
}

// NewConnectionPool creates a new connection pool with circuit breaker
func NewConnectionPool(cfg PoolConfig, cb *CircuitBreaker) *ConnectionPool {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          cfg.MaxIdle,
		MaxConnsPerHost:       cfg.MaxPerHost,
		MaxIdleConnsPerHost:   max(cfg.MaxIdle/2, 1),
		IdleConnTimeout:       cfg.IdleTimeout,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &ConnectionPool{
		client:         &http.Client{Transport: transport},
		transport:      transport,
		circuitBreaker: cb,
		requestTimeout: cfg.RequestTimeout,
	}
}

// DoRequest executes an HTTP request with circuit breaker protection.
// Callers bound the exchange, body read included, with RequestTimeout on ctx.
func (cp *ConnectionPool) DoRequest(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	var resp *http.Response

	err := cp.circuitBreaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return err
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		atomic.AddInt64(&cp.inFlight, 1)
		defer atomic.AddInt64(&cp.inFlight, -1)
		atomic.AddInt64(&cp.total, 1)

		start := time.Now()
		resp, err = cp.client.Do(req)
		duration := time.Since(start)

		if err != nil {
			atomic.AddInt64(&cp.failed, 1)
			slog.Warn("Request failed", "url", url, "error", err, "duration_ms", duration.Milliseconds())
			return err
		}

		slog.Debug("Request completed", "url", url, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// RequestTimeout is the per-request budget callers should apply to their context
func (cp *ConnectionPool) RequestTimeout() time.Duration {
	return cp.requestTimeout
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"in_flight":             atomic.LoadInt64(&cp.inFlight),
		"total_requests":        atomic.LoadInt64(&cp.total),
		"failed_requests":       atomic.LoadInt64(&cp.failed),
		"request_timeout_ms":    cp.requestTimeout.Milliseconds(),
		"circuit_breaker_state": cp.circuitBreaker.State().String(),
	}
}

// Close releases idle connections
func (cp *ConnectionPool) Close() error {
	cp.transport.CloseIdleConnections()
	slog.Info("Connection pool closed")
	return nil
}
