package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/resilience"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/security"
)

const (
	userAgent     = "Frugal-AI-Hub/1.0"
	maxReadmeSize = security.MaxDescriptionLength
	maxJSONSize   = 8 << 20
)

// registryClient is the request plumbing shared by the registry adapters
type registryClient struct {
	source string
	pool   *resilience.ConnectionPool
	token  string
}

func (rc *registryClient) headers(accept string) map[string]string {
	headers := map[string]string{
		"Accept":     accept,
		"User-Agent": userAgent,
	}
	if rc.token != "" {
		headers["Authorization"] = "Bearer " + rc.token
	}
	return headers
}

// getJSON decodes a successful response into out. Any non-2xx status is
// reported as not found; transport and decode faults as ingestion errors.
func (rc *registryClient) getJSON(ctx context.Context, url, accept, what string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, rc.pool.RequestTimeout())
	defer cancel()

	resp, err := rc.pool.DoRequest(ctx, http.MethodGet, url, rc.headers(accept))
	if err != nil {
		return errors.NewIngestionError(rc.source, fmt.Errorf("fetch %s: %w", what, err))
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewNotFoundError(
			fmt.Sprintf("%s not found", what),
			fmt.Errorf("%s API error: status %d, body: %s", rc.source, resp.StatusCode, strings.TrimSpace(string(body))),
		)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONSize)).Decode(out); err != nil {
		return errors.NewIngestionError(rc.source, fmt.Errorf("decode %s: %w", what, err))
	}
	return nil
}

// getText returns a raw text body. Callers treat failures as soft.
func (rc *registryClient) getText(ctx context.Context, url, what string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, rc.pool.RequestTimeout())
	defer cancel()

	resp, err := rc.pool.DoRequest(ctx, http.MethodGet, url, rc.headers("text/plain"))
	if err != nil {
		return "", errors.NewIngestionError(rc.source, fmt.Errorf("fetch %s: %w", what, err))
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", errors.NewNotFoundError(fmt.Sprintf("%s not found", what), fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadmeSize))
	if err != nil {
		return "", errors.NewIngestionError(rc.source, fmt.Errorf("read %s: %w", what, err))
	}
	return string(body), nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// GetPoolStats returns connection pool statistics
func (rc *registryClient) GetPoolStats() map[string]interface{} {
	return rc.pool.GetStats()
}

// Close closes the connection pool
func (rc *registryClient) Close() error {
	return rc.pool.Close()
}
