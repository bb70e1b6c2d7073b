package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/config"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/database"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database = database.Config{Driver: database.DriverSQLite, DSN: ":memory:"}
	return cfg
}

func TestNew_ServesHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := monitoring.NewLoggerTo(io.Discard, slog.LevelError)

	a, err := New(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.False(t, a.Redis.IsEnabled())

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, key := range []string{"database", "redis", "ingest_cache", "leaderboard_cache", "github_pool", "breakers"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, map[string]interface{}{"github": "closed", "huggingface": "closed"}, body["breakers"])
}

func TestNew_BadDatabase(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "oracle"

	_, err := New(context.Background(), cfg, monitoring.NewLoggerTo(io.Discard, slog.LevelError))
	assert.Error(t, err)
}
