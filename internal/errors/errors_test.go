package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		category ErrorCategory
		status   int
		prefix   string
	}{
		{
			name:     "validation error",
			err:      NewValidationError("identifier is required"),
			category: CategoryValidation,
			status:   http.StatusBadRequest,
			prefix:   "[VALIDATION_ERROR]",
		},
		{
			name:     "not found error",
			err:      NewNotFoundError("repository not found", nil),
			category: CategoryNotFound,
			status:   http.StatusNotFound,
			prefix:   "[NOT_FOUND]",
		},
		{
			name:     "ingestion error",
			err:      NewIngestionError("github", fmt.Errorf("connection reset")),
			category: CategoryIngestion,
			status:   http.StatusBadGateway,
			prefix:   "[INGESTION_ERROR]",
		},
		{
			name:     "rate limit error",
			err:      NewRateLimitError("30s"),
			category: CategoryRateLimit,
			status:   http.StatusTooManyRequests,
			prefix:   "[RATE_LIMIT_EXCEEDED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Contains(t, tt.err.Error(), tt.prefix)
		})
	}
}

func TestClassificationHelpers(t *testing.T) {
	notFound := NewNotFoundError("model not found", nil)
	wrapped := fmt.Errorf("ingest: %w", notFound)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsIngestion(wrapped))

	assert.True(t, IsValidation(NewValidationError("bad")))
	assert.True(t, IsIngestion(NewIngestionError("huggingface", nil)))
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))
}

func TestToAppError(t *testing.T) {
	assert.Nil(t, ToAppError(nil))

	original := NewValidationError("bad input")
	assert.Same(t, original, ToAppError(fmt.Errorf("wrapped: %w", original)))

	assert.Equal(t, CategoryTimeout, ToAppError(context.DeadlineExceeded).Category)
	assert.Equal(t, CategoryInternal, ToAppError(fmt.Errorf("boom")).Category)
}

func TestIngestionErrorUnwrapsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := NewIngestionError("github", cause)

	assert.ErrorIs(t, err, cause)
}

func TestAbortWritesResponseBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tools/missing", nil)

	Abort(c, NewNotFoundError("tool not found", nil))

	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tool not found", body.Error)
	assert.Equal(t, CategoryNotFound, body.Category)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestErrorHandlerRendersAttachedError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(NewValidationError("limit must be positive"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "limit must be positive")
}
