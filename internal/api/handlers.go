// Package api exposes ingestion, scoring, tools, moderation and the
// leaderboard over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/leaderboard"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/ratelimit"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/scoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/security"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/tools"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

// Ingester resolves an identifier into an ingestion result
type Ingester interface {
	Ingest(ctx context.Context, identifier string) (types.IngestResult, error)
}

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// Handler carries the services the routes call into
type Handler struct {
	Ingester    Ingester
	Tools       *tools.Service
	Leaderboard *leaderboard.Service
	Limiter     *ratelimit.RateLimiter
	Security    *security.SecurityMiddleware
	Metrics     *monitoring.Metrics
	Logger      *monitoring.Logger

	// Checks decide /health; Stats are folded into /metrics
	Checks map[string]HealthCheck
	Stats  map[string]func() map[string]interface{}

	EnableProfiling bool
}

// Health godoc
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
		"checks":    checks,
	})
}

// GetMetrics godoc
// @Summary      Runtime and request metrics
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /metrics [get]
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Metrics.RecordRuntime()

	response := gin.H{"metrics": h.Metrics.GetStats()}
	for name, stats := range h.Stats {
		response[name] = stats()
	}
	c.JSON(http.StatusOK, response)
}

// Ingest godoc
// @Summary      Ingest a GitHub repository or Hugging Face model
// @Description  Reads registry metadata and returns pre-filled fields plus a vetting snapshot
// @Tags         ingest
// @Accept       json
// @Produce      json
// @Param        request  body      types.IngestRequest  true  "Identifier"
// @Success      200      {object}  types.IngestResult
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Failure      429      {object}  errors.ErrorResponse
// @Failure      502      {object}  errors.ErrorResponse
// @Router       /api/ingest [post]
func (h *Handler) Ingest(c *gin.Context) {
	var req types.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Repository ID or URL is required", err.Error()))
		return
	}

	result, err := h.Ingester.Ingest(c.Request.Context(), req.RepoID)
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Score godoc
// @Summary      Compute a Frugal Score
// @Tags         score
// @Accept       json
// @Produce      json
// @Param        request  body      types.ScoreRequest  true  "Declared attributes and vetting flags"
// @Success      200      {object}  types.FrugalScore
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /api/score [post]
func (h *Handler) Score(c *gin.Context) {
	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	score := scoring.Calculate(req.ToolAttributes, req.HasWeights, req.LicenseOK)
	h.Metrics.IncrementScore()
	c.JSON(http.StatusOK, score)
}

// SubmitTool godoc
// @Summary      Submit a tool
// @Tags         tools
// @Accept       json
// @Produce      json
// @Param        request  body      tools.SubmitRequest  true  "Tool"
// @Success      201      {object}  database.Tool
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /api/tools [post]
func (h *Handler) SubmitTool(c *gin.Context) {
	var req tools.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Missing required fields", err.Error()))
		return
	}

	tool, err := h.Tools.Submit(c.Request.Context(), req)
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, tool)
}

// ListTools godoc
// @Summary      List approved tools
// @Tags         tools
// @Produce      json
// @Param        category  query     string  false  "Category"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  map[string]interface{}
// @Router       /api/tools [get]
func (h *Handler) ListTools(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errors.Abort(c, errors.NewValidationError("limit must be a non-negative integer", v))
			return
		}
		limit = n
	}

	list, err := h.Tools.List(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": list, "total": len(list)})
}

// GetTool godoc
// @Summary      Get a tool
// @Tags         tools
// @Produce      json
// @Param        slug  path      string  true  "Tool slug"
// @Success      200   {object}  database.Tool
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /api/tools/{slug} [get]
func (h *Handler) GetTool(c *gin.Context) {
	tool, err := h.Tools.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tool)
}

// UpdateTool godoc
// @Summary      Edit a tool
// @Description  Replaces the editable fields and recomputes the score
// @Tags         tools
// @Accept       json
// @Produce      json
// @Param        slug     path      string               true  "Tool slug"
// @Param        request  body      tools.SubmitRequest  true  "Tool"
// @Success      200      {object}  database.Tool
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /api/tools/{slug} [put]
func (h *Handler) UpdateTool(c *gin.Context) {
	var req tools.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Missing required fields", err.Error()))
		return
	}

	tool, err := h.Tools.Update(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tool)
}

// RecordView godoc
// @Summary      Count a tool page view
// @Tags         tools
// @Param        slug  path  string  true  "Tool slug"
// @Success      204
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /api/tools/{slug}/views [post]
func (h *Handler) RecordView(c *gin.Context) {
	if err := h.Tools.RecordView(c.Request.Context(), c.Param("slug")); err != nil {
		errors.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLeaderboard godoc
// @Summary      Ranked leaderboard tab
// @Tags         leaderboard
// @Produce      json
// @Param        tab  query     string  false  "frugal50, edge, tiny, opensource or trending"
// @Success      200  {object}  leaderboard.Response
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /api/leaderboard [get]
func (h *Handler) GetLeaderboard(c *gin.Context) {
	response, err := h.Leaderboard.Get(c.Request.Context(), c.Query("tab"))
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetFresh godoc
// @Summary      Most recently approved tools
// @Tags         leaderboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/leaderboard/fresh [get]
func (h *Handler) GetFresh(c *gin.Context) {
	fresh, err := h.Leaderboard.Fresh(c.Request.Context())
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fresh": fresh})
}

// AdminOverview godoc
// @Summary      Moderation queue and stats
// @Tags         admin
// @Produce      json
// @Success      200  {object}  tools.Overview
// @Router       /api/admin/tools [get]
func (h *Handler) AdminOverview(c *gin.Context) {
	overview, err := h.Tools.Overview(c.Request.Context())
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// UpdateStatus godoc
// @Summary      Record a moderation decision
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Tool id"
// @Param        request  body      tools.StatusRequest  true  "Decision"
// @Success      200      {object}  database.Tool
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /api/admin/tools/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req tools.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Abort(c, errors.NewValidationError("Status is required", err.Error()))
		return
	}

	tool, err := h.Tools.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Feedback)
	if err != nil {
		errors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tool)
}
