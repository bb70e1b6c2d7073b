package api

import (
	"net/http/pprof"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/middleware"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/ratelimit"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with the full middleware chain
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()

	compression := middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())
	if h.Stats == nil {
		h.Stats = map[string]func() map[string]interface{}{}
	}
	h.Stats["compression"] = compression.GetStats

	r.Use(monitoring.RequestIDMiddleware())
	r.Use(errors.RecoveryHandler())
	r.Use(monitoring.MonitoringMiddleware(h.Metrics, h.Logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(h.Logger))
	r.Use(h.Security.SecurityHeaders)
	r.Use(h.Security.CORS())
	r.Use(h.Security.ValidateContentType)
	r.Use(h.Security.RequestTimeout)
	r.Use(errors.ErrorHandler())
	r.Use(compression.Handler())

	r.GET("/health", h.Health)
	r.GET("/metrics", h.GetMetrics)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limits := h.Limiter.Config()
	ingestLimit := h.Limiter.IPRateLimitMiddleware("ingest", ratelimit.PerMinute(limits.IngestPerMin))
	writeLimit := h.Limiter.IPRateLimitMiddleware("write", ratelimit.PerMinute(limits.WritePerMin))

	api := r.Group("/api")
	{
		api.POST("/ingest", ingestLimit, h.Ingest)
		api.POST("/score", h.Score)

		api.GET("/tools", h.ListTools)
		api.POST("/tools", writeLimit, h.SubmitTool)
		api.GET("/tools/:slug", h.GetTool)
		api.PUT("/tools/:slug", writeLimit, h.UpdateTool)
		api.POST("/tools/:slug/views", h.RecordView)

		api.GET("/leaderboard", h.GetLeaderboard)
		api.GET("/leaderboard/fresh", h.GetFresh)

		admin := api.Group("/admin")
		admin.GET("/tools", h.AdminOverview)
		admin.PATCH("/tools/:id/status", writeLimit, h.UpdateStatus)
	}

	if h.EnableProfiling {
		debug := r.Group("/debug/pprof")
		debug.GET("/", gin.WrapF(pprof.Index))
		debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		debug.GET("/profile", gin.WrapF(pprof.Profile))
		debug.GET("/symbol", gin.WrapF(pprof.Symbol))
		debug.GET("/trace", gin.WrapF(pprof.Trace))
		debug.GET("/:profile", func(c *gin.Context) {
			pprof.Handler(c.Param("profile")).ServeHTTP(c.Writer, c.Request)
		})
	}

	return r
}
