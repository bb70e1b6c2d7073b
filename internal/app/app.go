// Package app wires the configured components of the hub together.
package app

import (
	"context"
	"log/slog"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/adapters"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/api"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/config"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/database"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/ingest"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/leaderboard"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/ratelimit"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/resilience"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/security"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/tools"
	"github.com/gin-gonic/gin"
)

// Registries bundles the two registry adapters with the analyzer over them
type Registries struct {
	GitHub      *adapters.GitHubAdapter
	HuggingFace *adapters.HuggingFaceAdapter
	Analyzer    *ingest.Analyzer
}

// NewRegistries builds the adapters and analyzer from cfg. Breaker
// transitions are counted in metrics.
func NewRegistries(cfg *config.Config, metrics *monitoring.Metrics, logger *monitoring.Logger) *Registries {
	pool := resilience.DefaultPoolConfig()
	pool.RequestTimeout = cfg.Registries.RequestTimeout
	breaker := resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		RecoveryTimeout:  cfg.Breaker.RecoveryTimeout,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
	}

	gh := adapters.NewGitHubAdapter(adapters.GitHubConfig{
		Token:      cfg.Registries.GitHubToken,
		APIBaseURL: cfg.Registries.GitHubAPIURL,
		RawBaseURL: cfg.Registries.GitHubRawURL,
		Pool:       pool,
		Breaker:    breaker,
	})
	hf := adapters.NewHuggingFaceAdapter(adapters.HuggingFaceConfig{
		Token:   cfg.Registries.HuggingFaceToken,
		BaseURL: cfg.Registries.HuggingFaceURL,
		Pool:    pool,
		Breaker: breaker,
	})
	metrics.ObserveBreaker(gh.Breaker(), logger)
	metrics.ObserveBreaker(hf.Breaker(), logger)

	analyzer := ingest.NewAnalyzer(gh, hf, ingest.Options{
		CacheTTL:  cfg.Cache.IngestTTL,
		Metrics:   metrics,
		Logger:    logger,
		Validator: security.NewSecurityMiddleware(cfg.Security),
	})

	return &Registries{GitHub: gh, HuggingFace: hf, Analyzer: analyzer}
}

// Close releases the analyzer cache and both connection pools
func (r *Registries) Close() {
	r.Analyzer.Close()
	errors.SafeClose(r.GitHub, "github adapter")
	errors.SafeClose(r.HuggingFace, "huggingface adapter")
}

// App is the fully wired HTTP service
type App struct {
	Config      *config.Config
	Logger      *monitoring.Logger
	Metrics     *monitoring.Metrics
	DB          *database.DB
	Registries  *Registries
	Tools       *tools.Service
	Leaderboard *leaderboard.Service
	Redis       *ratelimit.RedisClient
	Limiter     *ratelimit.RateLimiter
	Router      *gin.Engine
}

// New opens the store, connects Redis when configured and builds the router.
// A Redis outage is not fatal: limits fall back to in-process buckets.
func New(ctx context.Context, cfg *config.Config, logger *monitoring.Logger) (*App, error) {
	metrics := monitoring.NewMetrics()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, errors.NewConfigurationError("Failed to open database", err)
	}
	repo := database.NewRepository(db)

	redisClient := ratelimit.Disabled()
	if cfg.Redis.Addr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable, continuing without it", "addr", cfg.Redis.Addr, "error", err)
		} else {
			redisClient = client
		}
	}
	limiter := ratelimit.NewRateLimiter(redisClient, cfg.RateLimit, metrics)

	registries := NewRegistries(cfg, metrics, logger)
	sm := security.NewSecurityMiddleware(cfg.Security)

	boardCache := leaderboard.NewLeaderboardCache(cfg.Cache.LeaderboardTTL)
	board := leaderboard.NewServiceWithCache(repo, boardCache)
	toolService := tools.NewService(repo, tools.Options{
		Vetter:      registries.Analyzer,
		Invalidator: board,
		Validator:   sm,
		Metrics:     metrics,
		Logger:      logger,
	})

	boardCache.WarmCache(ctx, board)

	handler := &api.Handler{
		Ingester:    registries.Analyzer,
		Tools:       toolService,
		Leaderboard: board,
		Limiter:     limiter,
		Security:    sm,
		Metrics:     metrics,
		Logger:      logger,
		Checks: map[string]api.HealthCheck{
			"database": func(ctx context.Context) error { return db.Ping() },
		},
		Stats: map[string]func() map[string]interface{}{
			"database":          db.GetPoolStats,
			"redis":             redisClient.GetPoolStats,
			"rate_limiter":      limiter.GetStats,
			"ingest_cache":      registries.Analyzer.CacheStats,
			"leaderboard_cache": board.GetStats,
			"github_pool":       registries.GitHub.GetPoolStats,
			"huggingface_pool":  registries.HuggingFace.GetPoolStats,
			"breakers": func() map[string]interface{} {
				return map[string]interface{}{
					"github":      registries.GitHub.Breaker().State().String(),
					"huggingface": registries.HuggingFace.Breaker().State().String(),
				}
			},
		},
		EnableProfiling: cfg.Server.EnableProfiling,
	}
	if redisClient.IsEnabled() {
		handler.Checks["redis"] = redisClient.HealthCheck
	}

	router := api.NewRouter(handler)
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		slog.Warn("Invalid trusted proxies, trusting none", "error", err)
		_ = router.SetTrustedProxies(nil)
	}

	return &App{
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics,
		DB:          db,
		Registries:  registries,
		Tools:       toolService,
		Leaderboard: board,
		Redis:       redisClient,
		Limiter:     limiter,
		Router:      router,
	}, nil
}

// Close releases every resource in reverse order of creation
func (a *App) Close() {
	a.Leaderboard.Close()
	a.Registries.Close()
	a.Limiter.Close()
	errors.SafeClose(a.Redis, "redis client")
	errors.SafeClose(a.DB, "database")
}
