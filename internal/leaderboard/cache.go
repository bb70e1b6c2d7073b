package leaderboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/cache"
)

const freshKey = "fresh"

// LeaderboardCache holds ranked tabs and the fresh list between store reads
type LeaderboardCache struct {
	tabs  *cache.Cache[*Response]
	fresh *cache.Cache[[]Entry]
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		tabs:  cache.New[*Response](ttl),
		fresh: cache.New[[]Entry](ttl),
	}
}

// GetTab retrieves a cached tab
func (lc *LeaderboardCache) GetTab(tab string) (*Response, bool) {
	response, found := lc.tabs.Get(tab)
	if found {
		slog.Debug("Leaderboard cache hit", "tab", tab)
	}
	return response, found
}

// SetTab caches a ranked tab
func (lc *LeaderboardCache) SetTab(tab string, response *Response) {
	lc.tabs.Set(tab, response)
	slog.Debug("Leaderboard cached", "tab", tab, "entries", len(response.Entries))
}

// GetFresh retrieves the cached fresh list
func (lc *LeaderboardCache) GetFresh() ([]Entry, bool) {
	return lc.fresh.Get(freshKey)
}

// SetFresh caches the fresh list
func (lc *LeaderboardCache) SetFresh(entries []Entry) {
	lc.fresh.Set(freshKey, entries)
}

// InvalidateAll drops every cached tab and the fresh list
func (lc *LeaderboardCache) InvalidateAll() {
	lc.tabs.Clear()
	lc.fresh.Clear()
	slog.Debug("Leaderboard cache invalidated")
}

// GetStats returns cache statistics
func (lc *LeaderboardCache) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"tabs":  lc.tabs.Stats(),
		"fresh": lc.fresh.Stats(),
	}
}

// Close stops the cache janitors
func (lc *LeaderboardCache) Close() {
	lc.tabs.Close()
	lc.fresh.Close()
}

// WarmCache pre-populates every tab and the fresh list
func (lc *LeaderboardCache) WarmCache(ctx context.Context, service *Service) {
	slog.Info("Starting leaderboard cache warming")

	for _, tab := range Tabs {
		if _, err := service.Get(ctx, tab); err != nil {
			slog.Error("Failed to warm leaderboard tab", "error", err, "tab", tab)
		}
	}
	if _, err := service.Fresh(ctx); err != nil {
		slog.Error("Failed to warm fresh list", "error", err)
	}

	slog.Info("Leaderboard cache warming completed")
}
