// Package leaderboard ranks approved tools into the public tabs.
package leaderboard

import (
	"context"
	"sort"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/database"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/scoring"
)

// Tab names
const (
	TabFrugal50   = "frugal50"
	TabEdge       = "edge"
	TabTiny       = "tiny"
	TabOpenSource = "opensource"
	TabTrending   = "trending"
)

// Tabs lists every tab in display order
var Tabs = []string{TabFrugal50, TabEdge, TabTiny, TabOpenSource, TabTrending}

const (
	DefaultCacheTTL = 5 * time.Minute

	// candidate pool every tab is cut from
	sourceLimit = 100
	tabLimit    = 50
	freshLimit  = 5

	edgeShare       = 0.6
	tinyShare       = 0.6
	openSourceShare = 0.7
)

// Entry is one ranked tool
type Entry struct {
	Rank       int        `json:"rank"`
	ID         string     `json:"id"`
	Slug       string     `json:"slug"`
	Name       string     `json:"name"`
	Tagline    string     `json:"tagline"`
	Category   string     `json:"category"`
	Total      int        `json:"frugal_score_total"`
	Footprint  int        `json:"score_footprint"`
	Hardware   int        `json:"score_hardware"`
	Energy     int        `json:"score_energy"`
	TCO        int        `json:"score_tco"`
	Data       int        `json:"score_data"`
	LicenseOK  bool       `json:"license_ok"`
	Views      int64      `json:"views"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// Response is a ranked tab
type Response struct {
	Tab     string  `json:"tab"`
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Service handles leaderboard operations
type Service struct {
	repo  *database.Repository
	cache *LeaderboardCache
}

// NewService creates a new leaderboard service
func NewService(repo *database.Repository) *Service {
	return NewServiceWithCache(repo, NewLeaderboardCache(DefaultCacheTTL))
}

// NewServiceWithCache creates a new leaderboard service with custom cache
func NewServiceWithCache(repo *database.Repository, cache *LeaderboardCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ValidTab reports whether tab names a leaderboard tab
func ValidTab(tab string) bool {
	for _, t := range Tabs {
		if t == tab {
			return true
		}
	}
	return false
}

// Get returns a ranked tab. An empty tab means frugal50.
func (s *Service) Get(ctx context.Context, tab string) (*Response, error) {
	if tab == "" {
		tab = TabFrugal50
	}
	if !ValidTab(tab) {
		return nil, errors.NewValidationError("Unknown leaderboard tab", tab)
	}

	if cached, ok := s.cache.GetTab(tab); ok {
		return cached, nil
	}

	tools, err := s.repo.ListApproved(ctx, sourceLimit, "")
	if err != nil {
		return nil, err
	}

	ranked := Rank(tab, toEntries(tools))
	response := &Response{Tab: tab, Entries: ranked, Total: len(ranked)}
	s.cache.SetTab(tab, response)
	return response, nil
}

// Fresh returns the most recently approved tools
func (s *Service) Fresh(ctx context.Context) ([]Entry, error) {
	if cached, ok := s.cache.GetFresh(); ok {
		return cached, nil
	}

	tools, err := s.repo.ListFresh(ctx, freshLimit)
	if err != nil {
		return nil, err
	}

	entries := toEntries(tools)
	s.cache.SetFresh(entries)
	return entries, nil
}

// Invalidate drops cached rankings after moderation or edits
func (s *Service) Invalidate() {
	s.cache.InvalidateAll()
}

// GetStats returns cache statistics
func (s *Service) GetStats() map[string]interface{} {
	return s.cache.GetStats()
}

// Close stops the cache janitors
func (s *Service) Close() {
	s.cache.Close()
}

// Rank filters and orders entries, already sorted by descending total, for
// a tab and numbers them from 1.
func Rank(tab string, entries []Entry) []Entry {
	var selected []Entry
	switch tab {
	case TabEdge:
		selected = filter(entries, func(e Entry) bool { return atLeast(e.Hardware, scoring.MaxHardware, edgeShare) })
	case TabTiny:
		selected = filter(entries, func(e Entry) bool { return atLeast(e.Footprint, scoring.MaxFootprint, tinyShare) })
	case TabOpenSource:
		selected = filter(entries, func(e Entry) bool { return e.LicenseOK || atLeast(e.TCO, scoring.MaxTCO, openSourceShare) })
	case TabTrending:
		selected = append([]Entry{}, entries...)
		sort.SliceStable(selected, func(i, j int) bool { return selected[i].Views > selected[j].Views })
	default:
		selected = append([]Entry{}, entries...)
	}

	if len(selected) > tabLimit {
		selected = selected[:tabLimit]
	}
	for i := range selected {
		selected[i].Rank = i + 1
	}
	return selected
}

func atLeast(score, max int, share float64) bool {
	return float64(score) >= share*float64(max)
}

func filter(entries []Entry, keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func toEntries(tools []database.Tool) []Entry {
	entries := make([]Entry, 0, len(tools))
	for i := range tools {
		t := &tools[i]
		entries = append(entries, Entry{
			ID:         t.ID,
			Slug:       t.Slug,
			Name:       t.Name,
			Tagline:    t.Tagline,
			Category:   t.Category,
			Total:      t.FrugalScoreTotal,
			Footprint:  t.ScoreFootprint,
			Hardware:   t.ScoreHardware,
			Energy:     t.ScoreEnergy,
			TCO:        t.ScoreTCO,
			Data:       t.ScoreData,
			LicenseOK:  t.Vetting().LicenseOK,
			Views:      t.Views,
			ApprovedAt: t.ApprovedAt,
		})
	}
	return entries
}
