// Package ingest resolves a GitHub URL or Hugging Face model id into
// descriptive fields and a vetting snapshot.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/adapters"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/cache"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/security"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheTTL = 10 * time.Minute

// GitHubSource is the subset of the GitHub adapter the analyzer reads from
type GitHubSource interface {
	FetchRepo(ctx context.Context, owner, repo string) (*adapters.GitHubRepo, error)
	FetchLatestCommitTime(ctx context.Context, owner, repo string) (time.Time, error)
	FetchReadme(ctx context.Context, owner, repo string) (string, error)
}

// HuggingFaceSource is the subset of the Hugging Face adapter the analyzer reads from
type HuggingFaceSource interface {
	FetchModel(ctx context.Context, modelID string) (*adapters.HFModel, error)
	FetchReadme(ctx context.Context, modelID string) (string, error)
}

// Options tune an Analyzer. Zero values are replaced with defaults.
type Options struct {
	CacheTTL  time.Duration
	Metrics   *monitoring.Metrics
	Logger    *monitoring.Logger
	Validator *security.SecurityMiddleware
	Now       func() time.Time
}

// Analyzer implements the ingest operation
type Analyzer struct {
	github      GitHubSource
	huggingFace HuggingFaceSource

	results *cache.Cache[types.IngestResult]
	flight  singleflight.Group

	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	validator *security.SecurityMiddleware
	now       func() time.Time
}

// NewAnalyzer wires an analyzer to its registry sources
func NewAnalyzer(github GitHubSource, huggingFace HuggingFaceSource, opts Options) *Analyzer {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics()
	}
	if opts.Validator == nil {
		opts.Validator = security.NewSecurityMiddleware(security.DefaultSecurityConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Analyzer{
		github:      github,
		huggingFace: huggingFace,
		results:     cache.New[types.IngestResult](opts.CacheTTL),
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		validator:   opts.Validator,
		now:         opts.Now,
	}
}

// Ingest classifies identifier, reads the matching registry and derives the
// vetting snapshot. Results are memoised per trimmed identifier.
func (a *Analyzer) Ingest(ctx context.Context, identifier string) (types.IngestResult, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return types.IngestResult{}, errors.NewValidationError("Repository ID or URL is required")
	}
	if err := a.validator.ValidateIdentifier(id); err != nil {
		return types.IngestResult{}, errors.NewValidationError("Invalid repository identifier", err.Error())
	}

	start := time.Now()
	key := cache.Key("ingest", id)

	if cached, ok := a.results.Get(key); ok {
		a.metrics.IncrementCacheHit()
		a.logIngest(id, cached, time.Since(start), true, nil)
		return cloneResult(cached), nil
	}
	a.metrics.IncrementCacheMiss()

	// The shared fetch must not inherit one caller's cancellation; each
	// registry request is still bounded by the pool timeout.
	fetchCtx := context.WithoutCancel(ctx)
	ch := a.flight.DoChan(key, func() (interface{}, error) {
		var (
			result types.IngestResult
			err    error
		)
		if IsGitHub(id) {
			result, err = a.ingestGitHub(fetchCtx, id)
		} else {
			result, err = a.ingestHuggingFace(fetchCtx, id)
		}
		if err != nil {
			return nil, err
		}
		a.results.Set(key, result)
		return result, nil
	})

	var (
		v   interface{}
		err error
	)
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = errors.NewTimeoutError("Ingestion cancelled", ctx.Err())
	}

	a.metrics.RecordIngest(err == nil)
	if err != nil {
		a.logIngest(id, types.IngestResult{}, time.Since(start), false, err)
		return types.IngestResult{}, err
	}

	result := v.(types.IngestResult)
	a.logIngest(id, result, time.Since(start), false, nil)
	return cloneResult(result), nil
}

func (a *Analyzer) ingestGitHub(ctx context.Context, id string) (types.IngestResult, error) {
	owner, name, ok := ParseGitHub(id)
	if !ok {
		return types.IngestResult{}, errors.NewNotFoundError("Invalid GitHub URL format", fmt.Errorf("no owner/repo in %q", id))
	}

	var (
		repo       *adapters.GitHubRepo
		lastCommit time.Time
		readme     string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		repo, err = a.github.FetchRepo(gctx, owner, name)
		a.recordCall(types.SourceGitHub, "repo", err)
		return err
	})

	g.Go(func() error {
		ts, err := a.github.FetchLatestCommitTime(gctx, owner, name)
		a.recordCall(types.SourceGitHub, "commits", err)
		if err != nil {
			slog.Debug("Commit activity unavailable", "repo", owner+"/"+name, "error", err)
			return nil
		}
		lastCommit = ts
		return nil
	})

	g.Go(func() error {
		text, err := a.github.FetchReadme(gctx, owner, name)
		a.recordCall(types.SourceGitHub, "readme", err)
		if err != nil {
			slog.Debug("README unavailable", "repo", owner+"/"+name, "error", err)
			return nil
		}
		readme = text
		return nil
	})

	if err := g.Wait(); err != nil {
		return types.IngestResult{}, err
	}

	tagline := repo.DescriptionText()
	if tagline == "" {
		tagline = fmt.Sprintf("Open source project by %s", owner)
	}
	description := security.SanitizeDescription(StripFrontmatter(readme))

	return types.IngestResult{
		Name:        repo.Name,
		Tagline:     tagline,
		Description: description,
		URL:         repo.HTMLURL,
		Source:      types.SourceGitHub,
		Analysis: types.VettingResult{
			HasWeights:       true,
			IsActive:         IsActive(lastCommit, a.now()),
			LicenseOK:        LicenseOK(repo.LicenseKey(), true),
			DetectedKeywords: DetectKeywords(tagline + " " + description),
			Flags:            []string{},
		},
	}, nil
}

func (a *Analyzer) ingestHuggingFace(ctx context.Context, id string) (types.IngestResult, error) {
	modelID := NormalizeModelID(id)
	if !security.ValidModelID(modelID) {
		return types.IngestResult{}, errors.NewValidationError("Invalid Hugging Face model id", modelID)
	}

	var (
		model  *adapters.HFModel
		readme string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		model, err = a.huggingFace.FetchModel(gctx, modelID)
		a.recordCall(types.SourceHuggingFace, "model", err)
		return err
	})

	g.Go(func() error {
		text, err := a.huggingFace.FetchReadme(gctx, modelID)
		a.recordCall(types.SourceHuggingFace, "readme", err)
		if err != nil {
			slog.Debug("Model card unavailable", "model", modelID, "error", err)
			return nil
		}
		readme = text
		return nil
	})

	if err := g.Wait(); err != nil {
		return types.IngestResult{}, err
	}

	segments := strings.Split(model.ID, "/")
	name := segments[len(segments)-1]

	pipeline := model.PipelineTag
	if pipeline == "" {
		pipeline = "AI Model"
	}
	author := model.Author
	if author == "" {
		author = segments[0]
	}
	tagline := fmt.Sprintf("Hugging Face model: %s by %s", pipeline, author)
	description := security.SanitizeDescription(StripFrontmatter(readme))

	analysis := types.VettingResult{
		HasWeights:       HasWeightFile(model.Filenames()),
		LicenseOK:        LicenseOK(model.License(), false),
		DetectedKeywords: DetectKeywords(tagline + " " + description),
		Flags:            []string{},
	}
	if model.LastModified != nil {
		analysis.IsActive = IsActive(*model.LastModified, a.now())
	}
	if !analysis.HasWeights {
		analysis.Flags = append(analysis.Flags, FlagNoWeights)
	}

	return types.IngestResult{
		Name:        name,
		Tagline:     tagline,
		Description: description,
		URL:         adapters.DefaultHuggingFaceURL + "/" + modelID,
		Source:      types.SourceHuggingFace,
		Analysis:    analysis,
	}, nil
}

func (a *Analyzer) recordCall(source, operation string, err error) {
	a.metrics.RecordExternalAPIRequest(source, err == nil)
	if a.logger != nil && err != nil {
		a.logger.Debug("Registry read failed", "api_name", source, "operation", operation, "error", err)
	}
}

func (a *Analyzer) logIngest(id string, result types.IngestResult, elapsed time.Duration, cacheHit bool, err error) {
	if a.logger == nil {
		return
	}
	a.logger.IngestLogger(id, result.Source, len(result.Analysis.DetectedKeywords), len(result.Analysis.Flags), elapsed, cacheHit, err)
}

// Invalidate drops a memoised result so the next call re-reads the registry
func (a *Analyzer) Invalidate(identifier string) {
	a.results.Delete(cache.Key("ingest", strings.TrimSpace(identifier)))
}

// CacheStats exposes the result cache statistics
func (a *Analyzer) CacheStats() map[string]interface{} {
	return a.results.Stats()
}

// Close stops the result cache janitor
func (a *Analyzer) Close() {
	a.results.Close()
}

func cloneResult(r types.IngestResult) types.IngestResult {
	r.Analysis.DetectedKeywords = append([]string{}, r.Analysis.DetectedKeywords...)
	r.Analysis.Flags = append([]string{}, r.Analysis.Flags...)
	return r
}
