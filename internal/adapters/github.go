package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/resilience"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"
	DefaultGitHubRawURL = "https://raw.githubusercontent.com"
)

// GitHubLicense is the license block of a repository
type GitHubLicense struct {
	Key    string `json:"key"`
	SPDXID string `json:"spdx_id"`
	Name   string `json:"name"`
}

// GitHubRepo represents GitHub repository metadata
type GitHubRepo struct {
	Name            string         `json:"name"`
	FullName        string         `json:"full_name"`
	Description     *string        `json:"description"`
	HTMLURL         string         `json:"html_url"`
	License         *GitHubLicense `json:"license"`
	StargazersCount int            `json:"stargazers_count"`
	PushedAt        *time.Time     `json:"pushed_at"`
}

// LicenseKey returns the license key, or "" when the repository declares none
func (r *GitHubRepo) LicenseKey() string {
	if r.License == nil {
		return ""
	}
	return r.License.Key
}

// DescriptionText returns the description, or "" when it is null
func (r *GitHubRepo) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return strings.TrimSpace(*r.Description)
}

func (r *GitHubRepo) validate() error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.HTMLURL == "" {
		missing = append(missing, "html_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("repository payload missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// GitHubCommit is one entry of the commits listing
type GitHubCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author *struct {
			Date time.Time `json:"date"`
		} `json:"author"`
		Committer *struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// Date returns the author date, falling back to the committer date
func (c GitHubCommit) Date() time.Time {
	if c.Commit.Author != nil && !c.Commit.Author.Date.IsZero() {
		return c.Commit.Author.Date
	}
	if c.Commit.Committer != nil {
		return c.Commit.Committer.Date
	}
	return time.Time{}
}

// GitHubConfig configures the GitHub adapter
type GitHubConfig struct {
	Token      string
	APIBaseURL string
	RawBaseURL string
	Pool       resilience.PoolConfig
	Breaker    resilience.CircuitBreakerConfig
}

// GitHubAdapter fetches repository data from the GitHub REST API
type GitHubAdapter struct {
	registryClient
	apiBaseURL string
	rawBaseURL string
	breaker    *resilience.CircuitBreaker
}

// NewGitHubAdapter creates a GitHub adapter with its own pool and circuit breaker
func NewGitHubAdapter(cfg GitHubConfig) *GitHubAdapter {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultGitHubAPIURL
	}
	if cfg.RawBaseURL == "" {
		cfg.RawBaseURL = DefaultGitHubRawURL
	}

	if cfg.Pool == (resilience.PoolConfig{}) {
		cfg.Pool = resilience.DefaultPoolConfig()
	}

	cb := resilience.NewCircuitBreaker("github-api", cfg.Breaker)

	return &GitHubAdapter{
		registryClient: registryClient{
			source: "github",
			pool:   resilience.NewConnectionPool(cfg.Pool, cb),
			token:  cfg.Token,
		},
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		rawBaseURL: strings.TrimRight(cfg.RawBaseURL, "/"),
		breaker:    cb,
	}
}

// Breaker exposes the adapter's circuit breaker for monitoring hooks
func (g *GitHubAdapter) Breaker() *resilience.CircuitBreaker {
	return g.breaker
}

// FetchRepo fetches repository metadata
func (g *GitHubAdapter) FetchRepo(ctx context.Context, owner, repo string) (*GitHubRepo, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", g.apiBaseURL, url.PathEscape(owner), url.PathEscape(repo))

	var data GitHubRepo
	if err := g.getJSON(ctx, endpoint, "application/vnd.github+json", "GitHub repository", &data); err != nil {
		return nil, err
	}
	if err := data.validate(); err != nil {
		return nil, errors.NewIngestionError(g.source, err)
	}
	return &data, nil
}

// FetchLatestCommitTime returns the date of the most recent commit on the
// default branch, or the zero time when the repository has no commits
func (g *GitHubAdapter) FetchLatestCommitTime(ctx context.Context, owner, repo string) (time.Time, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=1", g.apiBaseURL, url.PathEscape(owner), url.PathEscape(repo))

	var commits []GitHubCommit
	if err := g.getJSON(ctx, endpoint, "application/vnd.github+json", "GitHub commits", &commits); err != nil {
		return time.Time{}, err
	}
	if len(commits) == 0 {
		return time.Time{}, nil
	}
	return commits[0].Date(), nil
}

// FetchReadme fetches the raw README from the default branch
func (g *GitHubAdapter) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/HEAD/README.md", g.rawBaseURL, url.PathEscape(owner), url.PathEscape(repo))
	return g.getText(ctx, endpoint, "GitHub README")
}
