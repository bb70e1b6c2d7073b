// Package tools implements tool submission, editing and moderation on top of
// the tool store.
package tools

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/database"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/monitoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/scoring"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/security"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100

	slugSuffixLength = 5
)

var (
	slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

	knownHardware = []string{
		types.HardwareCPU, types.HardwareGPU, types.HardwareEdgeNPU, types.HardwareAppleSilicon,
	}
	knownDeployment = []string{
		types.DeploymentEdge, types.DeploymentOnPrem, types.DeploymentEnterprise,
	}
)

// Vetter produces a vetting snapshot for a tool URL
type Vetter interface {
	Ingest(ctx context.Context, identifier string) (types.IngestResult, error)
}

// Invalidator is notified when a change affects public rankings
type Invalidator interface {
	Invalidate()
}

// SubmitRequest is the payload for creating or editing a tool. Analysis is
// the snapshot the client received from ingestion; Revet asks the server to
// take a fresh one from the tool URL instead.
type SubmitRequest struct {
	Name        string `json:"name" binding:"required"`
	Tagline     string `json:"tagline"`
	Description string `json:"description_md"`
	URL         string `json:"url" binding:"required"`
	Category    string `json:"category" binding:"required"`
	OwnerID     string `json:"owner_id,omitempty"`
	types.ToolAttributes
	Analysis *types.VettingResult `json:"analysis,omitempty"`
	Revet    bool                 `json:"revet,omitempty"`
}

// Options wires optional collaborators into a Service
type Options struct {
	Vetter      Vetter
	Invalidator Invalidator
	Validator   *security.SecurityMiddleware
	Metrics     *monitoring.Metrics
	Logger      *monitoring.Logger
	Now         func() time.Time
}

// Service owns the submission and moderation workflows
type Service struct {
	repo        *database.Repository
	vetter      Vetter
	invalidator Invalidator
	validator   *security.SecurityMiddleware
	metrics     *monitoring.Metrics
	logger      *monitoring.Logger
	now         func() time.Time
}

// NewService creates a tool service
func NewService(repo *database.Repository, opts Options) *Service {
	if opts.Validator == nil {
		opts.Validator = security.NewSecurityMiddleware(security.DefaultSecurityConfig())
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:        repo,
		vetter:      opts.Vetter,
		invalidator: opts.Invalidator,
		validator:   opts.Validator,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// Submit validates a new tool, scores it and stores it as pending
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*database.Tool, error) {
	if err := s.normalize(&req); err != nil {
		return nil, err
	}

	vetting := types.VettingResult{}
	if req.Analysis != nil {
		vetting = *req.Analysis
	} else if req.Revet {
		var err error
		if vetting, err = s.vet(ctx, req.URL); err != nil {
			return nil, err
		}
	}

	tool := &database.Tool{
		Slug:   NewSlug(req.Name),
		Status: database.StatusPending,
	}
	s.apply(tool, req, vetting)

	if err := s.repo.Create(ctx, tool); err != nil {
		return nil, err
	}

	s.metrics.IncrementSubmission()
	if s.logger != nil {
		s.logger.Info("Tool submitted", "slug", tool.Slug, "category", tool.Category, "frugal_score", tool.FrugalScoreTotal)
	}
	return tool, nil
}

// Update edits a tool and recomputes its score. Tools sent back by a
// reviewer return to the queue.
func (s *Service) Update(ctx context.Context, slug string, req SubmitRequest) (*database.Tool, error) {
	if err := s.normalize(&req); err != nil {
		return nil, err
	}

	tool, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	vetting := tool.Vetting()
	switch {
	case req.Revet:
		if vetting, err = s.vet(ctx, req.URL); err != nil {
			return nil, err
		}
	case req.Analysis != nil:
		vetting = *req.Analysis
	}

	s.apply(tool, req, vetting)
	if tool.Status == database.StatusNeedsClarification || tool.Status == database.StatusRejected {
		tool.Status = database.StatusPending
	}

	if err := s.repo.Save(ctx, tool); err != nil {
		return nil, err
	}
	s.invalidate()
	return tool, nil
}

// Get returns a tool by slug
func (s *Service) Get(ctx context.Context, slug string) (*database.Tool, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List returns approved tools by descending score
func (s *Service) List(ctx context.Context, category string, limit int) ([]database.Tool, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListApproved(ctx, limit, strings.TrimSpace(category))
}

// RecordView counts a page view of a tool
func (s *Service) RecordView(ctx context.Context, slug string) error {
	return s.repo.IncrementViews(ctx, slug)
}

func (s *Service) vet(ctx context.Context, url string) (types.VettingResult, error) {
	if s.vetter == nil {
		return types.VettingResult{}, errors.NewConfigurationError("Vetting is not available", nil)
	}
	result, err := s.vetter.Ingest(ctx, url)
	if err != nil {
		return types.VettingResult{}, err
	}
	return result.Analysis, nil
}

func (s *Service) apply(tool *database.Tool, req SubmitRequest, vetting types.VettingResult) {
	tool.Name = req.Name
	tool.Tagline = req.Tagline
	tool.DescriptionMD = req.Description
	tool.URL = req.URL
	tool.Category = req.Category
	if req.OwnerID != "" {
		tool.OwnerID = req.OwnerID
	}
	tool.SetAttributes(req.ToolAttributes)
	tool.SetVetting(vetting)

	score := scoring.Calculate(req.ToolAttributes, vetting.HasWeights, vetting.LicenseOK)
	tool.SetScore(score)

	s.metrics.IncrementScore()
	if s.logger != nil {
		s.logger.ScoreLogger(tool.Slug, score.Total)
	}
}

func (s *Service) normalize(req *SubmitRequest) error {
	req.Name = security.SanitizeLine(req.Name)
	req.Tagline = security.SanitizeLine(req.Tagline)
	req.URL = strings.TrimSpace(req.URL)
	req.Category = strings.TrimSpace(req.Category)
	req.OwnerID = strings.TrimSpace(req.OwnerID)

	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.URL == "" {
		missing = append(missing, "url")
	}
	if req.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return errors.NewValidationError("Missing required fields", strings.Join(missing, ", "))
	}

	if err := s.validator.ValidateIdentifier(req.URL); err != nil {
		return errors.NewValidationError("Invalid url", err.Error())
	}
	for field, value := range map[string]string{"name": req.Name, "tagline": req.Tagline} {
		if err := s.validator.ValidateText(field, value); err != nil {
			return errors.NewValidationError("Invalid "+field, err.Error())
		}
	}
	if err := s.validator.ValidateDescription("description_md", req.Description); err != nil {
		return errors.NewValidationError("Invalid description_md", err.Error())
	}

	req.ToolAttributes = NormalizeAttributes(req.ToolAttributes)
	return nil
}

func (s *Service) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

// NormalizeAttributes trims declared values and drops unknown or repeated
// hardware and deployment entries.
func NormalizeAttributes(attrs types.ToolAttributes) types.ToolAttributes {
	attrs.MinRAM = strings.TrimSpace(attrs.MinRAM)
	attrs.StorageFootprint = strings.TrimSpace(attrs.StorageFootprint)
	attrs.SupportedHardware = keepKnown(attrs.SupportedHardware, knownHardware)
	attrs.DeploymentContext = keepKnown(attrs.DeploymentContext, knownDeployment)
	return attrs
}

func keepKnown(values, known []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if seen[v] || !contains(known, v) {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Slugify lowercases name and joins its alphanumeric runs with hyphens
func Slugify(name string) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "tool"
	}
	return slug
}

// NewSlug returns a unique public slug for a tool name
func NewSlug(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
	return Slugify(name) + "-" + suffix
}
