package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/resilience"
)

const DefaultHuggingFaceURL = "https://huggingface.co"

// HFSibling is one file in a model repository
type HFSibling struct {
	RFilename string `json:"rfilename"`
}

// LicenseField accepts the card license as either a string or a list
type LicenseField []string

func (l *LicenseField) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*l = LicenseField{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("license must be a string or a list of strings: %w", err)
	}
	*l = many
	return nil
}

// HFCardData is the parsed model card metadata
type HFCardData struct {
	License LicenseField `json:"license"`
}

// HFModel represents Hugging Face model metadata
type HFModel struct {
	ID           string      `json:"id"`
	ModelID      string      `json:"modelId"`
	Author       string      `json:"author"`
	PipelineTag  string      `json:"pipeline_tag"`
	LastModified *time.Time  `json:"lastModified"`
	Siblings     []HFSibling `json:"siblings"`
	Tags         []string    `json:"tags"`
	CardData     *HFCardData `json:"cardData"`
	Downloads    int         `json:"downloads"`
	Likes        int         `json:"likes"`
}

// License returns the card license, falling back to a "license:" tag
func (m *HFModel) License() string {
	if m.CardData != nil {
		for _, l := range m.CardData.License {
			if l = strings.TrimSpace(l); l != "" {
				return l
			}
		}
	}
	for _, tag := range m.Tags {
		if strings.HasPrefix(tag, "license:") {
			return strings.TrimPrefix(tag, "license:")
		}
	}
	return ""
}

// Filenames lists the files of the model repository
func (m *HFModel) Filenames() []string {
	names := make([]string, 0, len(m.Siblings))
	for _, s := range m.Siblings {
		names = append(names, s.RFilename)
	}
	return names
}

func (m *HFModel) validate() error {
	if m.ID == "" {
		m.ID = m.ModelID
	}
	if m.ID == "" {
		return fmt.Errorf("model payload missing id")
	}
	return nil
}

// HuggingFaceConfig configures the Hugging Face adapter
type HuggingFaceConfig struct {
	Token   string
	BaseURL string
	Pool    resilience.PoolConfig
	Breaker resilience.CircuitBreakerConfig
}

// HuggingFaceAdapter fetches model data from the Hugging Face Hub
type HuggingFaceAdapter struct {
	registryClient
	baseURL string
	breaker *resilience.CircuitBreaker
}

// NewHuggingFaceAdapter creates a Hugging Face adapter with its own pool and circuit breaker
func NewHuggingFaceAdapter(cfg HuggingFaceConfig) *HuggingFaceAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceURL
	}

	if cfg.Pool == (resilience.PoolConfig{}) {
		cfg.Pool = resilience.DefaultPoolConfig()
	}

	cb := resilience.NewCircuitBreaker("huggingface-api", cfg.Breaker)

	return &HuggingFaceAdapter{
		registryClient: registryClient{
			source: "huggingface",
			pool:   resilience.NewConnectionPool(cfg.Pool, cb),
			token:  cfg.Token,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		breaker: cb,
	}
}

// Breaker exposes the adapter's circuit breaker for monitoring hooks
func (h *HuggingFaceAdapter) Breaker() *resilience.CircuitBreaker {
	return h.breaker
}

// FetchModel fetches model metadata. Model ids keep their "/" separator.
func (h *HuggingFaceAdapter) FetchModel(ctx context.Context, modelID string) (*HFModel, error) {
	endpoint := fmt.Sprintf("%s/api/models/%s", h.baseURL, modelID)

	var model HFModel
	if err := h.getJSON(ctx, endpoint, "application/json", "Hugging Face model", &model); err != nil {
		return nil, err
	}
	if err := model.validate(); err != nil {
		return nil, errors.NewIngestionError(h.source, err)
	}
	return &model, nil
}

// FetchReadme fetches the model card from the main branch
func (h *HuggingFaceAdapter) FetchReadme(ctx context.Context, modelID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/resolve/main/README.md", h.baseURL, modelID)
	return h.getText(ctx, endpoint, "Hugging Face README")
}
