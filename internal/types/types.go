package types

// Declared RAM tiers
const (
	RAMUnder1GB = "< 1GB"
	RAM4GB      = "4GB"
	RAM8GB      = "8GB"
	RAM16GB     = "16GB"
	RAM32GBPlus = "32GB+"
)

// Supported hardware values
const (
	HardwareCPU          = "CPU"
	HardwareGPU          = "GPU"
	HardwareEdgeNPU      = "Edge/NPU"
	HardwareAppleSilicon = "Apple Silicon"
)

// Deployment context values
const (
	DeploymentEdge       = "Edge / On-device"
	DeploymentOnPrem     = "On-prem / Sovereign"
	DeploymentEnterprise = "Enterprise Backend"
)

// Registry sources an identifier can resolve to
const (
	SourceGitHub      = "github"
	SourceHuggingFace = "huggingface"
)

// ToolAttributes are the resource characteristics a submitter declares for a tool
type ToolAttributes struct {
	MinRAM            string   `json:"min_ram" yaml:"min_ram"`
	StorageFootprint  string   `json:"storage_footprint" yaml:"storage_footprint"`
	IsOfflineCapable  bool     `json:"is_offline_capable" yaml:"is_offline_capable"`
	SupportedHardware []string `json:"supported_hardware" yaml:"supported_hardware"`
	DeploymentContext []string `json:"deployment_context" yaml:"deployment_context"`
}

// HasHardware reports whether hw is among the supported hardware
func (a ToolAttributes) HasHardware(hw string) bool {
	return contains(a.SupportedHardware, hw)
}

// HasDeployment reports whether ctx is among the deployment contexts
func (a ToolAttributes) HasDeployment(ctx string) bool {
	return contains(a.DeploymentContext, ctx)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// VettingResult is the snapshot the analyzer derives from a registry at ingestion time
type VettingResult struct {
	HasWeights       bool     `json:"has_weights"`
	IsActive         bool     `json:"is_active"`
	LicenseOK        bool     `json:"license_ok"`
	DetectedKeywords []string `json:"detected_keywords"`
	Flags            []string `json:"flags"`
}

// FrugalScore is the weighted 0-100 efficiency score of a tool
type FrugalScore struct {
	Total     int `json:"total"`
	Footprint int `json:"footprint"`
	Hardware  int `json:"hardware"`
	Energy    int `json:"energy"`
	TCO       int `json:"tco"`
	Data      int `json:"data"`
}

// IngestResult is what ingestion returns to pre-fill a submission
type IngestResult struct {
	Name        string        `json:"name"`
	Tagline     string        `json:"tagline"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	Source      string        `json:"source"`
	Analysis    VettingResult `json:"analysis"`
}

// IngestRequest represents the request structure for the ingest endpoint
type IngestRequest struct {
	RepoID string `json:"repo_id" binding:"required"`
}

// ScoreRequest represents the request structure for the score endpoint
type ScoreRequest struct {
	ToolAttributes
	HasWeights bool `json:"has_weights"`
	LicenseOK  bool `json:"license_ok"`
}
