package database

import (
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/types"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Moderation states of a tool
const (
	StatusPending            = "pending"
	StatusUnderReview        = "under_review"
	StatusApproved           = "approved"
	StatusRejected           = "rejected"
	StatusNeedsClarification = "needs_clarification"
)

// ValidStatus reports whether s is a known moderation state
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusNeedsClarification:
		return true
	}
	return false
}

// Tool is a submitted AI tool with its declared attributes, the vetting
// snapshot taken at ingestion and the score computed on the last write.
type Tool struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Slug          string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	Tagline       string     `gorm:"size:500" json:"tagline"`
	DescriptionMD string     `gorm:"column:description_md;type:text" json:"description_md"`
	URL           string     `gorm:"column:url;size:500;not null" json:"url"`
	Category      string     `gorm:"index;size:100" json:"category"`
	OwnerID       string     `gorm:"index;size:100" json:"owner_id,omitempty"`
	Status        string     `gorm:"index;size:32;not null;default:pending" json:"status"`
	AdminFeedback string     `gorm:"type:text" json:"admin_feedback,omitempty"`
	ApprovedAt    *time.Time `gorm:"index" json:"approved_at,omitempty"`

	MinRAM            string                      `gorm:"column:min_ram;size:16" json:"min_ram"`
	StorageFootprint  string                      `gorm:"size:64" json:"storage_footprint"`
	IsOfflineCapable  bool                        `json:"is_offline_capable"`
	SupportedHardware datatypes.JSONSlice[string] `json:"supported_hardware"`
	DeploymentContext datatypes.JSONSlice[string] `json:"deployment_context"`

	VettingResults datatypes.JSONType[types.VettingResult] `json:"vetting_results"`

	ScoreFootprint   int `json:"score_footprint"`
	ScoreHardware    int `json:"score_hardware"`
	ScoreEnergy      int `json:"score_energy"`
	ScoreTCO         int `gorm:"column:score_tco" json:"score_tco"`
	ScoreData        int `json:"score_data"`
	FrugalScoreTotal int `gorm:"index" json:"frugal_score_total"`

	Views     int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id to new rows
func (t *Tool) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	return nil
}

// Attributes returns the declared resource characteristics
func (t *Tool) Attributes() types.ToolAttributes {
	return types.ToolAttributes{
		MinRAM:            t.MinRAM,
		StorageFootprint:  t.StorageFootprint,
		IsOfflineCapable:  t.IsOfflineCapable,
		SupportedHardware: []string(t.SupportedHardware),
		DeploymentContext: []string(t.DeploymentContext),
	}
}

// SetAttributes replaces the declared resource characteristics
func (t *Tool) SetAttributes(attrs types.ToolAttributes) {
	t.MinRAM = attrs.MinRAM
	t.StorageFootprint = attrs.StorageFootprint
	t.IsOfflineCapable = attrs.IsOfflineCapable
	t.SupportedHardware = datatypes.NewJSONSlice(nonNil(attrs.SupportedHardware))
	t.DeploymentContext = datatypes.NewJSONSlice(nonNil(attrs.DeploymentContext))
}

// Vetting returns the stored vetting snapshot
func (t *Tool) Vetting() types.VettingResult {
	return t.VettingResults.Data()
}

// SetVetting replaces the stored vetting snapshot
func (t *Tool) SetVetting(v types.VettingResult) {
	v.DetectedKeywords = nonNil(v.DetectedKeywords)
	v.Flags = nonNil(v.Flags)
	t.VettingResults = datatypes.NewJSONType(v)
}

// Score returns the stored score
func (t *Tool) Score() types.FrugalScore {
	return types.FrugalScore{
		Total:     t.FrugalScoreTotal,
		Footprint: t.ScoreFootprint,
		Hardware:  t.ScoreHardware,
		Energy:    t.ScoreEnergy,
		TCO:       t.ScoreTCO,
		Data:      t.ScoreData,
	}
}

// SetScore stores a computed score
func (t *Tool) SetScore(s types.FrugalScore) {
	t.FrugalScoreTotal = s.Total
	t.ScoreFootprint = s.Footprint
	t.ScoreHardware = s.Hardware
	t.ScoreEnergy = s.Energy
	t.ScoreTCO = s.TCO
	t.ScoreData = s.Data
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
