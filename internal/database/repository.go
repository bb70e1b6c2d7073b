package database

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
	"gorm.io/gorm"
)

// Repository handles tool persistence
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// ToolStats is the moderation dashboard summary
type ToolStats struct {
	Pending            int64 `json:"pending"`
	ApprovedToday      int64 `json:"approved_today"`
	AverageScore       int   `json:"average_score"`
	NeedsClarification int64 `json:"needs_clarification"`
	Total              int64 `json:"total"`
	TotalViews         int64 `json:"total_views"`
}

// Create inserts a new tool
func (r *Repository) Create(ctx context.Context, tool *Tool) error {
	if err := r.db.WithContext(ctx).Create(tool).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.NewValidationError("A tool with this slug already exists", tool.Slug)
		}
		return errors.NewInternalError("Failed to create tool", err)
	}
	return nil
}

// Save writes every column of an existing tool
func (r *Repository) Save(ctx context.Context, tool *Tool) error {
	if err := r.db.WithContext(ctx).Save(tool).Error; err != nil {
		return errors.NewInternalError("Failed to save tool", err)
	}
	return nil
}

// GetBySlug loads a tool by its public slug
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Tool, error) {
	return r.first(ctx, "slug = ?", slug)
}

// GetByID loads a tool by id
func (r *Repository) GetByID(ctx context.Context, id string) (*Tool, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*Tool, error) {
	var tool Tool
	err := r.db.WithContext(ctx).Where(query, arg).First(&tool).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFoundError("Tool not found", err)
	}
	if err != nil {
		return nil, errors.NewInternalError("Failed to load tool", err)
	}
	return &tool, nil
}

// ListApproved returns approved tools by descending score. An empty category
// matches every category; limit <= 0 means no limit.
func (r *Repository) ListApproved(ctx context.Context, limit int, category string) ([]Tool, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", StatusApproved).
		Order("frugal_score_total DESC").
		Order("created_at ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var tools []Tool
	if err := q.Find(&tools).Error; err != nil {
		return nil, errors.NewInternalError("Failed to list approved tools", err)
	}
	return tools, nil
}

// ListFresh returns the most recently approved tools
func (r *Repository) ListFresh(ctx context.Context, limit int) ([]Tool, error) {
	var tools []Tool
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusApproved).
		Order("approved_at DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&tools).Error
	if err != nil {
		return nil, errors.NewInternalError("Failed to list fresh tools", err)
	}
	return tools, nil
}

// ListAll returns every tool, newest first
func (r *Repository) ListAll(ctx context.Context) ([]Tool, error) {
	var tools []Tool
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tools).Error; err != nil {
		return nil, errors.NewInternalError("Failed to list tools", err)
	}
	return tools, nil
}

// UpdateStatus changes the moderation state of a tool. Feedback and
// approvedAt are only written when set.
func (r *Repository) UpdateStatus(ctx context.Context, id, status, feedback string, approvedAt *time.Time) (*Tool, error) {
	updates := map[string]interface{}{"status": status}
	if feedback != "" {
		updates["admin_feedback"] = feedback
	}
	if approvedAt != nil {
		updates["approved_at"] = approvedAt.UTC()
	}

	res := r.db.WithContext(ctx).Model(&Tool{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, errors.NewInternalError("Failed to update tool status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errors.NewNotFoundError("Tool not found", fmt.Errorf("no tool with id %s", id))
	}
	return r.GetByID(ctx, id)
}

// IncrementViews bumps the view counter of a tool
func (r *Repository) IncrementViews(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Model(&Tool{}).
		Where("slug = ?", slug).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return errors.NewInternalError("Failed to record view", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewNotFoundError("Tool not found", fmt.Errorf("no tool with slug %s", slug))
	}
	return nil
}

// Stats aggregates the moderation dashboard figures. since marks the start
// of "today".
func (r *Repository) Stats(ctx context.Context, since time.Time) (*ToolStats, error) {
	stats := &ToolStats{}

	var agg struct {
		Total      int64
		TotalViews int64
		AvgScore   *float64
	}
	err := r.db.WithContext(ctx).Model(&Tool{}).Select("COUNT(*) AS total, COALESCE(SUM(views), 0) AS total_views, CAST(AVG(frugal_score_total) AS FLOAT) AS avg_score").
		Scan(&agg).Error
	if err != nil {
		return nil, errors.NewInternalError("Failed to aggregate tools", err)
	}
	stats.Total = agg.Total
	stats.TotalViews = agg.TotalViews
	if agg.AvgScore != nil {
		stats.AverageScore = int(math.Round(*agg.AvgScore))
	}

	counts := []struct {
		dest  *int64
		query string
		args  []interface{}
	}{
		{&stats.Pending, "status IN ?", []interface{}{[]string{StatusPending, StatusUnderReview}}},
		{&stats.ApprovedToday, "status = ? AND approved_at >= ?", []interface{}{StatusApproved, since.UTC()}},
		{&stats.NeedsClarification, "status = ?", []interface{}{StatusNeedsClarification}},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(&Tool{}).Where(c.query, c.args...).Count(c.dest).Error; err != nil {
			return nil, errors.NewInternalError("Failed to count tools", err)
		}
	}

	return stats, nil
}
