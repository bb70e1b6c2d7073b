package tools

import (
	"context"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/database"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/errors"
)

// Overview is the moderation dashboard: every tool plus summary figures
type Overview struct {
	Tools []database.Tool     `json:"tools"`
	Stats *database.ToolStats `json:"stats"`
}

// StatusRequest is the payload of a moderation decision
type StatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Feedback string `json:"feedback"`
}

// Overview lists all tools, newest first, with the dashboard stats
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	tools, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats, err := s.repo.Stats(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	if tools == nil {
		tools = []database.Tool{}
	}
	return &Overview{Tools: tools, Stats: stats}, nil
}

// UpdateStatus records a moderation decision. Approval stamps approved_at.
func (s *Service) UpdateStatus(ctx context.Context, id, status, feedback string) (*database.Tool, error) {
	if !database.ValidStatus(status) {
		return nil, errors.NewValidationError("Invalid status", status)
	}
	if err := s.validator.ValidateText("feedback", feedback); err != nil {
		return nil, errors.NewValidationError("Invalid feedback", err.Error())
	}

	var approvedAt *time.Time
	if status == database.StatusApproved {
		now := s.now()
		approvedAt = &now
	}

	tool, err := s.repo.UpdateStatus(ctx, id, status, strings.TrimSpace(feedback), approvedAt)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementModeration()
	if s.logger != nil {
		s.logger.ModerationLogger(id, status, feedback != "")
	}
	s.invalidate()
	return tool, nil
}
