package usecase

import (
	"context"
	"fmt"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// History is the observability view over decisions, jobs and delivery attempts
type History struct {
	Decisions []*entity.Decision        `json:"decisions"`
	Jobs      []*entity.NotificationJob `json:"jobs"`
	Logs      []*entity.NotificationLog `json:"logs"`
}

// HistoryService serves the audit queries
type HistoryService struct {
	decisionRepo repository.DecisionRepository
	jobRepo      repository.NotificationJobRepository
	logRepo      repository.NotificationLogRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(
	decisionRepo repository.DecisionRepository,
	jobRepo repository.NotificationJobRepository,
	logRepo repository.NotificationLogRepository,
) *HistoryService {
	return &HistoryService{
		decisionRepo: decisionRepo,
		jobRepo:      jobRepo,
		logRepo:      logRepo,
	}
}

// NormalizeLimit applies the default and the upper bound to a requested page size
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

// RecentDecisions lists the newest decisions first
func (s *HistoryService) RecentDecisions(ctx context.Context, limit int) ([]*entity.Decision, error) {
	return s.decisionRepo.ListRecent(ctx, NormalizeLimit(limit))
}

// RecentJobs lists the newest jobs first
func (s *HistoryService) RecentJobs(ctx context.Context, limit int) ([]*entity.NotificationJob, error) {
	return s.jobRepo.ListRecent(ctx, NormalizeLimit(limit))
}

// RecentLogs lists the newest delivery attempts first
func (s *HistoryService) RecentLogs(ctx context.Context, limit int) ([]*entity.NotificationLog, error) {
	return s.logRepo.ListRecent(ctx, NormalizeLimit(limit))
}

// Recent collects all three views
func (s *HistoryService) Recent(ctx context.Context, limit int) (*History, error) {
	decisions, err := s.RecentDecisions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	jobs, err := s.RecentJobs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	logs, err := s.RecentLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return &History{Decisions: decisions, Jobs: jobs, Logs: logs}, nil
}
