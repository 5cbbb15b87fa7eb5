package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/repository"
)

const dashboardCourseLimit = 5

// DashboardStore reads the aggregate counts behind the dashboard.
type DashboardStore interface {
	GetSummaryCounts(ctx context.Context) (*repository.DashboardCounts, error)
	GetCourseFill(ctx context.Context, semester string, limit int) ([]repository.DashboardCourseFill, error)
}

// SemesterSource resolves the newest semester with offered courses.
type SemesterSource interface {
	LatestSemester(ctx context.Context) (string, error)
}

// QueueLengther reports the backlog of a work queue.
type QueueLengther interface {
	Len(ctx context.Context) (int64, error)
}

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	*repository.DashboardCounts
	Semester       string                           `json:"semester"`
	FullestCourses []repository.DashboardCourseFill `json:"fullest_courses"`
	PendingImports int64                            `json:"pending_imports"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo      DashboardStore
	semesters SemesterSource
	imports   QueueLengther
	log       zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo DashboardStore, semesters SemesterSource, imports QueueLengther, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		repo:      repo,
		semesters: semesters,
		imports:   imports,
		log:       log.With().Str("component", "dashboard_service").Logger(),
	}
}

// GetDashboardData gathers the stat cards, the fullest courses of the newest
// semester and the grade-import backlog. A Redis failure only zeroes the backlog.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	counts, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		DashboardCounts: counts,
		FullestCourses:  []repository.DashboardCourseFill{},
	}

	semester, err := s.semesters.LatestSemester(ctx)
	if err != nil {
		return nil, err
	}
	if semester != "" {
		data.Semester = semester
		data.FullestCourses, err = s.repo.GetCourseFill(ctx, semester, dashboardCourseLimit)
		if err != nil {
			return nil, err
		}
	}

	pending, err := s.imports.Len(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read grade import backlog")
	} else {
		data.PendingImports = pending
	}

	return data, nil
}
