package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/gradestats"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/validator"
)

// GradeProvider is the subset of service.GradeService used by GradeHandler.
type GradeProvider interface {
	Grades(ctx context.Context, studentID int) ([]model.YearData, error)
	Statistics(ctx context.Context, studentID int) (gradestats.Statistics, error)
	EnqueueImport(ctx context.Context, studentID, adminID int, years []model.YearData) error
}

// GradeHandler serves the grades and grade-statistics pages.
type GradeHandler struct {
	grades GradeProvider
	log    zerolog.Logger
}

// NewGradeHandler creates a new GradeHandler.
func NewGradeHandler(grades GradeProvider, log zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		grades: grades,
		log:    log.With().Str("component", "grade_handler").Logger(),
	}
}

// GetGrades godoc
// GET /api/v1/student/grades
// Returns the caller's transcript grouped by year and semester.
func (h *GradeHandler) GetGrades(c *gin.Context) {
	claims := middleware.GetClaims(c)

	years, err := h.grades.Grades(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Int("student_id", claims.UserID).Msg("Load grades failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"years": years})
}

// GetStatistics godoc
// GET /api/v1/student/grades/statistics
// Returns the aggregate of the caller's transcript.
func (h *GradeHandler) GetStatistics(c *gin.Context) {
	claims := middleware.GetClaims(c)

	stats, err := h.grades.Statistics(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Int("student_id", claims.UserID).Msg("Grade statistics failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if q := stats.DataQuality; q != (gradestats.DataQuality{}) {
		h.log.Debug().Int("student_id", claims.UserID).Interface("data_quality", q).Msg("Transcript has unparsable fields")
	}

	response.Success(c, http.StatusOK, stats)
}

// ImportGrades godoc
// PUT /api/v1/admin/students/:id/grades
// Queues a full replacement of a student's transcript.
func (h *GradeHandler) ImportGrades(c *gin.Context) {
	studentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.ImportGradesRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.grades.EnqueueImport(c.Request.Context(), studentID, claims.UserID, req.Years); err != nil {
		failFromRepo(c, err)
		return
	}

	response.Accepted(c, gin.H{"student_id": studentID, "status": "queued"})
}
