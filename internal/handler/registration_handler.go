package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/validator"
)

// Registrar is the subset of service.RegistrationService used by the handlers.
type Registrar interface {
	Plan(ctx context.Context, studentID int, semester string) (*model.RegistrationPlan, error)
	Register(ctx context.Context, studentID, courseID int) (*model.OfferedCourse, error)
	Cancel(ctx context.Context, studentID, courseID int) error
	ListOffered(ctx context.Context, semester string) ([]model.OfferedCourse, error)
	CreateOffered(ctx context.Context, req *model.CreateOfferedCourseRequest) (*model.OfferedCourse, error)
	DeleteOffered(ctx context.Context, id int) error
}

// RegistrationHandler handles the registration plan page and course administration.
type RegistrationHandler struct {
	registrar Registrar
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrar Registrar) *RegistrationHandler {
	return &RegistrationHandler{registrar: registrar}
}

func failRegistration(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCourseFull):
		response.Fail(c, http.StatusBadRequest, response.ErrCourseFull)
	case errors.Is(err, repository.ErrAlreadyRegistered):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyRegistered)
	case errors.Is(err, repository.ErrNotRegistered):
		response.Fail(c, http.StatusNotFound, response.ErrNotRegistered)
	case errors.Is(err, repository.ErrDuplicateCourse):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		failFromRepo(c, err)
	}
}

// GetPlan godoc
// GET /api/v1/student/registration?semester=
// Lists the semester's offered courses with the caller's registrations flagged.
func (h *RegistrationHandler) GetPlan(c *gin.Context) {
	claims := middleware.GetClaims(c)

	plan, err := h.registrar.Plan(c.Request.Context(), claims.UserID, c.Query("semester"))
	if err != nil {
		failRegistration(c, err)
		return
	}

	response.Success(c, http.StatusOK, plan)
}

// Register godoc
// POST /api/v1/student/registration/:course_id
func (h *RegistrationHandler) Register(c *gin.Context) {
	courseID, ok := paramID(c, "course_id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	course, err := h.registrar.Register(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		failRegistration(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// Cancel godoc
// DELETE /api/v1/student/registration/:course_id
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	courseID, ok := paramID(c, "course_id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.registrar.Cancel(c.Request.Context(), claims.UserID, courseID); err != nil {
		failRegistration(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course_id": courseID})
}

// ListCourses godoc
// GET /api/v1/admin/courses?semester=
func (h *RegistrationHandler) ListCourses(c *gin.Context) {
	courses, err := h.registrar.ListOffered(c.Request.Context(), c.Query("semester"))
	if err != nil {
		failRegistration(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// CreateCourse godoc
// POST /api/v1/admin/courses
func (h *RegistrationHandler) CreateCourse(c *gin.Context) {
	var req model.CreateOfferedCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.registrar.CreateOffered(c.Request.Context(), &req)
	if err != nil {
		failRegistration(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/v1/admin/courses/:id
func (h *RegistrationHandler) DeleteCourse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.registrar.DeleteOffered(c.Request.Context(), id); err != nil {
		failRegistration(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "course deleted successfully"})
}
