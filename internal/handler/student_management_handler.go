package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
)

// StudentManagementHandler handles admin-facing student management (CRUD, session reset).
type StudentManagementHandler struct {
	studentService *service.StudentService
	authService    *service.AuthService
}

// NewStudentManagementHandler creates a new StudentManagementHandler.
func NewStudentManagementHandler(
	studentService *service.StudentService,
	authService *service.AuthService,
) *StudentManagementHandler {
	return &StudentManagementHandler{
		studentService: studentService,
		authService:    authService,
	}
}

// ListStudents godoc
// GET /api/v1/admin/students?major=&page=&per_page=
// Lists students with pagination, optionally filtered by major.
func (h *StudentManagementHandler) ListStudents(c *gin.Context) {
	page, perPage := pageQuery(c)

	students, pagination, err := h.studentService.ListStudents(c.Request.Context(), c.Query("major"), page, perPage)
	if err != nil {
		failFromRepo(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, pagination)
}

// CreateStudent godoc
// POST /api/v1/admin/students
func (h *StudentManagementHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateStudentCode) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// DeleteStudent godoc
// DELETE /api/v1/admin/students/:id
// Deletes a student together with their transcript, registrations and certificates.
func (h *StudentManagementHandler) DeleteStudent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student deleted successfully"})
}

// ResetStudentSession godoc
// POST /api/v1/admin/students/:id/reset-session
// Clears a student's active Redis session, forcing a fresh login.
func (h *StudentManagementHandler) ResetStudentSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.authService.ResetStudentSession(c.Request.Context(), id); err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "student session reset successfully"})
}
