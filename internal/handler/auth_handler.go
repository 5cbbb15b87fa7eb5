package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	studentService *service.StudentService
	adminService   *service.AdminService
	log            zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	studentService *service.StudentService,
	adminService *service.AdminService,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		studentService: studentService,
		adminService:   adminService,
		log:            log.With().Str("component", "auth_handler").Logger(),
	}
}

func studentView(s *model.Student) gin.H {
	return gin.H{
		"id":           s.ID,
		"student_code": s.StudentCode,
		"name":         s.Name,
		"email":        s.Email,
		"major":        s.Major,
		"cohort":       s.Cohort,
	}
}

func adminView(a *model.Admin) gin.H {
	return gin.H{
		"id":        a.ID,
		"email":     a.Email,
		"name":      a.Name,
		"role_id":   a.RoleID,
		"role_name": a.RoleName,
	}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Validates student code + password and returns a JWT. A previous session on
// another device is replaced.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.GetByStudentCode(c.Request.Context(), req.StudentCode)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.log.Error().Err(err).Msg("Student lookup failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(student.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateStudentToken(c.Request.Context(), student.ID, student.StudentCode)
	if err != nil {
		h.log.Error().Err(err).Int("student_id", student.ID).Msg("Token generation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.log.Info().Int("student_id", student.ID).Str("ip", c.ClientIP()).Msg("Student logged in")

	response.Success(c, http.StatusOK, gin.H{
		"token":   token,
		"student": studentView(student),
	})
}

// GetStudentProfile godoc
// GET /api/v1/auth/student/me
// Returns the profile of the currently authenticated student.
func (h *AuthHandler) GetStudentProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": studentView(student)})
}

// StudentLogout godoc
// POST /api/v1/auth/student/logout
// Logs out the currently authenticated student.
func (h *AuthHandler) StudentLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetStudentSession(c.Request.Context(), claims.UserID); err != nil {
		h.log.Error().Err(err).Int("student_id", claims.UserID).Msg("Logout failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates email + password, returns JWT with permissions.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.log.Error().Err(err).Msg("Admin lookup failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	permissions, err := h.adminService.GetPermissions(c.Request.Context(), admin.RoleID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateAdminToken(admin.ID, admin.RoleID, permissions)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":       token,
		"admin":       adminView(admin),
		"permissions": permissions,
	})
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the profile of the currently authenticated admin.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	admin, permissions, err := h.adminService.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admin":       adminView(admin),
		"permissions": permissions,
	})
}
