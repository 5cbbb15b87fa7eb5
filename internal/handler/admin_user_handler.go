package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
)

// AdminAccounts is the staff account administration used by AdminUserHandler.
type AdminAccounts interface {
	ListAdmins(ctx context.Context, roleID, page, perPage int) ([]model.Admin, *response.Pagination, error)
	CreateAdmin(ctx context.Context, createdBy int, req *model.CreateAdminRequest) (*model.Admin, error)
	DeleteAdmin(ctx context.Context, callerID, id int) error
}

// AdminUserHandler handles staff account management.
type AdminUserHandler struct {
	accounts AdminAccounts
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(accounts AdminAccounts) *AdminUserHandler {
	return &AdminUserHandler{accounts: accounts}
}

// ListAdmins godoc
// GET /api/v1/admin/admins?role_id=&page=&per_page=
func (h *AdminUserHandler) ListAdmins(c *gin.Context) {
	page, perPage := pageQuery(c)
	roleID, _ := strconv.Atoi(c.Query("role_id"))

	admins, pagination, err := h.accounts.ListAdmins(c.Request.Context(), roleID, page, perPage)
	if err != nil {
		failFromRepo(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"admins": admins}, pagination)
}

// CreateAdmin godoc
// POST /api/v1/admin/admins
func (h *AdminUserHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	admin, err := h.accounts.CreateAdmin(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateAdminEmail):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, repository.ErrUnknownRole):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"role_id": "role_id does not exist",
			})
		default:
			failFromRepo(c, err)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"admin": admin})
}

// DeleteAdmin godoc
// DELETE /api/v1/admin/admins/:id
func (h *AdminUserHandler) DeleteAdmin(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.accounts.DeleteAdmin(c.Request.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, service.ErrSelfDelete) {
			response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
			return
		}
		failFromRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "admin deleted successfully"})
}
