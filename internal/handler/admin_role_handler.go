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
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
)

// RoleManager is the role administration used by AdminRoleHandler.
type RoleManager interface {
	ListRoles(ctx context.Context) ([]model.RoleWithPermissions, error)
	GetRole(ctx context.Context, id int) (*model.RoleWithPermissions, error)
	CreateRole(ctx context.Context, req *model.SaveRoleRequest) (*model.RoleWithPermissions, error)
	UpdateRole(ctx context.Context, callerRoleID, id int, req *model.SaveRoleRequest) (*model.RoleWithPermissions, error)
	DeleteRole(ctx context.Context, callerRoleID, id int) error
	Permissions() []model.Permission
}

// AdminRoleHandler handles role and permission management.
type AdminRoleHandler struct {
	roles RoleManager
}

// NewAdminRoleHandler creates a new AdminRoleHandler.
func NewAdminRoleHandler(roles RoleManager) *AdminRoleHandler {
	return &AdminRoleHandler{roles: roles}
}

func failRole(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownPermission):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"permissions": err.Error(),
		})
	case errors.Is(err, service.ErrOwnRole):
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
	case errors.Is(err, repository.ErrDuplicateRole):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, repository.ErrRoleInUse):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	default:
		failFromRepo(c, err)
	}
}

// ListRoles godoc
// GET /api/v1/admin/roles
func (h *AdminRoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		failRole(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}

// GetRole godoc
// GET /api/v1/admin/roles/:id
func (h *AdminRoleHandler) GetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	role, err := h.roles.GetRole(c.Request.Context(), id)
	if err != nil {
		failRole(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// CreateRole godoc
// POST /api/v1/admin/roles
func (h *AdminRoleHandler) CreateRole(c *gin.Context) {
	var req model.SaveRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	role, err := h.roles.CreateRole(c.Request.Context(), &req)
	if err != nil {
		failRole(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"role": role})
}

// UpdateRole godoc
// PUT /api/v1/admin/roles/:id
// Renames the role and replaces its whole permission set.
func (h *AdminRoleHandler) UpdateRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.SaveRoleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	role, err := h.roles.UpdateRole(c.Request.Context(), claims.RoleID, id, &req)
	if err != nil {
		failRole(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"role": role})
}

// DeleteRole godoc
// DELETE /api/v1/admin/roles/:id
func (h *AdminRoleHandler) DeleteRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	if err := h.roles.DeleteRole(c.Request.Context(), claims.RoleID, id); err != nil {
		failRole(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "role deleted successfully"})
}

// ListPermissions godoc
// GET /api/v1/admin/permissions
func (h *AdminRoleHandler) ListPermissions(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"permissions": h.roles.Permissions()})
}
