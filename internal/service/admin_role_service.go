package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/portal-backend/internal/model"
)

var (
	ErrOwnRole           = errors.New("cannot modify the role you are signed in with")
	ErrUnknownPermission = errors.New("unknown permission code")
)

// RoleStore persists roles and their permission sets.
type RoleStore interface {
	ListRolesWithPermissions(ctx context.Context) ([]model.RoleWithPermissions, error)
	GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error)
	SaveRole(ctx context.Context, id int, name string, perms []model.Permission) (int, error)
	DeleteRole(ctx context.Context, id int) error
}

// AdminRoleService handles business logic for admin roles.
type AdminRoleService struct {
	roles RoleStore
}

// NewAdminRoleService creates a new AdminRoleService.
func NewAdminRoleService(roles RoleStore) *AdminRoleService {
	return &AdminRoleService{roles: roles}
}

// ListRoles retrieves all roles with their permissions.
func (s *AdminRoleService) ListRoles(ctx context.Context) ([]model.RoleWithPermissions, error) {
	return s.roles.ListRolesWithPermissions(ctx)
}

// GetRole retrieves a specific role and its permissions.
func (s *AdminRoleService) GetRole(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	return s.roles.GetRoleByID(ctx, id)
}

// CreateRole creates a new role with the requested permissions.
func (s *AdminRoleService) CreateRole(ctx context.Context, req *model.SaveRoleRequest) (*model.RoleWithPermissions, error) {
	if err := checkPermissions(req.Permissions); err != nil {
		return nil, err
	}
	id, err := s.roles.SaveRole(ctx, 0, req.Name, req.Permissions)
	if err != nil {
		return nil, err
	}
	return s.roles.GetRoleByID(ctx, id)
}

// UpdateRole renames a role and replaces its permissions. The caller's own
// role is refused so an admin cannot revoke their own access.
func (s *AdminRoleService) UpdateRole(ctx context.Context, callerRoleID, id int, req *model.SaveRoleRequest) (*model.RoleWithPermissions, error) {
	if id == callerRoleID {
		return nil, ErrOwnRole
	}
	if err := checkPermissions(req.Permissions); err != nil {
		return nil, err
	}
	if _, err := s.roles.SaveRole(ctx, id, req.Name, req.Permissions); err != nil {
		return nil, err
	}
	return s.roles.GetRoleByID(ctx, id)
}

// DeleteRole deletes a role that no admin holds.
func (s *AdminRoleService) DeleteRole(ctx context.Context, callerRoleID, id int) error {
	if id == callerRoleID {
		return ErrOwnRole
	}
	return s.roles.DeleteRole(ctx, id)
}

// Permissions lists every permission code a role can be granted.
func (s *AdminRoleService) Permissions() []model.Permission {
	return model.AllPermissions
}

func checkPermissions(perms []model.Permission) error {
	for _, p := range perms {
		if !p.IsKnown() {
			return fmt.Errorf("%w: %s", ErrUnknownPermission, p)
		}
	}
	return nil
}
