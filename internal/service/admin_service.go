package service

import (
	"context"

	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
)

// AdminService handles registrar staff accounts.
type AdminService struct {
	adminRepo *repository.AdminRepository
	roleRepo  *repository.RoleRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(adminRepo *repository.AdminRepository, roleRepo *repository.RoleRepository) *AdminService {
	return &AdminService{adminRepo: adminRepo, roleRepo: roleRepo}
}

// GetByEmail retrieves an admin by email.
func (s *AdminService) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return s.adminRepo.GetByEmail(ctx, email)
}

// Profile retrieves an admin together with the permission codes of their role.
func (s *AdminService) Profile(ctx context.Context, id int) (*model.Admin, []string, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	perms, err := s.roleRepo.GetPermissionsByRoleID(ctx, admin.RoleID)
	if err != nil {
		return nil, nil, err
	}
	return admin, perms, nil
}

// GetPermissions retrieves permission codes for an admin's role.
func (s *AdminService) GetPermissions(ctx context.Context, roleID int) ([]string, error) {
	return s.roleRepo.GetPermissionsByRoleID(ctx, roleID)
}

// Bootstrap ensures a role holding every permission exists and creates an
// admin attached to it. Used by cmd/create-admin.
func (s *AdminService) Bootstrap(ctx context.Context, roleName string, admin *model.Admin) error {
	role, err := s.roleRepo.EnsureRole(ctx, roleName, model.AllPermissions)
	if err != nil {
		return err
	}
	admin.RoleID = role.ID
	admin.RoleName = role.Name
	return s.adminRepo.Create(ctx, admin)
}
