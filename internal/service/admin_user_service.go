package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/response"
)

// ErrSelfDelete is returned when an admin tries to delete their own account.
var ErrSelfDelete = errors.New("cannot delete your own account")

// AdminStore persists staff accounts.
type AdminStore interface {
	ListPaginated(ctx context.Context, roleID, limit, offset int) ([]model.Admin, int, error)
	Create(ctx context.Context, a *model.Admin) error
	Delete(ctx context.Context, id int) error
}

// PasswordHasher hashes account passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// AdminUserService manages registrar staff accounts.
type AdminUserService struct {
	admins AdminStore
	hasher PasswordHasher
	log    zerolog.Logger
}

// NewAdminUserService creates a new AdminUserService.
func NewAdminUserService(admins AdminStore, hasher PasswordHasher, log zerolog.Logger) *AdminUserService {
	return &AdminUserService{
		admins: admins,
		hasher: hasher,
		log:    log.With().Str("component", "admin_user_service").Logger(),
	}
}

// ListAdmins retrieves a page of admins, optionally filtered by role.
func (s *AdminUserService) ListAdmins(ctx context.Context, roleID, page, perPage int) ([]model.Admin, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)
	admins, total, err := s.admins.ListPaginated(ctx, roleID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return admins, response.NewPagination(page, perPage, total), nil
}

// CreateAdmin hashes the password and stores a new account.
func (s *AdminUserService) CreateAdmin(ctx context.Context, createdBy int, req *model.CreateAdminRequest) (*model.Admin, error) {
	hashed, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &model.Admin{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hashed,
		RoleID:       req.RoleID,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.log.Info().Int("admin_id", admin.ID).Int("created_by", createdBy).Int("role_id", admin.RoleID).Msg("Admin account created")
	return admin, nil
}

// DeleteAdmin removes another admin's account.
func (s *AdminUserService) DeleteAdmin(ctx context.Context, callerID, id int) error {
	if id == callerID {
		return ErrSelfDelete
	}
	if err := s.admins.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("admin_id", id).Int("deleted_by", callerID).Msg("Admin account deleted")
	return nil
}
