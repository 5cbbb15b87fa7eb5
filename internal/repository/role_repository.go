package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/portal-backend/internal/database"
	"github.com/stemsi/portal-backend/internal/model"
)

var (
	ErrDuplicateAdminEmail = errors.New("admin with this email already exists")
	ErrDuplicateRole       = errors.New("role with this name already exists")
	ErrRoleInUse           = errors.New("role is still assigned to admins")
	ErrUnknownRole         = errors.New("role does not exist")
)

// RoleRepository handles role and permission data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// GetPermissionsByRoleID retrieves all permission codes for a given role.
func (r *RoleRepository) GetPermissionsByRoleID(ctx context.Context, roleID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.code
		 FROM permissions p
		 JOIN role_permissions rp ON p.id = rp.permission_id
		 WHERE rp.role_id = $1
		 ORDER BY p.code`, roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	permissions := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		permissions = append(permissions, code)
	}
	return permissions, rows.Err()
}

const roleWithPermissionsQuery = `
	SELECT r.id, r.name, r.created_at,
	       COALESCE(array_agg(p.code ORDER BY p.code) FILTER (WHERE p.code IS NOT NULL), '{}')
	FROM roles r
	LEFT JOIN role_permissions rp ON rp.role_id = r.id
	LEFT JOIN permissions p ON p.id = rp.permission_id`

func scanRole(row interface{ Scan(...any) error }) (*model.RoleWithPermissions, error) {
	role := &model.RoleWithPermissions{Role: &model.Role{}}
	if err := row.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.Permissions); err != nil {
		return nil, err
	}
	return role, nil
}

// GetRoleByID retrieves a role and its permissions by ID.
func (r *RoleRepository) GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	role, err := scanRole(r.pool.QueryRow(ctx,
		roleWithPermissionsQuery+` WHERE r.id = $1 GROUP BY r.id`, id,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return role, nil
}

// ListRolesWithPermissions retrieves all roles with their associated permissions.
func (r *RoleRepository) ListRolesWithPermissions(ctx context.Context) ([]model.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx, roleWithPermissionsQuery+` GROUP BY r.id ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []model.RoleWithPermissions{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

// SaveRole creates a role when id is 0, otherwise renames it. Either way the
// role's permission set is replaced by perms in the same transaction.
func (r *RoleRepository) SaveRole(ctx context.Context, id int, name string, perms []model.Permission) (int, error) {
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if id == 0 {
			if err := tx.QueryRow(ctx,
				`INSERT INTO roles (name) VALUES ($1) RETURNING id`, name,
			).Scan(&id); err != nil {
				return err
			}
		} else {
			tag, err := tx.Exec(ctx, `UPDATE roles SET name = $1 WHERE id = $2`, name, id)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
			if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
				return err
			}
		}
		return grantPermissions(ctx, tx, id, perms)
	})
	if isUniqueViolation(err) {
		return 0, ErrDuplicateRole
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteRole removes a role. Roles still referenced by an admin are refused.
func (r *RoleRepository) DeleteRole(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return ErrRoleInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureRole upserts a role by name and grants it every permission in perms,
// creating permission rows on first use.
func (r *RoleRepository) EnsureRole(ctx context.Context, name string, perms []model.Permission) (*model.Role, error) {
	role := &model.Role{Name: name}
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO roles (name) VALUES ($1)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id, created_at`, name,
		).Scan(&role.ID, &role.CreatedAt); err != nil {
			return err
		}
		return grantPermissions(ctx, tx, role.ID, perms)
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func grantPermissions(ctx context.Context, tx pgx.Tx, roleID int, perms []model.Permission) error {
	for _, p := range perms {
		if _, err := tx.Exec(ctx,
			`WITH perm AS (
				INSERT INTO permissions (code) VALUES ($1)
				ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
				RETURNING id
			)
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $2, id FROM perm
			ON CONFLICT DO NOTHING`, string(p), roleID,
		); err != nil {
			return err
		}
	}
	return nil
}
