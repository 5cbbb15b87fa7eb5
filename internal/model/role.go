package model

import "time"

// Role represents an RBAC role.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleWithPermissions extends Role to include its associated permission codes.
type RoleWithPermissions struct {
	*Role
	Permissions []string `json:"permissions"`
}

// SaveRoleRequest is the payload for creating or updating a role.
type SaveRoleRequest struct {
	Name        string       `json:"name" binding:"required,min=2,max=64"`
	Permissions []Permission `json:"permissions" binding:"dive,required,max=64"`
}
