package model

// Permission represents a string code for a specific registrar action.
type Permission string

const (
	// PermissionStudentsRead allows viewing student lists.
	PermissionStudentsRead Permission = "students:read"

	// PermissionStudentsWrite allows creating and deleting students.
	PermissionStudentsWrite Permission = "students:write"

	// PermissionStudentsResetSession allows resetting a student's active session.
	PermissionStudentsResetSession Permission = "students:reset_session"

	// PermissionGradesWrite allows importing transcripts.
	PermissionGradesWrite Permission = "grades:write"

	// PermissionCoursesRead allows viewing the offered course catalogue.
	PermissionCoursesRead Permission = "courses:read"

	// PermissionCoursesWrite allows opening and withdrawing offered courses.
	PermissionCoursesWrite Permission = "courses:write"

	// PermissionAdminsManage allows managing staff accounts and their roles.
	PermissionAdminsManage Permission = "admins:manage"

	// PermissionDashboardRead allows viewing the registrar dashboard.
	PermissionDashboardRead Permission = "dashboard:read"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionStudentsRead,
	PermissionStudentsWrite,
	PermissionStudentsResetSession,
	PermissionGradesWrite,
	PermissionCoursesRead,
	PermissionCoursesWrite,
	PermissionAdminsManage,
	PermissionDashboardRead,
}

// IsKnown reports whether p is one of AllPermissions.
func (p Permission) IsKnown() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}
