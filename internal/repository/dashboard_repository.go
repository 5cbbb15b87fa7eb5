package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardCounts holds the stat cards of the registrar dashboard.
type DashboardCounts struct {
	TotalStudents           int `json:"total_students"`
	StudentsWithTranscripts int `json:"students_with_transcripts"`
	TotalAdmins             int `json:"total_admins"`
	TotalCertificates       int `json:"total_certificates"`
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (*DashboardCounts, error) {
	counts := &DashboardCounts{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(DISTINCT student_id) FROM transcript_years),
			(SELECT COUNT(*) FROM admins),
			(SELECT COUNT(*) FROM certificates)`,
	).Scan(&counts.TotalStudents, &counts.StudentsWithTranscripts, &counts.TotalAdmins, &counts.TotalCertificates)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// DashboardCourseFill is an offered course with its seat usage.
type DashboardCourseFill struct {
	ID         int    `json:"id"`
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Capacity   int    `json:"capacity"`
	Registered int    `json:"registered_count"`
}

// GetCourseFill returns the fullest courses of a semester, at most limit rows.
func (r *DashboardRepository) GetCourseFill(ctx context.Context, semester string, limit int) ([]DashboardCourseFill, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT oc.id, oc.course_code, oc.course_name, oc.capacity, COUNT(rg.id) AS registered
		 FROM offered_courses oc
		 LEFT JOIN registrations rg ON rg.offered_course_id = oc.id
		 WHERE oc.semester = $1
		 GROUP BY oc.id
		 ORDER BY COUNT(rg.id)::float / oc.capacity DESC, oc.course_code
		 LIMIT $2`,
		semester, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []DashboardCourseFill{}
	for rows.Next() {
		var c DashboardCourseFill
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Capacity, &c.Registered); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
