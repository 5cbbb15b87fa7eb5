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
	ErrDuplicateCourse   = errors.New("course section already offered in this semester")
	ErrCourseFull        = errors.New("course capacity reached")
	ErrAlreadyRegistered = errors.New("student already registered for course")
	ErrNotRegistered     = errors.New("student not registered for course")
)

// CourseRepository handles offered courses and student registrations.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const offeredCourseSelect = `
	SELECT oc.id, oc.course_code, oc.course_name, oc.credits, oc.semester, oc.capacity,
	       oc.schedule_note, oc.created_at,
	       (SELECT COUNT(*) FROM registrations r WHERE r.offered_course_id = oc.id)`

// ListOffered retrieves offered courses, optionally restricted to a semester.
func (r *CourseRepository) ListOffered(ctx context.Context, semester string) ([]model.OfferedCourse, error) {
	rows, err := r.pool.Query(ctx,
		offeredCourseSelect+`
		 FROM offered_courses oc
		 WHERE $1 = '' OR oc.semester = $1
		 ORDER BY oc.semester DESC, oc.course_code`, semester,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.OfferedCourse{}
	for rows.Next() {
		var c model.OfferedCourse
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseName, &c.Credits, &c.Semester,
			&c.Capacity, &c.ScheduleNote, &c.CreatedAt, &c.Registered); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// LatestSemester returns the most recent semester with offered courses, or "" if none.
func (r *CourseRepository) LatestSemester(ctx context.Context) (string, error) {
	var semester *string
	if err := r.pool.QueryRow(ctx, `SELECT MAX(semester) FROM offered_courses`).Scan(&semester); err != nil {
		return "", err
	}
	return deref(semester), nil
}

// ListPlan retrieves a semester's offered courses flagged with the student's registrations.
func (r *CourseRepository) ListPlan(ctx context.Context, studentID int, semester string) ([]model.PlanEntry, error) {
	rows, err := r.pool.Query(ctx,
		offeredCourseSelect+`,
		       EXISTS (SELECT 1 FROM registrations r
		               WHERE r.offered_course_id = oc.id AND r.student_id = $2)
		 FROM offered_courses oc
		 WHERE oc.semester = $1
		 ORDER BY oc.course_code`, semester, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.PlanEntry{}
	for rows.Next() {
		var e model.PlanEntry
		if err := rows.Scan(&e.ID, &e.CourseCode, &e.CourseName, &e.Credits, &e.Semester,
			&e.Capacity, &e.ScheduleNote, &e.CreatedAt, &e.Registered, &e.IsRegistered); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateOffered inserts a new course section.
func (r *CourseRepository) CreateOffered(ctx context.Context, c *model.OfferedCourse) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO offered_courses (course_code, course_name, credits, semester, capacity, schedule_note)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		c.CourseCode, c.CourseName, c.Credits, c.Semester, c.Capacity, c.ScheduleNote,
	).Scan(&c.ID, &c.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCourse
	}
	return err
}

// DeleteOffered removes a course section and its registrations.
func (r *CourseRepository) DeleteOffered(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM offered_courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Register enrols a student. The course row is locked so concurrent
// registrations cannot overfill it.
func (r *CourseRepository) Register(ctx context.Context, studentID, courseID int) (*model.OfferedCourse, error) {
	course := &model.OfferedCourse{}
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT id, course_code, course_name, credits, semester, capacity, schedule_note, created_at
			 FROM offered_courses WHERE id = $1 FOR UPDATE`, courseID,
		).Scan(&course.ID, &course.CourseCode, &course.CourseName, &course.Credits, &course.Semester,
			&course.Capacity, &course.ScheduleNote, &course.CreatedAt)
		if err != nil {
			return notFound(err)
		}

		var mine int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*), COUNT(*) FILTER (WHERE student_id = $2)
			 FROM registrations WHERE offered_course_id = $1`, courseID, studentID,
		).Scan(&course.Registered, &mine); err != nil {
			return err
		}
		if err := checkSeat(course.Registered, course.Capacity, mine > 0); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO registrations (student_id, offered_course_id) VALUES ($1, $2)`,
			studentID, courseID,
		); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyRegistered
			}
			return err
		}
		course.Registered++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// checkSeat decides whether a student may take a seat. An existing registration
// wins over a full course so the student learns they already hold a seat.
func checkSeat(registered, capacity int, alreadyRegistered bool) error {
	if alreadyRegistered {
		return ErrAlreadyRegistered
	}
	if registered >= capacity {
		return ErrCourseFull
	}
	return nil
}

// Cancel removes a student's registration.
func (r *CourseRepository) Cancel(ctx context.Context, studentID, courseID int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM registrations WHERE student_id = $1 AND offered_course_id = $2`,
		studentID, courseID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotRegistered
	}
	return nil
}
