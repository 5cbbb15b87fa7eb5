package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/portal-backend/internal/model"
)

var ErrDuplicateStudentCode = errors.New("student with this code already exists")

const studentColumns = `id, student_code, name, email, major, cohort, password_hash, created_at, updated_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row interface{ Scan(...any) error }, s *model.Student) error {
	return row.Scan(&s.ID, &s.StudentCode, &s.Name, &s.Email, &s.Major, &s.Cohort, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	row := r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	if err := scanStudent(row, s); err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// GetByStudentCode retrieves a student by the registrar-issued student code.
func (r *StudentRepository) GetByStudentCode(ctx context.Context, code string) (*model.Student, error) {
	s := &model.Student{}
	row := r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE student_code = $1`, code)
	if err := scanStudent(row, s); err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// ListPaginated retrieves students ordered by code, optionally filtered by major.
func (r *StudentRepository) ListPaginated(ctx context.Context, major string, limit, offset int) ([]model.Student, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM students WHERE $1 = '' OR major = $1`, major,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE $1 = '' OR major = $1
		 ORDER BY student_code LIMIT $2 OFFSET $3`,
		major, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (student_code, name, email, major, cohort, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		s.StudentCode, s.Name, s.Email, s.Major, s.Cohort, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateStudentCode
	}
	return err
}

// Delete removes a student by ID. Transcript, registrations, certificates and
// notifications cascade.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
