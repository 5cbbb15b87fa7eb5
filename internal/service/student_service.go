package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
)

// StudentService handles student account logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
	authService *AuthService
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, authService *AuthService, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		authService: authService,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// GetByStudentCode retrieves a student by their student code.
func (s *StudentService) GetByStudentCode(ctx context.Context, code string) (*model.Student, error) {
	return s.studentRepo.GetByStudentCode(ctx, code)
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// ListStudents retrieves students with pagination and an optional major filter.
func (s *StudentService) ListStudents(ctx context.Context, major string, page, perPage int) ([]model.Student, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	students, total, err := s.studentRepo.ListPaginated(ctx, major, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	return students, response.NewPagination(page, perPage, total), nil
}

// Create inserts a new student with a hashed password.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	hashed, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		StudentCode:  req.StudentCode,
		Name:         req.Name,
		Email:        req.Email,
		Major:        req.Major,
		Cohort:       req.Cohort,
		PasswordHash: hashed,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Delete removes a student and drops their active session.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.authService.ResetStudentSession(ctx, id); err != nil {
		s.log.Warn().Err(err).Int("student_id", id).Msg("Failed to drop session of deleted student")
	}
	return nil
}

// normalizePage clamps pagination query values.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
