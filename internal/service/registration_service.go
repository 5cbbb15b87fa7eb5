package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
)

// CourseStore persists offered courses and registrations.
type CourseStore interface {
	LatestSemester(ctx context.Context) (string, error)
	ListOffered(ctx context.Context, semester string) ([]model.OfferedCourse, error)
	ListPlan(ctx context.Context, studentID int, semester string) ([]model.PlanEntry, error)
	CreateOffered(ctx context.Context, c *model.OfferedCourse) error
	DeleteOffered(ctx context.Context, id int) error
	Register(ctx context.Context, studentID, courseID int) (*model.OfferedCourse, error)
	Cancel(ctx context.Context, studentID, courseID int) error
}

// Notifier delivers a notification to a student.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// RegistrationService handles the course registration plan.
type RegistrationService struct {
	courses  CourseStore
	notifier Notifier
	log      zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(courses CourseStore, notifier Notifier, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		courses:  courses,
		notifier: notifier,
		log:      log.With().Str("component", "registration_service").Logger(),
	}
}

// Plan lists a semester's offered courses for a student. An empty semester
// selects the most recent one.
func (s *RegistrationService) Plan(ctx context.Context, studentID int, semester string) (*model.RegistrationPlan, error) {
	if semester == "" {
		latest, err := s.courses.LatestSemester(ctx)
		if err != nil {
			return nil, fmt.Errorf("latest semester: %w", err)
		}
		semester = latest
	}

	plan := &model.RegistrationPlan{Semester: semester, Courses: []model.PlanEntry{}}
	if semester == "" {
		return plan, nil
	}

	entries, err := s.courses.ListPlan(ctx, studentID, semester)
	if err != nil {
		return nil, err
	}
	plan.Courses = entries
	for _, e := range entries {
		if e.IsRegistered {
			plan.RegisteredCredits += e.Credits
		}
	}
	return plan, nil
}

// Register enrols the student in a course section.
func (s *RegistrationService) Register(ctx context.Context, studentID, courseID int) (*model.OfferedCourse, error) {
	course, err := s.courses.Register(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, studentID, "Pendaftaran berhasil",
		fmt.Sprintf("Anda terdaftar pada %s %s (%s).", course.CourseCode, course.CourseName, course.Semester))
	return course, nil
}

// Cancel withdraws the student from a course section.
func (s *RegistrationService) Cancel(ctx context.Context, studentID, courseID int) error {
	if err := s.courses.Cancel(ctx, studentID, courseID); err != nil {
		return err
	}
	s.notify(ctx, studentID, "Pendaftaran dibatalkan",
		fmt.Sprintf("Pendaftaran mata kuliah #%d telah dibatalkan.", courseID))
	return nil
}

func (s *RegistrationService) notify(ctx context.Context, studentID int, title, body string) {
	err := s.notifier.Notify(ctx, &model.Notification{
		StudentID: studentID,
		Kind:      model.NotificationRegistration,
		Title:     title,
		Body:      body,
	})
	if err != nil {
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Registration notification failed")
	}
}

// ListOffered lists offered courses, optionally for one semester.
func (s *RegistrationService) ListOffered(ctx context.Context, semester string) ([]model.OfferedCourse, error) {
	return s.courses.ListOffered(ctx, semester)
}

// CreateOffered opens a course section.
func (s *RegistrationService) CreateOffered(ctx context.Context, req *model.CreateOfferedCourseRequest) (*model.OfferedCourse, error) {
	course := &model.OfferedCourse{
		CourseCode:   req.CourseCode,
		CourseName:   req.CourseName,
		Credits:      req.Credits,
		Semester:     req.Semester,
		Capacity:     req.Capacity,
		ScheduleNote: req.ScheduleNote,
	}
	if err := s.courses.CreateOffered(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteOffered withdraws a course section.
func (s *RegistrationService) DeleteOffered(ctx context.Context, id int) error {
	return s.courses.DeleteOffered(ctx, id)
}
