package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planEntry(id, credits int, registered bool) model.PlanEntry {
	return model.PlanEntry{
		OfferedCourse: model.OfferedCourse{ID: id, Credits: credits, Semester: "2024-2025/HK01"},
		IsRegistered:  registered,
	}
}

func TestRegistrationService_Plan_DefaultsToLatestSemester(t *testing.T) {
	store := &fakeCourseStore{
		latest: "2024-2025/HK01",
		plan:   []model.PlanEntry{planEntry(1, 3, true), planEntry(2, 4, false), planEntry(3, 2, true)},
	}
	svc := NewRegistrationService(store, &fakeNotifier{}, zerolog.Nop())

	plan, err := svc.Plan(context.Background(), 7, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-2025/HK01", store.planFor)
	assert.Equal(t, "2024-2025/HK01", plan.Semester)
	assert.Len(t, plan.Courses, 3)
	assert.Equal(t, 5, plan.RegisteredCredits)
}

func TestRegistrationService_Plan_NoCoursesOffered(t *testing.T) {
	svc := NewRegistrationService(&fakeCourseStore{}, &fakeNotifier{}, zerolog.Nop())

	plan, err := svc.Plan(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Empty(t, plan.Semester)
	assert.NotNil(t, plan.Courses)
	assert.Empty(t, plan.Courses)
}

func TestRegistrationService_Register_NotifiesStudent(t *testing.T) {
	store := &fakeCourseStore{registerFn: func(_, courseID int) (*model.OfferedCourse, error) {
		return &model.OfferedCourse{ID: courseID, CourseCode: "CS201", CourseName: "Algorithms", Semester: "2024-2025/HK01"}, nil
	}}
	notifier := &fakeNotifier{}
	svc := NewRegistrationService(store, notifier, zerolog.Nop())

	course, err := svc.Register(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, course.ID)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, 7, notifier.sent[0].StudentID)
	assert.Equal(t, model.NotificationRegistration, notifier.sent[0].Kind)
	assert.Contains(t, notifier.sent[0].Body, "CS201")
}

func TestRegistrationService_Register_PassesThroughConflicts(t *testing.T) {
	for _, want := range []error{repository.ErrCourseFull, repository.ErrAlreadyRegistered, repository.ErrNotFound} {
		store := &fakeCourseStore{registerFn: func(int, int) (*model.OfferedCourse, error) { return nil, want }}
		notifier := &fakeNotifier{}
		svc := NewRegistrationService(store, notifier, zerolog.Nop())

		_, err := svc.Register(context.Background(), 7, 3)
		assert.ErrorIs(t, err, want)
		assert.Empty(t, notifier.sent)
	}
}

func TestRegistrationService_Register_NotificationFailureIsNotFatal(t *testing.T) {
	store := &fakeCourseStore{registerFn: func(int, int) (*model.OfferedCourse, error) {
		return &model.OfferedCourse{ID: 3}, nil
	}}
	svc := NewRegistrationService(store, &fakeNotifier{err: errors.New("db down")}, zerolog.Nop())

	_, err := svc.Register(context.Background(), 7, 3)
	assert.NoError(t, err)
}

func TestRegistrationService_Cancel(t *testing.T) {
	store := &fakeCourseStore{cancelErr: repository.ErrNotRegistered}
	notifier := &fakeNotifier{}
	svc := NewRegistrationService(store, notifier, zerolog.Nop())

	assert.ErrorIs(t, svc.Cancel(context.Background(), 7, 3), repository.ErrNotRegistered)
	assert.Empty(t, notifier.sent)

	store.cancelErr = nil
	require.NoError(t, svc.Cancel(context.Background(), 7, 3))
	assert.Len(t, notifier.sent, 1)
}

func TestRegistrationService_CreateOffered(t *testing.T) {
	store := &fakeCourseStore{}
	svc := NewRegistrationService(store, &fakeNotifier{}, zerolog.Nop())

	course, err := svc.CreateOffered(context.Background(), &model.CreateOfferedCourseRequest{
		CourseCode: "CS201", CourseName: "Algorithms", Credits: 3, Semester: "2024-2025/HK01", Capacity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, course.ID)
	assert.Equal(t, 40, course.Capacity)
}
