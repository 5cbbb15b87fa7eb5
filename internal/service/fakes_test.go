package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
)

type fakeGradeReader struct {
	years []model.YearData
	err   error
	calls int
	// during runs after the read, before the caller sees the result.
	during func()
}

func (f *fakeGradeReader) ListByStudent(_ context.Context, _ int) ([]model.YearData, error) {
	f.calls++
	years := f.years
	if f.during != nil {
		f.during()
	}
	return years, f.err
}

type fakeStudents struct {
	known map[int]bool
}

func (f *fakeStudents) GetByID(_ context.Context, id int) (*model.Student, error) {
	if !f.known[id] {
		return nil, repository.ErrNotFound
	}
	return &model.Student{ID: id}, nil
}

type fakeGradeCache struct {
	entries  map[int][]model.YearData
	versions map[int]int64
	getErr   error
	sets     int
}

func newFakeGradeCache() *fakeGradeCache {
	return &fakeGradeCache{entries: map[int][]model.YearData{}, versions: map[int]int64{}}
}

func (f *fakeGradeCache) Get(_ context.Context, id int) ([]model.YearData, int64, bool, error) {
	if f.getErr != nil {
		return nil, 0, false, f.getErr
	}
	years, ok := f.entries[id]
	return years, f.versions[id], ok, nil
}

func (f *fakeGradeCache) Set(_ context.Context, id int, version int64, years []model.YearData) error {
	if f.versions[id] != version {
		return ErrStaleGrades
	}
	f.sets++
	f.entries[id] = years
	return nil
}

func (f *fakeGradeCache) Invalidate(_ context.Context, id int) error {
	f.versions[id]++
	delete(f.entries, id)
	return nil
}

type fakeQueue struct {
	items []*model.GradeImport
}

func (f *fakeQueue) Enqueue(_ context.Context, imp *model.GradeImport) error {
	f.items = append(f.items, imp)
	return nil
}

type fakeCourseStore struct {
	latest     string
	plan       []model.PlanEntry
	planFor    string
	registerFn func(studentID, courseID int) (*model.OfferedCourse, error)
	cancelErr  error
	created    []*model.OfferedCourse
}

func (f *fakeCourseStore) LatestSemester(context.Context) (string, error) { return f.latest, nil }

func (f *fakeCourseStore) ListOffered(context.Context, string) ([]model.OfferedCourse, error) {
	return []model.OfferedCourse{}, nil
}

func (f *fakeCourseStore) ListPlan(_ context.Context, _ int, semester string) ([]model.PlanEntry, error) {
	f.planFor = semester
	return f.plan, nil
}

func (f *fakeCourseStore) CreateOffered(_ context.Context, c *model.OfferedCourse) error {
	c.ID = len(f.created) + 1
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCourseStore) DeleteOffered(context.Context, int) error { return nil }

func (f *fakeCourseStore) Register(_ context.Context, studentID, courseID int) (*model.OfferedCourse, error) {
	return f.registerFn(studentID, courseID)
}

func (f *fakeCourseStore) Cancel(context.Context, int, int) error { return f.cancelErr }

type fakeNotifier struct {
	sent []*model.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n *model.Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}

type fakeNotificationStore struct {
	created []*model.Notification
	items   []model.Notification
	unread  int
	limit   int
	offset  int
}

func (f *fakeNotificationStore) Create(_ context.Context, _ repository.DBTX, n *model.Notification) error {
	n.ID = len(f.created) + 1
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) ListPaginated(_ context.Context, _ int, limit, offset int) ([]model.Notification, int, int, error) {
	f.limit, f.offset = limit, offset
	return f.items, len(f.items), f.unread, nil
}

func (f *fakeNotificationStore) MarkRead(context.Context, int, int) error { return nil }

type fakeBus struct {
	published []*model.Notification
	err       error
}

func (f *fakeBus) Publish(_ context.Context, n *model.Notification) error {
	f.published = append(f.published, n)
	return f.err
}

func (f *fakeBus) Subscribe(context.Context, int) *redis.PubSub { return nil }

type fakeCertStore struct {
	createErr error
	created   []*model.Certificate
	deleteURL string
	deleteErr error
}

func (f *fakeCertStore) ListByStudent(context.Context, int) ([]model.Certificate, error) {
	return []model.Certificate{}, nil
}

func (f *fakeCertStore) Create(_ context.Context, c *model.Certificate) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = 1
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCertStore) Delete(context.Context, int, int) (string, error) {
	return f.deleteURL, f.deleteErr
}

type fakeImages struct {
	url     string
	removed []string
}

func (f *fakeImages) SaveUpload(multipart.File, *multipart.FileHeader) (string, error) {
	if f.url == "" {
		return "", errors.New("no upload")
	}
	return f.url, nil
}

func (f *fakeImages) Remove(url string) error {
	f.removed = append(f.removed, url)
	return nil
}
