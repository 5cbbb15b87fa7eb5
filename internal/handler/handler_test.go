package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/portal-backend/internal/gradestats"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// asUser injects claims the way RequireStudentJWT/RequireAdminJWT would.
func asUser(id int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{UserID: id})
		c.Next()
	}
}

type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

func do(t *testing.T, r http.Handler, method, target string, body io.Reader, contentType string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func doJSON(t *testing.T, r http.Handler, method, target, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	return do(t, r, method, target, reader, "application/json")
}

// ─── fakes ─────────────────────────────────────────────────────────

type fakeGrades struct {
	years    []model.YearData
	err      error
	enqueued []int
}

func (f *fakeGrades) Grades(context.Context, int) ([]model.YearData, error) {
	return f.years, f.err
}

func (f *fakeGrades) Statistics(context.Context, int) (gradestats.Statistics, error) {
	if f.err != nil {
		return gradestats.Statistics{}, f.err
	}
	return gradestats.Aggregate(f.years), nil
}

func (f *fakeGrades) EnqueueImport(_ context.Context, studentID, _ int, _ []model.YearData) error {
	if studentID == 404 {
		return repository.ErrNotFound
	}
	f.enqueued = append(f.enqueued, studentID)
	return nil
}

type fakeRegistrar struct {
	registerErr error
	cancelErr   error
}

func (f *fakeRegistrar) Plan(_ context.Context, _ int, semester string) (*model.RegistrationPlan, error) {
	return &model.RegistrationPlan{Semester: semester, Courses: []model.PlanEntry{}}, nil
}

func (f *fakeRegistrar) Register(_ context.Context, _ int, courseID int) (*model.OfferedCourse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.OfferedCourse{ID: courseID, Registered: 1, Capacity: 40}, nil
}

func (f *fakeRegistrar) Cancel(context.Context, int, int) error { return f.cancelErr }

func (f *fakeRegistrar) ListOffered(context.Context, string) ([]model.OfferedCourse, error) {
	return []model.OfferedCourse{}, nil
}

func (f *fakeRegistrar) CreateOffered(_ context.Context, req *model.CreateOfferedCourseRequest) (*model.OfferedCourse, error) {
	if req.CourseCode == "DUP" {
		return nil, repository.ErrDuplicateCourse
	}
	return &model.OfferedCourse{ID: 1, CourseCode: req.CourseCode, Capacity: req.Capacity}, nil
}

func (f *fakeRegistrar) DeleteOffered(_ context.Context, id int) error {
	if id == 404 {
		return repository.ErrNotFound
	}
	return nil
}

type fakeCertificates struct {
	err     error
	created *model.CreateCertificateRequest
	size    int64
}

func (f *fakeCertificates) List(context.Context, int) ([]model.Certificate, error) {
	return []model.Certificate{}, nil
}

func (f *fakeCertificates) Create(_ context.Context, studentID int, req *model.CreateCertificateRequest, _ multipart.File, header *multipart.FileHeader) (*model.Certificate, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	f.size = header.Size
	return &model.Certificate{ID: 1, StudentID: studentID, Title: req.Title}, nil
}

func (f *fakeCertificates) Delete(context.Context, int, int) error { return f.err }

type fakeInbox struct {
	list    *service.NotificationList
	readErr error
}

func (f *fakeInbox) List(_ context.Context, _ int, page, perPage int) (*service.NotificationList, *response.Pagination, error) {
	return f.list, response.NewPagination(page, perPage, len(f.list.Notifications)), nil
}

func (f *fakeInbox) MarkRead(context.Context, int, int) error { return f.readErr }

func (f *fakeInbox) Subscribe(context.Context, int) *redis.PubSub { return nil }

var errBoom = errors.New("boom")
