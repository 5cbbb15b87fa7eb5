package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	cfg := &config.Config{
		GinMode:   gin.TestMode,
		JWTSecret: "router-secret",
		JWTExpiry: time.Hour,
		UploadDir: t.TempDir(),
	}
	auth := service.NewAuthService(cfg, nil)
	reg := prometheus.NewRegistry()

	r := SetupRouter(auth, &Handlers{}, &Infra{
		Metrics:        middleware.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AuthLimiter:    middleware.NewRateLimiter(10, time.Minute),
	}, cfg)
	return r, auth
}

// concrete turns "/students/:id/grades" into "/students/1/grades".
func concrete(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			parts[i] = "1"
		}
	}
	return strings.Join(parts, "/")
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body struct {
		Error *response.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	require.NotNil(t, body.Error, w.Body.String())
	return body.Error.Code
}

func protectedRoutes(r *gin.Engine) []gin.RouteInfo {
	var routes []gin.RouteInfo
	for _, route := range r.Routes() {
		if strings.HasPrefix(route.Path, "/api/v1/student") ||
			strings.HasPrefix(route.Path, "/api/v1/admin") ||
			strings.HasPrefix(route.Path, "/ws/") {
			routes = append(routes, route)
		}
	}
	return routes
}

func TestSetupRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r, _ := testRouter(t)
	routes := protectedRoutes(r)
	require.NotEmpty(t, routes)

	for _, route := range routes {
		req := httptest.NewRequest(route.Method, concrete(route.Path), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.Method, route.Path)
		assert.Equal(t, response.ErrTokenRequired, errorCode(t, w), "%s %s", route.Method, route.Path)
	}
}

func TestSetupRouter_AdminRoutesCheckPermissions(t *testing.T) {
	r, auth := testRouter(t)
	token, err := auth.GenerateAdminToken(1, 1, nil)
	require.NoError(t, err)

	for _, route := range protectedRoutes(r) {
		if !strings.HasPrefix(route.Path, "/api/v1/admin") {
			continue
		}
		req := httptest.NewRequest(route.Method, concrete(route.Path), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", route.Method, route.Path)
		assert.Equal(t, response.ErrPermissionDenied, errorCode(t, w), "%s %s", route.Method, route.Path)
	}
}

func TestSetupRouter_StudentRoutesRejectAdminTokens(t *testing.T) {
	r, auth := testRouter(t)
	token, err := auth.GenerateAdminToken(1, 1, []string{"grades:write"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/grades", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrStudentAccessOnly, errorCode(t, w))
}

func TestSetupRouter_MetricsEndpoint(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/student/grades", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_http_requests_total")
}
