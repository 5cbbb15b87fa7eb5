package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func bindJSON(t *testing.T, body string, dst interface{}) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return Bind(c, dst)
}

func TestBindUsesJSONNames(t *testing.T) {
	var req model.StudentLoginRequest
	fields := bindJSON(t, `{"student_code":"ab"}`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "student_code")
	assert.Contains(t, fields, "password")
}

func TestBindNestedGradePayload(t *testing.T) {
	var req model.ImportGradesRequest
	fields := bindJSON(t, `{"years":[{"name":"2023-2024","semesters":[{"name":"","courses":[]}]}]}`, &req)

	require.NotNil(t, fields)
	assert.Contains(t, fields, "years[0].semesters[0].name")
}

func TestBindAcceptsLooseNumericStrings(t *testing.T) {
	var req model.ImportGradesRequest
	body := `{"years":[{"name":"2023-2024","semesters":[{"name":"HK01","courses":[
		{"curriculum_id":"IT001","curriculum_name":"Intro","SoTinChi":"n/a","DiemTK_10":"","IsPass":"1"}]}]}]}`

	assert.Nil(t, bindJSON(t, body, &req))
	assert.Equal(t, "n/a", req.Years[0].Semesters[0].Courses[0].Credits)
}

func TestBindRejectsNULInGradeText(t *testing.T) {
	var req model.ImportGradesRequest
	body := `{"years":[{"name":"2023-2024","semesters":[{"name":"HK01","courses":[
		{"curriculum_id":"IT001","curriculum_name":"Intro\u0000","DiemTK_10":"8\u0000","IsPass":"1"}]}]}]}`

	fields := bindJSON(t, body, &req)
	require.NotNil(t, fields)
	assert.Equal(t, "curriculum_name must not contain NUL characters",
		fields["years[0].semesters[0].courses[0].curriculum_name"])
	assert.Contains(t, fields, "years[0].semesters[0].courses[0].DiemTK_10")
}

func TestBindMalformedJSON(t *testing.T) {
	var req model.StudentLoginRequest
	fields := bindJSON(t, `{`, &req)
	assert.Contains(t, fields, "detail")
}

func TestBindForm(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=TOEIC&issuer=ETS&issued_on=2024-13-01"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var req model.CreateCertificateRequest
	fields := BindForm(c, &req)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "issued_on")
	assert.NotContains(t, fields, "title")
}

func TestStructOutsideRequest(t *testing.T) {
	type account struct {
		Email string `json:"email" binding:"required,email"`
		Name  string `json:"name" binding:"required,min=3"`
	}

	fields := Struct(&account{Email: "not-an-email", Name: "Al"})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")

	assert.Nil(t, Struct(&account{Email: "ops@stemsi.ac.id", Name: "Operator"}))
}
