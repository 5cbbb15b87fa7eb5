package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradeRouter(grades *fakeGrades) *gin.Engine {
	h := NewGradeHandler(grades, zerolog.Nop())
	r := gin.New()
	r.GET("/grades", asUser(7), h.GetGrades)
	r.GET("/grades/statistics", asUser(7), h.GetStatistics)
	r.PUT("/students/:id/grades", asUser(1), h.ImportGrades)
	return r
}

func twoYears() []model.YearData {
	course := func(id, credits, score, grade string) model.CourseResult {
		return model.CourseResult{
			CurriculumID: id, CurriculumName: id, Credits: credits, Score10: score,
			LetterGrade: grade, IsPass: "1", SemesterGPA10: "9.0", SemesterGPA4: "4.0", SemesterCredits: "3",
		}
	}
	return []model.YearData{
		{Name: "2022-2023", Semesters: []model.SemesterData{{Name: "HK01", Courses: []model.CourseResult{course("A", "3", "9.5", "A+")}}}},
		{Name: "2023-2024", Semesters: []model.SemesterData{{Name: "HK02", Courses: []model.CourseResult{course("B", "3", "9.0", "A")}}}},
	}
}

func TestGradeHandler_GetGrades(t *testing.T) {
	code, env := doJSON(t, gradeRouter(&fakeGrades{years: twoYears()}), http.MethodGet, "/grades", "")
	require.Equal(t, http.StatusOK, code)

	var data struct {
		Years []model.YearData `json:"years"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Years, 2)
	assert.Equal(t, "A+", data.Years[0].Semesters[0].Courses[0].LetterGrade)
}

func TestGradeHandler_GetStatistics(t *testing.T) {
	code, env := doJSON(t, gradeRouter(&fakeGrades{years: twoYears()}), http.MethodGet, "/grades/statistics", "")
	require.Equal(t, http.StatusOK, code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Equal(t, "100.0", string(raw["pass_rate"]))
	assert.Equal(t, "2", string(raw["total_courses"]))
	assert.JSONEq(t, `[{"name":"22-23/HK01","gpa10":9,"gpa4":4,"credits":3},{"name":"23-24/HK02","gpa10":9,"gpa4":4,"credits":3}]`,
		string(raw["semester_series"]))
}

func TestGradeHandler_GetStatistics_Empty(t *testing.T) {
	code, env := doJSON(t, gradeRouter(&fakeGrades{years: []model.YearData{}}), http.MethodGet, "/grades/statistics", "")
	require.Equal(t, http.StatusOK, code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Equal(t, "0.0", string(raw["pass_rate"]))
	assert.Equal(t, "[]", string(raw["courses"]))
	assert.Equal(t, "[]", string(raw["semester_series"]))
}

func TestGradeHandler_LoadFailure(t *testing.T) {
	code, env := doJSON(t, gradeRouter(&fakeGrades{err: errBoom}), http.MethodGet, "/grades/statistics", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, response.ErrInternal, env.Error.Code)
}

func TestGradeHandler_ImportGrades(t *testing.T) {
	grades := &fakeGrades{}
	r := gradeRouter(grades)

	payload := `{"years":[{"name":"2023-2024","semesters":[{"name":"HK01","courses":[
		{"curriculum_id":"MATH101","curriculum_name":"Calculus","SoTinChi":"3","DiemTK_10":"8.5","DiemTK_Chu":"A","IsPass":"1"}
	]}]}]}`

	code, _ := doJSON(t, r, http.MethodPut, "/students/7/grades", payload)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, []int{7}, grades.enqueued)

	code, env := doJSON(t, r, http.MethodPut, "/students/404/grades", payload)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, response.ErrNotFound, env.Error.Code)

	code, env = doJSON(t, r, http.MethodPut, "/students/abc/grades", payload)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.ErrInvalidID, env.Error.Code)

	code, env = doJSON(t, r, http.MethodPut, "/students/7/grades", `{"years":[{"name":"","semesters":[]}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
	assert.Contains(t, env.Error.Fields, "years[0].name")
}
