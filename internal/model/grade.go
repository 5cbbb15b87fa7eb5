package model

// CourseResult is one course line of a student's transcript as exported by the
// registrar. Numeric fields are kept as the raw strings the registrar sends; they
// are parsed at aggregation time (see gradestats.ParseNumeric).
type CourseResult struct {
	CurriculumID   string `json:"curriculum_id" binding:"required,nonul,max=32"`
	CurriculumName string `json:"curriculum_name" binding:"required,nonul,max=255"`
	Credits        string `json:"SoTinChi" binding:"nonul,max=16"`
	Score10        string `json:"DiemTK_10" binding:"nonul,max=16"`
	Score4         string `json:"DiemTK_4" binding:"nonul,max=16"`
	LetterGrade    string `json:"DiemTK_Chu" binding:"nonul,max=4"`
	IsPass         string `json:"IsPass" binding:"nonul,max=4"`

	// Semester summary, repeated on every course of the same semester.
	SemesterGPA10   string `json:"DiemTBHK_10" binding:"nonul,max=16"`
	SemesterGPA4    string `json:"DiemTBHK_4" binding:"nonul,max=16"`
	SemesterCredits string `json:"SoTinChiHK" binding:"nonul,max=16"`
}

// SemesterData is a named term ("HK01", "HK02", ...) with its courses in order.
type SemesterData struct {
	Name    string         `json:"name" binding:"required,nonul,max=32"`
	Courses []CourseResult `json:"courses" binding:"dive"`
}

// YearData is a named academic year ("2023-2024") with its semesters in order.
type YearData struct {
	Name      string         `json:"name" binding:"required,nonul,max=32"`
	Semesters []SemesterData `json:"semesters" binding:"dive"`
}

// Pass flag values.
const (
	PassFlagPassed = "1"
	PassFlagFailed = "0"
)

// ImportGradesRequest replaces a student's whole transcript.
type ImportGradesRequest struct {
	Years []YearData `json:"years" binding:"required,dive"`
}

// GradeImport is the queued unit of work for the grade import worker.
type GradeImport struct {
	StudentID  int        `json:"student_id"`
	Years      []YearData `json:"years"`
	ImportedBy int        `json:"imported_by"`
	// Attempts counts failed applications; the worker gives up after a few.
	Attempts int `json:"attempts,omitempty"`
}
