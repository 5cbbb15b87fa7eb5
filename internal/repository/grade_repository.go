package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/portal-backend/internal/model"
)

var courseResultColumns = []string{
	"semester_id", "course_ord", "curriculum_id", "curriculum_name",
	"credits", "score10", "score4", "letter_grade", "is_pass",
	"semester_gpa10", "semester_gpa4", "semester_credits",
}

// GradeRepository stores transcripts as transcript_years, transcript_semesters
// and course_results rows. Ordinal columns keep the registrar's order.
type GradeRepository struct {
	pool *pgxpool.Pool
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{pool: pool}
}

// transcriptRow is one row of the year/semester/course outer join. Semester
// and course columns are NULL for empty years and empty semesters.
type transcriptRow struct {
	yearID       int64
	yearName     string
	semesterID   *int64
	semesterName *string
	course       courseColumns
}

type courseColumns struct {
	id, name, credits, s10, s4, letter, pass, g10, g4, sc *string
}

// transcriptBuilder folds ordered transcriptRows back into the nested shape.
// Years and semesters are split on their row IDs, never on their names.
type transcriptBuilder struct {
	years        []model.YearData
	lastYear     int64
	lastSemester int64
}

func newTranscriptBuilder() *transcriptBuilder {
	return &transcriptBuilder{years: []model.YearData{}, lastYear: -1, lastSemester: -1}
}

func (b *transcriptBuilder) add(row *transcriptRow) {
	if row.yearID != b.lastYear {
		b.years = append(b.years, model.YearData{Name: row.yearName, Semesters: []model.SemesterData{}})
		b.lastYear = row.yearID
	}
	year := &b.years[len(b.years)-1]

	if row.semesterID == nil {
		return
	}
	if *row.semesterID != b.lastSemester {
		year.Semesters = append(year.Semesters, model.SemesterData{Name: deref(row.semesterName), Courses: []model.CourseResult{}})
		b.lastSemester = *row.semesterID
	}
	sem := &year.Semesters[len(year.Semesters)-1]

	c := &row.course
	if c.id == nil {
		return
	}
	sem.Courses = append(sem.Courses, model.CourseResult{
		CurriculumID:    *c.id,
		CurriculumName:  deref(c.name),
		Credits:         deref(c.credits),
		Score10:         deref(c.s10),
		Score4:          deref(c.s4),
		LetterGrade:     deref(c.letter),
		IsPass:          deref(c.pass),
		SemesterGPA10:   deref(c.g10),
		SemesterGPA4:    deref(c.g4),
		SemesterCredits: deref(c.sc),
	})
}

// ListByStudent rebuilds the nested transcript of a student. Returns an empty
// slice (not an error) for a student without grades.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID int) ([]model.YearData, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ty.id, ty.name, ts.id, ts.name,
		        cr.curriculum_id, cr.curriculum_name, cr.credits, cr.score10, cr.score4,
		        cr.letter_grade, cr.is_pass, cr.semester_gpa10, cr.semester_gpa4, cr.semester_credits
		 FROM transcript_years ty
		 LEFT JOIN transcript_semesters ts ON ts.year_id = ty.id
		 LEFT JOIN course_results cr ON cr.semester_id = ts.id
		 WHERE ty.student_id = $1
		 ORDER BY ty.ord, ts.ord, cr.course_ord`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b := newTranscriptBuilder()
	for rows.Next() {
		var row transcriptRow
		c := &row.course
		if err := rows.Scan(&row.yearID, &row.yearName, &row.semesterID, &row.semesterName,
			&c.id, &c.name, &c.credits, &c.s10, &c.s4, &c.letter, &c.pass, &c.g10, &c.g4, &c.sc,
		); err != nil {
			return nil, err
		}
		b.add(&row)
	}
	return b.years, rows.Err()
}

// ReplaceForStudent deletes the student's transcript and writes the given one.
// Must run inside a transaction; course rows are streamed with COPY.
func (r *GradeRepository) ReplaceForStudent(ctx context.Context, tx pgx.Tx, studentID int, years []model.YearData) (int, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM transcript_years WHERE student_id = $1`, studentID); err != nil {
		return 0, fmt.Errorf("delete transcript: %w", err)
	}

	var courseRows [][]any
	for yi, year := range years {
		var yearID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO transcript_years (student_id, name, ord) VALUES ($1, $2, $3) RETURNING id`,
			studentID, year.Name, yi,
		).Scan(&yearID); err != nil {
			return 0, fmt.Errorf("insert year %s: %w", year.Name, err)
		}

		for si, sem := range year.Semesters {
			var semesterID int64
			if err := tx.QueryRow(ctx,
				`INSERT INTO transcript_semesters (year_id, name, ord) VALUES ($1, $2, $3) RETURNING id`,
				yearID, sem.Name, si,
			).Scan(&semesterID); err != nil {
				return 0, fmt.Errorf("insert semester %s/%s: %w", year.Name, sem.Name, err)
			}

			for ci, c := range sem.Courses {
				courseRows = append(courseRows, []any{
					semesterID, ci, c.CurriculumID, c.CurriculumName,
					c.Credits, c.Score10, c.Score4, c.LetterGrade, c.IsPass,
					c.SemesterGPA10, c.SemesterGPA4, c.SemesterCredits,
				})
			}
		}
	}

	if len(courseRows) == 0 {
		return 0, nil
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"course_results"}, courseResultColumns, pgx.CopyFromRows(courseRows))
	if err != nil {
		return 0, fmt.Errorf("copy course results: %w", err)
	}
	return int(n), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
