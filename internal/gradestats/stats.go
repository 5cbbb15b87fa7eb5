// Package gradestats derives the grade-statistics dashboard from a student's
// nested year -> semester -> course transcript. Everything here is a pure
// function of its input.
package gradestats

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/stemsi/portal-backend/internal/model"
)

// NoGradeLabel is the distribution label for courses without a letter grade.
const NoGradeLabel = "no grade"

// gradeRank is the display order of letter grades, best first.
var gradeRank = map[string]int{
	"A+": 0, "A": 1, "B+": 2, "B": 3, "C+": 4, "C": 5, "D+": 6, "D": 7, "F": 8,
}

// scoreRanges are checked top-down; the last range catches every score below 4.
var scoreRanges = []struct {
	label string
	min   float64
	max   float64
}{
	{"9-10", 9, 10},
	{"8-9", 8, 9},
	{"7-8", 7, 8},
	{"6-7", 6, 7},
	{"5-6", 5, 6},
	{"4-5", 4, 5},
	{"0-4", 0, 4},
}

var fourDigitYear = regexp.MustCompile(`\d{4}`)

// SemesterPoint is one point of the GPA trend chart.
type SemesterPoint struct {
	Name    string  `json:"name"`
	GPA10   float64 `json:"gpa10"`
	GPA4    float64 `json:"gpa4"`
	Credits float64 `json:"credits"`
}

// GradeCount is one bar of the letter-grade distribution.
type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// ScoreBucket is one bar of the 10-point score histogram.
type ScoreBucket struct {
	Range string  `json:"range"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// DataQuality counts the upstream fields that were collapsed or skipped.
type DataQuality struct {
	MissingCredits        int `json:"missing_credits"`
	InvalidCredits        int `json:"invalid_credits"`
	MissingScores         int `json:"missing_scores"`
	InvalidScores         int `json:"invalid_scores"`
	InconsistentSemesters int `json:"inconsistent_semesters"`
}

// Percent is a percentage rounded to one decimal and rendered as "12.5".
type Percent float64

func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64)
}

// MarshalJSON keeps the trailing decimal so 100 is sent as 100.0.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// Statistics is the aggregate shown on the grade-statistics page.
type Statistics struct {
	Courses           []model.CourseResult `json:"courses"`
	SemesterSeries    []SemesterPoint      `json:"semester_series"`
	GradeDistribution []GradeCount         `json:"grade_distribution"`
	ScoreDistribution []ScoreBucket        `json:"score_distribution"`
	TotalCourses      int                  `json:"total_courses"`
	PassCount         int                  `json:"pass_count"`
	FailCount         int                  `json:"fail_count"`
	TotalCredits      float64              `json:"total_credits"`
	PassedCredits     float64              `json:"passed_credits"`
	PassRate          Percent              `json:"pass_rate"`
	DataQuality       DataQuality          `json:"data_quality"`
}

// Aggregate computes the statistics of a transcript. It never fails: missing or
// malformed numbers contribute zero (credits, GPA) or are skipped (score buckets).
func Aggregate(years []model.YearData) Statistics {
	stats := Statistics{
		Courses:           []model.CourseResult{},
		SemesterSeries:    []SemesterPoint{},
		GradeDistribution: []GradeCount{},
	}

	buckets := make([]int, len(scoreRanges))
	gradeCounts := make(map[string]int)
	var gradeOrder []string

	for _, year := range years {
		yearLabel := shortYear(year.Name)
		for _, sem := range year.Semesters {
			if len(sem.Courses) == 0 {
				continue
			}

			// Every course of a semester repeats the semester summary; the first one wins.
			first := sem.Courses[0]
			stats.SemesterSeries = append(stats.SemesterSeries, SemesterPoint{
				Name:    yearLabel + "/" + sem.Name,
				GPA10:   ParseNumeric(first.SemesterGPA10).OrZero(),
				GPA4:    ParseNumeric(first.SemesterGPA4).OrZero(),
				Credits: ParseNumeric(first.SemesterCredits).OrZero(),
			})
			if !sameSemesterSummary(sem.Courses) {
				stats.DataQuality.InconsistentSemesters++
			}

			for _, course := range sem.Courses {
				stats.Courses = append(stats.Courses, course)

				grade := normalizeGrade(course.LetterGrade)
				if _, seen := gradeCounts[grade]; !seen {
					gradeOrder = append(gradeOrder, grade)
				}
				gradeCounts[grade]++

				credits := ParseNumeric(course.Credits)
				switch credits.Kind {
				case KindMissing:
					stats.DataQuality.MissingCredits++
				case KindInvalid:
					stats.DataQuality.InvalidCredits++
				}
				stats.TotalCredits += credits.OrZero()

				switch strings.TrimSpace(course.IsPass) {
				case model.PassFlagPassed:
					stats.PassCount++
					stats.PassedCredits += credits.OrZero()
				case model.PassFlagFailed:
					stats.FailCount++
				}

				score := ParseNumeric(course.Score10)
				switch score.Kind {
				case KindMissing:
					stats.DataQuality.MissingScores++
				case KindInvalid:
					stats.DataQuality.InvalidScores++
				default:
					buckets[bucketIndex(score.Value)]++
				}
			}
		}
	}

	stats.TotalCourses = len(stats.Courses)
	if stats.TotalCourses > 0 {
		rate := float64(stats.PassCount) / float64(stats.TotalCourses) * 100
		stats.PassRate = Percent(math.Round(rate*10) / 10)
	}

	sort.SliceStable(gradeOrder, func(i, j int) bool {
		return gradeSortKey(gradeOrder[i]) < gradeSortKey(gradeOrder[j])
	})
	for _, g := range gradeOrder {
		stats.GradeDistribution = append(stats.GradeDistribution, GradeCount{Grade: g, Count: gradeCounts[g]})
	}

	// Displayed lowest range first.
	stats.ScoreDistribution = make([]ScoreBucket, 0, len(scoreRanges))
	for i := len(scoreRanges) - 1; i >= 0; i-- {
		r := scoreRanges[i]
		stats.ScoreDistribution = append(stats.ScoreDistribution, ScoreBucket{
			Range: r.label,
			Min:   r.min,
			Max:   r.max,
			Count: buckets[i],
		})
	}

	return stats
}

func bucketIndex(score float64) int {
	for i, r := range scoreRanges {
		if score >= r.min {
			return i
		}
	}
	return len(scoreRanges) - 1
}

func normalizeGrade(raw string) string {
	g := strings.ToUpper(strings.TrimSpace(raw))
	if g == "" {
		return NoGradeLabel
	}
	return g
}

// gradeSortKey ranks known letters first, unknown labels after them and
// NoGradeLabel last.
func gradeSortKey(grade string) int {
	if rank, ok := gradeRank[grade]; ok {
		return rank
	}
	if grade == NoGradeLabel {
		return len(gradeRank) + 1
	}
	return len(gradeRank)
}

// shortYear turns "2023-2024" into "23-24". Names without a four-digit year are kept.
func shortYear(name string) string {
	return fourDigitYear.ReplaceAllStringFunc(strings.TrimSpace(name), func(y string) string {
		return y[2:]
	})
}

func sameSemesterSummary(courses []model.CourseResult) bool {
	first := courses[0]
	for _, c := range courses[1:] {
		if strings.TrimSpace(c.SemesterGPA10) != strings.TrimSpace(first.SemesterGPA10) ||
			strings.TrimSpace(c.SemesterGPA4) != strings.TrimSpace(first.SemesterGPA4) ||
			strings.TrimSpace(c.SemesterCredits) != strings.TrimSpace(first.SemesterCredits) {
			return false
		}
	}
	return true
}
