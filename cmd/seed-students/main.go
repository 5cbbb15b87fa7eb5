package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/database"
	"github.com/stemsi/portal-backend/internal/logger"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/service"
)

const (
	studentCount = 50
	cohort       = 2022
	major        = "Teknik Informatika"
	seedPassword = "stemsijaya"
)

type catalogueEntry struct {
	id      string
	name    string
	credits int
}

// Four semesters, taken in order.
var catalogue = [][]catalogueEntry{
	{{"IF101", "Algoritma dan Pemrograman", 3}, {"MA101", "Kalkulus I", 3}, {"FI101", "Fisika Dasar", 2}, {"BI101", "Bahasa Inggris", 2}},
	{{"IF102", "Struktur Data", 3}, {"MA102", "Kalkulus II", 3}, {"IF103", "Sistem Digital", 3}, {"PK101", "Pendidikan Kewarganegaraan", 2}},
	{{"IF201", "Basis Data", 3}, {"IF202", "Jaringan Komputer", 3}, {"MA201", "Statistika", 3}, {"IF203", "Pemrograman Web", 2}},
	{{"IF204", "Sistem Operasi", 3}, {"IF205", "Rekayasa Perangkat Lunak", 3}, {"IF206", "Kecerdasan Buatan", 3}, {"PR101", "Physical Education", 1}},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	studentRepo := repository.NewStudentRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)

	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService, log)
	gradeCache := service.NewRedisGradeCache(rdb, cfg.GradesCacheTTL)

	fmt.Printf("=== Seeding %d Students ===\n", studentCount)

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
		"Hendra Gunawan", "Ika Sari", "Jamal Mirdad", "Kiki Fatmala", "Lukman Hakim",
		"Maya Septiana", "Nanda Pratama", "Oki Setiana", "Putri Dian", "Qori Maharani",
		"Rafi Ahmad", "Siska Saraswati", "Toni Setiawan", "Umi Kalsum", "Vina Panduwinata",
		"Wahyu Hidayat", "Xena Maharani", "Yudi Pratama", "Zaki Anwar", "Alifia Zahra",
		"Bagas Saputra", "Citra Kirana", "Dimas Anggara", "Elisa Novita", "Fikri Maulana",
		"Gali Rakasiwi", "Hani Hanifah", "Iqbal Ramadhan", "Jasmine Azzahra", "Kevin Sanjaya",
		"Larasati Dewi", "Miko Pambudi", "Nia Ramadhani", "Oscar Lawalata", "Puput Melati",
		"Reza Rahadian", "Sari Nila", "Tigor Siahaan", "Utari Maharani", "Vicky Prasetyo",
	}

	successCount := 0
	for i := 0; i < studentCount; i++ {
		req := &model.CreateStudentRequest{
			StudentCode: fmt.Sprintf("%d%04d", cohort, i+1),
			Name:        names[i],
			Major:       major,
			Cohort:      cohort,
			Password:    seedPassword,
		}

		student, err := studentService.Create(ctx, req)
		if errors.Is(err, repository.ErrDuplicateStudentCode) {
			student, err = studentService.GetByStudentCode(ctx, req.StudentCode)
		}
		if err != nil {
			fmt.Printf("Error creating student %s (%s): %v\n", req.Name, req.StudentCode, err)
			continue
		}

		years := sampleTranscript(rand.New(rand.NewPCG(uint64(i+1), cohort)))
		err = database.WithTx(ctx, pool, func(tx pgx.Tx) error {
			_, err := gradeRepo.ReplaceForStudent(ctx, tx, student.ID, years)
			return err
		})
		if err != nil {
			fmt.Printf("Error seeding transcript for %s: %v\n", student.StudentCode, err)
			continue
		}
		if err := gradeCache.Invalidate(ctx, student.ID); err != nil {
			log.Warn().Err(err).Int("student_id", student.ID).Msg("Failed to drop cached grades")
		}

		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Seeded %d students...\n", i+1)
		}
	}

	fmt.Printf("\nSeed completed! Successfully seeded %d/%d students.\n", successCount, studentCount)
}

// sampleTranscript builds two academic years of results in the registrar's raw text format.
func sampleTranscript(rng *rand.Rand) []model.YearData {
	years := []model.YearData{
		{Name: fmt.Sprintf("%d-%d", cohort, cohort+1)},
		{Name: fmt.Sprintf("%d-%d", cohort+1, cohort+2)},
	}

	for si, courses := range catalogue {
		results := make([]model.CourseResult, 0, len(courses))
		var credits int
		var weighted10, weighted4 float64
		for _, c := range courses {
			score := 3 + rng.Float64()*7
			score = float64(int(score*10)) / 10
			letter, score4 := letterFor(score)
			pass := "1"
			if letter == "F" {
				pass = "0"
			}

			results = append(results, model.CourseResult{
				CurriculumID:   c.id,
				CurriculumName: c.name,
				Credits:        strconv.Itoa(c.credits),
				Score10:        strconv.FormatFloat(score, 'f', 1, 64),
				Score4:         strconv.FormatFloat(score4, 'f', 1, 64),
				LetterGrade:    letter,
				IsPass:         pass,
			})
			credits += c.credits
			weighted10 += score * float64(c.credits)
			weighted4 += score4 * float64(c.credits)
		}

		// Semester summary columns repeat on every course row.
		for ci := range results {
			results[ci].SemesterGPA10 = strconv.FormatFloat(weighted10/float64(credits), 'f', 2, 64)
			results[ci].SemesterGPA4 = strconv.FormatFloat(weighted4/float64(credits), 'f', 2, 64)
			results[ci].SemesterCredits = strconv.Itoa(credits)
		}

		year := &years[si/2]
		year.Semesters = append(year.Semesters, model.SemesterData{
			Name:    fmt.Sprintf("HK%02d", si%2+1),
			Courses: results,
		})
	}
	return years
}

func letterFor(score float64) (string, float64) {
	switch {
	case score >= 8.5:
		return "A", 4
	case score >= 7:
		return "B", 3
	case score >= 5.5:
		return "C", 2
	case score >= 4:
		return "D", 1
	default:
		return "F", 0
	}
}
