package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/gradestats"
	"github.com/stemsi/portal-backend/internal/model"
)

// GradeReader loads a student's stored transcript.
type GradeReader interface {
	ListByStudent(ctx context.Context, studentID int) ([]model.YearData, error)
}

// StudentFinder resolves a student by ID.
type StudentFinder interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
}

// ErrStaleGrades is returned by GradeCache.Set when the transcript changed
// after the caller read its version.
var ErrStaleGrades = errors.New("grade cache entry is stale")

// GradeCache holds the nested grade payload per student. Every transcript
// change bumps a version; Set only stores years loaded under the version
// that Get reported, so a slow reader cannot overwrite a fresh import.
type GradeCache interface {
	Get(ctx context.Context, studentID int) (years []model.YearData, version int64, hit bool, err error)
	Set(ctx context.Context, studentID int, version int64, years []model.YearData) error
	Invalidate(ctx context.Context, studentID int) error
}

// ImportQueue accepts grade imports for background persistence.
type ImportQueue interface {
	Enqueue(ctx context.Context, imp *model.GradeImport) error
}

// GradeService serves transcripts and their statistics.
type GradeService struct {
	grades   GradeReader
	students StudentFinder
	cache    GradeCache
	queue    ImportQueue
	log      zerolog.Logger
}

// NewGradeService creates a new GradeService.
func NewGradeService(grades GradeReader, students StudentFinder, cache GradeCache, queue ImportQueue, log zerolog.Logger) *GradeService {
	return &GradeService{
		grades:   grades,
		students: students,
		cache:    cache,
		queue:    queue,
		log:      log.With().Str("component", "grade_service").Logger(),
	}
}

// Grades returns the transcript of a student, served from Redis when warm.
// Cache failures degrade to a database read.
func (s *GradeService) Grades(ctx context.Context, studentID int) ([]model.YearData, error) {
	years, version, hit, cacheErr := s.cache.Get(ctx, studentID)
	if cacheErr != nil {
		s.log.Warn().Err(cacheErr).Int("student_id", studentID).Msg("Grade cache read failed")
	}
	if hit {
		return years, nil
	}

	years, err := s.grades.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}

	// A failed Get leaves the version unknown, so nothing is stored.
	if cacheErr != nil {
		return years, nil
	}
	switch err := s.cache.Set(ctx, studentID, version, years); {
	case errors.Is(err, ErrStaleGrades):
		s.log.Debug().Int("student_id", studentID).Msg("Transcript changed during read, not caching")
	case err != nil:
		s.log.Warn().Err(err).Int("student_id", studentID).Msg("Grade cache write failed")
	}
	return years, nil
}

// Statistics aggregates the student's transcript. Always recomputed.
func (s *GradeService) Statistics(ctx context.Context, studentID int) (gradestats.Statistics, error) {
	years, err := s.Grades(ctx, studentID)
	if err != nil {
		return gradestats.Statistics{}, err
	}
	return gradestats.Aggregate(years), nil
}

// EnqueueImport queues a full transcript replacement for a student.
func (s *GradeService) EnqueueImport(ctx context.Context, studentID, adminID int, years []model.YearData) error {
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return err
	}

	imp := &model.GradeImport{StudentID: studentID, Years: years, ImportedBy: adminID}
	if err := s.queue.Enqueue(ctx, imp); err != nil {
		return fmt.Errorf("enqueue grade import: %w", err)
	}

	s.log.Info().Int("student_id", studentID).Int("admin_id", adminID).Int("years", len(years)).Msg("Grade import queued")
	return nil
}

// ─── Redis implementations ─────────────────────────────────────────

// RedisGradeCache stores the grade payload as JSON under student:<id>:grades,
// guarded by the counter at student:<id>:grades:version.
type RedisGradeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGradeCache creates a RedisGradeCache.
func NewRedisGradeCache(rdb *redis.Client, ttl time.Duration) *RedisGradeCache {
	return &RedisGradeCache{rdb: rdb, ttl: ttl}
}

func (c *RedisGradeCache) Get(ctx context.Context, studentID int) ([]model.YearData, int64, bool, error) {
	var versionCmd, payloadCmd *redis.StringCmd
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		versionCmd = p.Get(ctx, config.CacheKey.StudentGradesVersionKey(studentID))
		payloadCmd = p.Get(ctx, config.CacheKey.StudentGradesKey(studentID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, err
	}

	version, err := versionCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("read grades version: %w", err)
	}

	raw, err := payloadCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	var years []model.YearData
	if err := json.Unmarshal(raw, &years); err != nil {
		return nil, version, false, fmt.Errorf("decode cached grades: %w", err)
	}
	return years, version, true, nil
}

// Set writes years only while the version still equals the one the caller read.
// Invalidate bumping the version between WATCH and EXEC aborts the write.
func (c *RedisGradeCache) Set(ctx context.Context, studentID int, version int64, years []model.YearData) error {
	raw, err := json.Marshal(years)
	if err != nil {
		return err
	}

	versionKey := config.CacheKey.StudentGradesVersionKey(studentID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStaleGrades
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, config.CacheKey.StudentGradesKey(studentID), raw, c.ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleGrades
	}
	return err
}

// Invalidate bumps the version before dropping the payload, so any reader that
// loaded the old transcript can no longer store it.
func (c *RedisGradeCache) Invalidate(ctx context.Context, studentID int) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, config.CacheKey.StudentGradesVersionKey(studentID))
		p.Del(ctx, config.CacheKey.StudentGradesKey(studentID))
		return nil
	})
	return err
}

// RedisImportQueue pushes grade imports onto persist_grade_imports_queue.
type RedisImportQueue struct {
	rdb *redis.Client
}

// NewRedisImportQueue creates a RedisImportQueue.
func NewRedisImportQueue(rdb *redis.Client) *RedisImportQueue {
	return &RedisImportQueue{rdb: rdb}
}

func (q *RedisImportQueue) Enqueue(ctx context.Context, imp *model.GradeImport) error {
	raw, err := json.Marshal(imp)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistGradeImportsQueue, raw).Err()
}

// Len reports how many imports are waiting for the worker.
func (q *RedisImportQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, config.WorkerKey.PersistGradeImportsQueue).Result()
}
