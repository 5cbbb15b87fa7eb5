package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/database"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
)

const (
	ImportBatchSize    = 20
	ImportBatchTimeout = 2 * time.Second
	ImportPollTimeout  = 1 * time.Second

	// MaxImportAttempts bounds retries of an import that keeps failing transiently.
	MaxImportAttempts = 5
)

// ImportApplier writes one grade import and returns the notification it recorded.
type ImportApplier interface {
	Apply(ctx context.Context, imp *model.GradeImport) (*model.Notification, error)
}

// CacheInvalidator drops a student's cached grades.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, studentID int) error
}

// Publisher pushes a stored notification to live clients.
type Publisher interface {
	Publish(ctx context.Context, n *model.Notification)
}

// GradeImportWorker consumes persist_grade_imports_queue in batches.
type GradeImportWorker struct {
	rdb       *redis.Client
	applier   ImportApplier
	cache     CacheInvalidator
	publisher Publisher
	log       zerolog.Logger

	queueLength prometheus.Gauge
	processed   *prometheus.CounterVec

	requeue func(ctx context.Context, raw []byte) error
}

// NewGradeImportWorker creates a new GradeImportWorker and registers its collectors on reg.
func NewGradeImportWorker(rdb *redis.Client, applier ImportApplier, cache CacheInvalidator, publisher Publisher, reg prometheus.Registerer, log zerolog.Logger) *GradeImportWorker {
	w := &GradeImportWorker{
		rdb:       rdb,
		applier:   applier,
		cache:     cache,
		publisher: publisher,
		log:       log.With().Str("component", "grade_import_worker").Logger(),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "grade_import_queue_length",
			Help:      "Pending grade imports in Redis.",
		}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Name:      "grade_imports_total",
			Help:      "Grade imports handled by the worker, by result.",
		}, []string{"result"}),
	}
	w.requeue = func(ctx context.Context, raw []byte) error {
		return w.rdb.RPush(ctx, config.WorkerKey.PersistGradeImportsQueue, raw).Err()
	}
	if reg != nil {
		reg.MustRegister(w.queueLength, w.processed)
	}
	return w
}


// Start runs the worker loop until ctx is cancelled. Call in a goroutine.
func (w *GradeImportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("GradeImportWorker started")

	batch := make([]model.GradeImport, 0, ImportBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ImportBatchSize || time.Since(lastFlush) >= ImportBatchTimeout) {

			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flush(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ImportPollTimeout, config.WorkerKey.PersistGradeImportsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var imp model.GradeImport
			if err := json.Unmarshal([]byte(item[1]), &imp); err != nil {
				w.processed.WithLabelValues("invalid").Inc()
				w.log.Error().Err(err).Msg("Invalid JSON payload, dropping")
				continue
			}
			batch = append(batch, imp)
		}
	}
}

// flush applies each import on its own so one bad transcript does not block the rest.
// Transient failures go back to the tail of the queue with their attempt count
// raised. Permanent failures and imports out of attempts are dropped.
func (w *GradeImportWorker) flush(ctx context.Context, batch []model.GradeImport) {
	if len(batch) == 0 {
		return
	}

	applied := 0
	for i := range batch {
		imp := &batch[i]
		log := w.log.With().
			Int("student_id", imp.StudentID).
			Int("imported_by", imp.ImportedBy).
			Int("attempt", imp.Attempts+1).
			Logger()

		n, err := w.applier.Apply(ctx, imp)
		if err != nil {
			w.processed.WithLabelValues("failed").Inc()
			w.retryOrDrop(ctx, imp, err, log)
			continue
		}

		w.processed.WithLabelValues("applied").Inc()
		applied++

		if err := w.cache.Invalidate(ctx, imp.StudentID); err != nil {
			log.Warn().Err(err).Msg("Grade cache invalidation failed")
		}
		if n != nil {
			w.publisher.Publish(ctx, n)
		}
	}

	w.log.Info().Int("batch", len(batch)).Int("applied", applied).Msg("Grade import batch flushed")
	w.observeQueue(ctx)
}

func (w *GradeImportWorker) retryOrDrop(ctx context.Context, imp *model.GradeImport, err error, log zerolog.Logger) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		w.processed.WithLabelValues("dropped").Inc()
		log.Warn().Err(err).Msg("Student no longer exists, dropping import")
		return
	case repository.IsPermanent(err):
		w.processed.WithLabelValues("dropped").Inc()
		log.Error().Err(err).Msg("Import rejected by the database, dropping")
		return
	case imp.Attempts+1 >= MaxImportAttempts:
		w.processed.WithLabelValues("dropped").Inc()
		log.Error().Err(err).Msg("Import failed too many times, dropping")
		return
	}

	retry := *imp
	retry.Attempts++
	raw, mErr := json.Marshal(&retry)
	if mErr != nil {
		log.Error().Err(mErr).Msg("Encode retry failed, import lost")
		return
	}
	log.Warn().Err(err).Msg("Apply failed, requeueing")
	if err := w.requeue(ctx, raw); err != nil {
		log.Error().Err(err).Msg("Requeue failed, import lost")
	}
}

func (w *GradeImportWorker) observeQueue(ctx context.Context) {
	if w.rdb == nil {
		return
	}
	n, err := w.rdb.LLen(ctx, config.WorkerKey.PersistGradeImportsQueue).Result()
	if err != nil {
		return
	}
	w.queueLength.Set(float64(n))
}

// TxImportApplier replaces a transcript and records the student's notification in
// one PostgreSQL transaction.
type TxImportApplier struct {
	pool          *pgxpool.Pool
	students      *repository.StudentRepository
	grades        *repository.GradeRepository
	notifications *repository.NotificationRepository
}

// NewTxImportApplier creates a TxImportApplier.
func NewTxImportApplier(pool *pgxpool.Pool, students *repository.StudentRepository, grades *repository.GradeRepository, notifications *repository.NotificationRepository) *TxImportApplier {
	return &TxImportApplier{pool: pool, students: students, grades: grades, notifications: notifications}
}

func (a *TxImportApplier) Apply(ctx context.Context, imp *model.GradeImport) (*model.Notification, error) {
	if _, err := a.students.GetByID(ctx, imp.StudentID); err != nil {
		return nil, err
	}

	var n *model.Notification
	err := database.WithTx(ctx, a.pool, func(tx pgx.Tx) error {
		courses, err := a.grades.ReplaceForStudent(ctx, tx, imp.StudentID, imp.Years)
		if err != nil {
			return err
		}

		n = &model.Notification{
			StudentID: imp.StudentID,
			Kind:      model.NotificationGradesUpdated,
			Title:     "Nilai diperbarui",
			Body:      fmt.Sprintf("Transkrip Anda telah diperbarui (%d mata kuliah).", courses),
		}
		return a.notifications.Create(ctx, tx, n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}
