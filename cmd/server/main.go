package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/database"
	"github.com/stemsi/portal-backend/internal/handler"
	"github.com/stemsi/portal-backend/internal/logger"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/router"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
	"github.com/stemsi/portal-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Student Portal Backend")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Metrics Registry ──────────────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	gradeRepo := repository.NewGradeRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	certificateRepo := repository.NewCertificateRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	gradeCache := service.NewRedisGradeCache(rdb, cfg.GradesCacheTTL)
	importQueue := service.NewRedisImportQueue(rdb)

	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService, log)
	adminService := service.NewAdminService(adminRepo, roleRepo)
	mediaService := service.NewMediaService(cfg)
	notificationService := service.NewNotificationService(notificationRepo, service.NewRedisNotificationBus(rdb), log)
	gradeService := service.NewGradeService(gradeRepo, studentRepo, gradeCache, importQueue, log)
	registrationService := service.NewRegistrationService(courseRepo, notificationService, log)
	certificateService := service.NewCertificateService(certificateRepo, mediaService, log)
	adminRoleService := service.NewAdminRoleService(roleRepo)
	adminUserService := service.NewAdminUserService(adminRepo, authService, log)
	dashboardService := service.NewDashboardService(dashboardRepo, courseRepo, importQueue, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	systemHandler := handler.NewSystemHandler(map[string]handler.Pinger{
		"postgres": pool,
		"redis": handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}),
	}, log)

	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, studentService, adminService, log),
		Grade:        handler.NewGradeHandler(gradeService, log),
		Registration: handler.NewRegistrationHandler(registrationService),
		Certificate:  handler.NewCertificateHandler(certificateService, cfg.MaxUploadBytes),
		Notification: handler.NewNotificationHandler(notificationService),
		StudentMgmt:  handler.NewStudentManagementHandler(studentService, authService),
		AdminRole:    handler.NewAdminRoleHandler(adminRoleService),
		AdminUser:    handler.NewAdminUserHandler(adminUserService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		WS:           handler.NewWSHandler(notificationService, log, cfg.AllowedOrigins),
		System:       systemHandler,
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	importWorker := worker.NewGradeImportWorker(
		rdb,
		worker.NewTxImportApplier(pool, studentRepo, gradeRepo, notificationRepo),
		gradeCache,
		notificationService,
		registry,
		log,
	)
	go func() {
		defer close(workerDone)
		importWorker.Start(workerCtx)
	}()

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	go authLimiter.Cleanup(workerCtx.Done())

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, &router.Infra{
		Metrics:        middleware.NewMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		AuthLimiter:    authLimiter,
	}, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let the import batch in flight finish.
	workerCancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Grade import worker did not stop before the deadline")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
