package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/cache"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/database"
	"github.com/stemsi/admissions-backend/internal/eligibility"
	"github.com/stemsi/admissions-backend/internal/handler"
	"github.com/stemsi/admissions-backend/internal/logger"
	"github.com/stemsi/admissions-backend/internal/middleware"
	"github.com/stemsi/admissions-backend/internal/repository"
	"github.com/stemsi/admissions-backend/internal/repository/memory"
	"github.com/stemsi/admissions-backend/internal/router"
	"github.com/stemsi/admissions-backend/internal/service"
	"github.com/stemsi/admissions-backend/internal/validator"
	"github.com/stemsi/admissions-backend/internal/worker"
)

// stores is the set of persistence ports selected by STORE_DRIVER.
type stores struct {
	records repository.StudentRecordStore
	courses repository.CourseStore
	jobs    repository.JobStore
	apps    repository.ApplicationStore
	jobApps repository.JobApplicationStore
	notices repository.NoticeStore
	cache   service.ProjectionCache
	// pinger is nil for the memory driver.
	pinger handler.Pinger
	close  func()
}

func openStores(ctx context.Context, cfg *config.Config, rdb *redis.Client, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		db := memory.New()
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		return &stores{
			records: db.StudentRecords(),
			courses: db.Courses(),
			jobs:    db.Jobs(),
			apps:    db.Applications(),
			jobApps: db.JobApplications(),
			notices: db.Notices(),
			cache:   cache.NewLocal(),
			close:   func() {},
		}, nil

	case config.StoreDriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			records: repository.NewStudentRecordRepository(pool),
			courses: repository.NewCourseRepository(pool),
			jobs:    repository.NewJobRepository(pool),
			apps:    repository.NewApplicationRepository(pool),
			jobApps: repository.NewJobApplicationRepository(pool),
			notices: repository.NewNoticeRepository(pool),
			cache:   cache.NewProjectionCache(rdb, cfg.ProjectionCacheTTL),
			pinger:  pool,
			close:   pool.Close,
		}, nil
	}
	return nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting admissions backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer, err := eligibility.NewScorer(eligibility.Weights{
		Education:  cfg.MatchWeights.Education,
		Skills:     cfg.MatchWeights.Skills,
		Experience: cfg.MatchWeights.Experience,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid match weights")
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Open Stores ───────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stores")
	}
	defer st.close()

	// ─── Initialize Services ──────────────────────────────────────────
	noticeQueue := worker.NewNoticeQueue(rdb)
	tokenService := service.NewTokenService(cfg)
	catalogService := service.NewCatalogService(st.courses, st.jobs, st.cache, log)
	recordService := service.NewStudentRecordService(st.records, log)
	applicationService := service.NewApplicationService(st.apps, st.courses, st.records, st.cache, cfg, log)
	admissionService := service.NewAdmissionService(st.apps, st.courses, st.cache, noticeQueue, cfg, log)
	jobApplicationService := service.NewJobApplicationService(st.jobApps, st.jobs, st.records, scorer, st.cache, cfg, log)
	projectionService := service.NewProjectionService(st.courses, st.jobs, st.records, st.apps, st.jobApps, scorer, st.cache, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		StudentPortal: handler.NewStudentPortalHandler(projectionService, recordService, applicationService, jobApplicationService, st.notices),
		Institution:   handler.NewInstitutionHandler(catalogService, applicationService, admissionService, projectionService),
		Company:       handler.NewCompanyHandler(catalogService, jobApplicationService, projectionService),
		WS:            handler.NewWSHandler(worker.NewNoticeFeed(rdb, log), st.notices, log, cfg.AllowedOrigins),
		System:        handler.NewSystemHandler(rdb, st.pinger, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	notificationWorker := worker.NewNotificationWorker(st.notices, rdb, log)
	go func() {
		defer close(workerDone)
		notificationWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	limiters := router.Limiters{
		PerIP: middleware.NewRateLimiter(workerCtx, 120, time.Minute),
		Apply: middleware.NewRedisLimiter(rdb, cfg.ApplyRateLimitPerMinute, time.Minute),
	}
	r := router.SetupRouter(tokenService, handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// 2. Stop the notification worker and wait for its final flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Notification worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
