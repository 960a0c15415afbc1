package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/database"
	"github.com/stemsi/formfill-backend/internal/generate"
	"github.com/stemsi/formfill-backend/internal/handler"
	"github.com/stemsi/formfill-backend/internal/logger"
	"github.com/stemsi/formfill-backend/internal/middleware"
	"github.com/stemsi/formfill-backend/internal/repository"
	"github.com/stemsi/formfill-backend/internal/router"
	"github.com/stemsi/formfill-backend/internal/scrape"
	"github.com/stemsi/formfill-backend/internal/service"
	"github.com/stemsi/formfill-backend/internal/validator"
	"github.com/stemsi/formfill-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "formfill-server")
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting FormFill Backend")

	if cfg.FirecrawlAPIKey == "" {
		log.Warn().Msg("FIRECRAWL_API_KEY is not set, URL scraping is disabled")
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set, answer generation is disabled")
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

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	historyRepo := repository.NewFormHistoryRepository(pool)

	// ─── Initialize Collaborators ─────────────────────────────────────
	scraper := scrape.New(scrape.Options{
		APIKey:  cfg.FirecrawlAPIKey,
		BaseURL: cfg.FirecrawlBaseURL,
		Timeout: cfg.ScrapeTimeout,
		WaitFor: 3 * time.Second,
	}, log)

	gemini := generate.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, log)
	defer gemini.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo)
	adminUserService := service.NewAdminUserService(userRepo, log)
	formService := service.NewFormService(service.FormServiceDeps{
		Fetcher:  scraper,
		Drafter:  gemini,
		Cache:    service.NewRedisFormCache(rdb),
		Queue:    service.NewRedisHistoryQueue(rdb),
		History:  historyRepo,
		CacheTTL: cfg.ParseCacheTTL,
	}, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Form:    handler.NewFormHandler(formService, log),
		History: handler.NewHistoryHandler(formService),
		Admin:   handler.NewAdminUserHandler(adminUserService, log),
		System: handler.NewSystemHandler(
			map[string]handler.Check{
				"postgres": pool.Ping,
				"redis":    database.RedisPing(rdb),
			},
			database.QueueLength(rdb, config.WorkerKey.PersistHistoryQueue),
			log,
		),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	historyWorker := worker.NewHistoryWorker(historyRepo, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		historyWorker.Start(workerCtx)
	}()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(workerCtx.Done())

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, limiter, handlers, cfg)

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

	// 1. Stop accepting new HTTP requests. Answer requests can wait on the
	// generator for a while.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
