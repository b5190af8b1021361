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
	"github.com/soulmatch/soulmatch-backend/internal/assessment"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/database"
	"github.com/soulmatch/soulmatch-backend/internal/handler"
	"github.com/soulmatch/soulmatch-backend/internal/logger"
	"github.com/soulmatch/soulmatch-backend/internal/metrics"
	"github.com/soulmatch/soulmatch-backend/internal/middleware"
	"github.com/soulmatch/soulmatch-backend/internal/repository"
	"github.com/soulmatch/soulmatch-backend/internal/router"
	"github.com/soulmatch/soulmatch-backend/internal/scoring"
	"github.com/soulmatch/soulmatch-backend/internal/service"
	"github.com/soulmatch/soulmatch-backend/internal/validator"
	"github.com/soulmatch/soulmatch-backend/internal/worker"
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
		Str("model", cfg.GeminiModel).
		Msg("Starting SoulMatch assessment backend")

	if cfg.GeminiAPIKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
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

	// ─── Connect to Gemini ─────────────────────────────────────────────
	genaiClient, err := scoring.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	personalityRepo := repository.NewPersonalityRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	m := metrics.Default()
	sessionStore := assessment.NewRedisSessionStore(rdb, cfg.SessionTTL)
	scorer := scoring.NewGeminiScorer(genaiClient, cfg.GeminiModel, cfg.ScoringLanguage, log)
	attemptQueue := worker.NewAttemptQueue(rdb)

	authService := service.NewAuthService(cfg)
	assessmentService := service.NewAssessmentService(
		sessionStore,
		profileRepo,
		personalityRepo,
		scorer,
		attemptQueue,
		m,
		cfg.ScoringTimeout,
		log,
	)
	personalityService := service.NewPersonalityService(personalityRepo, attemptRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRatePerMinute, time.Minute)
	handlers := &router.Handlers{
		Assessment:  handler.NewAssessmentHandler(assessmentService, log),
		Personality: handler.NewPersonalityHandler(personalityService, log),
		WS:          handler.NewWSHandler(assessmentService, submitLimiter, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	attemptWorker := worker.NewAttemptWorker(attemptRepo, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		attemptWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, submitLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	// WriteTimeout leaves room for a submission that runs to the scoring deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ScoringTimeout + 15*time.Second,
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

	// 1. Stop accepting new HTTP requests; running submissions get until their deadline.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ScoringTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the attempt worker and wait for its final flush.
	workerCancel()
	workers.Wait()
	submitLimiter.Stop()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
