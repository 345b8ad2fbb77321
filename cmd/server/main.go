package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prepworks/prepworks-backend/internal/config"
	"github.com/prepworks/prepworks-backend/internal/database"
	"github.com/prepworks/prepworks-backend/internal/handler"
	"github.com/prepworks/prepworks-backend/internal/logger"
	"github.com/prepworks/prepworks-backend/internal/repository"
	"github.com/prepworks/prepworks-backend/internal/router"
	"github.com/prepworks/prepworks-backend/internal/service"
	"github.com/prepworks/prepworks-backend/internal/validator"
	"github.com/prepworks/prepworks-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting PrepWorks Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
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

	// Repositories.
	studentRepo := repository.NewStudentRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	// Services.
	authService := service.NewAuthService(cfg, rdb, studentRepo)
	questionService := service.NewQuestionService(subjectRepo, questionRepo, log)
	sessionService := service.NewSessionService(rdb, attemptRepo, questionService, log)
	diagnosticService := service.NewDiagnosticService(sessionService, log)
	assistantService := service.NewAssistantService(cfg, rdb, log)
	mediaService := service.NewMediaService(cfg)

	// Handlers.
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, studentRepo),
		Subject:    handler.NewSubjectHandler(questionService),
		Exam:       handler.NewExamHandler(sessionService, mediaService),
		Diagnostic: handler.NewDiagnosticHandler(diagnosticService),
		Assistant:  handler.NewAssistantHandler(assistantService, sessionService),
		WS:         handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// Background workers.
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answerWorker := worker.NewAnswerWorker(pool, rdb, log)
	resultWorker := worker.NewResultWorker(pool, rdb, log)

	go answerWorker.Start(workerCtx)
	go resultWorker.Start(workerCtx)

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

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

	// 2. Tear down live sessions so no timers fire into a dying process.
	sessionService.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
