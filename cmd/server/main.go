package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/config"
	"github.com/feelmap/feelmap-backend/internal/database"
	"github.com/feelmap/feelmap-backend/internal/handler"
	"github.com/feelmap/feelmap-backend/internal/logger"
	"github.com/feelmap/feelmap-backend/internal/repository"
	"github.com/feelmap/feelmap-backend/internal/router"
	"github.com/feelmap/feelmap-backend/internal/service"
	"github.com/feelmap/feelmap-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("fallback_lang", cfg.FallbackLang).
		Msg("Starting FeelMap Backend")

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
	questionnaireRepo := repository.NewQuestionnaireRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	translationRepo := repository.NewTranslationRepository(pool)
	languageRepo := repository.NewLanguageRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	stationRepo := repository.NewStationRepository(pool)
	pinRepo := repository.NewPinRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(adminRepo, rdb, cfg, log)
	auditService := service.NewAuditService(auditRepo, log)
	resolverService := service.NewResolverService(questionnaireRepo, questionRepo, translationRepo, cfg.FallbackLang, log)
	questionnaireService := service.NewQuestionnaireService(questionnaireRepo, questionRepo, log)
	questionService := service.NewQuestionService(questionRepo, translationRepo, cfg.FallbackLang, log)
	translationService := service.NewTranslationService(translationRepo, rdb, cfg.FallbackLang, log)
	languageService := service.NewLanguageService(languageRepo, translationRepo, contentRepo, cfg.FallbackLang, log)
	contentService := service.NewContentService(contentRepo, cfg.FallbackLang, log)
	stationService := service.NewStationService(stationRepo, questionnaireRepo, log)
	pinService := service.NewPinService(pinRepo, questionRepo, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := router.Handlers{
		Auth:           handler.NewAuthHandler(authService, auditService, log),
		Questionnaires: handler.NewQuestionnaireHandler(questionnaireService, resolverService, auditService, cfg.FallbackLang, log),
		Questions:      handler.NewQuestionHandler(questionService, auditService, log),
		Translations:   handler.NewTranslationHandler(translationService, auditService, log),
		Languages:      handler.NewLanguageHandler(languageService, auditService, log),
		Content:        handler.NewContentHandler(contentService, auditService, cfg.FallbackLang, log),
		Stations:       handler.NewStationHandler(stationService, auditService, log),
		Pins:           handler.NewPinHandler(pinService, auditService, log),
		Audit:          handler.NewAuditHandler(auditService, log),
		WS:             handler.NewWSHandler(rdb, cfg.AllowedOrigins, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.Setup(cfg, authService, handlers, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
