package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stellar/internal/auth"
	"stellar/internal/cache"
	"stellar/internal/config"
	"stellar/internal/db"
	"stellar/internal/email"
	"stellar/internal/emotion"
	"stellar/internal/handlers"
	"stellar/internal/logging"
	mw "stellar/internal/middleware"
	"stellar/internal/services"
	"stellar/internal/speech"
	"stellar/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Server.Environment, false)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	dbConn, err := db.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer dbConn.Close()
	if err := db.RunMigrations(dbConn); err != nil {
		return err
	}
	st := store.New(dbConn)

	var planetCache cache.PlanetCache = cache.Nop{}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.Cache.RedisURL, cfg.PlanetCacheTTL())
		if err != nil {
			logger.Warn("redis unavailable, planet cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			planetCache = rc
		}
	}

	analyzer, err := emotion.FromConfig(ctx, cfg.AI, logger)
	if err != nil {
		return err
	}
	transcriber := speech.NewWhisperClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIBaseURL, cfg.AI.WhisperModel)

	var mailer email.Sender = email.LogSender{Logger: logger, FrontendURL: cfg.Email.FrontendURL}
	if cfg.Email.ResendAPIKey != "" {
		mailer = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.FromName, cfg.Email.FrontendURL)
	} else {
		logger.Warn("RESEND_API_KEY not set; verification links are logged instead of mailed")
	}

	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return err
	}
	enc, err := services.NewEncryptionService(key)
	if err != nil {
		return err
	}
	if !enc.Enabled() {
		logger.Warn("ENCRYPTION_KEY not set; record content is stored in plaintext")
	}

	loc := cfg.Location()
	tokens := auth.NewTokens([]byte(cfg.Auth.JWTSecret), cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	records := services.NewRecordService(st, analyzer, enc, planetCache, loc, logger)
	planets := services.NewPlanetService(st, planetCache, loc, logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:        handlers.NewAuthHandler(st, tokens, mailer, logger),
		Records:     handlers.NewRecordsHandler(records, transcriber, logger),
		Planet:      handlers.NewPlanetHandler(planets, logger),
		AuthMW:      mw.NewAuthMiddleware(tokens, st, logger),
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("driver", cfg.Database.Driver),
			zap.String("ai_provider", cfg.AI.Provider),
			zap.String("timezone", loc.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
