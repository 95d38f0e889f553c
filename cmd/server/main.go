package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	authservice "octagram/backend/internal/auth/service"
	"octagram/backend/internal/authz"
	"octagram/backend/internal/config"
	"octagram/backend/internal/db"
	msgrepo "octagram/backend/internal/message/repository"
	msgservice "octagram/backend/internal/message/service"
	notifrepo "octagram/backend/internal/notification/repository"
	notifservice "octagram/backend/internal/notification/service"
	postrepo "octagram/backend/internal/post/repository"
	postservice "octagram/backend/internal/post/service"
	"octagram/backend/internal/realtime"
	rolerepo "octagram/backend/internal/role/repository"
	"octagram/backend/internal/security"
	"octagram/backend/internal/server"
	"octagram/backend/internal/server/middleware"
	storyrepo "octagram/backend/internal/story/repository"
	storyservice "octagram/backend/internal/story/service"
	otelsetup "octagram/backend/internal/telemetry/otel"
	tokenrepo "octagram/backend/internal/token/repository"
	userrepo "octagram/backend/internal/user/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; put it in .env or the environment")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "octagram-server", cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown", "error", err)
		}
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	users := userrepo.NewPostgresRepository(database)
	roles := rolerepo.NewPostgresRepository(database)
	tokens := tokenrepo.NewPostgresRepository(database)
	posts := postrepo.NewPostgresRepository(database)
	messages := msgrepo.NewPostgresRepository(database)
	notifications := notifrepo.NewPostgresRepository(database)
	stories := storyrepo.NewPostgresRepository(database)

	hasher := security.NewHasher(cfg.PBKDF2Iterations)
	tokenProvider := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTTL())

	evaluator, err := authz.NewOPAEvaluator()
	if err != nil {
		return err
	}
	authMW := middleware.NewAuth(tokenProvider, users, roles, evaluator, logger)

	meter := otel.Meter("octagram/backend/internal/realtime")
	dispatcher, err := realtime.NewDispatcher(users, messages, realtime.NewRegistry(), realtime.NewRegistry(), logger, meter)
	if err != nil {
		return err
	}

	authSvc := authservice.NewAuthService(users, tokens, hasher, tokenProvider, cfg.RefreshTTL())
	notifSvc := notifservice.NewNotificationService(notifications, dispatcher, logger)
	postSvc := postservice.NewPostService(posts, notifSvc, logger)
	msgSvc := msgservice.NewMessageService(messages, users)
	storySvc := storyservice.NewStoryService(stories, logger)

	router := server.NewRouter(server.Deps{
		Auth:                authSvc,
		Users:               users,
		Posts:               postSvc,
		Stories:             storySvc,
		Messages:            msgSvc,
		Notifications:       notifSvc,
		Dispatcher:          dispatcher,
		AuthMW:              authMW,
		HealthPinger:        database,
		HealthPolicyChecker: evaluator,
		Logger:              logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("http server stopped")
	return nil
}
