// Worker periodically deletes expired refresh tokens and expired stories so
// those tables do not grow without bound. Set SWEEP_INTERVAL to tune the
// cadence (default 1h).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"octagram/backend/internal/config"
	"octagram/backend/internal/db"
	storyrepo "octagram/backend/internal/story/repository"
	tokenrepo "octagram/backend/internal/token/repository"
)

const defaultSweepInterval = time.Hour

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set; put it in .env or the environment")
		os.Exit(1)
	}

	interval := defaultSweepInterval
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			logger.Error("invalid SWEEP_INTERVAL", "value", raw)
			os.Exit(1)
		}
		interval = d
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	tokens := tokenrepo.NewPostgresRepository(conn)
	stories := storyrepo.NewPostgresRepository(conn)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker: sweeping expired refresh tokens and stories", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, tokens, stories, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker: stopped")
			return
		case <-ticker.C:
			sweep(ctx, tokens, stories, logger)
		}
	}
}

func sweep(ctx context.Context, tokens tokenrepo.Repository, stories storyrepo.Repository, logger *slog.Logger) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := tokens.DeleteExpired(sweepCtx)
	if err != nil {
		logger.Error("worker: token sweep failed", "error", err)
	} else if deleted > 0 {
		logger.Info("worker: swept expired refresh tokens", "deleted", deleted)
	}

	deleted, err = stories.DeleteExpired(sweepCtx, time.Now().UTC())
	if err != nil {
		logger.Error("worker: story sweep failed", "error", err)
	} else if deleted > 0 {
		logger.Info("worker: swept expired stories", "deleted", deleted)
	}
}
