package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubstake/platform/internal/guard"
	"github.com/clubstake/platform/internal/handler"
	"github.com/clubstake/platform/internal/infra"
	"github.com/clubstake/platform/internal/ledger"
	"github.com/clubstake/platform/internal/repository"
	"github.com/clubstake/platform/internal/service"
	"github.com/clubstake/platform/internal/settlement"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("house server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("house-server connected to postgres")

	store := repository.NewPostgresStore(pool)
	engine := ledger.NewEngine(store, logger)
	betting := service.NewBettingService(store, engine, logger)
	settler := settlement.NewEngine(store, engine, logger)

	rateWindow, err := time.ParseDuration(cfg.CreditRateWindow)
	if err != nil {
		return fmt.Errorf("parse CREDIT_RATE_WINDOW: %w", err)
	}

	router := handler.NewRouter(handler.Deps{
		Credits: handler.NewCreditHandler(engine, cfg.MembershipFee,
			guard.NewRateLimiter(cfg.CreditRateLimit, rateWindow),
			guard.NewInflightGuard()),
		Wallet:  handler.NewWalletHandler(engine, betting),
		House:   handler.NewHouseHandler(engine),
		Betting: handler.NewBettingHandler(betting),
		Events:  handler.NewEventHandler(betting, settler),
		Health:  handler.HealthHandler(pool),
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("house-server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("house-server shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("house-server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("house-server shutdown failed: %w", err)
	}

	logger.Info("house-server stopped gracefully")
	return nil
}
