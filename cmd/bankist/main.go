package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hmoraes/bankist-api/internal/config"
	"github.com/hmoraes/bankist-api/internal/handler"
	"github.com/hmoraes/bankist-api/internal/infra/lockout"
	"github.com/hmoraes/bankist-api/internal/infra/observability"
	"github.com/hmoraes/bankist-api/internal/repository"
	"github.com/hmoraes/bankist-api/internal/service"
	"github.com/hmoraes/bankist-api/internal/session"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Int("idle_limit_seconds", cfg.IdleLimitSeconds),
		zap.Duration("tick_interval", cfg.TickInterval),
		zap.Duration("loan_delay", cfg.LoanDelay),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	// --- Tracing ---
	if cfg.EnableTraces {
		shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "bankist-api")
		if err != nil {
			logger.Fatal("failed to init tracer", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Renderer collaborator ---
	notifier := observability.NewLogNotifier(metrics, logger)

	// --- Account repository (seeded once at startup) ---
	store := repository.New(repository.DefaultSeed())
	logger.Info("account repository seeded", zap.Int("accounts", store.Len()))

	// --- Session state machine ---
	sessions := session.NewManager(cfg.IdleLimitSeconds, cfg.TickInterval, notifier, logger)

	// --- Login lockout ---
	lockoutReg := lockout.NewRegistry(lockout.Settings{
		MaxFailures:  cfg.LockoutMaxFailures,
		LockDuration: cfg.LockoutDuration,
	})

	// --- Services ---
	authSvc := service.NewAuthService(store, sessions, lockoutReg, metrics, logger, cfg.JWTSecret, cfg.JWTAccessTTL)
	bankSvc := service.NewBankService(store, sessions, notifier, lockoutReg, metrics, logger, cfg.LoanDelay, cfg.CacheTTL)

	// --- Router ---
	router := handler.NewRouter(authSvc, bankSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
