package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/elders/internal/api"
	"github.com/Harshitk-cp/elders/internal/buildconfig"
	"github.com/Harshitk-cp/elders/internal/config"
	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/llm"
	"github.com/Harshitk-cp/elders/internal/service"
	"github.com/Harshitk-cp/elders/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(config.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting elders",
		zap.String("version", buildconfig.Version()),
		zap.String("commit", buildconfig.Commit()),
	)

	ctx := context.Background()

	provider := config.LLMProvider()
	gen, err := llm.NewClient(ctx, provider, config.LLMAPIKey(), llm.Options{
		Model:   config.LLMModel(),
		Timeout: config.GenerationTimeout(),
	})
	if err != nil {
		logger.Fatal("LLM client initialization failed", zap.String("provider", provider), zap.Error(err))
	}
	if c, ok := gen.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	logger.Info("LLM client initialized", zap.String("provider", provider))

	history, err := openHistory(ctx, config.HistoryBackend())
	if err != nil {
		logger.Fatal("failed to open cycle history", zap.String("backend", config.HistoryBackend()), zap.Error(err))
	}
	if history != nil {
		defer func() { _ = history.Close() }()
		logger.Info("cycle history enabled", zap.String("backend", config.HistoryBackend()))
	}

	sessions := service.NewSessionService(gen, history, logger)
	sessions.SetIdleTTL(config.SessionIdleTTL())

	app := api.NewApp(sessions, history, logger)

	// Start background services
	sessions.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	sessions.Stop()
	app.Close()

	// In-flight generations may take up to the generation timeout.
	shutdownCtx, cancel := context.WithTimeout(ctx, config.GenerationTimeout()+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg.Level = lvl
	return cfg.Build()
}

// openHistory returns nil when history is disabled.
func openHistory(ctx context.Context, backend string) (domain.CycleStore, error) {
	switch backend {
	case "none":
		return nil, nil

	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres history backend")
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		s := store.NewCycleStore(pool)
		if err := s.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil

	case "sqlite":
		s, err := store.NewSQLiteCycleStore(config.SQLitePath())
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown history backend: %s (valid options: none, postgres, sqlite)", backend)
	}
}
