package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/fin"
	httpapi "fintrack/internal/httpapi/v1"
	"fintrack/internal/storage/memory"
	pgstore "fintrack/internal/storage/postgres"
	"fintrack/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real env always wins.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("FINTRACK_CONFIG"), "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	var (
		store   httpapi.Store
		closeFn func()
	)
	switch cfg.Backend {
	case "postgres":
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		if cfg.DevSeed {
			user := fin.User{ID: uuid.New()}
			if err := pg.SeedUser(ctx, user); err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", user)
				printDevSeedBanner(user)
			}
		}
		store = pg
		logger.Info("storage backend: postgres")
	case "sqlite":
		db, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite database", "err", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
		closeFn = func() { _ = db.Close() }
		if cfg.DevSeed {
			user := fin.User{ID: uuid.New()}
			if err := db.SeedUser(ctx, user); err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "sqlite", user)
				printDevSeedBanner(user)
			}
		}
		store = db
		logger.Info("storage backend: sqlite", "path", cfg.SQLitePath)
	default:
		mem := memory.New()
		user := fin.User{ID: uuid.New()}
		mem.SeedUser(user)
		logDevSeed(logger, "memory", user)
		printDevSeedBanner(user)
		store = mem
		logger.Info("storage backend: memory")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(store, logger, cfg.Currency).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fintrack service listening", "addr", srv.Addr, "currency", cfg.Currency)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// logDevSeed emits a structured log with the seeded user ID.
func logDevSeed(l *slog.Logger, backend string, user fin.User) {
	l.Info("DEV seed ("+backend+")", "user_id", user.ID.String())
}

// printDevSeedBanner prints the seeded user ID for easy copy/paste.
func printDevSeedBanner(user fin.User) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("user_id: %s\n", user.ID.String())
	fmt.Println("==================================================")
}

// parseLogLevel maps config values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if strings.ToLower(cfg.LogFormat) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
