// Package main is the entry point for the superquote ledger API server.
// It wires the chat-command ledger together: PostgreSQL store, pending
// deletion backend (Redis or in-process), HTTP API and metrics endpoint.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dmarzano/superquote/internal/api"
	"github.com/dmarzano/superquote/internal/config"
	"github.com/dmarzano/superquote/internal/ident"
	"github.com/dmarzano/superquote/internal/metrics"
	"github.com/dmarzano/superquote/internal/repository"
	"github.com/dmarzano/superquote/internal/service"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/redis/go-redis/v9"
)

func main() {
	// ── 1. Logger ─────────────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting superquote ledger server", "env", cfg.Server.Env, "port", cfg.Server.Port)

	// ── 2. Database ───────────────────────────────────────────────────────────
	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// ── 3. Migrations ─────────────────────────────────────────────────────────
	if err = runMigrations(db, "migrations"); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// ── 4. Pending deletion backend ───────────────────────────────────────────
	var pending service.PendingDeletions
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err = rdb.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis ping failed", "addr", cfg.Redis.Addr, "err", err)
			os.Exit(1)
		}
		pending = service.NewRedisPending(rdb, cfg.Ledger.PendingTTL)
		logger.Info("pending deletions backed by redis", "addr", cfg.Redis.Addr)
	} else {
		pending = service.NewMemoryPending(cfg.Ledger.PendingTTL, service.SystemClock)
		logger.Info("pending deletions kept in process memory")
	}

	// ── 5. Repository + services ──────────────────────────────────────────────
	ticketRepo := repository.NewTicketRepository(db, cfg.DB.QueryTimeout)

	ledgerSvc := service.NewLedgerService(ticketRepo, pending, ident.New(), service.SystemClock, logger)
	balanceSvc := service.NewBalanceService(ticketRepo, cfg.Ledger.ScanCap, logger)

	// ── 6. Metrics + health endpoint ──────────────────────────────────────────
	metricsSrv := metrics.StartServer(cfg.Server.MetricsPort, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	logger.Info("metrics server listening", "port", cfg.Server.MetricsPort)

	// ── 7. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 8. HTTP Router ────────────────────────────────────────────────────────
	router := api.SetupRouter(api.RouterDeps{
		Ledger:  ledgerSvc,
		Balance: balanceSvc,
		Cfg:     cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── 9. Start server ───────────────────────────────────────────────────────
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop() // trigger graceful shutdown
		}
	}()

	// ── 10. Graceful shutdown ─────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, draining connections…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}
	if err = metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown error", "err", err)
	}

	db.Close()
	logger.Info("server stopped cleanly")
}

// runMigrations reads all *.sql files from dir, sorted by name, and executes
// them sequentially.  Idempotent: SQL files should use IF NOT EXISTS / ON CONFLICT.
func runMigrations(db *sqlx.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("runMigrations: read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("runMigrations: read %q: %w", f, err)
		}
		if _, err = db.Exec(string(data)); err != nil {
			return fmt.Errorf("runMigrations: exec %q: %w", f, err)
		}
		slog.Info("migration applied", "file", filepath.Base(f))
	}
	return nil
}
