// Package main is the entrypoint for the DIC Analyzer front door.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/dicanalyzer/internal/audit"
	"github.com/kiranshivaraju/dicanalyzer/internal/cache"
	"github.com/kiranshivaraju/dicanalyzer/internal/config"
	"github.com/kiranshivaraju/dicanalyzer/internal/dic"
	"github.com/kiranshivaraju/dicanalyzer/internal/frontdoor"
	mw "github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/middleware"
	"github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/response"
)

const (
	shutdownTimeout = 30 * time.Second
	auditQueueSize  = 256
	healthTimeout   = 5 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("front door failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"backend", cfg.Backend.BaseURL,
		"audit", cfg.AuditEnabled(),
		"cache", cfg.CacheEnabled(),
		"auth", cfg.AuthEnabled(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Static files and backend proxy
	static, err := frontdoor.NewStatic(cfg.Static.Dir, cfg.Static.Index)
	if err != nil {
		return fmt.Errorf("open static dir: %w", err)
	}
	defer static.Close()

	proxy, err := frontdoor.NewProxy(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	if err != nil {
		return fmt.Errorf("create proxy: %w", err)
	}
	backend := dic.NewHTTPClient(cfg.Backend.BaseURL, cfg.Backend.Prefix, healthTimeout)

	deps := frontdoor.Dependencies{
		APIPrefix: cfg.Backend.Prefix,
		Proxy:     proxy,
		Static:    static,
	}

	// 3. Optional Redis: aggregate cache and rate limiting
	var c cache.Cache
	if cfg.CacheEnabled() {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected")

		c = redisCache
		deps.RateLimit = mw.NewRateLimit(redisCache, cfg.Redis.RateLimitPerMinute)
		deps.AggregateCache = mw.NewAggregateCache(redisCache, cfg.Backend.Prefix, cfg.Redis.AggregateTTL)
	}

	// 4. Optional Postgres: audit trail
	var auditStore audit.Store
	var recorder *audit.Recorder
	if cfg.AuditEnabled() {
		pool, err := audit.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		slog.Info("database connected")

		if err := audit.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")

		auditStore = audit.NewPostgresStore(pool)
		recorder = audit.NewRecorder(auditStore, auditQueueSize)
		deps.Audit = mw.NewAudit(recorder, cfg.Backend.Prefix)
		deps.AuditHandler = frontdoor.AuditHandler(auditStore)
	}

	// 5. Optional basic auth
	if cfg.AuthEnabled() {
		deps.Auth = mw.NewAuth(cfg.Auth.Username, cfg.Auth.PasswordHash)
	}

	deps.HealthHandler = healthHandler(backend, auditStore, c)
	router := frontdoor.NewRouter(deps)

	// 6. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		// Multipart uploads and downloads stream through the proxy; the
		// backend timeout bounds them instead of a fixed write deadline.
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("front door listening", "addr", addr, "static_dir", cfg.Static.Dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if recorder != nil {
		if err := recorder.Close(shutdownCtx); err != nil {
			slog.Warn("audit recorder did not drain", "error", err)
		}
	}

	slog.Info("front door stopped gracefully")
	return nil
}

// tokenFetcher is the slice of dic.Client the health check needs.
type tokenFetcher interface {
	FetchToken(ctx context.Context) (string, error)
}

// healthHandler checks the backend and, when configured, the database and
// cache. Nil dependencies are reported as "disabled".
func healthHandler(backend tokenFetcher, s audit.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		checks := map[string]string{
			"backend":  "ok",
			"database": "disabled",
			"cache":    "disabled",
		}

		if _, err := backend.FetchToken(ctx); err != nil {
			slog.Warn("health check: backend unreachable", "error", err)
			checks["backend"] = "degraded"
		}
		if s != nil {
			checks["database"] = "ok"
			if err := s.Ping(ctx); err != nil {
				checks["database"] = "degraded"
			}
		}
		if c != nil {
			checks["cache"] = "ok"
			if err := c.Ping(ctx); err != nil {
				checks["cache"] = "degraded"
			}
		}

		for _, v := range checks {
			if v == "degraded" {
				response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
					"One or more services degraded", checks)
				return
			}
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
