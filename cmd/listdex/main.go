package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/listdex/listdex/internal/config"
	dbRedis "github.com/listdex/listdex/internal/db/redis"
	logpkg "github.com/listdex/listdex/internal/logger"
	"github.com/listdex/listdex/internal/metrics"
	indexrepo "github.com/listdex/listdex/internal/repository/index"
	"github.com/listdex/listdex/internal/repository/postgres"
	searchrepo "github.com/listdex/listdex/internal/repository/search"
	chiTransport "github.com/listdex/listdex/internal/transport/chi"
	healthuc "github.com/listdex/listdex/internal/usecase/health"
	queryuc "github.com/listdex/listdex/internal/usecase/query"
	reindexuc "github.com/listdex/listdex/internal/usecase/reindex"
	syncuc "github.com/listdex/listdex/internal/usecase/sync"
	"github.com/listdex/listdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting listdex server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("index_addrs", cfg.Index.Addrs),
	)

	// Index backend store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Index.Addrs,
		Password: cfg.Index.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index backend not ready", zap.Error(err))
	}
	logger.Info("Connected to index backend")

	// Relational source of truth
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterSyncMetrics()
	metrics.RegisterQueryMetrics()

	// Repositories
	pgRepo := postgres.New(pool).WithScanLimit(cfg.Database.MaxScanRows)
	indexWriter := indexrepo.New(store)
	indexSearcher := searchrepo.New(store)

	// Health gate shared by sync, queries and probes
	gate := healthuc.NewGate(time.Duration(cfg.Health.CooldownSec) * time.Second)
	healthSvc := healthuc.New(store, pool, gate)
	pinger := healthuc.NewPinger(store, gate, time.Duration(cfg.Health.PingIntervalSec)*time.Second)

	// Use case services
	syncEngine := syncuc.New(pgRepo, indexWriter, pgRepo, gate).
		WithOperationsPerTask(cfg.Sync.OperationsPerTask).
		WithDelay(time.Duration(cfg.Sync.DelayBetweenTasksMS) * time.Millisecond).
		WithSchedule(cfg.Sync.Schedule).
		WithMaxAttempts(cfg.Sync.MaxAttempts)
	selector := queryuc.New(indexSearcher, pgRepo, gate)
	reindexSvc := reindexuc.New(pgRepo, indexWriter)

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(logpkg.ContextWithLogger(ctx, logger))
	defer stopWorkers()
	go pinger.Run(workerCtx)
	go func() {
		if err := syncEngine.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("Sync engine stopped", zap.Error(err))
		}
	}()

	// HTTP server
	server := chiTransport.NewServer(selector, syncEngine, reindexSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
