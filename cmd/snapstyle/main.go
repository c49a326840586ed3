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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/snapstyle/snapstyle/internal/config"
	"github.com/snapstyle/snapstyle/internal/db"
	dbPostgres "github.com/snapstyle/snapstyle/internal/db/postgres"
	dbRedis "github.com/snapstyle/snapstyle/internal/db/redis"
	domsearch "github.com/snapstyle/snapstyle/internal/domain/search"
	logpkg "github.com/snapstyle/snapstyle/internal/logger"
	"github.com/snapstyle/snapstyle/internal/metrics"
	catalogrepo "github.com/snapstyle/snapstyle/internal/repository/catalog"
	sessionrepo "github.com/snapstyle/snapstyle/internal/repository/session"
	chiTransport "github.com/snapstyle/snapstyle/internal/transport/chi"
	"github.com/snapstyle/snapstyle/internal/transport/embed"
	openaiText "github.com/snapstyle/snapstyle/internal/transport/openai"
	cataloguc "github.com/snapstyle/snapstyle/internal/usecase/catalog"
	healthuc "github.com/snapstyle/snapstyle/internal/usecase/health"
	refineuc "github.com/snapstyle/snapstyle/internal/usecase/refine"
	searchuc "github.com/snapstyle/snapstyle/internal/usecase/search"
	"github.com/snapstyle/snapstyle/internal/version"
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

	logger.Info("Starting snapstyle API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_driver", cfg.Index.Driver),
	)

	// Create index store based on driver
	var store db.Store
	switch cfg.Index.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Index.Addrs,
			Password:  cfg.Index.Password,
			KeyPrefix: cfg.Index.KeyPrefix,
		})
	case "postgres":
		store, err = dbPostgres.NewStore(dbPostgres.Config{
			DSN: cfg.Index.DSN,
		})
	default:
		logger.Fatal("Unknown index driver", zap.String("driver", cfg.Index.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the index to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index not ready", zap.Error(err))
	}
	logger.Info("Connected to index")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Embedding client over the ordered endpoint list
	embedder, err := embed.NewClient(&embed.Config{
		Endpoints:  cfg.Embedding.Endpoints,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create embedding client", zap.Error(err))
	}

	// Optional category predictor.
	// Pass nil interface (not typed nil pointer!) when not configured.
	// Go gotcha: (*Predictor)(nil) wrapped in CategoryPredictor != nil.
	var predictor searchuc.CategoryPredictor
	if cfg.Embedding.Text.BaseURL != "" {
		predictor = openaiText.NewPredictor(&openaiText.Config{
			APIKey:  cfg.Embedding.Text.APIKey,
			BaseURL: cfg.Embedding.Text.BaseURL,
			Model:   cfg.Embedding.Text.Model,
			Logger:  logger,
		})
		logger.Info("Category predictor enabled", zap.String("model", cfg.Embedding.Text.Model))
	}

	thresholds, err := domsearch.NewThresholds(
		cfg.Search.MinSimilarity, cfg.Search.WeakThreshold, cfg.Search.StrongThreshold,
	)
	if err != nil {
		logger.Fatal("Invalid similarity thresholds", zap.Error(err))
	}

	// Repositories
	catalogRepo := catalogrepo.New(store, cfg.Index.KeyPrefix)
	sessionRepo := sessionrepo.New(
		store, cfg.Index.KeyPrefix, time.Duration(cfg.Session.TTLMinutes)*time.Minute,
	)

	// Use case services
	searchSvc := searchuc.New(catalogRepo, predictor, searchuc.Config{
		Dimensions:  cfg.Embedding.Dimensions,
		PoolSize:    cfg.Search.PoolSize,
		DefaultTopK: cfg.Search.DefaultTopK,
		MaxTopK:     cfg.Search.MaxTopK,
		Thresholds:  thresholds,
	}, logger)
	refineSvc := refineuc.New(searchSvc, sessionRepo, thresholds, logger)
	catalogSvc := cataloguc.New(catalogRepo, logger)
	healthSvc := healthuc.New(store, embedder)

	server := chiTransport.NewServer(embedder, refineSvc, catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

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
