package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/reportlens/reportlens/cmd/mainconfig"
	"github.com/reportlens/reportlens/internal/analysis"
	"github.com/reportlens/reportlens/internal/api/router"
	appconfig "github.com/reportlens/reportlens/internal/config"
	"github.com/reportlens/reportlens/internal/extraction"
	"github.com/reportlens/reportlens/internal/filestore"
	"github.com/reportlens/reportlens/internal/observability/metrics"
	"github.com/reportlens/reportlens/internal/reports"
	"github.com/reportlens/reportlens/internal/trends"
	"github.com/reportlens/reportlens/pkg/logging"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting reportlens API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Repository: Postgres in production, in-memory for local development.
	var repo reports.Repository
	if cfg.UseMemoryStore || cfg.DatabaseURL == "" {
		logger.Warn("using in-memory report store; data is lost on restart")
		repo = reports.NewInMemoryRepository()
	} else {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		repo = reports.NewPostgresRepository(pool)
	}

	analysisMetrics := metrics.NewAnalysisMetrics(nil)

	// Extraction: Gemini when a key is configured, regex fallback otherwise.
	var extractor extraction.Extractor
	extractorSource := "regex"
	var explainer extraction.Explainer
	if cfg.GeminiAPIKey != "" {
		gemini, err := extraction.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create Gemini extractor", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		extractor = gemini
		extractorSource = "gemini"

		if cfg.ExplainResults {
			ex, err := extraction.NewGeminiExplainer(ctx, cfg.GeminiAPIKey, cfg.GeminiExplainerID)
			if err != nil {
				logger.Error("failed to create Gemini explainer", "error", err)
				os.Exit(1)
			}
			defer ex.Close()
			explainer = ex
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set; using regex extraction only")
		extractor = extraction.NewRegexExtractor(nil)
	}

	// Document archival to S3, enabled only when a bucket is configured.
	var files *filestore.Store
	if cfg.ReportsBucket != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		files = filestore.NewStore(s3.NewFromConfig(awsCfg), cfg.ReportsBucket, logger)
	}

	// Redis stats cache, optional.
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		cache = redis.NewClient(opts)
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable; stats cache disabled", "error", err)
			cache = nil
		}
	}

	normalizer := analysis.NewNormalizer(nil, logger)
	service := reports.NewService(reports.ServiceConfig{
		Repo:            repo,
		Normalizer:      normalizer,
		Extractor:       extractor,
		ExtractorSource: extractorSource,
		Explainer:       explainer,
		Files:           files,
		Metrics:         analysisMetrics,
		Logger:          logger,
	})
	statsService := reports.NewStatsService(repo, cache, cfg.StatsCacheTTL, prometheus.DefaultGatherer, logger)
	reportsHandler := reports.NewHandler(service, repo, statsService, logger)
	trendsHandler := trends.NewHandler(repo, trends.NewAggregator(nil), logger)

	r := router.New(&router.Config{
		Logger:             logger,
		ReportsHandler:     reportsHandler,
		TrendsHandler:      trendsHandler,
		MetricsHandler:     promhttp.Handler(),
		AuthJWTSecret:      cfg.AuthJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
