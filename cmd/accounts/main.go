package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bank-microservices/account-service/internal/config"
	"github.com/bank-microservices/account-service/internal/handler"
	"github.com/bank-microservices/account-service/internal/infra/customer"
	"github.com/bank-microservices/account-service/internal/infra/docstore"
	"github.com/bank-microservices/account-service/internal/infra/observability"
	"github.com/bank-microservices/account-service/internal/infra/resilience"
	"github.com/bank-microservices/account-service/internal/port"
	"github.com/bank-microservices/account-service/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.String("docstore_url", cfg.DocstoreURL),
		zap.String("customer_service_url", cfg.CustomerServiceURL),
		zap.Bool("customer_strict_check", cfg.CustomerStrictCheck),
		zap.Duration("customer_cache_ttl", cfg.CustomerCacheTTL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint, "account-service")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	storeCB := resilience.NewCircuitBreaker("account-store")
	customerCB := resilience.NewCircuitBreaker("customer-service")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := docstore.NewClient(
		httpClient,
		cfg.DocstoreURL,
		cfg.DocstoreAPIKey,
		cfg.DocstoreServiceKey,
		storeCB,
		resilienceCfg,
		logger,
	)

	var directory port.CustomerDirectory = customer.NewClient(
		httpClient,
		cfg.CustomerServiceURL,
		customerCB,
		cfg.CustomerStrictCheck,
		logger,
	)
	if cfg.CustomerCacheTTL > 0 {
		logger.Info("customer lookups cached", zap.Duration("ttl", cfg.CustomerCacheTTL))
		directory = customer.NewCachedDirectory(directory, cfg.CustomerCacheTTL, metrics)
	}

	// --- Services ---
	accountSvc := service.NewAccountService(store, directory, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(accountSvc, directory, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort))
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
