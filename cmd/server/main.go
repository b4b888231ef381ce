// Package main is the entry point for the contratia API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contratia/internal/domain/audit"
	"contratia/internal/domain/auth"
	"contratia/internal/domain/documents/billing"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/review"
	"contratia/internal/infrastructure/blob"
	v1 "contratia/internal/infrastructure/http/v1"
	"contratia/internal/infrastructure/numerator"
	"contratia/internal/infrastructure/storage/postgres"
	"contratia/internal/infrastructure/storage/postgres/auth_repo"
	"contratia/internal/infrastructure/storage/postgres/document_repo"
	"contratia/internal/infrastructure/storage/postgres/review_repo"
	"contratia/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting contratia server")

	// --- Database connection ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Numerator ---
	numeratorService := numerator.New(pool.Pool)

	// --- Object storage for planilla files and signatures ---
	fileStore, err := blob.New(blob.Config{
		Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: mustEnv("MINIO_ACCESS_KEY"),
		SecretKey: mustEnv("MINIO_SECRET_KEY"),
		Bucket:    getEnv("MINIO_BUCKET", "contratia"),
		UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
	})
	if err != nil {
		log.Fatalw("failed to connect to object storage", "error", err)
	}
	if err := fileStore.EnsureBucket(ctx); err != nil {
		log.Fatalw("failed to ensure storage bucket", "error", err)
	}
	log.Info("object storage ready")

	// --- Repositories ---
	contractRepo := document_repo.NewContractRepo(txManager)
	billingRepo := document_repo.NewBillingRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)

	ledgerRepo, err := review_repo.NewLedgerRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize review ledger", "error", err)
	}

	// --- Domain services ---
	reviewService := review.NewService(ledgerRepo)

	contractService := contract.NewService(contractRepo, reviewService, numeratorService, txManager)
	contractService.Hooks().OnBeforeCreate(func(ctx context.Context, doc *contract.Contract) error {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
		return nil
	})
	contractService.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *contract.Contract) error {
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
		return nil
	})

	billingService := billing.NewService(billingRepo, contractRepo, reviewService, fileStore, numeratorService, txManager)
	billingService.Hooks().OnBeforeCreate(func(ctx context.Context, doc *billing.Account) error {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
		return nil
	})
	billingService.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *billing.Account) error {
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
		return nil
	})

	// --- Auth ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, tokenRepo, txManager, jwtService, auth.DefaultServiceConfig())

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		TxManager:          txManager,
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		ContractService:    contractService,
		BillingService:     billingService,
		ReviewService:      reviewService,
		IdempotencyEnabled: getEnv("IDEMPOTENCY_ENABLED", "true") == "true",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
