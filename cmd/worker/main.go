// Package main is the entry point for the contratia background worker.
// It expires overdue contracts and cleans up auth and idempotency state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"contratia/internal/domain/auth"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/review"
	"contratia/internal/infrastructure/numerator"
	"contratia/internal/infrastructure/storage/postgres"
	"contratia/internal/infrastructure/storage/postgres/auth_repo"
	"contratia/internal/infrastructure/storage/postgres/document_repo"
	"contratia/internal/infrastructure/storage/postgres/review_repo"
	"contratia/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting contratia worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	ledgerRepo, err := review_repo.NewLedgerRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize review ledger", "error", err)
	}

	contractRepo := document_repo.NewContractRepo(txManager)
	contractService := contract.NewService(
		contractRepo,
		review.NewService(ledgerRepo),
		numerator.New(pool.Pool),
		txManager,
	)

	tokenRepo := auth_repo.NewTokenRepo(txManager)

	worker := NewWorker(pool.Pool, contractService, tokenRepo, log)
	worker.sweepInterval = getEnvDuration("SWEEP_INTERVAL", worker.sweepInterval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic maintenance jobs.
type Worker struct {
	pool      *pgxpool.Pool
	contracts *contract.Service
	tokens    auth.TokenRepository
	log       *logger.Logger

	sweepInterval time.Duration
}

func NewWorker(pool *pgxpool.Pool, contracts *contract.Service, tokens auth.TokenRepository, log *logger.Logger) *Worker {
	return &Worker{
		pool:          pool,
		contracts:     contracts,
		tokens:        tokens,
		log:           log.WithComponent("worker"),
		sweepInterval: 1 * time.Minute,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	sweepTicker := time.NewTicker(w.sweepInterval)
	defer sweepTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	// First pass right away so a restart does not delay expiry.
	w.sweepExpiredContracts(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTicker.C:
			w.sweepExpiredContracts(ctx)
		case <-cleanupTicker.C:
			w.cleanupTokens(ctx)
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) sweepExpiredContracts(ctx context.Context) {
	count, err := w.contracts.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		w.log.Errorw("contract expiry sweep failed", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("completed expired contracts", "count", count)
	}
}

func (w *Worker) cleanupTokens(ctx context.Context) {
	count, err := w.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		w.log.Errorw("token cleanup failed", "error", err)
		return
	}

	if count > 0 {
		w.log.Infow("cleaned up refresh tokens", "count", count)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	result, err := w.pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", result.RowsAffected())
	}
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
