// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"contratia/internal/core/id"
	"contratia/internal/core/types"
	"contratia/internal/domain/documents/billing"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
	"contratia/internal/infrastructure/numerator"
	"contratia/internal/infrastructure/storage/postgres"
	"contratia/internal/infrastructure/storage/postgres/document_repo"
	"contratia/internal/infrastructure/storage/postgres/review_repo"
	"contratia/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	employeeID, err := seedUsers(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed users", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, employeeID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedUsers creates one user per role. Returns the employee's id so demo
// documents can be owned by someone who goes through the normal workflow.
func seedUsers(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (string, error) {
	adminEmail := getEnv("ADMIN_EMAIL", "admin@contratia.local")
	adminPassword := getEnv("ADMIN_PASSWORD", "Admin123!")
	defaultPassword := getEnv("SEED_USER_PASSWORD", "Contratia123!")

	users := []struct {
		email     string
		password  string
		firstName string
		lastName  string
		role      workflow.Role
	}{
		{adminEmail, adminPassword, "System", "Admin", workflow.RoleSuperAdmin},
		{"gestion@contratia.local", defaultPassword, "Gloria", "Gestora", workflow.RoleAdmin},
		{"supervision@contratia.local", defaultPassword, "Santiago", "Supervisor", workflow.RoleSupervisor},
		{"tesoreria@contratia.local", defaultPassword, "Teresa", "Tesorera", workflow.RoleTreasury},
		{"contratista@contratia.local", defaultPassword, "Carlos", "Contratista", workflow.RoleEmployee},
	}

	var employeeID string

	for _, u := range users {
		userID, err := upsertUser(ctx, pool, u.email, u.password, u.firstName, u.lastName, u.role)
		if err != nil {
			return "", fmt.Errorf("seed user %s: %w", u.email, err)
		}
		log.Infow("user ready", "email", u.email, "role", u.role, "user_id", userID)

		if u.role == workflow.RoleEmployee {
			employeeID = userID
		}
	}

	return employeeID, nil
}

func upsertUser(ctx context.Context, pool *postgres.Pool, email, password, firstName, lastName string, role workflow.Role) (string, error) {
	var existingID string
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		email,
	).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("check user exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, role,
			is_active, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, true, $7, $7, 1)
	`, userID, email, string(passwordHash), firstName, lastName, role, now)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}

	return userID.String(), nil
}

// seedDemoData creates a few contracts and billing accounts through the
// domain services so numbers, states and review entries come out the same
// way they would in production.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, employeeID string) error {
	if employeeID == "" {
		return errors.New("no employee user to own demo documents")
	}

	log.Info("seeding demo data...")

	txManager := postgres.NewTxManager(pool)

	ledgerRepo, err := review_repo.NewLedgerRepo(txManager)
	if err != nil {
		return fmt.Errorf("init review ledger: %w", err)
	}
	reviewService := review.NewService(ledgerRepo)
	numeratorService := numerator.New(pool.Pool)

	contractRepo := document_repo.NewContractRepo(txManager)
	contractService := contract.NewService(contractRepo, reviewService, numeratorService, txManager)

	billingRepo := document_repo.NewBillingRepo(txManager)
	billingService := billing.NewService(billingRepo, contractRepo, reviewService, nil, numeratorService, txManager)

	owner := workflow.Actor{ID: employeeID, Role: workflow.RoleEmployee}
	now := time.Now().UTC()

	demos := []struct {
		clientName  string
		startDate   time.Time
		months      int
		totalAmount float64
	}{
		{"Hospital San Rafael", now.AddDate(0, -2, 0), 12, 48_000_000},
		{"Clínica del Norte", now.AddDate(0, -1, 0), 6, 21_500_000},
		{"ESE Salud Vital", now, 3, 9_900_000},
	}

	for _, d := range demos {
		doc := contract.New(owner.ID, d.clientName, d.startDate, types.NewMoney(d.totalAmount))
		endDate := d.startDate.AddDate(0, d.months, 0)
		doc.EndDate = &endDate

		if err := contractService.Create(ctx, doc, owner); err != nil {
			log.Warnw("failed to seed contract", "client", d.clientName, "error", err)
			continue
		}

		account := billing.New(owner.ID, doc.ID)
		if err := billingService.Create(ctx, account, owner); err != nil {
			log.Warnw("failed to seed billing account", "contract", doc.Number, "error", err)
			continue
		}

		log.Infow("seeded contract with billing account",
			"contract", doc.Number,
			"account", account.Document.Number,
			"client", d.clientName,
		)
	}

	log.Info("demo data seeded successfully")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
