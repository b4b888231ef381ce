// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"contratia/internal/domain/auth"
	"contratia/internal/domain/documents/billing"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
	"contratia/internal/infrastructure/http/v1/handlers"
	"contratia/internal/infrastructure/http/v1/middleware"
	"contratia/internal/infrastructure/storage/postgres"
	"contratia/pkg/logger"
)

// RouterConfig holds everything the HTTP layer needs.
type RouterConfig struct {
	// Pool is the database connection pool (health checks, idempotency)
	Pool *postgres.Pool

	// TxManager runs request-scoped transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// ContractService handles contract documents
	ContractService *contract.Service

	// BillingService handles billing accounts
	BillingService *billing.Service

	// ReviewService reads the review ledger
	ReviewService *review.Service

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, baseHandler, cfg)

		// Everything below requires a valid token.
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.UserContext())

		if cfg.IdempotencyEnabled {
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, 10*time.Minute)
			protected.Use(middleware.Idempotency(store))
		}

		registerContractRoutes(protected, baseHandler, cfg)
		registerBillingRoutes(protected, baseHandler, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

	publicAuth := rg.Group("/auth")

	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
	protectedAuth.Use(middleware.UserContext())

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerContractRoutes registers contract document endpoints.
func registerContractRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewContractHandler(base, cfg.ContractService, cfg.ReviewService)

	group := rg.Group("/contracts")
	RegisterDocumentRoutes(group, handler)

	// Forcing an expiry pass is an administrative action.
	adminOnly := middleware.RequireRole(string(workflow.RoleSuperAdmin), string(workflow.RoleAdmin))
	group.POST("/sweep", adminOnly, handler.Sweep)
}

// registerBillingRoutes registers billing account endpoints.
func registerBillingRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewBillingHandler(base, cfg.BillingService, cfg.ReviewService)

	group := rg.Group("/billing-accounts")
	RegisterDocumentRoutes(group, handler)

	group.GET("/:id/completeness", handler.Completeness)
	group.POST("/:id/planilla-file", handler.UploadPlanilla)
	group.POST("/:id/signature", handler.UploadSignature)
	group.GET("/:id/file-url", handler.FileURL)

	rg.GET("/contracts/:id/billing-accounts", handler.ListByContract)
}
