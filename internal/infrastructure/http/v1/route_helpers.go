// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the route surface shared by all workflow
// documents. Role checks happen in the domain services, so these routes
// carry no extra middleware.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Transition(c *gin.Context)
	Transitions(c *gin.Context)
	ReviewLog(c *gin.Context)
}

// RegisterDocumentRoutes registers the standard CRUD + workflow routes for a
// document type.
//
// Usage:
//
//	repo := document_repo.NewContractRepo(txManager)
//	service := contract.NewService(repo, reviews, numerator, txManager)
//	handler := handlers.NewContractHandler(baseHandler, service, reviewService)
//	RegisterDocumentRoutes(v1.Group("/contracts"), handler)
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/transition", handler.Transition)
	group.GET("/:id/transitions", handler.Transitions)
	group.GET("/:id/review-log", handler.ReviewLog)
}
