package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
	"contratia/internal/infrastructure/http/v1/dto"
)

// ContractHandler handles contract endpoints.
type ContractHandler struct {
	*BaseHandler
	service *contract.Service
	reviews *review.Service
}

// NewContractHandler creates a new contract handler.
func NewContractHandler(base *BaseHandler, service *contract.Service, reviews *review.Service) *ContractHandler {
	return &ContractHandler{
		BaseHandler: base,
		service:     service,
		reviews:     reviews,
	}
}

// List handles GET /contracts
func (h *ContractHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.ListContractsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	result, err := h.service.List(ctx, req.ToFilter(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result, func(doc *contract.Contract) any {
		return dto.FromContract(doc)
	}))
}

// Create handles POST /contracts
func (h *ContractHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.CreateContractRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToContract(actor.ID)
	if err := h.service.Create(ctx, doc, actor); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromContract(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.Get(ctx, docID, actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromContract(doc))
}

// Update handles PUT /contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateContractRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Get(ctx, docID, actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.Apply(doc)

	if err := h.service.Update(ctx, doc, actor); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromContract(doc))
}

// Delete handles DELETE /contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, docID, actor); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Transition handles POST /contracts/:id/transition
func (h *ContractHandler) Transition(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.RequestTransition(ctx, docID, workflow.Transition(req.Name), actor, req.Payload())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromContract(doc))
}

// Transitions handles GET /contracts/:id/transitions
func (h *ContractHandler) Transitions(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	transitions, err := h.service.AuthorizedTransitions(ctx, docID, actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransitions(transitions))
}

// ReviewLog handles GET /contracts/:id/review-log
func (h *ContractHandler) ReviewLog(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	// Visibility follows the document itself.
	if _, err := h.service.Get(ctx, docID, actor); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.reviews.History(ctx, workflow.KindContract, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReviewEntries(entries))
}

// Sweep handles POST /contracts/sweep. Promotes every active contract
// whose end date has passed to completed. Also run periodically by the
// background worker; this endpoint lets administrators force a pass.
func (h *ContractHandler) Sweep(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.service.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SweepResponse{Completed: count})
}
