package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/domain/documents/billing"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
	"contratia/internal/infrastructure/http/v1/dto"
)

// maxAttachmentBytes limits uploaded planilla and signature files.
const maxAttachmentBytes = 20 << 20 // 20 MiB

// BillingHandler handles billing account endpoints.
type BillingHandler struct {
	*BaseHandler
	service *billing.Service
	reviews *review.Service
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(base *BaseHandler, service *billing.Service, reviews *review.Service) *BillingHandler {
	return &BillingHandler{
		BaseHandler: base,
		service:     service,
		reviews:     reviews,
	}
}

// List handles GET /billing-accounts
func (h *BillingHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.ListBillingAccountsRequest
	if !h.BindQuery(c, &req) {
		return
	}
	req.Defaults()

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(ctx, filter, actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result, func(doc *billing.Account) any {
		return dto.FromBillingAccount(doc)
	}))
}

// Create handles POST /billing-accounts
func (h *BillingHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.CreateBillingAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToAccount(actor.ID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, doc, actor); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromBillingAccount(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /billing-accounts/:id
func (h *BillingHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromBillingAccount(doc))
}

// Update handles PUT /billing-accounts/:id
func (h *BillingHandler) Update(c *gin.Context) {
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

	var req dto.UpdateBillingAccountRequest
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

	h.OK(c, dto.FromBillingAccount(doc))
}

// Delete handles DELETE /billing-accounts/:id
func (h *BillingHandler) Delete(c *gin.Context) {
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

// Transition handles POST /billing-accounts/:id/transition
func (h *BillingHandler) Transition(c *gin.Context) {
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

	// A delete transition leaves nothing to return.
	if doc == nil {
		h.NoContent(c)
		return
	}

	h.OK(c, dto.FromBillingAccount(doc))
}

// Transitions handles GET /billing-accounts/:id/transitions
func (h *BillingHandler) Transitions(c *gin.Context) {
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

// Completeness handles GET /billing-accounts/:id/completeness
func (h *BillingHandler) Completeness(c *gin.Context) {
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

	report, err := h.service.Completeness(ctx, docID, actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCompleteness(report))
}

// ReviewLog handles GET /billing-accounts/:id/review-log
func (h *BillingHandler) ReviewLog(c *gin.Context) {
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

	entries, err := h.reviews.History(ctx, workflow.KindBillingAccount, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReviewEntries(entries))
}

// ListByContract handles GET /contracts/:id/billing-accounts
func (h *BillingHandler) ListByContract(c *gin.Context) {
	ctx := c.Request.Context()

	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	contractID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result, err := h.service.ListByContract(ctx, contractID, actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromListResult(result, func(doc *billing.Account) any {
		return dto.FromBillingAccount(doc)
	}))
}

// UploadPlanilla handles POST /billing-accounts/:id/planilla-file
func (h *BillingHandler) UploadPlanilla(c *gin.Context) {
	h.upload(c, h.service.AttachPlanillaFile)
}

// UploadSignature handles POST /billing-accounts/:id/signature
func (h *BillingHandler) UploadSignature(c *gin.Context) {
	h.upload(c, h.service.AttachSignature)
}

type attachFunc func(ctx context.Context, docID id.ID, actor workflow.Actor, filename string, r io.Reader, size int64, contentType string) (*billing.Account, error)

func (h *BillingHandler) upload(c *gin.Context, attach attachFunc) {
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

	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file is required").WithDetail("field", "file"))
		return
	}
	if header.Size > maxAttachmentBytes {
		h.Error(c, apperror.NewValidation("file too large").WithDetail("max_bytes", maxAttachmentBytes))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read uploaded file"))
		return
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	doc, err := attach(ctx, docID, actor, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBillingAccount(doc))
}

// FileURL handles GET /billing-accounts/:id/file-url?path=...
// Issues a time-limited download link for an attachment of this document.
func (h *BillingHandler) FileURL(c *gin.Context) {
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

	path := c.Query("path")
	if path == "" {
		h.Error(c, apperror.NewValidation("path is required").WithDetail("query", "path"))
		return
	}

	url, err := h.service.FileURL(ctx, docID, actor, path)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FileURLResponse{URL: url})
}
