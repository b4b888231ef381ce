package dto

import (
	"time"

	"contratia/internal/core/types"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/workflow"
)

// --- Requests ---

// CreateContractRequest for POST /contracts.
type CreateContractRequest struct {
	ClientName  string      `json:"clientName" binding:"required"`
	StartDate   time.Time   `json:"startDate" binding:"required"`
	EndDate     *time.Time  `json:"endDate"`
	TotalAmount types.Money `json:"totalAmount"`
}

// ToContract builds a draft contract owned by ownerID.
func (r CreateContractRequest) ToContract(ownerID string) *contract.Contract {
	doc := contract.New(ownerID, r.ClientName, r.StartDate, r.TotalAmount)
	doc.EndDate = r.EndDate
	return doc
}

// UpdateContractRequest for PUT /contracts/:id.
type UpdateContractRequest struct {
	ClientName  *string      `json:"clientName"`
	StartDate   *time.Time   `json:"startDate"`
	EndDate     *time.Time   `json:"endDate"`
	TotalAmount *types.Money `json:"totalAmount"`
	Version     int          `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing contract.
// Lifecycle fields (state, number, owner) are never taken from the client.
func (r UpdateContractRequest) Apply(doc *contract.Contract) {
	if r.ClientName != nil {
		doc.ClientName = *r.ClientName
	}
	if r.StartDate != nil {
		doc.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		doc.EndDate = r.EndDate
	}
	if r.TotalAmount != nil {
		doc.TotalAmount = *r.TotalAmount
	}
	doc.Version = r.Version
}

// ListContractsRequest for GET /contracts.
type ListContractsRequest struct {
	PaginationRequest
	Search     string     `form:"search"`
	States     []string   `form:"state"`
	ClientName *string    `form:"clientName"`
	EndDateTo  *time.Time `form:"endDateTo" time_format:"2006-01-02"`
	OrderBy    string     `form:"orderBy"`
}

// ToFilter converts to a repository filter.
func (r ListContractsRequest) ToFilter() contract.ListFilter {
	f := contract.ListFilter{}
	f.Search = r.Search
	f.States = r.States
	f.ClientName = r.ClientName
	f.EndDateTo = r.EndDateTo
	f.OrderBy = r.OrderBy
	f.Limit = r.Limit
	f.Offset = r.Offset
	return f
}

// --- Responses ---

// ContractResponse is the public view of a contract.
type ContractResponse struct {
	ID            string      `json:"id"`
	Number        string      `json:"number"`
	State         string      `json:"state"`
	OwnerID       string      `json:"ownerId"`
	ClientName    string      `json:"clientName"`
	StartDate     time.Time   `json:"startDate"`
	EndDate       *time.Time  `json:"endDate,omitempty"`
	TotalAmount   types.Money `json:"totalAmount"`
	ReviewComment *string     `json:"reviewComment,omitempty"`
	Version       int         `json:"version"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// FromContract converts a domain contract.
func FromContract(c *contract.Contract) *ContractResponse {
	return &ContractResponse{
		ID:            c.ID.String(),
		Number:        c.Number,
		State:         c.State,
		OwnerID:       c.OwnerID,
		ClientName:    c.ClientName,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		TotalAmount:   c.TotalAmount,
		ReviewComment: c.ReviewComment,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// --- Transitions ---

// TransitionRequest for POST /{doc}/:id/transition.
type TransitionRequest struct {
	Name    string `json:"name" binding:"required"`
	Comment string `json:"comment"`
}

// Payload converts to a workflow payload.
func (r TransitionRequest) Payload() workflow.Payload {
	return workflow.Payload{Comment: r.Comment}
}

// TransitionsResponse lists transitions the caller may take.
type TransitionsResponse struct {
	Transitions []string `json:"transitions"`
}

// FromTransitions converts workflow transition names.
func FromTransitions(ts []workflow.Transition) TransitionsResponse {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return TransitionsResponse{Transitions: out}
}

// SweepResponse reports how many contracts the date sweep promoted.
type SweepResponse struct {
	Completed int64 `json:"completed"`
}
