package dto

import (
	"time"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/core/types"
	"contratia/internal/domain/documents/billing"
	"contratia/internal/domain/workflow"
)

// --- Requests ---

// CreateBillingAccountRequest for POST /billing-accounts.
type CreateBillingAccountRequest struct {
	ContractID string `json:"contractId" binding:"required"`
}

// ToAccount builds a new account in its initial state.
func (r CreateBillingAccountRequest) ToAccount(ownerID string) (*billing.Account, error) {
	contractID, err := id.Parse(r.ContractID)
	if err != nil {
		return nil, apperror.NewValidation("invalid contract id").WithDetail("field", "contractId")
	}
	return billing.New(ownerID, contractID), nil
}

// ActivityRequest is one line of work performed in the billing period.
type ActivityRequest struct {
	Description string `json:"description" binding:"required"`
}

// UpdateBillingAccountRequest for PUT /billing-accounts/:id.
// Attachment paths are set through the upload endpoints, not here.
type UpdateBillingAccountRequest struct {
	Amount           *types.Money      `json:"amount"`
	BillingStartDate *time.Time        `json:"billingStartDate"`
	BillingEndDate   *time.Time        `json:"billingEndDate"`
	PlanillaNumber   *string           `json:"planillaNumber"`
	PlanillaValue    *types.Money      `json:"planillaValue"`
	PlanillaDate     *time.Time        `json:"planillaDate"`
	Activities       []ActivityRequest `json:"activities"`
	Version          int               `json:"version" binding:"required,min=1"`
}

// Apply overlays the request onto an existing account.
// Lifecycle fields (state, number, owner, contract) are never taken from the client.
func (r UpdateBillingAccountRequest) Apply(doc *billing.Account) {
	if r.Amount != nil {
		doc.Amount = *r.Amount
	}
	if r.BillingStartDate != nil {
		doc.BillingStartDate = r.BillingStartDate
	}
	if r.BillingEndDate != nil {
		doc.BillingEndDate = r.BillingEndDate
	}
	if r.PlanillaNumber != nil {
		doc.Planilla.Number = r.PlanillaNumber
	}
	if r.PlanillaValue != nil {
		doc.Planilla.Value = r.PlanillaValue
	}
	if r.PlanillaDate != nil {
		doc.Planilla.Date = r.PlanillaDate
	}
	if r.Activities != nil {
		activities := make([]billing.Activity, len(r.Activities))
		for i, a := range r.Activities {
			activities[i] = billing.Activity{
				ID:          id.New(),
				AccountID:   doc.ID,
				Position:    i,
				Description: a.Description,
			}
		}
		doc.Activities = activities
	}
	doc.Version = r.Version
}

// ListBillingAccountsRequest for GET /billing-accounts.
type ListBillingAccountsRequest struct {
	PaginationRequest
	Search     string     `form:"search"`
	States     []string   `form:"state"`
	ContractID string     `form:"contractId"`
	PeriodFrom *time.Time `form:"periodFrom" time_format:"2006-01-02"`
	PeriodTo   *time.Time `form:"periodTo" time_format:"2006-01-02"`
	OrderBy    string     `form:"orderBy"`
}

// ToFilter converts to a repository filter.
func (r ListBillingAccountsRequest) ToFilter() (billing.ListFilter, error) {
	f := billing.ListFilter{}
	f.Search = r.Search
	f.States = r.States
	f.PeriodFrom = r.PeriodFrom
	f.PeriodTo = r.PeriodTo
	f.OrderBy = r.OrderBy
	f.Limit = r.Limit
	f.Offset = r.Offset

	if r.ContractID != "" {
		contractID, err := id.Parse(r.ContractID)
		if err != nil {
			return f, apperror.NewValidation("invalid contract id").WithDetail("field", "contractId")
		}
		f.ContractID = &contractID
	}
	return f, nil
}

// --- Responses ---

// ActivityResponse is one activity line.
type ActivityResponse struct {
	ID          string `json:"id"`
	Position    int    `json:"position"`
	Description string `json:"description"`
}

// PlanillaResponse groups social-security filing fields.
type PlanillaResponse struct {
	Number   *string      `json:"number,omitempty"`
	Value    *types.Money `json:"value,omitempty"`
	Date     *time.Time   `json:"date,omitempty"`
	FilePath *string      `json:"filePath,omitempty"`
}

// BillingAccountResponse is the public view of a billing account.
type BillingAccountResponse struct {
	ID               string             `json:"id"`
	Number           string             `json:"number"`
	State            string             `json:"state"`
	OwnerID          string             `json:"ownerId"`
	ContractID       string             `json:"contractId"`
	Amount           types.Money        `json:"amount"`
	BillingStartDate *time.Time         `json:"billingStartDate,omitempty"`
	BillingEndDate   *time.Time         `json:"billingEndDate,omitempty"`
	Planilla         PlanillaResponse   `json:"planilla"`
	SignaturePath    *string            `json:"signaturePath,omitempty"`
	Activities       []ActivityResponse `json:"activities"`
	ReviewComment    *string            `json:"reviewComment,omitempty"`
	Version          int                `json:"version"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// FromBillingAccount converts a domain account.
func FromBillingAccount(a *billing.Account) *BillingAccountResponse {
	activities := make([]ActivityResponse, len(a.Activities))
	for i, act := range a.Activities {
		activities[i] = ActivityResponse{
			ID:          act.ID.String(),
			Position:    act.Position,
			Description: act.Description,
		}
	}

	return &BillingAccountResponse{
		ID:               a.ID.String(),
		Number:           a.Document.Number,
		State:            a.State,
		OwnerID:          a.OwnerID,
		ContractID:       a.ContractID.String(),
		Amount:           a.Amount,
		BillingStartDate: a.BillingStartDate,
		BillingEndDate:   a.BillingEndDate,
		Planilla: PlanillaResponse{
			Number:   a.Planilla.Number,
			Value:    a.Planilla.Value,
			Date:     a.Planilla.Date,
			FilePath: a.Planilla.FilePath,
		},
		SignaturePath: a.SignaturePath,
		Activities:    activities,
		ReviewComment: a.ReviewComment,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// --- Completeness ---

// SectionResponse is one required section of the completeness report.
type SectionResponse struct {
	Name     string   `json:"name"`
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing,omitempty"`
}

// CompletenessResponse mirrors the workflow completeness report.
type CompletenessResponse struct {
	Sections    []SectionResponse `json:"sections"`
	AllComplete bool              `json:"allComplete"`
}

// FromCompleteness converts a workflow report.
func FromCompleteness(r *workflow.CompletenessReport) CompletenessResponse {
	sections := make([]SectionResponse, len(r.Sections))
	for i, s := range r.Sections {
		sections[i] = SectionResponse{
			Name:     s.Name,
			Complete: s.Complete,
			Missing:  s.Missing,
		}
	}
	return CompletenessResponse{Sections: sections, AllComplete: r.AllComplete}
}

// FileURLResponse carries a time-limited download link.
type FileURLResponse struct {
	URL string `json:"url"`
}
