// Package contract provides the Contract document (contrato de prestación
// de servicios) and its lifecycle rules.
package contract

import (
	"context"
	"time"

	"contratia/internal/core/apperror"
	"contratia/internal/core/entity"
	"contratia/internal/core/id"
	"contratia/internal/core/types"
	"contratia/internal/domain/workflow"
)

// Contract lifecycle states.
const (
	StateDraft     workflow.State = "draft"
	StateReturned  workflow.State = "returned"
	StateActive    workflow.State = "active"
	StateCompleted workflow.State = "completed"
	StateCancelled workflow.State = "cancelled"
)

// States lists the fixed enumeration for the Contract variant.
var States = []workflow.State{StateDraft, StateReturned, StateActive, StateCompleted, StateCancelled}

// TerminalStates are states with no outgoing actor transitions.
var TerminalStates = []workflow.State{StateCompleted, StateCancelled}

// Contract represents a service contract between the hospital and a contractor.
type Contract struct {
	entity.Document

	// ClientName is the contracting party shown on the document
	ClientName string `db:"client_name" json:"clientName"`

	// StartDate is when the contract takes effect
	StartDate time.Time `db:"start_date" json:"startDate"`

	// EndDate is when the contract expires; nil for open-ended contracts.
	// An active contract whose EndDate has passed is promoted to completed
	// by the date sweep.
	EndDate *time.Time `db:"end_date" json:"endDate,omitempty"`

	// TotalAmount is the agreed contract value
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
}

// New creates a Contract in draft state owned by ownerID.
func New(ownerID, clientName string, startDate time.Time, totalAmount types.Money) *Contract {
	return &Contract{
		Document:    entity.NewDocument(ownerID, string(StateDraft)),
		ClientName:  clientName,
		StartDate:   startDate,
		TotalAmount: totalAmount,
	}
}

// GetState implements workflow.DocumentInfo.
func (c *Contract) GetState() workflow.State {
	return workflow.State(c.State)
}

// GetOwnerID implements workflow.DocumentInfo.
func (c *Contract) GetOwnerID() string {
	return c.OwnerID
}

// GetID implements workflow.DocumentInfo.
func (c *Contract) GetID() id.ID {
	return c.ID
}

// GetKind implements workflow.DocumentInfo.
func (c *Contract) GetKind() workflow.Kind {
	return workflow.KindContract
}

// IsTerminal reports whether the contract reached a terminal state.
func (c *Contract) IsTerminal() bool {
	for _, s := range TerminalStates {
		if c.GetState() == s {
			return true
		}
	}
	return false
}

// IsExpired reports whether the contract's end date has passed.
func (c *Contract) IsExpired(now time.Time) bool {
	return c.EndDate != nil && c.EndDate.Before(now)
}

// Validate implements entity.Validatable.
func (c *Contract) Validate(ctx context.Context) error {
	if err := c.Document.Validate(ctx); err != nil {
		return err
	}

	if c.ClientName == "" {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientName")
	}

	if c.StartDate.IsZero() {
		return apperror.NewValidation("start date is required").
			WithDetail("field", "startDate")
	}

	if !types.IsPositive(c.TotalAmount) {
		return apperror.NewValidation("total amount must be positive").
			WithDetail("field", "totalAmount")
	}

	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return apperror.NewValidation("end date must not precede start date").
			WithDetail("field", "endDate")
	}

	return nil
}

// Ensure interface compliance at compile time.
var _ workflow.DocumentInfo = (*Contract)(nil)
