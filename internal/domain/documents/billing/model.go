// Package billing provides the BillingAccount document (cuenta de cobro)
// and its lifecycle rules.
package billing

import (
	"context"
	"time"

	"contratia/internal/core/apperror"
	"contratia/internal/core/entity"
	"contratia/internal/core/id"
	"contratia/internal/core/types"
	"contratia/internal/domain/workflow"
)

// BillingAccount lifecycle states. Names follow the hospital's workflow
// vocabulary and are part of the API contract; do not translate.
const (
	StateBorrador          workflow.State = "borrador"
	StatePendienteRevision workflow.State = "pendiente_revision"
	StateAprobada          workflow.State = "aprobada"
	StateRechazada         workflow.State = "rechazada"
	StateCausada           workflow.State = "causada"
)

// States lists the fixed enumeration for the BillingAccount variant.
var States = []workflow.State{StateBorrador, StatePendienteRevision, StateAprobada, StateRechazada, StateCausada}

// TerminalStates are states with no outgoing transitions.
var TerminalStates = []workflow.State{StateCausada}

// Activity is one line of work reported on a billing account. Activities
// form an ordered sequence; at least one is required for submission.
type Activity struct {
	ID        id.ID  `db:"id" json:"id"`
	AccountID id.ID  `db:"account_id" json:"accountId"`
	Position  int    `db:"position" json:"position"`

	// Description of the performed activity
	Description string `db:"description" json:"description"`
}

// Planilla is the social-security payment filing attached to a billing
// account. All four fields are required together for completeness;
// partial sets leave the section incomplete.
type Planilla struct {
	Number   *string      `db:"planilla_number" json:"number,omitempty"`
	Value    *types.Money `db:"planilla_value" json:"value,omitempty"`
	Date     *time.Time   `db:"planilla_date" json:"date,omitempty"`
	FilePath *string      `db:"planilla_file_path" json:"filePath,omitempty"`
}

// Account represents a billing account (cuenta de cobro) presented by a
// contractor against one contract.
type Account struct {
	entity.Document

	// ContractID references the contract this account bills against.
	// Must exist at creation; immutable thereafter.
	ContractID id.ID `db:"contract_id" json:"contractId"`

	// Amount is the billed value
	Amount types.Money `db:"amount" json:"amount"`

	// BillingStartDate and BillingEndDate bound the billed period
	BillingStartDate *time.Time `db:"billing_start_date" json:"billingStartDate,omitempty"`
	BillingEndDate   *time.Time `db:"billing_end_date" json:"billingEndDate,omitempty"`

	// Planilla columns are flattened into the account row. Planilla.Number
	// is promoted at the same depth as Document.Number, so the document
	// number must be read as a.Document.Number.
	Planilla `json:"planilla"`

	// SignaturePath points at the contractor's stored signature image
	SignaturePath *string `db:"signature_path" json:"signaturePath,omitempty"`

	// Activities is loaded by the service; not a table column.
	Activities []Activity `db:"-" json:"activities"`
}

// New creates an Account in borrador state owned by ownerID, billing
// against contractID.
func New(ownerID string, contractID id.ID) *Account {
	return &Account{
		Document:   entity.NewDocument(ownerID, string(StateBorrador)),
		ContractID: contractID,
	}
}

// GetState implements workflow.DocumentInfo.
func (a *Account) GetState() workflow.State {
	return workflow.State(a.State)
}

// GetOwnerID implements workflow.DocumentInfo.
func (a *Account) GetOwnerID() string {
	return a.OwnerID
}

// GetID implements workflow.DocumentInfo.
func (a *Account) GetID() id.ID {
	return a.ID
}

// GetKind implements workflow.DocumentInfo.
func (a *Account) GetKind() workflow.Kind {
	return workflow.KindBillingAccount
}

// IsTerminal reports whether the account reached a terminal state.
func (a *Account) IsTerminal() bool {
	return a.GetState() == StateCausada
}

// Validate implements entity.Validatable. Only structural rules live here;
// presence of sub-artifacts is the completeness evaluator's concern, since
// a borrador is allowed to be incomplete.
func (a *Account) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(a.ContractID) {
		return apperror.NewValidation("contract is required").
			WithDetail("field", "contractId")
	}

	if types.IsNegative(a.Amount) {
		return apperror.NewValidation("amount must not be negative").
			WithDetail("field", "amount")
	}

	if a.BillingStartDate != nil && a.BillingEndDate != nil && a.BillingEndDate.Before(*a.BillingStartDate) {
		return apperror.NewValidation("billing period end must not precede its start").
			WithDetail("field", "billingEndDate")
	}

	for i, act := range a.Activities {
		if act.Description == "" {
			return apperror.NewValidation("activity description is required").
				WithDetail("position", i)
		}
	}

	return nil
}

// Ensure interface compliance at compile time.
var _ workflow.DocumentInfo = (*Account)(nil)
