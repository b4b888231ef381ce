package billing

import (
	"contratia/internal/core/id"
	"contratia/internal/core/types"
	"contratia/internal/domain/workflow"
)

// Required section names, in evaluation order.
const (
	SectionBillingDetails = "Billing Details"
	SectionActivities     = "Activities"
	SectionPlanilla       = "Social-Security Filing"
	SectionSignature      = "Contractor Signature"
)

// Completeness evaluates the account's required sections. Pure function
// of the account's field values and attached sub-artifacts; advisory for
// UI progress display and the mandatory precondition for submit.
func Completeness(a *Account) *workflow.CompletenessReport {
	return workflow.NewCompletenessReport(
		billingDetailsSection(a),
		activitiesSection(a),
		planillaSection(a),
		signatureSection(a),
	)
}

func billingDetailsSection(a *Account) workflow.SectionResult {
	var missing []string
	if id.IsNil(a.ContractID) {
		missing = append(missing, "Seleccionar el contrato")
	}
	if !types.IsPositive(a.Amount) {
		missing = append(missing, "Registrar el valor de la cuenta")
	}
	if a.BillingStartDate == nil {
		missing = append(missing, "Registrar la fecha inicial del periodo")
	}
	if a.BillingEndDate == nil {
		missing = append(missing, "Registrar la fecha final del periodo")
	}
	return section(SectionBillingDetails, missing)
}

func activitiesSection(a *Account) workflow.SectionResult {
	var missing []string
	if len(a.Activities) == 0 {
		missing = append(missing, "Agregar al menos una actividad")
	}
	return section(SectionActivities, missing)
}

// planillaSection requires all four filing fields together; a partial set
// reports each absent field individually.
func planillaSection(a *Account) workflow.SectionResult {
	var missing []string
	p := a.Planilla
	if p.Number == nil || *p.Number == "" {
		missing = append(missing, "Registrar el número de la planilla")
	}
	if p.Value == nil || !types.IsPositive(*p.Value) {
		missing = append(missing, "Registrar el valor de la planilla")
	}
	if p.Date == nil {
		missing = append(missing, "Registrar la fecha de la planilla")
	}
	if p.FilePath == nil || *p.FilePath == "" {
		missing = append(missing, "Adjuntar el archivo de la planilla")
	}
	return section(SectionPlanilla, missing)
}

func signatureSection(a *Account) workflow.SectionResult {
	var missing []string
	if a.SignaturePath == nil || *a.SignaturePath == "" {
		missing = append(missing, "Registrar la firma del contratista")
	}
	return section(SectionSignature, missing)
}

func section(name string, missing []string) workflow.SectionResult {
	return workflow.SectionResult{
		Name:     name,
		Complete: len(missing) == 0,
		Missing:  missing,
	}
}
