package billing

import (
	"testing"
	"time"

	"contratia/internal/core/id"
	"contratia/internal/core/types"
)

func emptyAccount() *Account {
	return New("emp-1", id.New())
}

func completeAccount() *Account {
	a := emptyAccount()
	a.Amount = types.MustMoney("2500000")
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	a.BillingStartDate = &start
	a.BillingEndDate = &end
	a.Activities = []Activity{{ID: id.New(), AccountID: a.ID, Position: 1, Description: "Turnos de enfermería"}}

	number := "PL-8841"
	value := types.MustMoney("180000")
	date := time.Date(2026, 7, 28, 0, 0, 0, 0, time.UTC)
	file := "planilla/x/pl-8841.pdf"
	a.Planilla = Planilla{Number: &number, Value: &value, Date: &date, FilePath: &file}

	sig := "signatures/x/firma.png"
	a.SignaturePath = &sig
	return a
}

func TestCompleteness_EmptyAccount(t *testing.T) {
	report := Completeness(emptyAccount())

	if report.AllComplete {
		t.Fatal("empty account must not be complete")
	}
	if len(report.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(report.Sections))
	}

	// Section order is fixed.
	wantNames := []string{SectionBillingDetails, SectionActivities, SectionPlanilla, SectionSignature}
	for i, want := range wantNames {
		if report.Sections[i].Name != want {
			t.Errorf("section %d: want %s, got %s", i, want, report.Sections[i].Name)
		}
	}
}

func TestCompleteness_CompleteAccount(t *testing.T) {
	report := Completeness(completeAccount())

	if !report.AllComplete {
		t.Fatalf("expected complete, missing: %v", report.MissingMessages())
	}
	for _, s := range report.Sections {
		if !s.Complete || len(s.Missing) != 0 {
			t.Errorf("section %s: expected complete with empty missing list, got %v", s.Name, s.Missing)
		}
	}
}

func TestCompleteness_ZeroActivities(t *testing.T) {
	a := completeAccount()
	a.Activities = nil

	report := Completeness(a)
	if report.AllComplete {
		t.Fatal("account without activities must not be complete")
	}

	missing := report.MissingMessages()
	if len(missing) != 1 || missing[0] != "Agregar al menos una actividad" {
		t.Errorf("expected exactly the activities message, got %v", missing)
	}
}

func TestCompleteness_PartialPlanilla(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(p *Planilla)
		wantMessage string
	}{
		{"missing number", func(p *Planilla) { p.Number = nil }, "Registrar el número de la planilla"},
		{"empty number", func(p *Planilla) { empty := ""; p.Number = &empty }, "Registrar el número de la planilla"},
		{"missing value", func(p *Planilla) { p.Value = nil }, "Registrar el valor de la planilla"},
		{"missing date", func(p *Planilla) { p.Date = nil }, "Registrar la fecha de la planilla"},
		{"missing file", func(p *Planilla) { p.FilePath = nil }, "Adjuntar el archivo de la planilla"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := completeAccount()
			tt.mutate(&a.Planilla)

			report := Completeness(a)
			if report.AllComplete {
				t.Fatal("partial planilla must leave the section incomplete")
			}

			missing := report.MissingMessages()
			if len(missing) != 1 || missing[0] != tt.wantMessage {
				t.Errorf("want [%s], got %v", tt.wantMessage, missing)
			}
		})
	}
}

func TestCompleteness_AllPlanillaFieldsReportedTogether(t *testing.T) {
	a := completeAccount()
	a.Planilla = Planilla{}

	report := Completeness(a)
	found := false
	for _, s := range report.Sections {
		if s.Name != SectionPlanilla {
			continue
		}
		found = true
		if len(s.Missing) != 4 {
			t.Errorf("expected all four planilla fields reported, got %v", s.Missing)
		}
	}
	if !found {
		t.Fatal("planilla section not reported")
	}
}

func TestCompleteness_MissingSignature(t *testing.T) {
	a := completeAccount()
	a.SignaturePath = nil

	report := Completeness(a)
	missing := report.MissingMessages()
	if len(missing) != 1 || missing[0] != "Registrar la firma del contratista" {
		t.Errorf("want signature message, got %v", missing)
	}
}

func TestCompleteness_MissingBillingDetails(t *testing.T) {
	a := completeAccount()
	a.Amount = types.Zero()
	a.BillingEndDate = nil

	report := Completeness(a)
	missing := report.MissingMessages()
	want := []string{"Registrar el valor de la cuenta", "Registrar la fecha final del periodo"}
	if len(missing) != len(want) {
		t.Fatalf("want %v, got %v", want, missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("message %d: want %q, got %q", i, want[i], missing[i])
		}
	}
}
