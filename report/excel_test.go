package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"klimacheck/dto"
)

func TestMissingClaimFields(t *testing.T) {
	assert.Equal(t, "", MissingClaimFields(dto.ApplicantClaim{
		FirstName: "Max", LastName: "Mustermann", BirthDate: "1990-10-15",
		PostalCode: "5020", ValidFrom: "2024-02-01", ValidTo: "2025-01-31",
	}))
	assert.Equal(t, "geburtsdatum, gilt_von, gilt_bis", MissingClaimFields(dto.ApplicantClaim{
		FirstName: "Max", LastName: "Mustermann", PostalCode: "5020",
	}))
}

func TestClassificationSummary(t *testing.T) {
	original := []dto.ClassifiedDocument{
		{Filename: "rechnung.pdf", Type: dto.DocTypeAnnualInvoice, Confidence: 0.92},
		{Filename: "meldezettel.pdf", Type: dto.DocTypeRegistration, Confidence: 0.98},
	}
	corrected := []dto.ClassifiedDocument{
		{Filename: "rechnung.pdf", Type: dto.DocTypeMonthlyInvoice, Confidence: 0.92},
		{Filename: "meldezettel.pdf", Type: dto.DocTypeRegistration, Confidence: 0.98},
	}

	s := ClassificationSummary(original, corrected)
	assert.Equal(t, "rechnung.pdf=annual_invoice(0.92)->monthly_invoice; meldezettel.pdf=registration_document(0.98)", s)
}

func TestRegistrationErrors(t *testing.T) {
	assert.Equal(t, "no registration document found", RegistrationErrors(dto.RegistrationDecision{}))
	assert.Equal(t, "", RegistrationErrors(dto.RegistrationDecision{Found: true, OK: true}))

	dec := dto.RegistrationDecision{
		Found: true,
		Details: &dto.RegistrationResult{
			Extracted: dto.RegistrationExtracted{FirstName: "Max", LastName: "Mustermann", PostalCode: "5400"},
			Checks: dto.RegistrationChecks{
				FirstNameOK: true, LastNameOK: true, BirthDateOK: true,
				PostalCodeMatchesClaim: true,
			},
		},
	}
	assert.Equal(t, "postal code 5400 outside the funded area", RegistrationErrors(dec))

	dec.Details.Checks.FirstNameOK = false
	s := RegistrationErrors(dec)
	assert.Contains(t, s, `first name mismatch (document: "Max")`)
	assert.Contains(t, s, "postal code 5400 outside the funded area")
}

func TestInvoiceErrors(t *testing.T) {
	assert.Equal(t, "no invoice documents found", InvoiceErrors(dto.InvoiceDecision{}, 3))
	assert.Equal(t, "", InvoiceErrors(dto.InvoiceDecision{InvoiceProofOK: true}, 3))

	dec := dto.InvoiceDecision{
		MonthlyFound:       3,
		MonthlyValidMonths: 1,
	}
	assert.Equal(t, "only 1 distinct valid months (3 required)", InvoiceErrors(dec, 3))

	dec = dto.InvoiceDecision{
		AnnualFound: true,
		AnnualCount: 1,
		AnnualDetails: &dto.AnnualInvoiceResult{
			NameMatched: true,
			PeriodRaw:   dto.DateRange{From: "01.02.2023", To: "31.01.2024"},
			PeriodISO:   dto.DateRange{From: "2023-02-01", To: "2024-01-31"},
			ClaimPeriodISO: dto.DateRange{
				From: "2024-02-01", To: "2025-01-31",
			},
		},
	}
	s := InvoiceErrors(dec, 3)
	assert.Contains(t, s, "annual invoice: validity period mismatch")
	assert.Contains(t, s, "2023-02-01 - 2024-01-31")
}

func TestDecisionReason(t *testing.T) {
	assert.Equal(t, "case failed to process", DecisionReason(nil, 3))
	assert.Equal(t, "", DecisionReason(&dto.Decision{OverallOK: true}, 3))

	d := &dto.Decision{}
	s := DecisionReason(d, 3)
	assert.Contains(t, s, "no registration document found")
	assert.Contains(t, s, "no invoice documents found")
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	rows := []Row{
		{
			RunID:  "abcd1234",
			Month:  "2024-03",
			CaseID: "fall-001",
			Claim: dto.ApplicantClaim{
				FirstName: "Max", LastName: "Mustermann", BirthDate: "1990-10-15",
				PostalCode: "5020", ValidFrom: "2024-02-01", ValidTo: "2025-01-31",
			},
			Decision:       &dto.Decision{OverallOK: true, RegistrationOK: true, InvoiceProofOK: true},
			Classification: "meldezettel.pdf=registration_document(0.98)",
		},
		{
			RunID:           "abcd1234",
			Month:           "2024-03",
			CaseID:          "fall-002",
			ProcessingError: "failed to read claim: file does not exist",
		},
	}

	require.NoError(t, WriteReport(path, rows, 3))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	cell, err := f.GetCellValue("Fälle", "C2")
	require.NoError(t, err)
	assert.Equal(t, "fall-001", cell)

	cell, err = f.GetCellValue("Fälle", "A1")
	require.NoError(t, err)
	assert.Equal(t, "run_id", cell)

	rowsData, err := f.GetRows("Fälle")
	require.NoError(t, err)
	assert.Len(t, rowsData, 3)
}
