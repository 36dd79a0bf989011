package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"klimacheck/dto"
)

// Row is one case in the batch report. Decision is nil when the case failed
// to process; ProcessingError then carries the cause.
type Row struct {
	RunID           string
	Month           string
	CaseID          string
	Claim           dto.ApplicantClaim
	Decision        *dto.Decision
	Classification  string
	ProcessingError string
}

// MissingClaimFields lists the claim fields the validators depend on that are
// empty, as a comma-separated string of their form names.
func MissingClaimFields(claim dto.ApplicantClaim) string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"vorname", claim.FirstName},
		{"familienname", claim.LastName},
		{"geburtsdatum", claim.BirthDate},
		{"plz", claim.PostalCode},
		{"gilt_von", claim.ValidFrom},
		{"gilt_bis", claim.ValidTo},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return strings.Join(missing, ", ")
}

// ClassificationSummary renders what the classifier said per document and
// whether the label was corrected afterwards:
// "rechnung.pdf=annual_invoice(0.92)->monthly_invoice; meldezettel.pdf=registration_document(0.98)".
func ClassificationSummary(original, corrected []dto.ClassifiedDocument) string {
	parts := make([]string, 0, len(original))
	for i, doc := range original {
		s := fmt.Sprintf("%s=%s(%.2f)", doc.Filename, doc.Type, doc.Confidence)
		if i < len(corrected) && corrected[i].Type != doc.Type {
			s += "->" + string(corrected[i].Type)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

// RegistrationErrors explains why the registration branch failed, or "".
func RegistrationErrors(dec dto.RegistrationDecision) string {
	if !dec.Found {
		if dec.Reason != "" {
			return dec.Reason
		}
		return "no registration document found"
	}
	if dec.OK {
		return ""
	}
	d := dec.Details
	if d == nil {
		return "registration document could not be validated"
	}

	var issues []string
	c := d.Checks
	if !c.FirstNameOK {
		issues = append(issues, fmt.Sprintf("first name mismatch (document: %q)", d.Extracted.FirstName))
	}
	if !c.LastNameOK {
		issues = append(issues, fmt.Sprintf("last name mismatch (document: %q)", d.Extracted.LastName))
	}
	if !c.BirthDateOK {
		issues = append(issues, fmt.Sprintf("birth date mismatch (document: %q, claim: %q)",
			d.Extracted.BirthDateISO, d.ClaimBirthDateISO))
	}
	if !c.PostalCodeOK {
		switch {
		case d.Extracted.PostalCode == "":
			issues = append(issues, "postal code not found in document")
		case !c.PostalCodeEligible:
			issues = append(issues, fmt.Sprintf("postal code %s outside the funded area", d.Extracted.PostalCode))
		default:
			issues = append(issues, fmt.Sprintf("postal code differs from claim (document: %s)", d.Extracted.PostalCode))
		}
	}
	return strings.Join(issues, "; ")
}

// InvoiceErrors explains why the invoice branch failed, or "".
func InvoiceErrors(dec dto.InvoiceDecision, requiredMonths int) string {
	if dec.InvoiceProofOK {
		return ""
	}
	if !dec.AnnualFound && !dec.PaymentFound && dec.MonthlyFound == 0 {
		return "no invoice documents found"
	}

	var issues []string
	if dec.AnnualFound && !dec.AnnualOK {
		issues = append(issues, annualIssue(dec.AnnualDetails))
	}
	if dec.PaymentFound && !dec.PaymentOK {
		issues = append(issues, paymentIssue(dec.PaymentDetails))
	}
	if dec.MonthlyFound > 0 && !dec.MonthlyOK {
		issues = append(issues, fmt.Sprintf("only %d distinct valid months (%d required)",
			dec.MonthlyValidMonths, requiredMonths))
	}
	return strings.Join(issues, "; ")
}

func annualIssue(d *dto.AnnualInvoiceResult) string {
	if d == nil {
		return "annual invoice could not be validated"
	}
	if d.Reason != "" {
		return "annual invoice: " + d.Reason
	}
	var parts []string
	if !d.NameMatched {
		parts = append(parts, "cardholder name not matched")
	}
	if !d.PeriodOK {
		if !d.PeriodRaw.Complete() {
			parts = append(parts, "validity period not found")
		} else {
			parts = append(parts, fmt.Sprintf("validity period mismatch (document: %s - %s, claim: %s - %s)",
				d.PeriodISO.From, d.PeriodISO.To, d.ClaimPeriodISO.From, d.ClaimPeriodISO.To))
		}
	}
	return "annual invoice: " + strings.Join(parts, ", ")
}

func paymentIssue(d *dto.PaymentConfirmationResult) string {
	if d == nil {
		return "payment confirmation could not be validated"
	}
	if d.Reason != "" {
		return "payment confirmation: " + d.Reason
	}
	var parts []string
	if !d.NameMatched {
		parts = append(parts, "holder name not matched")
	}
	if !d.PeriodOK {
		if !d.PeriodRaw.Complete() {
			parts = append(parts, "validity period not found")
		} else {
			parts = append(parts, fmt.Sprintf("validity period mismatch (document: %s - %s, claim: %s - %s)",
				d.PeriodISO.From, d.PeriodISO.To, d.ClaimPeriodISO.From, d.ClaimPeriodISO.To))
		}
	}
	return "payment confirmation: " + strings.Join(parts, ", ")
}

// DecisionReason joins both branch explanations into the report's single
// rejection-reason cell.
func DecisionReason(d *dto.Decision, requiredMonths int) string {
	if d == nil {
		return "case failed to process"
	}
	if d.OverallOK {
		return ""
	}
	var parts []string
	if s := RegistrationErrors(d.Registration); s != "" {
		parts = append(parts, s)
	}
	if s := InvoiceErrors(d.Invoices, requiredMonths); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " | ")
}

var headers = []string{
	"run_id", "monat", "fall_id",
	"laufende_nr", "intern_id", "familienname", "vorname", "geburtsdatum",
	"plz", "gilt_von", "gilt_bis",
	"meldezettel_ok", "meldezettel_konfidenz", "meldezettel_datei", "fehler_meldezettel",
	"rechnung_ok", "jahresrechnung_ok", "zahlungsbestaetigung_ok", "gueltige_monate",
	"fehler_rechnung", "fehlende_angaben",
	"gesamt_ok", "fehlergrund", "klassifizierung", "verarbeitungsfehler",
}

const sheetName = "Fälle"

// WriteReport writes all case rows into a styled Excel workbook at path.
func WriteReport(path string, rows []Row, requiredMonths int) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range rows {
		if err := writeRow(f, i+2, row, requiredMonths); err != nil {
			return fmt.Errorf("failed to write row for case %s: %w", row.CaseID, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "K", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "L", "Y", 22); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, row Row, requiredMonths int) error {
	values := []interface{}{
		row.RunID, row.Month, row.CaseID,
		row.Claim.ReferenceNumber, row.Claim.InternalID, row.Claim.LastName, row.Claim.FirstName, row.Claim.BirthDate,
		row.Claim.PostalCode, row.Claim.ValidFrom, row.Claim.ValidTo,
	}

	if d := row.Decision; d != nil {
		values = append(values,
			d.RegistrationOK, d.Registration.Confidence, d.Registration.SourceFile, RegistrationErrors(d.Registration),
			d.InvoiceProofOK, d.Invoices.AnnualOK, d.Invoices.PaymentOK, strings.Join(d.Invoices.ValidMonthKeys, ", "),
			InvoiceErrors(d.Invoices, requiredMonths), MissingClaimFields(row.Claim),
			d.OverallOK, DecisionReason(d, requiredMonths), row.Classification, row.ProcessingError,
		)
	} else {
		values = append(values,
			"", "", "", "",
			"", "", "", "",
			"", MissingClaimFields(row.Claim),
			false, DecisionReason(nil, requiredMonths), row.Classification, row.ProcessingError,
		)
	}

	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}
