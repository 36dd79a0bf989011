package utils

import (
	"regexp"
	"strings"
	"time"

	"klimacheck/dto"
)

// ReasonClaimDatesMissing marks results where the period checks could not run
// because the applicant form carries no validity dates. Distinct from a date
// mismatch: the caseworker has to complete the claim, not reject it.
const ReasonClaimDatesMissing = "claim validity dates missing (gilt_von/gilt_bis)"

// CardholderMarkers anchor the customer name block on ÖBB invoices.
var CardholderMarkers = []MarkerSpec{
	{Markers: []string{"karteninhaber"}, WindowLines: 12},
}

// PaymentNameMarkers anchor the customer name on payment confirmations
// ("für Max Mustermann"). The window is short; the name follows immediately.
var PaymentNameMarkers = []MarkerSpec{
	{Markers: []string{"fur", "fuer"}, WindowLines: 4},
}

var validityMarkers = []string{"gultigkeitszeitraum", "gultigkeit"}

// validityScanLines bounds the forward scan from a validity marker. The date
// pair can sit far below the heading on multi-page layouts.
const validityScanLines = 80

// ExtractValidityPeriod returns the raw from/to dates of the ticket validity
// period. It scans forward from a "Gültigkeitszeitraum" marker in three-line
// chunks until a chunk holds two dotted dates, falling back to the
// "Leistungszeitraum" line when no validity heading exists.
func ExtractValidityPeriod(text string) (string, string) {
	lines := NonEmptyLines(text)

	for i, raw := range lines {
		norm := NormalizeForMatching(raw)
		hit := false
		for _, m := range validityMarkers {
			if ContainsMarker(norm, m) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		limit := i + validityScanLines
		if limit > len(lines) {
			limit = len(lines)
		}
		for j := i; j < limit; j++ {
			end := j + 3
			if end > len(lines) {
				end = len(lines)
			}
			chunk := strings.Join(lines[j:end], " ")
			if dates := FindDottedDates(chunk); len(dates) >= 2 {
				return CleanDottedDate(dates[0]), CleanDottedDate(dates[1])
			}
		}
	}

	for i, raw := range lines {
		if !strings.HasPrefix(NormalizeForMatching(raw), "leistungszeitraum") {
			continue
		}
		end := i + 3
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.Join(lines[i:end], " ")
		if dates := FindDottedDates(chunk); len(dates) >= 2 {
			return CleanDottedDate(dates[0]), CleanDottedDate(dates[1])
		}
	}
	return "", ""
}

var servicePeriodPattern = regexp.MustCompile(
	`(\d{1,2}\s*\.\s*[\dOo]{1,2}\s*\.\s*\d{4})\s*-\s*(\d{1,2}\s*\.\s*[\dOo]{1,2}\s*\.\s*\d{4})`)

// ExtractServicePeriod returns the billed service period: the dotted date
// range on the "Leistungszeitraum" line or within the few lines below it.
func ExtractServicePeriod(text string) (time.Time, time.Time, bool) {
	lines := NonEmptyLines(text)
	for i, raw := range lines {
		if !strings.HasPrefix(NormalizeForMatching(raw), "leistungszeitraum") {
			continue
		}
		end := i + 5
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.Join(lines[i:end], " ")
		m := servicePeriodPattern.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		from, okF := ParseDottedDate(m[1])
		to, okT := ParseDottedDate(m[2])
		if okF && okT {
			return from, to, true
		}
	}
	return time.Time{}, time.Time{}, false
}

// ExtractPaymentPeriod returns the raw validity dates of a payment
// confirmation. The dates are written out ("gilt von 1. Februar 2025 bis
// 31. Jänner 2026") near a "gilt" marker.
func ExtractPaymentPeriod(text string) (string, string) {
	lines := NonEmptyLines(text)
	for i, raw := range lines {
		if !ContainsMarker(NormalizeForMatching(raw), "gilt") {
			continue
		}
		end := i + 3
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.Join(lines[i:end], " ")
		if dates := FindTextualDates(chunk); len(dates) >= 2 {
			return dates[0], dates[1]
		}
	}
	return "", ""
}

// ValidateAnnualInvoice checks one annual invoice against the claim: the
// cardholder name must match and the validity period must equal the claimed
// period exactly. The service period length is extracted as well; it does not
// gate the result but drives the reclassification of short "annual" invoices.
func ValidateAnnualInvoice(claim dto.ApplicantClaim, text string) dto.AnnualInvoiceResult {
	res := dto.AnnualInvoiceResult{}
	res.NameMatched, res.NameMatchContext = NameMatchNearMarker(text, claim.FirstName, claim.LastName, CardholderMarkers)

	fromRaw, toRaw := ExtractValidityPeriod(text)
	res.PeriodRaw = dto.DateRange{From: fromRaw, To: toRaw}
	from, okFrom := ParseDottedDate(fromRaw)
	to, okTo := ParseDottedDate(toRaw)
	if okFrom {
		res.PeriodISO.From = FormatISO(from)
	}
	if okTo {
		res.PeriodISO.To = FormatISO(to)
	}

	if sFrom, sTo, ok := ExtractServicePeriod(text); ok {
		res.HasServicePeriod = true
		res.ServiceMonths = MonthsBetween(sFrom, sTo)
	}

	claimFrom, okCF := ParseClaimDate(claim.ValidFrom)
	claimTo, okCT := ParseClaimDate(claim.ValidTo)
	if !okCF || !okCT {
		res.Reason = ReasonClaimDatesMissing
		return res
	}
	res.ClaimPeriodISO = dto.DateRange{From: FormatISO(claimFrom), To: FormatISO(claimTo)}

	res.PeriodOK = okFrom && okTo && SameDate(from, claimFrom) && SameDate(to, claimTo)
	res.AllChecksPassed = res.NameMatched && res.PeriodOK
	return res
}

// ValidateMonthlyInvoice checks one page of a monthly invoice: cardholder
// name, validity period equal to the claimed period, and the billed service
// period lying entirely within it. MonthKey buckets the page by the service
// start month so the aggregation can count distinct months.
func ValidateMonthlyInvoice(claim dto.ApplicantClaim, text string) dto.MonthlyInvoiceResult {
	res := dto.MonthlyInvoiceResult{}
	res.NameMatched, res.NameMatchContext = NameMatchNearMarker(text, claim.FirstName, claim.LastName, CardholderMarkers)

	fromRaw, toRaw := ExtractValidityPeriod(text)
	res.ValidityRaw = dto.DateRange{From: fromRaw, To: toRaw}
	vFrom, okVF := ParseDottedDate(fromRaw)
	vTo, okVT := ParseDottedDate(toRaw)
	if okVF {
		res.ValidityISO.From = FormatISO(vFrom)
	}
	if okVT {
		res.ValidityISO.To = FormatISO(vTo)
	}

	sFrom, sTo, hasService := ExtractServicePeriod(text)
	if hasService {
		res.ServiceISO = dto.DateRange{From: FormatISO(sFrom), To: FormatISO(sTo)}
		res.MonthKey = MonthKey(sFrom)
	}

	claimFrom, okCF := ParseClaimDate(claim.ValidFrom)
	claimTo, okCT := ParseClaimDate(claim.ValidTo)
	if !okCF || !okCT {
		res.Reason = ReasonClaimDatesMissing
		return res
	}
	res.ClaimPeriodISO = dto.DateRange{From: FormatISO(claimFrom), To: FormatISO(claimTo)}

	res.ValidityOK = okVF && okVT && SameDate(vFrom, claimFrom) && SameDate(vTo, claimTo)
	res.ServiceWithinValidity = hasService &&
		!dateBefore(sFrom, claimFrom) && !dateBefore(claimTo, sTo) && !dateBefore(sTo, sFrom)
	res.AllChecksPassed = res.NameMatched && res.ValidityOK && res.ServiceWithinValidity
	return res
}

// ValidatePaymentConfirmation checks a KlimaTicket payment confirmation: the
// name after the "für" marker and the written-out validity period, which must
// equal the claimed period.
func ValidatePaymentConfirmation(claim dto.ApplicantClaim, text string) dto.PaymentConfirmationResult {
	res := dto.PaymentConfirmationResult{}
	res.NameMatched, res.NameMatchContext = NameMatchNearMarker(text, claim.FirstName, claim.LastName, PaymentNameMarkers)

	fromRaw, toRaw := ExtractPaymentPeriod(text)
	res.PeriodRaw = dto.DateRange{From: fromRaw, To: toRaw}
	from, okFrom := ParseTextualDate(fromRaw)
	to, okTo := ParseTextualDate(toRaw)
	if okFrom {
		res.PeriodISO.From = FormatISO(from)
	}
	if okTo {
		res.PeriodISO.To = FormatISO(to)
	}

	claimFrom, okCF := ParseClaimDate(claim.ValidFrom)
	claimTo, okCT := ParseClaimDate(claim.ValidTo)
	if !okCF || !okCT {
		res.Reason = ReasonClaimDatesMissing
		return res
	}
	res.ClaimPeriodISO = dto.DateRange{From: FormatISO(claimFrom), To: FormatISO(claimTo)}

	res.PeriodOK = okFrom && okTo && SameDate(from, claimFrom) && SameDate(to, claimTo)
	res.AllChecksPassed = res.NameMatched && res.PeriodOK
	return res
}

// dateBefore compares calendar days only, ignoring the time of day.
func dateBefore(a, b time.Time) bool {
	at := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bt := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return at.Before(bt)
}
