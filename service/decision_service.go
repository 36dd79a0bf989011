package service

import (
	"log"
	"sort"
	"strings"

	"klimacheck/config"
	"klimacheck/dto"
	"klimacheck/utils"
)

// DocumentClassifier assigns a document type and a confidence to extracted
// text.
type DocumentClassifier interface {
	Classify(text string) (dto.DocumentType, float64)
}

// DecisionService aggregates per-document validation results into the case
// decision.
type DecisionService struct {
	cfg *config.Config
}

func NewDecisionService(cfg *config.Config) *DecisionService {
	return &DecisionService{cfg: cfg}
}

// SplitPages splits extracted text into its non-blank pages. Text without
// page separators counts as a single page.
func SplitPages(text string) []string {
	var pages []string
	for _, p := range strings.Split(text, PageSeparator) {
		if strings.TrimSpace(p) != "" {
			pages = append(pages, p)
		}
	}
	if len(pages) == 0 {
		return []string{text}
	}
	return pages
}

// ReclassifyShortAnnualInvoices corrects a systematic classifier error:
// monthly ÖBB invoices share their layout with annual ones and come back
// labelled annual_invoice. An annual invoice bills close to twelve months,
// so a readable service period shorter than the configured minimum relabels
// the document as monthly_invoice. Unreadable periods leave the label alone.
func (s *DecisionService) ReclassifyShortAnnualInvoices(docs []dto.ClassifiedDocument) []dto.ClassifiedDocument {
	out := make([]dto.ClassifiedDocument, len(docs))
	copy(out, docs)
	for i, doc := range out {
		if doc.Type != dto.DocTypeAnnualInvoice {
			continue
		}
		from, to, ok := utils.ExtractServicePeriod(doc.Text)
		if !ok {
			continue
		}
		if months := utils.MonthsBetween(from, to); months < s.cfg.AnnualInvoiceMinMonths {
			log.Printf("reclassifying %s as monthly_invoice: service period spans %d months", doc.Filename, months)
			out[i].Type = dto.DocTypeMonthlyInvoice
		}
	}
	return out
}

// BuildRegistrationDecision picks the registration document with the highest
// classification confidence above the threshold and validates it against the
// claim. Low-confidence candidates are ignored entirely; a misclassified
// invoice must not be parsed as a registration document.
func (s *DecisionService) BuildRegistrationDecision(claim dto.ApplicantClaim, docs []dto.ClassifiedDocument) dto.RegistrationDecision {
	var best *dto.ClassifiedDocument
	for i := range docs {
		doc := &docs[i]
		if doc.Type != dto.DocTypeRegistration || doc.Confidence < s.cfg.RegistrationMinConfidence {
			continue
		}
		if best == nil || doc.Confidence > best.Confidence {
			best = doc
		}
	}
	if best == nil {
		return dto.RegistrationDecision{Reason: "no registration document found"}
	}

	result := utils.ValidateRegistration(claim, best.Text, s.cfg.EligiblePostcodes)
	return dto.RegistrationDecision{
		Found:      true,
		OK:         result.AllChecksPassed,
		Confidence: best.Confidence,
		SourceFile: best.Filename,
		Details:    &result,
	}
}

// BuildInvoiceDecision validates every invoice-class document and combines
// them into the proof-of-purchase decision. The proof passes when any one of
// three routes does: a fully valid annual invoice, a fully valid payment
// confirmation, or valid monthly invoices covering enough distinct months.
func (s *DecisionService) BuildInvoiceDecision(claim dto.ApplicantClaim, docs []dto.ClassifiedDocument) dto.InvoiceDecision {
	dec := dto.InvoiceDecision{}
	validMonths := make(map[string]bool)

	for _, doc := range docs {
		switch doc.Type {
		case dto.DocTypeAnnualInvoice:
			res := utils.ValidateAnnualInvoice(claim, doc.Text)
			res.SourceFile = doc.Filename
			dec.AnnualCount++
			if dec.AnnualDetails == nil || betterAnnualInvoice(res, *dec.AnnualDetails) {
				r := res
				dec.AnnualDetails = &r
			}

		case dto.DocTypePaymentConfirmation:
			res := utils.ValidatePaymentConfirmation(claim, doc.Text)
			res.SourceFile = doc.Filename
			dec.PaymentCount++
			if dec.PaymentDetails == nil || betterPaymentConfirmation(res, *dec.PaymentDetails) {
				r := res
				dec.PaymentDetails = &r
			}

		case dto.DocTypeMonthlyInvoice:
			for _, page := range SplitPages(doc.Text) {
				res := utils.ValidateMonthlyInvoice(claim, page)
				res.SourceFile = doc.Filename
				dec.MonthlyFound++
				dec.MonthlyDetails = append(dec.MonthlyDetails, res)
				if res.AllChecksPassed && res.MonthKey != "" {
					validMonths[res.MonthKey] = true
				}
			}
		}
	}

	dec.AnnualFound = dec.AnnualCount > 0
	if dec.AnnualDetails != nil {
		dec.AnnualOK = dec.AnnualDetails.AllChecksPassed
	}
	dec.PaymentFound = dec.PaymentCount > 0
	if dec.PaymentDetails != nil {
		dec.PaymentOK = dec.PaymentDetails.AllChecksPassed
	}

	for key := range validMonths {
		dec.ValidMonthKeys = append(dec.ValidMonthKeys, key)
	}
	sort.Strings(dec.ValidMonthKeys)
	dec.MonthlyValidMonths = len(dec.ValidMonthKeys)
	dec.MonthlyOK = dec.MonthlyValidMonths >= s.cfg.RequiredDistinctMonths

	dec.InvoiceProofOK = (dec.AnnualFound && dec.AnnualOK) ||
		(dec.PaymentFound && dec.PaymentOK) ||
		dec.MonthlyOK
	return dec
}

// BuildOverallDecision runs both decision branches and derives the final
// verdict. OverallOK is computed fresh here and nowhere else.
func (s *DecisionService) BuildOverallDecision(claim dto.ApplicantClaim, docs []dto.ClassifiedDocument) dto.Decision {
	reg := s.BuildRegistrationDecision(claim, docs)
	inv := s.BuildInvoiceDecision(claim, docs)
	return dto.Decision{
		Registration:   reg,
		Invoices:       inv,
		RegistrationOK: reg.Found && reg.OK,
		InvoiceProofOK: inv.InvoiceProofOK,
		OverallOK:      reg.Found && reg.OK && inv.InvoiceProofOK,
	}
}

// betterAnnualInvoice ranks candidate results when a case uploads several
// annual invoices: passing beats failing, then more billed months, then a
// matched name. Ties keep the earlier document.
func betterAnnualInvoice(a, b dto.AnnualInvoiceResult) bool {
	if a.AllChecksPassed != b.AllChecksPassed {
		return a.AllChecksPassed
	}
	am, bm := 0, 0
	if a.HasServicePeriod {
		am = a.ServiceMonths
	}
	if b.HasServicePeriod {
		bm = b.ServiceMonths
	}
	if am != bm {
		return am > bm
	}
	if a.NameMatched != b.NameMatched {
		return a.NameMatched
	}
	return false
}

// betterPaymentConfirmation ranks candidate results: passing first, then a
// matched name, then a matched period. Ties keep the earlier document.
func betterPaymentConfirmation(a, b dto.PaymentConfirmationResult) bool {
	if a.AllChecksPassed != b.AllChecksPassed {
		return a.AllChecksPassed
	}
	if a.NameMatched != b.NameMatched {
		return a.NameMatched
	}
	if a.PeriodOK != b.PeriodOK {
		return a.PeriodOK
	}
	return false
}
