package dto

type DocumentType string

const (
	DocTypeRegistration        DocumentType = "registration_document"
	DocTypeAnnualInvoice       DocumentType = "annual_invoice"
	DocTypeMonthlyInvoice      DocumentType = "monthly_invoice"
	DocTypePaymentConfirmation DocumentType = "payment_confirmation"
	DocTypeUnknown             DocumentType = "unknown"
)

// ApplicantClaim holds the data the applicant entered on the funding form.
// Field names follow the antrag.json export of the funding portal. Any field
// may be empty; validators report missing data instead of failing.
type ApplicantClaim struct {
	FirstName       string `json:"vorname"`
	LastName        string `json:"familienname"`
	BirthDate       string `json:"geburtsdatum"`
	PostalCode      string `json:"plz"`
	ValidFrom       string `json:"gilt_von"`
	ValidTo         string `json:"gilt_bis"`
	TicketType      string `json:"tickettyp,omitempty"`
	ReferenceNumber string `json:"laufende_nr,omitempty"`
	InternalID      string `json:"intern_id,omitempty"`
	Gender          string `json:"geschlecht,omitempty"`
	Street          string `json:"strasse,omitempty"`
}

// ClassifiedDocument is one uploaded PDF after text extraction and
// classification. Type may be corrected once by the reclassifier.
type ClassifiedDocument struct {
	Filename   string       `json:"filename"`
	Type       DocumentType `json:"type"`
	Text       string       `json:"-"`
	Confidence float64      `json:"confidence"`
}

// DateRange carries a start/end date pair as ISO strings ("" when unknown).
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (r DateRange) Complete() bool {
	return r.From != "" && r.To != ""
}

// RegistrationExtracted holds the values read from a registration document.
type RegistrationExtracted struct {
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	BirthDateISO string `json:"birth_date,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// RegistrationChecks are the per-field comparison results.
// PostalCodeOK = PostalCodeEligible AND PostalCodeMatchesClaim; the two
// sub-flags let the report distinguish "wrong area" from "claim typo".
type RegistrationChecks struct {
	FirstNameOK            bool `json:"first_name_ok"`
	LastNameOK             bool `json:"last_name_ok"`
	BirthDateOK            bool `json:"birth_date_ok"`
	PostalCodeEligible     bool `json:"postal_code_eligible"`
	PostalCodeMatchesClaim bool `json:"postal_code_matches_claim"`
	PostalCodeOK           bool `json:"postal_code_ok"`
}

// RegistrationResult is the outcome of validating one registration document
// against the claim. AllChecksPassed is the AND of the four checks and is
// always derived, never set independently.
type RegistrationResult struct {
	Extracted         RegistrationExtracted `json:"extracted"`
	ClaimBirthDateISO string                `json:"claim_birth_date,omitempty"`
	Checks            RegistrationChecks    `json:"checks"`
	AllChecksPassed   bool                  `json:"all_checks_passed"`
}

// AnnualInvoiceResult is the outcome of validating one annual invoice.
// ServiceMonths is informational only; the validity-period match and the name
// match decide AllChecksPassed.
type AnnualInvoiceResult struct {
	NameMatched      bool      `json:"name_matched"`
	NameMatchContext string    `json:"name_match_context,omitempty"`
	PeriodOK         bool      `json:"period_ok"`
	PeriodRaw        DateRange `json:"period_raw"`
	PeriodISO        DateRange `json:"period_iso"`
	ClaimPeriodISO   DateRange `json:"claim_period_iso"`
	ServiceMonths    int       `json:"service_months"`
	HasServicePeriod bool      `json:"has_service_period"`
	Reason           string    `json:"reason,omitempty"`
	AllChecksPassed  bool      `json:"all_checks_passed"`
	SourceFile       string    `json:"source_file,omitempty"`
}

// MonthlyInvoiceResult is the outcome of validating one logical page of a
// monthly invoice. MonthKey ("YYYY-MM" of the service start) is set whenever
// the service period was extracted; callers must only count it when
// AllChecksPassed is true.
type MonthlyInvoiceResult struct {
	NameMatched           bool      `json:"name_matched"`
	NameMatchContext      string    `json:"name_match_context,omitempty"`
	ValidityOK            bool      `json:"validity_ok"`
	ServiceWithinValidity bool      `json:"service_within_validity"`
	ValidityRaw           DateRange `json:"validity_raw"`
	ValidityISO           DateRange `json:"validity_iso"`
	ServiceISO            DateRange `json:"service_iso"`
	ClaimPeriodISO        DateRange `json:"claim_period_iso"`
	MonthKey              string    `json:"month_key,omitempty"`
	Reason                string    `json:"reason,omitempty"`
	AllChecksPassed       bool      `json:"all_checks_passed"`
	SourceFile            string    `json:"source_file,omitempty"`
}

// PaymentConfirmationResult is the outcome of validating one payment
// confirmation.
type PaymentConfirmationResult struct {
	NameMatched      bool      `json:"name_matched"`
	NameMatchContext string    `json:"name_match_context,omitempty"`
	PeriodOK         bool      `json:"period_ok"`
	PeriodRaw        DateRange `json:"period_raw"`
	PeriodISO        DateRange `json:"period_iso"`
	ClaimPeriodISO   DateRange `json:"claim_period_iso"`
	Reason           string    `json:"reason,omitempty"`
	AllChecksPassed  bool      `json:"all_checks_passed"`
	SourceFile       string    `json:"source_file,omitempty"`
}

// RegistrationDecision selects and validates the best registration document.
type RegistrationDecision struct {
	Found      bool                `json:"found"`
	OK         bool                `json:"ok"`
	Confidence float64             `json:"confidence,omitempty"`
	SourceFile string              `json:"source_file,omitempty"`
	Details    *RegistrationResult `json:"details,omitempty"`
	Reason     string              `json:"reason,omitempty"`
}

// InvoiceDecision aggregates all invoice-class documents of a case.
// InvoiceProofOK is the one OR-gate of the pipeline: a valid annual invoice,
// a valid payment confirmation, or enough distinct valid months.
type InvoiceDecision struct {
	AnnualFound   bool                 `json:"annual_found"`
	AnnualOK      bool                 `json:"annual_ok"`
	AnnualCount   int                  `json:"annual_count"`
	AnnualDetails *AnnualInvoiceResult `json:"annual_details,omitempty"`

	PaymentFound   bool                       `json:"payment_found"`
	PaymentOK      bool                       `json:"payment_ok"`
	PaymentCount   int                        `json:"payment_count"`
	PaymentDetails *PaymentConfirmationResult `json:"payment_details,omitempty"`

	MonthlyFound       int                    `json:"monthly_found"`
	MonthlyValidMonths int                    `json:"monthly_valid_months"`
	MonthlyOK          bool                   `json:"monthly_ok"`
	MonthlyDetails     []MonthlyInvoiceResult `json:"monthly_details,omitempty"`
	ValidMonthKeys     []string               `json:"valid_month_keys,omitempty"`

	InvoiceProofOK bool `json:"invoice_proof_ok"`
}

// Decision is the terminal artifact of one case.
// OverallOK = RegistrationOK AND InvoiceProofOK, recomputed fresh per case.
type Decision struct {
	Registration   RegistrationDecision `json:"registration"`
	Invoices       InvoiceDecision      `json:"invoices"`
	RegistrationOK bool                 `json:"registration_ok"`
	InvoiceProofOK bool                 `json:"invoice_proof_ok"`
	OverallOK      bool                 `json:"overall_ok"`
}
