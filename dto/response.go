package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// VerificationResponse is the final response structure
type VerificationResponse struct {
	Claim       ApplicantClaim       `json:"claim"`
	Documents   []ClassifiedDocument `json:"documents"`
	Decision    Decision             `json:"decision"`
	ProcessedAt string               `json:"processed_at"`
}
