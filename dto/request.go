package dto

import (
	"errors"
	"mime/multipart"
)

// VerificationRequest represents the incoming multipart request: the uploaded
// PDF documents plus the applicant claim as a JSON form field.
type VerificationRequest struct {
	Files []*multipart.FileHeader `form:"files[]" binding:"required"`
	Claim string                  `form:"claim" binding:"required"`
}

// Validate performs basic validation on the request
func (r *VerificationRequest) Validate() error {
	if len(r.Files) == 0 {
		return errors.New("at least one document is required")
	}
	if r.Claim == "" {
		return errors.New("claim is required")
	}
	return nil
}
