package handler

import (
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"klimacheck/dto"
	"klimacheck/service"
)

type VerificationHandler struct {
	caseService *service.CaseService
}

func NewVerificationHandler(caseService *service.CaseService) *VerificationHandler {
	return &VerificationHandler{
		caseService: caseService,
	}
}

// VerifyApplication handles the POST /applications/verify endpoint
func (h *VerificationHandler) VerifyApplication(c *gin.Context) {
	log.Println("Received application verification request")

	// Parse multipart form
	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	// Extract files
	files := form.File["files[]"]
	if len(files) == 0 {
		h.sendError(c, http.StatusBadRequest, "No files provided", nil)
		return
	}

	// Extract the applicant claim
	claimJSON := c.PostForm("claim")
	if claimJSON == "" {
		h.sendError(c, http.StatusBadRequest, "Claim is required", nil)
		return
	}

	request := &dto.VerificationRequest{
		Files: files,
		Claim: claimJSON,
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	var claim dto.ApplicantClaim
	if err := json.Unmarshal([]byte(claimJSON), &claim); err != nil {
		h.sendError(c, http.StatusBadRequest, "Claim is not valid JSON", err)
		return
	}

	log.Printf("Processing %d files", len(files))

	docs := make([]service.CaseDocument, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			h.sendError(c, http.StatusBadRequest, "Failed to read uploaded file "+fh.Filename, err)
			return
		}
		docs = append(docs, service.CaseDocument{Filename: fh.Filename, Data: data})
	}

	outcome, err := h.caseService.ProcessCase(claim, docs)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to verify application", err)
		return
	}

	log.Printf("Application verification completed, overall_ok=%v", outcome.Decision.OverallOK)
	c.JSON(http.StatusOK, dto.VerificationResponse{
		Claim:       claim,
		Documents:   outcome.Corrected,
		Decision:    outcome.Decision,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// sendError sends a structured error response
func (h *VerificationHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "VERIFICATION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
