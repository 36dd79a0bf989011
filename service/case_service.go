package service

import (
	"fmt"
	"log"

	"klimacheck/dto"
)

// CaseDocument is one uploaded PDF before processing.
type CaseDocument struct {
	Filename string
	Data     []byte
}

// CaseOutcome carries everything the caller needs to report on a case: the
// raw classification, the labels after correction, and the decision.
type CaseOutcome struct {
	Documents []dto.ClassifiedDocument
	Corrected []dto.ClassifiedDocument
	Decision  dto.Decision
}

// CaseService runs the full pipeline for one application case:
// text extraction, classification, label correction, validation, decision.
type CaseService struct {
	pdf        PDFProcessor
	classifier DocumentClassifier
	decisions  *DecisionService
}

func NewCaseService(pdf PDFProcessor, classifier DocumentClassifier, decisions *DecisionService) *CaseService {
	return &CaseService{
		pdf:        pdf,
		classifier: classifier,
		decisions:  decisions,
	}
}

// ClassifyDocuments extracts text from every PDF and assigns document types.
// An unreadable PDF fails the whole case; a silent skip would turn missing
// evidence into a rejection.
func (s *CaseService) ClassifyDocuments(docs []CaseDocument) ([]dto.ClassifiedDocument, error) {
	classified := make([]dto.ClassifiedDocument, 0, len(docs))
	for _, doc := range docs {
		text, err := s.pdf.ExtractText(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from %s: %w", doc.Filename, err)
		}
		docType, confidence := s.classifier.Classify(text)
		log.Printf("classified %s as %s (%.2f)", doc.Filename, docType, confidence)
		classified = append(classified, dto.ClassifiedDocument{
			Filename:   doc.Filename,
			Type:       docType,
			Text:       text,
			Confidence: confidence,
		})
	}
	return classified, nil
}

// ProcessCase runs one case end to end.
func (s *CaseService) ProcessCase(claim dto.ApplicantClaim, docs []CaseDocument) (*CaseOutcome, error) {
	classified, err := s.ClassifyDocuments(docs)
	if err != nil {
		return nil, err
	}
	corrected := s.decisions.ReclassifyShortAnnualInvoices(classified)
	decision := s.decisions.BuildOverallDecision(claim, corrected)
	return &CaseOutcome{
		Documents: classified,
		Corrected: corrected,
		Decision:  decision,
	}, nil
}
