package client

import (
	"fmt"
	"log"

	"github.com/otiai10/gosseract/v2"
)

type TesseractClient struct {
	dataPath  string
	languages []string
}

// NewTesseractClient creates an OCR client for German documents. English is
// kept as secondary language; ÖBB invoices mix in English headings.
func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath:  dataPath,
		languages: []string{"deu", "eng"},
	}
}

// ExtractTextAndQuality runs OCR on an image file on disk and reports the
// average word confidence, so callers can flag barely readable scans.
func (tc *TesseractClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	// VERY IMPORTANT: Explicitly set correct tessdata path
	client.SetTessdataPrefix(tc.dataPath)
	if err := client.SetLanguage(tc.languages...); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// If bounding boxes fail, just return text and 0 confidence
		return text, 0, nil
	}

	var totalConf float64
	var count int
	for _, box := range boxes {
		totalConf += box.Confidence
		count++
	}

	avgConf := 0.0
	if count > 0 {
		avgConf = totalConf / float64(count)
	}

	return text, avgConf, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Println("Tesseract client closed")
}
