package service

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageSeparator joins pages in extracted text. Monthly invoices carry one
// logical invoice per page; the decision layer splits on it.
const PageSeparator = "\f"

// minTextLayerChars decides whether the embedded text layer is usable.
// Scanned registration documents have none or a few stray glyphs.
const minTextLayerChars = 20

type PDFProcessor interface {
	ExtractText(pdfData []byte) (string, error)
}

// OCRClient turns a page image on disk into text plus the engine's average
// word confidence (0-100).
type OCRClient interface {
	ExtractTextAndQuality(filePath string) (string, float64, error)
}

// minOCRConfidence flags barely readable scans. Their text still flows into
// the pipeline; the log line tells the reviewer why a decision looks off.
const minOCRConfidence = 40.0

type pdfProcessor struct {
	ocr OCRClient
}

func NewPDFProcessor(ocr OCRClient) PDFProcessor {
	return &pdfProcessor{ocr: ocr}
}

// ExtractText returns the text of the PDF, pages joined with PageSeparator.
// The embedded text layer is preferred; when it is missing or too short the
// document is treated as a scan and the page images go through OCR.
func (p *pdfProcessor) ExtractText(pdfData []byte) (string, error) {
	text, err := p.extractTextLayer(pdfData)
	if err != nil {
		log.Printf("text layer extraction failed, falling back to OCR: %v", err)
	}
	if len(strings.TrimSpace(strings.ReplaceAll(text, PageSeparator, ""))) >= minTextLayerChars {
		return text, nil
	}
	return p.extractViaOCR(pdfData)
}

func (p *pdfProcessor) extractTextLayer(pdfData []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", err
	}

	var textBuilder bytes.Buffer
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if pageIndex > 1 {
			textBuilder.WriteString(PageSeparator)
		}
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, _ := page.GetTextByRow()
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					textBuilder.WriteString(" ")
				}
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

// extractViaOCR dumps the page images to a temp dir and runs each through
// Tesseract. Image files are processed in name order, which follows the page
// order pdfcpu uses when naming them.
func (p *pdfProcessor) extractViaOCR(pdfData []byte) (string, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	// nil selectedPages extracts from all pages
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return "", fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return "", fmt.Errorf("failed to read temp dir: %w", err)
	}

	var paths []string
	for _, file := range files {
		if !file.IsDir() {
			paths = append(paths, filepath.Join(tempDir, file.Name()))
		}
	}
	sort.Strings(paths)

	return p.ocrImageFiles(paths)
}

// ocrImageFiles runs every page image through OCR and joins the results into
// page-separated text. Pages the engine cannot read are skipped; pages it
// barely reads are flagged.
func (p *pdfProcessor) ocrImageFiles(paths []string) (string, error) {
	var pages []string
	for _, path := range paths {
		text, confidence, err := p.ocr.ExtractTextAndQuality(path)
		if err != nil {
			log.Printf("OCR failed for page image %s: %v", filepath.Base(path), err)
			continue
		}
		if confidence > 0 && confidence < minOCRConfidence {
			log.Printf("low OCR confidence (%.0f) for page image %s", confidence, filepath.Base(path))
		}
		pages = append(pages, text)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no readable pages in document")
	}
	return strings.Join(pages, PageSeparator), nil
}
