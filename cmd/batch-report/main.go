package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"klimacheck/classifier"
	"klimacheck/client"
	"klimacheck/config"
	"klimacheck/dto"
	"klimacheck/report"
	"klimacheck/service"
)

// batch-report walks a directory of application cases, runs the decision
// pipeline on each one and writes an Excel report. Expected layout:
//
//	<cases>/<month>/<case_id>/antrag.json
//	<cases>/<month>/<case_id>/*.pdf
func main() {
	casesDir := flag.String("cases", "data/cases", "root directory of application cases")
	outFile := flag.String("out", "case_report.xlsx", "path of the Excel report")
	flag.Parse()

	cfg := config.LoadConfig()

	clf, err := classifier.Load(cfg.ModelsDir)
	if err != nil {
		log.Fatalf("Failed to load document classifier from %s: %v", cfg.ModelsDir, err)
	}

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()

	caseService := service.NewCaseService(
		service.NewPDFProcessor(tesseractClient),
		clf,
		service.NewDecisionService(cfg),
	)

	runID := uuid.NewString()[:8]
	log.Printf("Starting batch run %s over %s", runID, *casesDir)

	var rows []report.Row
	var accepted, rejected, failed int

	months, err := os.ReadDir(*casesDir)
	if err != nil {
		log.Fatalf("Failed to read cases directory %s: %v", *casesDir, err)
	}
	for _, month := range months {
		if !month.IsDir() {
			continue
		}
		monthDir := filepath.Join(*casesDir, month.Name())
		cases, err := os.ReadDir(monthDir)
		if err != nil {
			log.Printf("Failed to read month directory %s: %v", monthDir, err)
			continue
		}
		for _, caseEntry := range cases {
			if !caseEntry.IsDir() {
				continue
			}
			row := processCase(caseService, runID, month.Name(), filepath.Join(monthDir, caseEntry.Name()))
			rows = append(rows, row)
			switch {
			case row.ProcessingError != "":
				failed++
			case row.Decision != nil && row.Decision.OverallOK:
				accepted++
			default:
				rejected++
			}
		}
	}

	if err := report.WriteReport(*outFile, rows, cfg.RequiredDistinctMonths); err != nil {
		// Often the file is simply open in Excel; retry under a fresh name so
		// the run's results are not lost.
		fallback := fallbackName(*outFile)
		log.Printf("Failed to write %s: %v, retrying as %s", *outFile, err, fallback)
		if err := report.WriteReport(fallback, rows, cfg.RequiredDistinctMonths); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		*outFile = fallback
	}

	log.Printf("Batch run %s finished: %d cases, %d accepted, %d rejected, %d failed, report: %s",
		runID, len(rows), accepted, rejected, failed, *outFile)
}

// processCase runs one case and never lets it take the batch down: errors and
// panics turn into a failed-to-process row.
func processCase(caseService *service.CaseService, runID, month, caseDir string) (row report.Row) {
	caseID := filepath.Base(caseDir)
	row = report.Row{RunID: runID, Month: month, CaseID: caseID}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Case %s/%s panicked: %v", month, caseID, r)
			row.Decision = nil
			row.ProcessingError = fmt.Sprintf("panic: %v", r)
		}
	}()

	claim, err := loadClaim(filepath.Join(caseDir, "antrag.json"))
	if err != nil {
		row.ProcessingError = err.Error()
		return row
	}
	row.Claim = claim

	docs, err := loadDocuments(caseDir)
	if err != nil {
		row.ProcessingError = err.Error()
		return row
	}

	outcome, err := caseService.ProcessCase(claim, docs)
	if err != nil {
		row.ProcessingError = err.Error()
		return row
	}

	row.Decision = &outcome.Decision
	row.Classification = report.ClassificationSummary(outcome.Documents, outcome.Corrected)
	return row
}

func loadClaim(path string) (dto.ApplicantClaim, error) {
	var claim dto.ApplicantClaim
	data, err := os.ReadFile(path)
	if err != nil {
		return claim, fmt.Errorf("failed to read claim: %w", err)
	}
	if err := json.Unmarshal(data, &claim); err != nil {
		return claim, fmt.Errorf("failed to parse claim: %w", err)
	}
	return claim, nil
}

func loadDocuments(caseDir string) ([]service.CaseDocument, error) {
	entries, err := os.ReadDir(caseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read case directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("case has no PDF documents")
	}

	docs := make([]service.CaseDocument, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(caseDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		docs = append(docs, service.CaseDocument{Filename: name, Data: data})
	}
	return docs, nil
}

func fallbackName(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
}
