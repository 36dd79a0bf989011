package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	ModelsDir         string
	MaxFileSize       int64

	// Policy constants of the funding program. Defaults match the City of
	// Salzburg KlimaTicket subsidy; all of them can be overridden via env.
	EligiblePostcodes         []string
	RegistrationMinConfidence float64
	AnnualInvoiceMinMonths    int
	RequiredDistinctMonths    int
}

// defaultEligiblePostcodes covers the funded city area (main residence).
var defaultEligiblePostcodes = []string{
	"5010", "5014", "5017", "5018", "5020", "5023", "5025", "5026", "5027", "5033",
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tesseractDataPath := os.Getenv("TESSDATA_PREFIX")
	if tesseractDataPath == "" {
		tesseractDataPath = "/usr/share/tesseract-ocr/5/tessdata"
	}

	modelsDir := os.Getenv("MODELS_DIR")
	if modelsDir == "" {
		modelsDir = "models"
	}

	return &Config{
		ServerPort:        serverPort,
		TesseractDataPath: tesseractDataPath,
		ModelsDir:         modelsDir,
		MaxFileSize:       envInt64("MAX_FILE_SIZE", 32*1024*1024), // 32 MB

		EligiblePostcodes:         envList("ELIGIBLE_POSTCODES", defaultEligiblePostcodes),
		RegistrationMinConfidence: envFloat("REGISTRATION_MIN_CONFIDENCE", 0.70),
		AnnualInvoiceMinMonths:    envInt("ANNUAL_INVOICE_MIN_MONTHS", 10),
		RequiredDistinctMonths:    envInt("REQUIRED_DISTINCT_MONTHS", 3),
	}
}

func envList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
