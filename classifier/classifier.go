package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"klimacheck/dto"
)

// vectorizerArtifact is the exported tf-idf vocabulary: token -> feature
// index, plus the idf weight per feature.
type vectorizerArtifact struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// modelArtifact is the exported linear classifier: one coefficient row and
// one intercept per class. Probability marks whether the scores were
// calibrated; without it the predicted class is reported with confidence 1.
type modelArtifact struct {
	Classes      []string    `json:"classes"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
	Probability  bool        `json:"probability"`
}

// Classifier assigns one of the known document types to extracted PDF text.
type Classifier struct {
	vec   vectorizerArtifact
	model modelArtifact
}

var knownTypes = map[string]dto.DocumentType{
	string(dto.DocTypeRegistration):        dto.DocTypeRegistration,
	string(dto.DocTypeAnnualInvoice):       dto.DocTypeAnnualInvoice,
	string(dto.DocTypeMonthlyInvoice):      dto.DocTypeMonthlyInvoice,
	string(dto.DocTypePaymentConfirmation): dto.DocTypePaymentConfirmation,
}

// Load reads vectorizer.json and classifier.json from dir and validates that
// their dimensions agree.
func Load(dir string) (*Classifier, error) {
	c := &Classifier{}
	if err := readJSON(filepath.Join(dir, "vectorizer.json"), &c.vec); err != nil {
		return nil, fmt.Errorf("failed to load vectorizer: %w", err)
	}
	if err := readJSON(filepath.Join(dir, "classifier.json"), &c.model); err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}

	features := len(c.vec.IDF)
	for token, idx := range c.vec.Vocabulary {
		if idx < 0 || idx >= features {
			return nil, fmt.Errorf("vocabulary index out of range for token %q: %d", token, idx)
		}
	}
	if len(c.model.Classes) == 0 {
		return nil, fmt.Errorf("classifier has no classes")
	}
	if len(c.model.Coefficients) != len(c.model.Classes) || len(c.model.Intercepts) != len(c.model.Classes) {
		return nil, fmt.Errorf("classifier dimensions mismatch: %d classes, %d coefficient rows, %d intercepts",
			len(c.model.Classes), len(c.model.Coefficients), len(c.model.Intercepts))
	}
	for i, row := range c.model.Coefficients {
		if len(row) != features {
			return nil, fmt.Errorf("coefficient row %d has %d features, vectorizer has %d", i, len(row), features)
		}
	}
	return c, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", filepath.Base(path), err)
	}
	return nil
}

// tokenPattern mirrors the tokenizer the vectorizer was fitted with: runs of
// two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]{2,}`)

// Classify scores the text against every class and returns the best label
// with its confidence. Labels outside the known set map to unknown; empty or
// out-of-vocabulary text scores on the intercepts alone.
func (c *Classifier) Classify(text string) (dto.DocumentType, float64) {
	x := c.vectorize(text)

	best := 0
	var scores = make([]float64, len(c.model.Classes))
	for j, row := range c.model.Coefficients {
		s := c.model.Intercepts[j]
		for idx, v := range x {
			s += row[idx] * v
		}
		scores[j] = s
		if s > scores[best] {
			best = j
		}
	}

	confidence := 1.0
	if c.model.Probability {
		confidence = softmax(scores)[best]
	}

	label, ok := knownTypes[c.model.Classes[best]]
	if !ok {
		return dto.DocTypeUnknown, confidence
	}
	return label, confidence
}

// vectorize builds the sparse l2-normalized tf-idf vector of the text.
func (c *Classifier) vectorize(text string) map[int]float64 {
	x := make(map[int]float64)
	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if idx, ok := c.vec.Vocabulary[token]; ok {
			x[idx]++
		}
	}
	norm := 0.0
	for idx := range x {
		x[idx] *= c.vec.IDF[idx]
		norm += x[idx] * x[idx]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range x {
			x[idx] /= norm
		}
	}
	return x
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	sum := 0.0
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
