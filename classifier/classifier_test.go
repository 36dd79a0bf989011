package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klimacheck/dto"
)

const testVectorizer = `{
	"vocabulary": {"meldung": 0, "jahresrechnung": 1, "monatsrechnung": 2, "zahlungsbestatigung": 3},
	"idf": [1.0, 1.0, 1.0, 1.0]
}`

const testModel = `{
	"classes": ["registration_document", "annual_invoice", "monthly_invoice", "payment_confirmation"],
	"coefficients": [
		[1, 0, 0, 0],
		[0, 1, 0, 0],
		[0, 0, 1, 0],
		[0, 0, 0, 1]
	],
	"intercepts": [0, 0, 0, 0],
	"probability": true
}`

func writeArtifacts(t *testing.T, vectorizer, model string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vectorizer.json"), []byte(vectorizer), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classifier.json"), []byte(model), 0o644))
	return dir
}

func TestClassify(t *testing.T) {
	c, err := Load(writeArtifacts(t, testVectorizer, testModel))
	require.NoError(t, err)

	docType, conf := c.Classify("Bestätigung der Meldung für Max Mustermann")
	assert.Equal(t, dto.DocTypeRegistration, docType)
	assert.Greater(t, conf, 0.25)
	assert.Less(t, conf, 1.0)

	docType, _ = c.Classify("ÖBB Jahresrechnung KlimaTicket")
	assert.Equal(t, dto.DocTypeAnnualInvoice, docType)

	docType, _ = c.Classify("Monatsrechnung Februar")
	assert.Equal(t, dto.DocTypeMonthlyInvoice, docType)

	docType, _ = c.Classify("Zahlungsbestatigung")
	assert.Equal(t, dto.DocTypePaymentConfirmation, docType)
}

func TestClassifyWithoutProbability(t *testing.T) {
	model := `{
		"classes": ["registration_document", "annual_invoice", "monthly_invoice", "payment_confirmation"],
		"coefficients": [[1,0,0,0],[0,1,0,0],[0,0,1,0],[0,0,0,1]],
		"intercepts": [0, 0, 0, 0],
		"probability": false
	}`
	c, err := Load(writeArtifacts(t, testVectorizer, model))
	require.NoError(t, err)

	docType, conf := c.Classify("Meldung")
	assert.Equal(t, dto.DocTypeRegistration, docType)
	assert.Equal(t, 1.0, conf)
}

func TestClassifyUnknownLabel(t *testing.T) {
	model := `{
		"classes": ["registration_document", "salary_slip", "monthly_invoice", "payment_confirmation"],
		"coefficients": [[1,0,0,0],[0,1,0,0],[0,0,1,0],[0,0,0,1]],
		"intercepts": [0, 0, 0, 0],
		"probability": true
	}`
	c, err := Load(writeArtifacts(t, testVectorizer, model))
	require.NoError(t, err)

	// the label won by "jahresrechnung" lies outside the known set
	docType, conf := c.Classify("Jahresrechnung")
	assert.Equal(t, dto.DocTypeUnknown, docType)
	assert.Greater(t, conf, 0.0)
}

func TestClassifyEmptyText(t *testing.T) {
	c, err := Load(writeArtifacts(t, testVectorizer, testModel))
	require.NoError(t, err)

	// all scores equal, the first class wins
	docType, _ := c.Classify("")
	assert.Equal(t, dto.DocTypeRegistration, docType)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)

	badModel := `{
		"classes": ["registration_document", "annual_invoice"],
		"coefficients": [[1,0,0,0]],
		"intercepts": [0, 0],
		"probability": true
	}`
	_, err = Load(writeArtifacts(t, testVectorizer, badModel))
	assert.ErrorContains(t, err, "dimensions mismatch")

	badVectorizer := `{"vocabulary": {"meldung": 7}, "idf": [1.0]}`
	_, err = Load(writeArtifacts(t, badVectorizer, testModel))
	assert.ErrorContains(t, err, "out of range")
}
