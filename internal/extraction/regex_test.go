package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `ACME DIAGNOSTICS
Patient: John Smith   Age: 45   Gender: Male

Glucose: 110 mg/dL (70 - 110)
Hemoglobin 15.2 g/dL 13.0-17.0
Total Cholesterol: 185 mg/dL
Urine Protein: Negative
Creatinine: 1.1 mg/dL (0.6 - 1.3)
Collected by lab technician on site
`

func TestRegexExtract(t *testing.T) {
	ex := NewRegexExtractor(nil)

	ext, err := ex.Extract(context.Background(), sampleReport)
	require.NoError(t, err)

	require.NotNil(t, ext.Patient.Age)
	assert.Equal(t, 45, *ext.Patient.Age)
	assert.Equal(t, "male", ext.Patient.Gender)

	require.Len(t, ext.Observations, 5)

	assert.Equal(t, "Glucose", ext.Observations[0].TestName)
	assert.Equal(t, "110", ext.Observations[0].Value)
	assert.Equal(t, "mg/dL", ext.Observations[0].Unit)
	assert.Equal(t, "70 - 110", ext.Observations[0].ReferenceRangeHint)

	assert.Equal(t, "Hemoglobin", ext.Observations[1].TestName)
	assert.Equal(t, "15.2", ext.Observations[1].Value)

	assert.Equal(t, "Urine Protein", ext.Observations[3].TestName)
	assert.Equal(t, "Negative", ext.Observations[3].Value)
}

func TestRegexExtractSkipsUnknownTests(t *testing.T) {
	ex := NewRegexExtractor(nil)

	ext, err := ex.Extract(context.Background(), "Quetzal Factor: 12 units\nGlucose: 95 mg/dL\n")
	require.NoError(t, err)
	require.Len(t, ext.Observations, 1)
	assert.Equal(t, "Glucose", ext.Observations[0].TestName)
}

func TestRegexExtractEmpty(t *testing.T) {
	ex := NewRegexExtractor(nil)
	_, err := ex.Extract(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestRegexExtractCancelledContext(t *testing.T) {
	ex := NewRegexExtractor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ex.Extract(ctx, sampleReport)
	assert.Error(t, err)
}
