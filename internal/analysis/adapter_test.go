package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeExtraction(t *testing.T) {
	payload := []byte(`{
		"patient": {"name": "Jane Roe", "age": 42, "gender": "female"},
		"tests": [
			{"test_name": "Glucose", "value": "110", "unit": "mg/dL", "reference_range": "70 - 110"},
			{"test_name": "Hemoglobin", "value": "15.2", "unit": null, "reference_range": null}
		]
	}`)

	ext, err := DecodeExtraction(payload)
	require.NoError(t, err)

	assert.Equal(t, "Jane Roe", ext.Patient.Name)
	require.NotNil(t, ext.Patient.Age)
	assert.Equal(t, 42, *ext.Patient.Age)
	assert.Equal(t, "female", ext.Patient.Gender)

	require.Len(t, ext.Observations, 2)
	assert.Equal(t, "Glucose", ext.Observations[0].TestName)
	assert.Equal(t, "110", ext.Observations[0].Value)
	assert.Equal(t, "mg/dL", ext.Observations[0].Unit)
	assert.Equal(t, "70 - 110", ext.Observations[0].ReferenceRangeHint)
	assert.Empty(t, ext.Observations[1].Unit)
}

func TestDecodeExtractionDriftingShapes(t *testing.T) {
	// Models drift: string age, unquoted numeric values, alternate keys.
	payload := []byte(`{
		"patient": {"name": null, "age": "67", "gender": null},
		"tests": [
			{"name": "Creatinine", "result": 1.1, "units": "mg/dL", "range": "0.6 - 1.3"},
			{"test_name": "Glucose", "value": 98}
		]
	}`)

	ext, err := DecodeExtraction(payload)
	require.NoError(t, err)

	require.NotNil(t, ext.Patient.Age)
	assert.Equal(t, 67, *ext.Patient.Age)
	assert.Empty(t, ext.Patient.Name)

	require.Len(t, ext.Observations, 2)
	assert.Equal(t, "Creatinine", ext.Observations[0].TestName)
	assert.Equal(t, "1.1", ext.Observations[0].Value)
	assert.Equal(t, "mg/dL", ext.Observations[0].Unit)
	assert.Equal(t, "98", ext.Observations[1].Value)
}

func TestDecodeExtractionSkipsIncompleteTests(t *testing.T) {
	payload := []byte(`{
		"tests": [
			{"test_name": "", "value": "5"},
			{"test_name": "Glucose", "value": ""},
			{"test_name": "Glucose"},
			{"test_name": "Hemoglobin", "value": "14"}
		]
	}`)

	ext, err := DecodeExtraction(payload)
	require.NoError(t, err)
	require.Len(t, ext.Observations, 1)
	assert.Equal(t, "Hemoglobin", ext.Observations[0].TestName)
}

func TestDecodeExtractionInvalid(t *testing.T) {
	_, err := DecodeExtraction([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeExtraction([]byte(`[1, 2, 3]`))
	assert.Error(t, err)
}

func TestDecodeExtractionEmpty(t *testing.T) {
	ext, err := DecodeExtraction([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, ext.Observations)
	assert.Nil(t, ext.Patient.Age)
}
