package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)

	m.ObserveReport("gemini", "ok")
	m.ObserveReport("gemini", "ok")
	m.ObserveReport("regex", "error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportsAnalyzed.WithLabelValues("gemini", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsAnalyzed.WithLabelValues("regex", "error")))
}

func TestObserveInterpretation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)

	m.ObserveInterpretation("High")
	m.ObserveInterpretation("High")
	m.ObserveInterpretation("Normal")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.interpretationsTotal.WithLabelValues("High")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *AnalysisMetrics
	m.ObserveReport("gemini", "ok")
	m.ObserveInterpretation("High")
	m.ObserveExtractionLatency("gemini", 0.5)
}

func TestSnapshotExtractionLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAnalysisMetrics(reg)

	m.ObserveExtractionLatency("gemini", 0.2)
	m.ObserveExtractionLatency("gemini", 0.3)
	m.ObserveExtractionLatency("regex", 0.001)

	snap := SnapshotExtractionLatency(reg)
	require.Equal(t, int64(3), snap.Total)
	assert.Greater(t, snap.P95Ms, 0.0)
	assert.NotEmpty(t, snap.Buckets)
}

func TestSnapshotEmptyGatherer(t *testing.T) {
	reg := prometheus.NewRegistry()
	snap := SnapshotExtractionLatency(reg)
	assert.Equal(t, int64(0), snap.Total)
}
