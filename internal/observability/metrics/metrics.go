package metrics

import "github.com/prometheus/client_golang/prometheus"

// AnalysisMetrics exposes counters/histograms for the report analysis flow.
type AnalysisMetrics struct {
	reportsAnalyzed      *prometheus.CounterVec
	interpretationsTotal *prometheus.CounterVec
	extractionLatency    *prometheus.HistogramVec
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		reportsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reportlens",
			Subsystem: "analysis",
			Name:      "reports_total",
			Help:      "Total analyzed reports",
		}, []string{"source", "status"}),
		interpretationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reportlens",
			Subsystem: "analysis",
			Name:      "interpretations_total",
			Help:      "Total interpreted test results by classification",
		}, []string{"interpretation"}),
		extractionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reportlens",
			Subsystem: "analysis",
			Name:      "extraction_latency_seconds",
			Help:      "Latency of the extraction step",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.reportsAnalyzed, m.interpretationsTotal, m.extractionLatency)
	return m
}

func (m *AnalysisMetrics) ObserveReport(source, status string) {
	if m == nil {
		return
	}
	m.reportsAnalyzed.WithLabelValues(source, status).Inc()
}

func (m *AnalysisMetrics) ObserveInterpretation(interpretation string) {
	if m == nil {
		return
	}
	m.interpretationsTotal.WithLabelValues(interpretation).Inc()
}

func (m *AnalysisMetrics) ObserveExtractionLatency(source string, seconds float64) {
	if m == nil {
		return
	}
	m.extractionLatency.WithLabelValues(source).Observe(seconds)
}
