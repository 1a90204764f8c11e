package metrics

import (
	"math"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// LatencySnapshot summarizes the extraction latency histogram for the stats
// endpoint, read back from the prometheus gatherer so the API reports the
// same numbers scraped at /metrics.
type LatencySnapshot struct {
	Total   int64           `json:"total"`
	P90Ms   float64         `json:"p90_ms"`
	P95Ms   float64         `json:"p95_ms"`
	Buckets []LatencyBucket `json:"buckets,omitempty"`
}

type LatencyBucket struct {
	LeSeconds float64 `json:"le_seconds"`
	Count     int64   `json:"count"`
}

// SnapshotExtractionLatency aggregates the extraction latency histogram
// across all sources.
func SnapshotExtractionLatency(gatherer prometheus.Gatherer) LatencySnapshot {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return LatencySnapshot{}
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == "reportlens_analysis_extraction_latency_seconds" {
			family = mf
			break
		}
	}
	if family == nil {
		return LatencySnapshot{}
	}

	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64
	for _, metric := range family.Metric {
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		sampleCount += h.GetSampleCount()
		for _, b := range h.Bucket {
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return LatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	snapshot := LatencySnapshot{Total: int64(sampleCount)}
	var prev uint64
	for _, upper := range uppers {
		cum := cumulativeByUpper[upper]
		count := cum - prev
		prev = cum
		if !math.IsInf(upper, 1) {
			snapshot.Buckets = append(snapshot.Buckets, LatencyBucket{
				LeSeconds: upper,
				Count:     int64(count),
			})
		}
	}

	snapshot.P90Ms = quantileMs(uppers, cumulativeByUpper, sampleCount, 0.90)
	snapshot.P95Ms = quantileMs(uppers, cumulativeByUpper, sampleCount, 0.95)
	return snapshot
}

// quantileMs returns the upper bound of the first bucket covering the
// quantile, in milliseconds. Bucket resolution, not interpolation.
func quantileMs(uppers []float64, cumulativeByUpper map[float64]uint64, total uint64, q float64) float64 {
	target := uint64(math.Ceil(q * float64(total)))
	for _, upper := range uppers {
		if cumulativeByUpper[upper] >= target {
			if math.IsInf(upper, 1) {
				return -1
			}
			return upper * 1000
		}
	}
	return -1
}
