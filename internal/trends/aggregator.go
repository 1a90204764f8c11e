// Package trends buckets a user's historical test results into ordered time
// series for charting. Dates are truncated to UTC calendar days so bucketing
// is deterministic regardless of the machine's local timezone.
package trends

import (
	"sort"
	"time"

	"github.com/reportlens/reportlens/internal/analysis"
	"github.com/reportlens/reportlens/internal/labtests"
	"github.com/reportlens/reportlens/internal/reports"
)

// Direction summarizes where a series is heading.
type Direction string

const (
	DirectionIncreasing   Direction = "increasing"
	DirectionDecreasing   Direction = "decreasing"
	DirectionStable       Direction = "stable"
	DirectionInsufficient Direction = "insufficient"
)

// changeThreshold is the relative first-to-last change beyond which a series
// counts as increasing or decreasing. Fixed policy, not per-test.
const changeThreshold = 0.05

// Point is one dated measurement in a series.
type Point struct {
	Date           string                  `json:"date"`
	Value          string                  `json:"value"`
	NumericValue   *float64                `json:"numeric_value,omitempty"`
	Unit           string                  `json:"unit,omitempty"`
	ReferenceRange string                  `json:"reference_range"`
	Interpretation analysis.Interpretation `json:"interpretation"`

	day       time.Time
	createdAt time.Time
}

// Series is the derived, never-persisted trend for one test. Recomputable at
// any time from stored reports.
type Series struct {
	TestName  string    `json:"test_name"`
	Points    []Point   `json:"points"`
	Direction Direction `json:"direction"`
}

// Aggregator computes trend series and date groupings over stored reports.
type Aggregator struct {
	registry *labtests.Registry
}

// NewAggregator creates an aggregator using the given reference table for
// test-name canonicalization.
func NewAggregator(registry *labtests.Registry) *Aggregator {
	if registry == nil {
		registry = labtests.DefaultRegistry()
	}
	return &Aggregator{registry: registry}
}

// Trend collects every result matching testName across the reports into a
// series ordered ascending by (day, report creation time). Same-day
// measurements are all retained, in deposit order. An empty report list
// yields an empty series with Direction insufficient, never an error.
func (a *Aggregator) Trend(reportList []reports.Report, testName string) Series {
	canonical := a.registry.CanonicalName(testName)
	series := Series{TestName: canonical, Points: []Point{}}

	for _, rep := range reportList {
		for _, res := range rep.Results {
			if a.registry.CanonicalName(res.TestName) != canonical {
				continue
			}
			day := observedDay(res, rep)
			series.Points = append(series.Points, Point{
				Date:           day.Format("2006-01-02"),
				Value:          res.Value,
				NumericValue:   res.NumericValue,
				Unit:           res.Unit,
				ReferenceRange: res.ReferenceRange,
				Interpretation: res.Interpretation,
				day:            day,
				createdAt:      rep.CreatedAt,
			})
		}
	}

	sort.SliceStable(series.Points, func(i, j int) bool {
		if !series.Points[i].day.Equal(series.Points[j].day) {
			return series.Points[i].day.Before(series.Points[j].day)
		}
		return series.Points[i].createdAt.Before(series.Points[j].createdAt)
	})

	series.Direction = Classify(series.Points)
	return series
}

// observedDay picks the per-result draw date when the extractor supplied
// one, falling back to the report's upload date.
func observedDay(res analysis.InterpretedTestResult, rep reports.Report) time.Time {
	ts := rep.CreatedAt
	if res.ObservedAt != nil {
		ts = *res.ObservedAt
	}
	return ts.UTC().Truncate(24 * time.Hour)
}

// Classify compares the first and last numeric points: relative change above
// +5% is increasing, below -5% decreasing, otherwise stable. Fewer than two
// numeric points is insufficient.
func Classify(points []Point) Direction {
	var numeric []float64
	for _, p := range points {
		if p.NumericValue != nil {
			numeric = append(numeric, *p.NumericValue)
		}
	}
	if len(numeric) < 2 {
		return DirectionInsufficient
	}

	first, last := numeric[0], numeric[len(numeric)-1]
	if first == 0 {
		if last == 0 {
			return DirectionStable
		}
		if last > 0 {
			return DirectionIncreasing
		}
		return DirectionDecreasing
	}

	change := (last - first) / first
	switch {
	case change > changeThreshold:
		return DirectionIncreasing
	case change < -changeThreshold:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}

// GroupByDate partitions one report's results by observed day. All results
// share the report's upload day unless the extractor supplied per-test draw
// dates. Keys are "2006-01-02" day strings.
func (a *Aggregator) GroupByDate(rep reports.Report) map[string][]analysis.InterpretedTestResult {
	grouped := make(map[string][]analysis.InterpretedTestResult)
	for _, res := range rep.Results {
		key := observedDay(res, rep).Format("2006-01-02")
		grouped[key] = append(grouped[key], res)
	}
	return grouped
}
