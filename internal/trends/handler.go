package trends

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/reportlens/reportlens/internal/auth"
	"github.com/reportlens/reportlens/internal/reports"
	"github.com/reportlens/reportlens/pkg/logging"
)

// trendHistoryLimit bounds how many reports feed one trend query.
const trendHistoryLimit = 500

// ReportSource is the slice of the reports repository the aggregator reads.
type ReportSource interface {
	ListByUser(ctx context.Context, userID string, filter reports.ListFilter) ([]reports.Report, error)
	GetByID(ctx context.Context, userID, id string) (*reports.Report, error)
}

// Handler serves trend series and date groupings over stored reports.
type Handler struct {
	source     ReportSource
	aggregator *Aggregator
	logger     *logging.Logger
}

// NewHandler creates a trends handler.
func NewHandler(source ReportSource, aggregator *Aggregator, logger *logging.Logger) *Handler {
	if aggregator == nil {
		aggregator = NewAggregator(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{source: source, aggregator: aggregator, logger: logger}
}

// GetTrend handles GET /trends/{testName} requests
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	testName, err := url.PathUnescape(chi.URLParam(r, "testName"))
	if err != nil || testName == "" {
		http.Error(w, "missing test name", http.StatusBadRequest)
		return
	}

	reportList, err := h.source.ListByUser(r.Context(), userID, reports.ListFilter{Limit: trendHistoryLimit})
	if err != nil {
		h.logger.Error("failed to load reports for trend", "error", err, "user_id", userID)
		http.Error(w, "failed to compute trend", http.StatusInternalServerError)
		return
	}

	series := h.aggregator.Trend(reportList, testName)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(series)
}

// GroupReportByDate handles GET /reports/{reportID}/by-date requests
func (h *Handler) GroupReportByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	reportID := chi.URLParam(r, "reportID")

	report, err := h.source.GetByID(r.Context(), userID, reportID)
	if err != nil {
		if errors.Is(err, reports.ErrReportNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get report for grouping", "error", err, "report_id", reportID)
		http.Error(w, "failed to group report", http.StatusInternalServerError)
		return
	}

	grouped := h.aggregator.GroupByDate(*report)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"report_id": report.ID,
		"groups":    grouped,
	})
}
