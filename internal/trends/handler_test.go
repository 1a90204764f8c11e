package trends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportlens/reportlens/internal/analysis"
	"github.com/reportlens/reportlens/internal/auth"
	"github.com/reportlens/reportlens/internal/reports"
)

func numericResult(name, value string, numeric float64) analysis.InterpretedTestResult {
	return analysis.InterpretedTestResult{
		TestName:     name,
		Value:        value,
		NumericValue: &numeric,
	}
}

func mountTrends(h *Handler, userID string) http.Handler {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
			})
		})
	}
	r.Get("/trends/{testName}", h.GetTrend)
	r.Get("/reports/{reportID}/by-date", h.GroupReportByDate)
	return r
}

func TestHandlerGetTrend(t *testing.T) {
	repo := reports.NewInMemoryRepository()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(context.Background(), &reports.Report{
		UserID:    "user-1",
		Filename:  "labs.pdf",
		CreatedAt: base,
		Results:   []analysis.InterpretedTestResult{numericResult("Glucose", "100", 100)},
	}))
	require.NoError(t, repo.Create(context.Background(), &reports.Report{
		UserID:    "user-1",
		Filename:  "labs.pdf",
		CreatedAt: base.Add(48 * time.Hour),
		Results:   []analysis.InterpretedTestResult{numericResult("Glucose", "180", 180)},
	}))

	h := NewHandler(repo, NewAggregator(nil), nil)
	srv := mountTrends(h, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/trends/Glucose", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var series Series
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&series))
	assert.Equal(t, "Glucose", series.TestName)
	require.Len(t, series.Points, 2)
	assert.Equal(t, DirectionIncreasing, series.Direction)
}

func TestHandlerGetTrendEscapedName(t *testing.T) {
	repo := reports.NewInMemoryRepository()
	require.NoError(t, repo.Create(context.Background(), &reports.Report{
		UserID:   "user-1",
		Filename: "labs.pdf",
		Results:  []analysis.InterpretedTestResult{numericResult("Vitamin D", "28", 28)},
	}))

	h := NewHandler(repo, NewAggregator(nil), nil)
	srv := mountTrends(h, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/trends/Vitamin%20D", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var series Series
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&series))
	require.Len(t, series.Points, 1)
	assert.Equal(t, DirectionInsufficient, series.Direction)
}

func TestHandlerGetTrendRequiresUser(t *testing.T) {
	h := NewHandler(reports.NewInMemoryRepository(), NewAggregator(nil), nil)
	srv := mountTrends(h, "")

	req := httptest.NewRequest(http.MethodGet, "/trends/Glucose", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandlerGroupReportByDate(t *testing.T) {
	repo := reports.NewInMemoryRepository()
	observed := time.Date(2024, 2, 28, 9, 0, 0, 0, time.UTC)
	early := numericResult("Glucose", "100", 100)
	early.ObservedAt = &observed

	report := &reports.Report{
		UserID:    "user-1",
		Filename:  "labs.pdf",
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Results: []analysis.InterpretedTestResult{
			early,
			numericResult("Hemoglobin", "14.2", 14.2),
		},
	}
	require.NoError(t, repo.Create(context.Background(), report))

	h := NewHandler(repo, NewAggregator(nil), nil)
	srv := mountTrends(h, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/reports/"+report.ID+"/by-date", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		ReportID string                                      `json:"report_id"`
		Groups   map[string][]analysis.InterpretedTestResult `json:"groups"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, report.ID, resp.ReportID)
	require.Len(t, resp.Groups, 2)
	assert.Len(t, resp.Groups["2024-02-28"], 1)
	assert.Len(t, resp.Groups["2024-03-01"], 1)
}

func TestHandlerGroupReportByDateNotFound(t *testing.T) {
	h := NewHandler(reports.NewInMemoryRepository(), NewAggregator(nil), nil)
	srv := mountTrends(h, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/reports/missing/by-date", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
