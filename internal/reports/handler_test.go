package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportlens/reportlens/internal/analysis"
	"github.com/reportlens/reportlens/internal/auth"
)

func newTestHandler(t *testing.T) (*Handler, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	service := NewService(ServiceConfig{Repo: repo})
	stats := NewStatsService(repo, nil, 0, prometheus.NewRegistry(), nil)
	return NewHandler(service, repo, stats, nil), repo
}

func mountHandler(h *Handler, userID string) http.Handler {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), userID)))
			})
		})
	}
	r.Post("/reports", h.Analyze)
	r.Get("/reports", h.List)
	r.Get("/reports/{reportID}", h.Get)
	r.Delete("/reports/{reportID}", h.Delete)
	r.Get("/stats", h.GetStats)
	return r
}

func TestHandlerAnalyzeInvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := mountHandler(h, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerAnalyzeMissingUserContext(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := mountHandler(h, "")

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"filename":"labs.pdf","text":"Glucose: 90 mg/dL"}`))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandlerAnalyzeValidationError(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := mountHandler(h, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(`{"text":"Glucose: 90 mg/dL"}`))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerAnalyzeCreatesReport(t *testing.T) {
	h, repo := newTestHandler(t)
	srv := mountHandler(h, "user-1")

	body, err := json.Marshal(AnalyzeRequest{
		Filename: "labs.pdf",
		Observations: []analysis.RawTestObservation{
			{TestName: "Glucose", Value: "185", Unit: "mg/dL"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/reports", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created Report
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.Equal(t, "user-1", created.UserID)

	stored, err := repo.GetByID(context.Background(), "user-1", created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Results, 1)
}

func TestHandlerListClampsLimit(t *testing.T) {
	h, repo := newTestHandler(t)
	srv := mountHandler(h, "user-1")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &Report{UserID: "user-1", Filename: "labs.pdf"}))
	}

	req := httptest.NewRequest(http.MethodGet, "/reports?limit=2&offset=1", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp ListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.Limit)
	assert.Equal(t, 1, resp.Offset)

	// Out-of-range limits fall back to the default.
	req = httptest.NewRequest(http.MethodGet, "/reports?limit=500", nil)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 50, resp.Limit)
}

func TestHandlerGetNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := mountHandler(h, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/reports/missing", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerDelete(t *testing.T) {
	h, repo := newTestHandler(t)
	srv := mountHandler(h, "user-1")

	report := &Report{UserID: "user-1", Filename: "labs.pdf"}
	require.NoError(t, repo.Create(context.Background(), report))

	req := httptest.NewRequest(http.MethodDelete, "/reports/"+report.ID, nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, err := repo.GetByID(context.Background(), "user-1", report.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestHandlerGetStats(t *testing.T) {
	h, repo := newTestHandler(t)
	srv := mountHandler(h, "user-1")

	require.NoError(t, repo.Create(context.Background(), &Report{
		UserID:   "user-1",
		Filename: "labs.pdf",
		Results: []analysis.InterpretedTestResult{
			{TestName: "Glucose", Interpretation: analysis.InterpretationHigh},
		},
	}))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp StatsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 1, resp.TotalReports)
	assert.Equal(t, 1, resp.RecentHigh)
}
