package reports

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reportlens/reportlens/internal/auth"
	"github.com/reportlens/reportlens/pkg/logging"
)

// Handler handles HTTP requests for reports
type Handler struct {
	service *Service
	repo    Repository
	stats   *StatsService
	logger  *logging.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, repo Repository, stats *StatsService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		repo:    repo,
		stats:   stats,
		logger:  logger,
	}
}

// Analyze handles POST /reports requests
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode analyze request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	req.UserID = userID

	report, err := h.service.Analyze(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFilename), errors.Is(err, ErrNoContent):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to analyze report", "error", err, "user_id", userID)
			http.Error(w, "failed to analyze report", http.StatusInternalServerError)
		}
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(r.Context(), userID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(report)
}

// ListResponse is the response for listing reports
type ListResponse struct {
	Reports []Report `json:"reports"`
	Count   int      `json:"count"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
}

// List handles GET /reports requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	filter := ListFilter{Limit: 50, Offset: 0}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	reportList, err := h.repo.ListByUser(r.Context(), userID, filter)
	if err != nil {
		h.logger.Error("failed to list reports", "error", err, "user_id", userID)
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	response := ListResponse{
		Reports: reportList,
		Count:   len(reportList),
		Offset:  filter.Offset,
		Limit:   filter.Limit,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Get handles GET /reports/{reportID} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	reportID := chi.URLParam(r, "reportID")

	report, err := h.repo.GetByID(r.Context(), userID, reportID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get report", "error", err, "report_id", reportID)
		http.Error(w, "failed to get report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// Delete handles DELETE /reports/{reportID} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	reportID := chi.URLParam(r, "reportID")

	if err := h.repo.Delete(r.Context(), userID, reportID); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete report", "error", err, "report_id", reportID)
		http.Error(w, "failed to delete report", http.StatusInternalServerError)
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(r.Context(), userID)
	}

	h.logger.Info("report deleted", "report_id", reportID, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /stats requests
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	stats, err := h.stats.UserStats(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to compute stats", "error", err, "user_id", userID)
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
