package reports

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reportlens/reportlens/internal/analysis"
)

// UserStats summarizes a user's stored reports for the dashboard.
type UserStats struct {
	TotalReports int `json:"total_reports"`
	TotalTests   int `json:"total_tests"`
	RecentHigh   int `json:"recent_high"`
	RecentNormal int `json:"recent_normal"`
	RecentLow    int `json:"recent_low"`
}

// recentStatsWindow is how many of the latest results feed the recent
// interpretation counts.
const recentStatsWindow = 10

// Repository defines the interface for report storage
type Repository interface {
	Create(ctx context.Context, report *Report) error
	// ListByUser returns the user's reports newest-first, results included.
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Report, error)
	GetByID(ctx context.Context, userID, id string) (*Report, error)
	// Delete removes a report and all its results. Deleting a report that
	// does not exist (or belongs to another user) returns ErrReportNotFound.
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*UserStats, error)
}

// InMemoryRepository stores reports in memory, for development and tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*Report
	byID   map[string]*Report
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byUser: make(map[string][]*Report),
		byID:   make(map[string]*Report),
	}
}

// Create stores a report, assigning ID and CreatedAt when unset.
func (r *InMemoryRepository) Create(ctx context.Context, report *Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[report.UserID] = append(r.byUser[report.UserID], report)
	r.byID[report.ID] = report
	return nil
}

// ListByUser returns the user's reports newest-first.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byUser[userID]
	sorted := make([]*Report, len(stored))
	copy(sorted, stored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(sorted) {
		return []Report{}, nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}

	out := make([]Report, 0, end-offset)
	for _, rep := range sorted[offset:end] {
		out = append(out, *rep)
	}
	return out, nil
}

// GetByID fetches a report scoped to the user.
func (r *InMemoryRepository) GetByID(ctx context.Context, userID, id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.byID[id]
	if !ok || report.UserID != userID {
		return nil, ErrReportNotFound
	}
	copied := *report
	return &copied, nil
}

// Delete removes a report and its results.
func (r *InMemoryRepository) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.byID[id]
	if !ok || report.UserID != userID {
		return ErrReportNotFound
	}
	delete(r.byID, id)

	stored := r.byUser[userID]
	for i, rep := range stored {
		if rep.ID == id {
			r.byUser[userID] = append(stored[:i], stored[i+1:]...)
			break
		}
	}
	return nil
}

// Stats computes dashboard counts over the user's stored reports.
func (r *InMemoryRepository) Stats(ctx context.Context, userID string) (*UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byUser[userID]
	sorted := make([]*Report, len(stored))
	copy(sorted, stored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	stats := &UserStats{TotalReports: len(sorted)}
	var recent []analysis.Interpretation
	for _, rep := range sorted {
		stats.TotalTests += len(rep.Results)
		for _, res := range rep.Results {
			if len(recent) < recentStatsWindow {
				recent = append(recent, res.Interpretation)
			}
		}
	}
	for _, interp := range recent {
		switch interp {
		case analysis.InterpretationHigh:
			stats.RecentHigh++
		case analysis.InterpretationNormal:
			stats.RecentNormal++
		case analysis.InterpretationLow:
			stats.RecentLow++
		}
	}
	return stats, nil
}
