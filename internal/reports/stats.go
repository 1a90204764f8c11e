package reports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/reportlens/reportlens/internal/observability/metrics"
	"github.com/reportlens/reportlens/pkg/logging"
)

// StatsResponse is the dashboard stats payload.
type StatsResponse struct {
	UserStats
	ExtractionLatency metrics.LatencySnapshot `json:"extraction_latency"`
}

// StatsService serves dashboard stats, caching per-user counts in Redis for
// a short TTL. The cache is optional; without Redis every request hits the
// repository.
type StatsService struct {
	repo     Repository
	cache    *redis.Client
	ttl      time.Duration
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewStatsService creates a stats service. cache may be nil.
func NewStatsService(repo Repository, cache *redis.Client, ttl time.Duration, gatherer prometheus.Gatherer, logger *logging.Logger) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &StatsService{repo: repo, cache: cache, ttl: ttl, gatherer: gatherer, logger: logger}
}

func statsCacheKey(userID string) string {
	return "stats:" + userID
}

// UserStats returns the user's dashboard stats, serving cached counts when
// fresh. The latency snapshot is always read live from the gatherer.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*StatsResponse, error) {
	var stats *UserStats

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, statsCacheKey(userID)).Result()
		if err == nil {
			var decoded UserStats
			if err := json.Unmarshal([]byte(cached), &decoded); err == nil {
				stats = &decoded
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("stats cache read failed", "error", err, "user_id", userID)
		}
	}

	if stats == nil {
		fresh, err := s.repo.Stats(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats = fresh
		if s.cache != nil {
			if encoded, err := json.Marshal(stats); err == nil {
				if err := s.cache.Set(ctx, statsCacheKey(userID), encoded, s.ttl).Err(); err != nil {
					s.logger.Warn("stats cache write failed", "error", err, "user_id", userID)
				}
			}
		}
	}

	return &StatsResponse{
		UserStats:         *stats,
		ExtractionLatency: metrics.SnapshotExtractionLatency(s.gatherer),
	}, nil
}

// Invalidate drops the cached stats after a report is created or deleted.
func (s *StatsService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(userID)).Err(); err != nil {
		s.logger.Warn("stats cache invalidation failed", "error", err, "user_id", userID)
	}
}
