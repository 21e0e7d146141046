package stats

import (
	"context"
	"encoding/json"
	"time"

	"go-travel-desk/internal/request"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	summaryCacheKey = "travel:stats:summary"
	summaryCacheTTL = 60 * time.Second
)

// Summary is the super-admin dashboard aggregate. Approved counts every
// request past admin approval (with the travel desk or already booked);
// pending counts both approval stages.
type Summary struct {
	Total         int64   `json:"total"`
	Approved      int64   `json:"approved"`
	Pending       int64   `json:"pending"`
	Rejected      int64   `json:"rejected"`
	PercentChange float64 `json:"percentChange"`
}

type Service interface {
	Summary(ctx context.Context) (Summary, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	group  singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

// NewService accepts a nil redis client; the summary is then always
// computed directly from the store.
func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("stats.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("stats.service")
	}
	return &service{repo: repo, rdb: rdb, now: func() time.Time { return time.Now().UTC() }, logger: l}
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, summaryCacheKey).Result(); err == nil {
			var cached Summary
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	v, err, _ := s.group.Do(summaryCacheKey, func() (any, error) {
		return s.compute(ctx)
	})
	if err != nil {
		return Summary{}, err
	}
	summary := v.(Summary)

	if s.rdb != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, summaryCacheKey, payload, summaryCacheTTL).Err(); err != nil {
				s.logger.Warn("cache stats summary failed", zap.Error(err))
			}
		}
	}

	return summary, nil
}

func (s *service) compute(ctx context.Context) (Summary, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("count by status failed", zap.Error(err))
		return Summary{}, err
	}

	summary := Summary{}
	for status, count := range counts {
		summary.Total += count
		switch status {
		case request.StatusProcessingAgent, request.StatusActionRequired, request.StatusBooked:
			summary.Approved += count
		case request.StatusPendingManager, request.StatusPendingAdmin:
			summary.Pending += count
		case request.StatusRejected:
			summary.Rejected += count
		}
	}

	change, err := s.monthOverMonthChange(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary.PercentChange = change

	return summary, nil
}

// monthOverMonthChange compares submissions this calendar month with the
// previous one. An empty previous month reads as +100% when anything was
// submitted this month, 0 otherwise.
func (s *service) monthOverMonthChange(ctx context.Context) (float64, error) {
	now := s.now()
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)

	thisMonth, err := s.repo.CountSubmittedBetween(ctx, thisMonthStart, now)
	if err != nil {
		return 0, err
	}
	lastMonth, err := s.repo.CountSubmittedBetween(ctx, lastMonthStart, thisMonthStart)
	if err != nil {
		return 0, err
	}

	if lastMonth == 0 {
		if thisMonth > 0 {
			return 100, nil
		}
		return 0, nil
	}
	return float64(thisMonth-lastMonth) / float64(lastMonth) * 100, nil
}
