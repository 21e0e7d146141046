package stats

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountSubmittedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("travel_requests").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

func (r *repository) CountSubmittedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("travel_requests").
		Where("submitted_date >= ? AND submitted_date < ?", from, to).
		Count(&count).Error
	return count, err
}
