package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) Create(ctx context.Context, e *domain.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// CountByEvent aggregates events recorded since the given time.
func (r *AnalyticsRepository) CountByEvent(ctx context.Context, since time.Time) ([]dto.EventCount, error) {
	var rows []dto.EventCount
	err := r.db.WithContext(ctx).Model(&domain.AnalyticsEvent{}).
		Select("event, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("event").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// DailyCounts returns per-day event totals since the given time.
// DATE() works on both SQLite and Postgres.
func (r *AnalyticsRepository) DailyCounts(ctx context.Context, event string, since time.Time) ([]dto.DailyCount, error) {
	q := r.db.WithContext(ctx).Model(&domain.AnalyticsEvent{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", since)
	if event != "" {
		q = q.Where("event = ?", event)
	}

	var rows []dto.DailyCount
	err := q.Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}
