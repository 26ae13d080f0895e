package service

import (
	"context"
	"strings"
	"time"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
)

const maxUserAgentLength = 255

type AnalyticsService struct {
	events *repository.AnalyticsRepository
}

func NewAnalyticsService(events *repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{events: events}
}

// Track records one client event. userID is nil for anonymous
// visitors.
func (s *AnalyticsService) Track(ctx context.Context, userID *uint, req dto.TrackEventRequest, userAgent string) error {
	event := strings.TrimSpace(req.Event)
	if event == "" {
		return apperr.Validation("Event name is required")
	}
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}

	e := &domain.AnalyticsEvent{
		UserID:    userID,
		Event:     event,
		Page:      strings.TrimSpace(req.Page),
		TargetID:  req.TargetID,
		UserAgent: userAgent,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Summary aggregates event totals over the trailing number of days.
func (s *AnalyticsService) Summary(ctx context.Context, days int) ([]dto.EventCount, error) {
	if days < 1 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	rows, err := s.events.CountByEvent(ctx, since)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}

// Trend returns a per-day series for one event (or all events when
// empty) over the trailing number of days.
func (s *AnalyticsService) Trend(ctx context.Context, event string, days int) ([]dto.DailyCount, error) {
	if days < 1 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	rows, err := s.events.DailyCounts(ctx, event, since)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rows, nil
}
