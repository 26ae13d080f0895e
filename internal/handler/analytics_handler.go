package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Track handles POST /api/analytics/events with optional auth.
func (h *AnalyticsHandler) Track(c *fiber.Ctx) error {
	var req dto.TrackEventRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	var userID *uint
	if id := middleware.GetUserID(c); id != 0 {
		userID = &id
	}

	if err := h.analytics.Track(c.UserContext(), userID, req, c.Get(fiber.HeaderUserAgent)); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("event recorded", nil))
}

// Summary handles GET /api/admin/analytics/summary?days=7.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	rows, err := h.analytics.Summary(c.UserContext(), c.QueryInt("days", 7))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(rows))
}

// Trend handles GET /api/admin/analytics/trend?event=view&days=30.
func (h *AnalyticsHandler) Trend(c *fiber.Ctx) error {
	rows, err := h.analytics.Trend(c.UserContext(), c.Query("event"), c.QueryInt("days", 7))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(rows))
}
