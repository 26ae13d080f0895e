package handler

import (
	"bufio"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

const (
	ssePollInterval = 2500 * time.Millisecond
	sseMaxDuration  = 25 * time.Second
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications?unread=1.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	unreadOnly := c.QueryBool("unread", false)
	page, err := h.notifications.List(c.UserContext(), middleware.GetUserID(c), unreadOnly, pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.notifications.UnreadCount(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(fiber.Map{"count": n}))
}

// MarkRead handles POST /api/notifications/read. An empty id list
// marks everything read.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	var req dto.MarkReadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, apperr.Validation("Invalid request body"))
		}
	}

	if err := h.notifications.MarkRead(c.UserContext(), middleware.GetUserID(c), req.IDs); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("marked read", nil))
}

// Stream handles GET /api/notifications/stream as a bounded SSE
// long-poll: the unread count is polled every few seconds and pushed
// when it changes, with pings in between. The stream ends after 25
// seconds and clients reconnect.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		deadline := time.Now().Add(sseMaxDuration)
		last := int64(-1)

		for time.Now().Before(deadline) {
			count, err := h.notifications.UnreadCount(c.Context(), userID)
			if err != nil {
				return
			}

			if count != last {
				last = count
				fmt.Fprintf(w, "event: unreadCount\ndata: %d\n\n", count)
			} else {
				fmt.Fprint(w, "event: ping\ndata: {}\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
			time.Sleep(ssePollInterval)
		}
	}))
	return nil
}
