package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

type FollowHandler struct {
	follows *service.FollowService
}

func NewFollowHandler(follows *service.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// Follow handles POST /api/users/:id/follow.
func (h *FollowHandler) Follow(c *fiber.Ctx) error {
	followeeID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.follows.Follow(c.UserContext(), middleware.GetUserID(c), followeeID); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("followed", nil))
}

// Unfollow handles DELETE /api/users/:id/follow.
func (h *FollowHandler) Unfollow(c *fiber.Ctx) error {
	followeeID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.follows.Unfollow(c.UserContext(), middleware.GetUserID(c), followeeID); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("unfollowed", nil))
}

func (h *FollowHandler) Followers(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	page, err := h.follows.Followers(c.UserContext(), userID, pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

func (h *FollowHandler) Following(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	page, err := h.follows.Following(c.UserContext(), userID, pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}
