package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	info, err := h.users.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("registered", info))
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	resp, err := h.users.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(resp))
}

// Current handles GET /api/users/me.
func (h *UserHandler) Current(c *fiber.Ctx) error {
	info, err := h.users.GetByID(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(info))
}

// Profile handles GET /api/users/:id/profile with optional auth.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	profile, err := h.users.Profile(c.UserContext(), userID, middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(profile))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	info, err := h.users.UpdateProfile(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("profile updated", info))
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	if err := h.users.ChangePassword(c.UserContext(), middleware.GetUserID(c), req); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("password changed", nil))
}

// UpdateAvatar handles POST /api/users/me/avatar with a multipart
// file part named "avatar".
func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return fail(c, apperr.Validation("Avatar file is required"))
	}
	data, err := readMultipartFile(fh)
	if err != nil {
		return fail(c, apperr.Validation("Could not read uploaded file"))
	}

	info, err := h.users.UpdateAvatar(c.UserContext(), middleware.GetUserID(c), data)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("avatar updated", info))
}

// RequestRole handles POST /api/users/me/role-request.
func (h *UserHandler) RequestRole(c *fiber.Ctx) error {
	var req dto.RoleRequestCreate
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	if err := h.users.RequestRole(c.UserContext(), middleware.GetUserID(c), req); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("request submitted", nil))
}
