package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

type ResourceHandler struct {
	resources *service.ResourceService
}

func NewResourceHandler(resources *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// Create handles POST /api/resources as multipart with a "file" part.
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, apperr.Validation("Resource file is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, apperr.Validation("Could not read uploaded file"))
	}
	defer f.Close()

	info, err := h.resources.Create(c.UserContext(),
		middleware.GetUserID(c), middleware.GetUserRole(c),
		req, fh.Filename, fh.Size, f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("resource submitted for review", info))
}

// List handles GET /api/resources. Anonymous listings only show
// approved resources.
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	q := dto.ResourceListQuery{
		Keyword:    c.Query("keyword"),
		CategoryID: uint(c.QueryInt("categoryId", 0)),
		SortBy:     c.Query("sortBy", "newest"),
		Pagination: pagination(c),
	}
	approved := domain.ResourceApproved
	q.Status = &approved

	page, err := h.resources.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// Mine handles GET /api/resources/mine, listing the caller's own
// uploads in every review state.
func (h *ResourceHandler) Mine(c *fiber.Ctx) error {
	q := dto.ResourceListQuery{
		UploaderID: middleware.GetUserID(c),
		Pagination: pagination(c),
	}
	page, err := h.resources.List(c.UserContext(), q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

func (h *ResourceHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	info, err := h.resources.Get(c.UserContext(), id, middleware.GetUserID(c), true)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(info))
}

func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	info, err := h.resources.Update(c.UserContext(), middleware.GetUserID(c), middleware.GetUserRole(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("resource updated", info))
}

func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.resources.Delete(c.UserContext(), middleware.GetUserID(c), middleware.GetUserRole(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("resource deleted", nil))
}

// Download streams the stored file with its original name.
func (h *ResourceHandler) Download(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	rc, resource, err := h.resources.Download(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", resource.FileName))
	c.Set(fiber.HeaderContentType, "application/octet-stream")
	return c.SendStream(rc, int(resource.FileSize))
}

func (h *ResourceHandler) Related(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	list, err := h.resources.Related(c.UserContext(), id, 6)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(list))
}

func (h *ResourceHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.resources.Categories(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(cats))
}

func (h *ResourceHandler) Collect(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.resources.Collect(c.UserContext(), middleware.GetUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("collected", nil))
}

func (h *ResourceHandler) Uncollect(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.resources.Uncollect(c.UserContext(), middleware.GetUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("collection removed", nil))
}

func (h *ResourceHandler) Collections(c *fiber.Ctx) error {
	page, err := h.resources.Collections(c.UserContext(), middleware.GetUserID(c), pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}
