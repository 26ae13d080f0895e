package handler

import (
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Create handles POST /api/comments. The body is multipart when
// images are attached, plain JSON otherwise.
func (h *CommentHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req dto.CreateCommentRequest
	var images [][]byte

	if form, err := c.MultipartForm(); err == nil && form != nil {
		req.ResourceID = formUint(form, "resourceId")
		req.Content = formValue(form, "content")
		if v := formUint(form, "parentId"); v != 0 {
			req.ParentID = &v
		}
		if v := formUint(form, "replyToUserId"); v != 0 {
			req.ReplyToUserID = &v
		}

		for _, fh := range form.File["images"] {
			data, err := readMultipartFile(fh)
			if err != nil {
				return fail(c, apperr.Validation("Could not read uploaded file"))
			}
			images = append(images, data)
		}
	} else if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	info, err := h.comments.Create(c.UserContext(), userID, req, images)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(info))
}

// Update handles PUT /api/comments/:id.
func (h *CommentHandler) Update(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}

	info, err := h.comments.Update(c.UserContext(), middleware.GetUserID(c), middleware.GetUserRole(c), commentID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(info))
}

// List handles GET /api/comments?resourceId=.
func (h *CommentHandler) List(c *fiber.Ctx) error {
	resourceID := c.QueryInt("resourceId")
	if resourceID <= 0 {
		return fail(c, apperr.Validation("resourceId is required"))
	}

	page, err := h.comments.ListByResource(c.UserContext(), uint(resourceID), pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// ListByResource handles GET /api/resources/:id/comments.
func (h *CommentHandler) ListByResource(c *fiber.Ctx) error {
	resourceID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	page, err := h.comments.ListByResource(c.UserContext(), resourceID, pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// ListReplies handles GET /api/comments/:id/replies.
func (h *CommentHandler) ListReplies(c *fiber.Ctx) error {
	rootID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	page, err := h.comments.ListReplies(c.UserContext(), rootID, pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// Delete handles DELETE /api/comments/:id.
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	err = h.comments.Delete(c.UserContext(), middleware.GetUserID(c), middleware.GetUserRole(c), commentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OKMessage("comment deleted", nil))
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func formUint(form *multipart.Form, key string) uint {
	n, err := strconv.ParseUint(formValue(form, key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
