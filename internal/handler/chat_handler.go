package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
)

type ChatHandler struct {
	chats *service.ChatService
	hub   *Hub
}

func NewChatHandler(chats *service.ChatService, hub *Hub) *ChatHandler {
	return &ChatHandler{chats: chats, hub: hub}
}

// Send handles POST /api/chat/messages. Text messages arrive as JSON;
// media messages as multipart with a "file" part and a "peerId" field.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	senderID := middleware.GetUserID(c)

	if form, err := c.MultipartForm(); err == nil && form != nil {
		peerID := formUint(form, "peerId")
		files := form.File["file"]
		if len(files) == 0 {
			return fail(c, apperr.Validation("Media file is required"))
		}
		fh := files[0]

		var msg *dto.ChatMessageInfo
		if formValue(form, "kind") == "image" {
			data, err := readMultipartFile(fh)
			if err != nil {
				return fail(c, apperr.Validation("Could not read uploaded file"))
			}
			msg, err = h.chats.SendImage(c.UserContext(), senderID, peerID, data)
			if err != nil {
				return fail(c, err)
			}
		} else {
			f, err := fh.Open()
			if err != nil {
				return fail(c, apperr.Validation("Could not read uploaded file"))
			}
			defer f.Close()
			msg, err = h.chats.SendMedia(c.UserContext(), senderID, peerID, fh.Filename, fh.Size, f)
			if err != nil {
				return fail(c, err)
			}
		}
		h.push(c, msg)
		return c.JSON(dto.OK(msg))
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.Validation("Invalid request body"))
	}
	msg, err := h.chats.SendText(c.UserContext(), senderID, req)
	if err != nil {
		return fail(c, err)
	}
	h.push(c, msg)
	return c.JSON(dto.OK(msg))
}

func (h *ChatHandler) push(c *fiber.Ctx, msg *dto.ChatMessageInfo) {
	if peerID, err := h.chats.PeerOf(c.UserContext(), msg); err == nil && peerID != 0 {
		h.hub.Push(peerID, "chatMessage", msg)
	}
}

// Conversations handles GET /api/chat/conversations.
func (h *ChatHandler) Conversations(c *fiber.Ctx) error {
	list, err := h.chats.Conversations(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(list))
}

// Messages handles GET /api/chat/conversations/:id/messages.
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	conversationID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	page, err := h.chats.Messages(c.UserContext(), middleware.GetUserID(c), conversationID, pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.OK(page))
}

// Media handles GET /api/chat/media/:id?thumb=1, streaming an
// attachment to conversation members only.
func (h *ChatHandler) Media(c *fiber.Ctx) error {
	messageID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	thumb, _ := strconv.ParseBool(c.Query("thumb", "false"))

	rc, contentType, err := h.chats.Media(c.UserContext(), middleware.GetUserID(c), messageID, thumb)
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	return c.SendStream(rc)
}
