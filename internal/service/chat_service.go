package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/imaging"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/sanitize"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/storage"
)

var allowedChatMediaExts = map[string]domain.ChatMessageType{
	".mp4":  domain.ChatVideo,
	".webm": domain.ChatVideo,
	".mp3":  domain.ChatAudio,
	".m4a":  domain.ChatAudio,
	".wav":  domain.ChatAudio,
	".ogg":  domain.ChatAudio,
}

const chatPreviewLength = 100

type ChatService struct {
	db           *gorm.DB
	chats        *repository.ChatRepository
	users        *repository.UserRepository
	store        storage.ObjectStore
	maxMediaSize int64
}

func NewChatService(db *gorm.DB, chats *repository.ChatRepository, users *repository.UserRepository, store storage.ObjectStore, maxMediaSize int64) *ChatService {
	return &ChatService{db: db, chats: chats, users: users, store: store, maxMediaSize: maxMediaSize}
}

// SendText delivers a text message to a peer, creating the
// conversation on first contact.
func (s *ChatService) SendText(ctx context.Context, senderID uint, req dto.SendMessageRequest) (*dto.ChatMessageInfo, error) {
	content := sanitize.Content(strings.TrimSpace(req.Content))
	if content == "" {
		return nil, apperr.Validation("Message cannot be empty")
	}

	conv, err := s.prepareConversation(ctx, senderID, req.PeerID)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Type:           domain.ChatText,
		Content:        content,
	}
	if err := s.persistMessage(ctx, msg, content); err != nil {
		return nil, err
	}
	info := s.newMessageInfo(msg)
	return &info, nil
}

// SendImage runs the upload through the image pipeline and delivers
// the message with a thumbnail.
func (s *ChatService) SendImage(ctx context.Context, senderID, peerID uint, data []byte) (*dto.ChatMessageInfo, error) {
	if int64(len(data)) > s.maxMediaSize {
		return nil, apperr.Validation("File is too large")
	}
	processed, err := imaging.Process(data)
	if err != nil {
		return nil, apperr.Validation("Invalid image file")
	}

	conv, err := s.prepareConversation(ctx, senderID, peerID)
	if err != nil {
		return nil, err
	}

	ts := time.Now().UnixMilli()
	mediaKey := fmt.Sprintf("chat/m_%d_%d.jpg", conv.ID, ts)
	thumbKey := fmt.Sprintf("chat_thumbs/m_%d_%d.jpg", conv.ID, ts)

	if err := s.store.Put(ctx, mediaKey, bytes.NewReader(processed.Main), int64(len(processed.Main)), processed.MimeType); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.store.Put(ctx, thumbKey, bytes.NewReader(processed.Thumb), int64(len(processed.Thumb)), processed.MimeType); err != nil {
		s.cleanupKeys(mediaKey)
		return nil, apperr.Internal(err)
	}

	msg := &domain.ChatMessage{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Type:           domain.ChatImage,
		MediaKey:       mediaKey,
		ThumbKey:       thumbKey,
	}
	if err := s.persistMessage(ctx, msg, "[image]"); err != nil {
		s.cleanupKeys(mediaKey, thumbKey)
		return nil, err
	}
	info := s.newMessageInfo(msg)
	return &info, nil
}

// SendMedia stores a video or audio file as-is; the kind is derived
// from the file extension.
func (s *ChatService) SendMedia(ctx context.Context, senderID, peerID uint, fileName string, size int64, file io.Reader) (*dto.ChatMessageInfo, error) {
	if size > s.maxMediaSize {
		return nil, apperr.Validation("File is too large")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	kind, ok := allowedChatMediaExts[ext]
	if !ok {
		return nil, apperr.Validation("Unsupported media type")
	}

	conv, err := s.prepareConversation(ctx, senderID, peerID)
	if err != nil {
		return nil, err
	}

	mediaKey := fmt.Sprintf("chat/m_%d_%d%s", conv.ID, time.Now().UnixMilli(), ext)
	if err := s.store.Put(ctx, mediaKey, file, size, "application/octet-stream"); err != nil {
		return nil, apperr.Internal(err)
	}

	preview := "[video]"
	if kind == domain.ChatAudio {
		preview = "[audio]"
	}
	msg := &domain.ChatMessage{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Type:           kind,
		MediaKey:       mediaKey,
	}
	if err := s.persistMessage(ctx, msg, preview); err != nil {
		s.cleanupKeys(mediaKey)
		return nil, err
	}
	info := s.newMessageInfo(msg)
	return &info, nil
}

func (s *ChatService) prepareConversation(ctx context.Context, senderID, peerID uint) (*domain.Conversation, error) {
	if peerID == 0 || peerID == senderID {
		return nil, apperr.Validation("Invalid message recipient")
	}
	peer, err := s.users.FindByID(ctx, peerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if peer == nil {
		return nil, apperr.NotFound("User not found")
	}

	conv, err := s.chats.GetOrCreateConversation(ctx, senderID, peerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return conv, nil
}

func (s *ChatService) persistMessage(ctx context.Context, msg *domain.ChatMessage, preview string) error {
	if r := []rune(preview); len(r) > chatPreviewLength {
		preview = string(r[:chatPreviewLength])
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		chatsTx := s.chats.WithTx(tx)
		if err := chatsTx.CreateMessage(ctx, msg); err != nil {
			return err
		}
		return chatsTx.UpdatePreview(ctx, msg.ConversationID, preview, time.Now())
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *ChatService) cleanupKeys(keys ...string) {
	for _, key := range keys {
		if err := s.store.Delete(context.Background(), key); err != nil {
			log.Printf("chat: cleanup %s: %v", key, err)
		}
	}
}

// Conversations lists the user's threads with peer info and unread
// counts.
func (s *ChatService) Conversations(ctx context.Context, userID uint) ([]dto.ConversationInfo, error) {
	convs, err := s.chats.FindConversations(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.ConversationInfo, 0, len(convs))
	for i := range convs {
		conv := &convs[i]
		peerID := conv.UserAID
		if peerID == userID {
			peerID = conv.UserBID
		}

		info := dto.ConversationInfo{
			ID:            conv.ID,
			PeerID:        peerID,
			LastMessage:   conv.LastMessage,
			LastMessageAt: conv.LastMessageAt,
		}
		if peer, err := s.users.FindByID(ctx, peerID); err == nil && peer != nil {
			info.PeerName = displayName(peer)
			info.PeerAvatarURL = peer.AvatarURL
		}
		unread, err := s.chats.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		info.UnreadCount = unread
		list = append(list, info)
	}
	return list, nil
}

// Messages pages a conversation the user is part of and marks the
// peer's messages read.
func (s *ChatService) Messages(ctx context.Context, userID, conversationID uint, p dto.Pagination) (*dto.PageResult, error) {
	conv, err := s.requireMembership(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	msgs, total, err := s.chats.FindMessages(ctx, conv.ID, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.chats.MarkRead(ctx, conv.ID, userID); err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.ChatMessageInfo, 0, len(msgs))
	for i := range msgs {
		list = append(list, s.newMessageInfo(&msgs[i]))
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

// Media streams a stored chat attachment to a conversation member.
func (s *ChatService) Media(ctx context.Context, userID, messageID uint, thumb bool) (io.ReadCloser, string, error) {
	msg, err := s.chats.FindMessage(ctx, messageID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	if msg == nil || msg.MediaKey == "" {
		return nil, "", apperr.NotFound("Media not found")
	}
	if _, err := s.requireMembership(ctx, userID, msg.ConversationID); err != nil {
		return nil, "", err
	}

	key := msg.MediaKey
	if thumb && msg.ThumbKey != "" {
		key = msg.ThumbKey
	}
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, "", apperr.NotFound("Media not found")
	}

	contentType := "application/octet-stream"
	if msg.Type == domain.ChatImage {
		contentType = "image/jpeg"
	}
	return rc, contentType, nil
}

func (s *ChatService) requireMembership(ctx context.Context, userID, conversationID uint) (*domain.Conversation, error) {
	conv, err := s.chats.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if conv == nil {
		return nil, apperr.NotFound("Conversation not found")
	}
	if conv.UserAID != userID && conv.UserBID != userID {
		return nil, apperr.Forbidden("Not a member of this conversation")
	}
	return conv, nil
}

// PeerOf returns the other member of a message's conversation, for
// realtime push.
func (s *ChatService) PeerOf(ctx context.Context, msg *dto.ChatMessageInfo) (uint, error) {
	conv, err := s.chats.FindConversation(ctx, msg.ConversationID)
	if err != nil || conv == nil {
		return 0, apperr.Internal(err)
	}
	if conv.UserAID == msg.SenderID {
		return conv.UserBID, nil
	}
	return conv.UserAID, nil
}

func (s *ChatService) newMessageInfo(m *domain.ChatMessage) dto.ChatMessageInfo {
	info := dto.ChatMessageInfo{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Type:           m.Type,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
	// media is served through the authorized endpoint, not raw
	// storage URLs
	if m.MediaKey != "" {
		info.MediaURL = fmt.Sprintf("/api/chat/media/%d", m.ID)
	}
	if m.ThumbKey != "" {
		info.ThumbURL = fmt.Sprintf("/api/chat/media/%d?thumb=1", m.ID)
	}
	return info
}
