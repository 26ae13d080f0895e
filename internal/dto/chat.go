package dto

import (
	"time"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

type SendMessageRequest struct {
	PeerID  uint   `json:"peerId" form:"peerId"`
	Content string `json:"content" form:"content"`
}

// ChatMessageInfo is one message as returned to clients.
type ChatMessageInfo struct {
	ID             uint                   `json:"id"`
	ConversationID uint                   `json:"conversationId"`
	SenderID       uint                   `json:"senderId"`
	Type           domain.ChatMessageType `json:"type"`
	Content        string                 `json:"content"`
	MediaURL       string                 `json:"mediaUrl,omitempty"`
	ThumbURL       string                 `json:"thumbUrl,omitempty"`
	IsRead         bool                   `json:"isRead"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// ConversationInfo is one entry in the conversation list.
type ConversationInfo struct {
	ID            uint      `json:"id"`
	PeerID        uint      `json:"peerId"`
	PeerName      string    `json:"peerName"`
	PeerAvatarURL string    `json:"peerAvatarUrl"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int64     `json:"unreadCount"`
}
