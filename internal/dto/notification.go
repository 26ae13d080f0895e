package dto

import (
	"time"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

// NotificationInfo is one notification as returned to clients.
type NotificationInfo struct {
	ID         uint                    `json:"id"`
	Type       domain.NotificationType `json:"type"`
	Content    string                  `json:"content"`
	SenderID   *uint                   `json:"senderId"`
	SenderName string                  `json:"senderName,omitempty"`
	RelatedID  *uint                   `json:"relatedId"`
	IsRead     bool                    `json:"isRead"`
	CreatedAt  time.Time               `json:"createdAt"`
}

type MarkReadRequest struct {
	IDs []uint `json:"ids"` // empty means mark all
}
