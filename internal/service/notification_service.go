package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
)

type NotificationService struct {
	notifications *repository.NotificationRepository
}

func NewNotificationService(notifications *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// Notify records an in-app notification. A nil tx uses the service's
// own connection; passing a tx enrolls the insert in the caller's
// transaction.
func (s *NotificationService) Notify(ctx context.Context, tx *gorm.DB, n *domain.Notification) error {
	repo := s.notifications
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Create(ctx, n); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, p dto.Pagination) (*dto.PageResult, error) {
	notifications, total, err := s.notifications.FindByUserID(ctx, userID, unreadOnly, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.NotificationInfo, 0, len(notifications))
	for i := range notifications {
		list = append(list, newNotificationInfo(&notifications[i]))
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	n, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	if err := s.notifications.MarkRead(ctx, userID, ids); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func newNotificationInfo(n *domain.Notification) dto.NotificationInfo {
	info := dto.NotificationInfo{
		ID:        n.ID,
		Type:      n.Type,
		Content:   n.Content,
		SenderID:  n.SenderID,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.Sender != nil {
		info.SenderName = displayName(n.Sender)
	}
	return info
}

func displayName(u *domain.User) string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}
