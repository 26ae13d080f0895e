package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) WithTx(tx *gorm.DB) *ChatRepository {
	return &ChatRepository{db: tx}
}

// GetOrCreateConversation returns the conversation between two users,
// creating it on first contact. The pair is stored with the smaller ID
// first so lookups are order-independent.
func (r *ChatRepository) GetOrCreateConversation(ctx context.Context, userA, userB uint) (*domain.Conversation, error) {
	a, b := userA, userB
	if a > b {
		a, b = b, a
	}

	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = domain.Conversation{UserAID: a, UserBID: b, LastMessageAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ChatRepository) FindConversation(ctx context.Context, id uint) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).First(&conv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindConversations lists a user's conversations, most recent message
// first.
func (r *ChatRepository) FindConversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *ChatRepository) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ChatRepository) FindMessage(ctx context.Context, id uint) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindMessages pages a conversation's messages, newest first.
func (r *ChatRepository) FindMessages(ctx context.Context, conversationID uint, offset, limit int) ([]domain.ChatMessage, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("conversation_id = ?", conversationID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []domain.ChatMessage
	err := q.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, total, err
}

// UpdatePreview stores the latest message summary on the conversation.
func (r *ChatRepository) UpdatePreview(ctx context.Context, conversationID uint, preview string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":    preview,
			"last_message_at": at,
		}).Error
}

// MarkRead marks messages sent by the peer as read.
func (r *ChatRepository) MarkRead(ctx context.Context, conversationID, readerID uint) error {
	return r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true).Error
}

// CountUnread counts messages addressed to the reader in one
// conversation.
func (r *ChatRepository) CountUnread(ctx context.Context, conversationID, readerID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Count(&n).Error
	return n, err
}
