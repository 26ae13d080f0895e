package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

func TestGetOrCreateConversationIsOrderIndependent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", domain.RoleUser)
	bob := createTestUser(t, db, "bob", domain.RoleUser)

	c1, err := repo.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	c2, err := repo.GetOrCreateConversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
	assert.Less(t, c1.UserAID, c1.UserBID)
}

func TestChatMessagesAndUnread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", domain.RoleUser)
	bob := createTestUser(t, db, "bob", domain.RoleUser)
	conv, err := repo.GetOrCreateConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateMessage(ctx, &domain.ChatMessage{
			ConversationID: conv.ID,
			SenderID:       alice.ID,
			Type:           domain.ChatText,
			Content:        "hi",
		}))
	}
	require.NoError(t, repo.UpdatePreview(ctx, conv.ID, "hi", time.Now()))

	n, err := repo.CountUnread(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// sender does not see own messages as unread
	n, err = repo.CountUnread(ctx, conv.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, repo.MarkRead(ctx, conv.ID, bob.ID))
	n, err = repo.CountUnread(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	msgs, total, err := repo.FindMessages(ctx, conv.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, msgs, 2)
}
