package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

func TestNotificationUnreadFlow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", domain.RoleUser)
	bob := createTestUser(t, db, "bob", domain.RoleUser)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Notification{
			UserID:   alice.ID,
			SenderID: &bob.ID,
			Type:     domain.NotifyComment,
			Content:  "commented on your resource",
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Notification{
		UserID:  bob.ID,
		Type:    domain.NotifySystem,
		Content: "welcome",
	}))

	n, err := repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, total, err := repo.FindByUserID(ctx, alice.ID, true, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 3)

	// mark one explicitly
	require.NoError(t, repo.MarkRead(ctx, alice.ID, []uint{list[0].ID}))
	n, err = repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// empty id list marks everything
	require.NoError(t, repo.MarkRead(ctx, alice.ID, nil))
	n, err = repo.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// bob's notification untouched
	n, err = repo.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
