package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

func TestResourceDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResourceRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)
	other := createTestResource(t, db, user.ID)

	root := createRoot(t, comments, res.ID, user.ID, "root")
	require.NoError(t, comments.CreateImage(ctx, &domain.CommentImage{
		CommentID: root.ID, ObjectKey: "comments/a.jpg", ThumbKey: "comments_thumbs/a.jpg",
	}))
	require.NoError(t, db.Create(&domain.Collection{UserID: user.ID, ResourceID: res.ID}).Error)

	keep := createRoot(t, comments, other.ID, user.ID, "untouched")

	keys, err := repo.Delete(ctx, res.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"comments/a.jpg", "comments_thumbs/a.jpg"}, keys)

	var n int64
	require.NoError(t, db.Model(&domain.Comment{}).Where("resource_id = ?", res.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&domain.CommentImage{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&domain.Collection{}).Where("resource_id = ?", res.ID).Count(&n).Error)
	assert.Zero(t, n)

	// an unrelated resource keeps its thread
	got, err := comments.FindByID(ctx, keep.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
