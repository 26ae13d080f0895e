package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

func createRoot(t *testing.T, repo *CommentRepository, resourceID, userID uint, content string) *domain.Comment {
	t.Helper()
	ctx := context.Background()
	c := &domain.Comment{ResourceID: resourceID, UserID: userID, Content: content}
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.SetRootID(ctx, c.ID, c.ID))
	c.RootID = &c.ID
	return c
}

func createReply(t *testing.T, repo *CommentRepository, root *domain.Comment, userID uint, content string, at time.Time) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		ResourceID: root.ResourceID,
		UserID:     userID,
		Content:    content,
		ParentID:   &root.ID,
		RootID:     root.RootID,
		CreatedAt:  at,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestCommentRootIDMaterialization(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)

	root := createRoot(t, repo, res.ID, user.ID, "first")

	got, err := repo.FindByID(context.Background(), root.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.RootID)
	assert.Equal(t, got.ID, *got.RootID)
}

func TestReplyCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)

	now := time.Now()
	rootA := createRoot(t, repo, res.ID, user.ID, "thread a")
	rootB := createRoot(t, repo, res.ID, user.ID, "thread b")
	createReply(t, repo, rootA, user.ID, "r1", now)
	createReply(t, repo, rootA, user.ID, "r2", now.Add(time.Second))
	createReply(t, repo, rootA, user.ID, "r3", now.Add(2*time.Second))

	counts, err := repo.ReplyCounts(context.Background(), []uint{rootA.ID, rootB.ID})
	require.NoError(t, err)

	// thread size minus the root itself, absent threads count zero
	assert.Equal(t, int64(3), counts[rootA.ID])
	assert.Equal(t, int64(0), counts[rootB.ID])
}

func TestFindPreviewReplies(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)

	now := time.Now()
	rootA := createRoot(t, repo, res.ID, user.ID, "thread a")
	rootB := createRoot(t, repo, res.ID, user.ID, "thread b")
	a1 := createReply(t, repo, rootA, user.ID, "a1", now)
	a2 := createReply(t, repo, rootA, user.ID, "a2", now.Add(time.Second))
	createReply(t, repo, rootA, user.ID, "a3", now.Add(2*time.Second))
	b1 := createReply(t, repo, rootB, user.ID, "b1", now)
	// a nested reply is older than everything but is not a direct
	// child of a root, so it never shows up in previews
	createReply(t, repo, a1, user.ID, "nested", now.Add(-time.Hour))

	previews, err := repo.FindPreviewReplies(context.Background(), []uint{rootA.ID, rootB.ID}, 2)
	require.NoError(t, err)

	ids := make([]uint, 0, len(previews))
	for _, p := range previews {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uint{a1.ID, a2.ID, b1.ID}, ids)
}

func TestFindRootsPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)

	for i := 0; i < 5; i++ {
		createRoot(t, repo, res.ID, user.ID, "root")
	}
	root := createRoot(t, repo, res.ID, user.ID, "with reply")
	createReply(t, repo, root, user.ID, "reply", time.Now())

	roots, total, err := repo.FindRoots(context.Background(), res.ID, 0, 4)
	require.NoError(t, err)

	// replies never appear in the root listing
	assert.Equal(t, int64(6), total)
	assert.Len(t, roots, 4)
	for _, c := range roots {
		assert.Nil(t, c.ParentID)
	}
}

func TestFindRepliesListsDirectChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)

	now := time.Now()
	root := createRoot(t, repo, res.ID, user.ID, "root")
	r1 := createReply(t, repo, root, user.ID, "first", now)
	r2 := createReply(t, repo, root, user.ID, "second", now.Add(time.Second))
	nested := createReply(t, repo, r1, user.ID, "nested", now.Add(2*time.Second))

	replies, total, err := repo.FindReplies(context.Background(), root.ID, 0, 10)
	require.NoError(t, err)

	// flat listing: direct children only, oldest first
	assert.Equal(t, int64(2), total)
	require.Len(t, replies, 2)
	assert.Equal(t, r1.ID, replies[0].ID)
	assert.Equal(t, r2.ID, replies[1].ID)

	// the next level is fetched by re-querying with the child's id
	deeper, total, err := repo.FindReplies(context.Background(), r1.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, deeper, 1)
	assert.Equal(t, nested.ID, deeper[0].ID)
	require.NotNil(t, deeper[0].RootID)
	assert.Equal(t, root.ID, *deeper[0].RootID)
}

func TestDeleteCommentIsNotCascading(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)

	root := createRoot(t, repo, res.ID, user.ID, "root")
	reply := createReply(t, repo, root, user.ID, "reply", time.Now())

	require.NoError(t, repo.Delete(context.Background(), root.ID))

	gone, err := repo.FindByID(context.Background(), root.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.FindByID(context.Background(), reply.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestCountByResource(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)
	other := createTestResource(t, db, user.ID)

	root := createRoot(t, repo, res.ID, user.ID, "root")
	createReply(t, repo, root, user.ID, "reply", time.Now())
	createRoot(t, repo, other.ID, user.ID, "elsewhere")

	n, err := repo.CountByResource(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCommentImages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)
	root := createRoot(t, repo, res.ID, user.ID, "root")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.CreateImage(ctx, &domain.CommentImage{
			CommentID: root.ID,
			ObjectKey: "comments/x.jpg",
			ThumbKey:  "comments_thumbs/x.jpg",
			MimeType:  "image/jpeg",
			SortOrder: i,
		}))
	}

	images, err := repo.FindImages(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	require.NoError(t, repo.DeleteImages(ctx, root.ID))
	images, err = repo.FindImages(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestWithTxSharesTransaction(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	user := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, user.ID)

	err := db.Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		c := &domain.Comment{ResourceID: res.ID, UserID: user.ID, Content: "rolled back"}
		if err := txRepo.Create(context.Background(), c); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction // force rollback
	})
	require.Error(t, err)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
