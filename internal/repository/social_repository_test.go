package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

func TestFollowGraph(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", domain.RoleUser)
	bob := createTestUser(t, db, "bob", domain.RoleUser)
	carol := createTestUser(t, db, "carol", domain.RoleUser)

	require.NoError(t, repo.Create(ctx, &domain.Follow{FollowerID: alice.ID, FolloweeID: bob.ID}))
	require.NoError(t, repo.Create(ctx, &domain.Follow{FollowerID: carol.ID, FolloweeID: bob.ID}))

	ok, err := repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := repo.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	followers, total, err := repo.FindFollowers(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, followers, 2)

	following, total, err := repo.FindFollowing(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)

	affected, err := repo.Delete(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// deleting again is a no-op
	affected, err = repo.Delete(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestCollections(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", domain.RoleUser)
	res := createTestResource(t, db, alice.ID)

	require.NoError(t, repo.Create(ctx, &domain.Collection{UserID: alice.ID, ResourceID: res.ID}))

	ok, err := repo.Exists(ctx, alice.ID, res.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	resources, total, err := repo.FindResources(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, resources, 1)
	assert.Equal(t, res.ID, resources[0].ID)

	affected, err := repo.Delete(ctx, alice.ID, res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}
