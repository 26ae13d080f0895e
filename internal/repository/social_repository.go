package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

// FollowRepository persists the follower graph.
type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Create(ctx context.Context, f *domain.Follow) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followeeID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&domain.Follow{})
	return res.RowsAffected, res.Error
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var f domain.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("followee_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ?", userID).Count(&n).Error
	return n, err
}

// FindFollowers pages users following userID.
func (r *FollowRepository) FindFollowers(ctx context.Context, userID uint, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("followee_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, total, err
}

// FindFollowing pages users that userID follows.
func (r *FollowRepository) FindFollowing(ctx context.Context, userID uint, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, total, err
}

// CollectionRepository persists saved resources.
type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Create(ctx context.Context, c *domain.Collection) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CollectionRepository) Delete(ctx context.Context, userID, resourceID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		Delete(&domain.Collection{})
	return res.RowsAffected, res.Error
}

func (r *CollectionRepository) Exists(ctx context.Context, userID, resourceID uint) (bool, error) {
	var c domain.Collection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND resource_id = ?", userID, resourceID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindResources pages the resources a user has collected, most recent
// collection first.
func (r *CollectionRepository) FindResources(ctx context.Context, userID uint, offset, limit int) ([]domain.Resource, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Collection{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var resources []domain.Resource
	err := r.db.WithContext(ctx).Model(&domain.Resource{}).
		Preload("Uploader").
		Preload("Category").
		Joins("JOIN collections ON collections.resource_id = resources.id").
		Where("collections.user_id = ?", userID).
		Order("collections.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&resources).Error
	return resources, total, err
}
