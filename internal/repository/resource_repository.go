package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) WithTx(tx *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: tx}
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *ResourceRepository) FindByID(ctx context.Context, id uint) (*domain.Resource, error) {
	var res domain.Resource
	err := r.db.WithContext(ctx).
		Preload("Uploader").
		Preload("Category").
		First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// Delete removes a resource together with its comments, their image
// rows and any collections, in one transaction. It returns the object
// keys of the removed comment images so the caller can delete the
// stored files after commit.
func (r *ResourceRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var images []domain.CommentImage
		if err := tx.Model(&domain.CommentImage{}).
			Joins("JOIN comments ON comments.id = comment_images.comment_id").
			Where("comments.resource_id = ?", id).
			Find(&images).Error; err != nil {
			return err
		}
		for _, img := range images {
			keys = append(keys, img.ObjectKey, img.ThumbKey)
		}

		if err := tx.Where("comment_id IN (SELECT id FROM comments WHERE resource_id = ?)", id).
			Delete(&domain.CommentImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id = ?", id).Delete(&domain.Collection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Resource{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *ResourceRepository) List(ctx context.Context, q dto.ResourceListQuery) ([]domain.Resource, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Resource{}).
		Preload("Uploader").
		Preload("Category")

	if q.Keyword != "" {
		like := "%" + q.Keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if q.CategoryID != 0 {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.UploaderID != 0 {
		query = query.Where("uploader_id = ?", q.UploaderID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch q.SortBy {
	case "hottest":
		query = query.Order("view_count DESC, id DESC")
	case "downloads":
		query = query.Order("download_count DESC, id DESC")
	default:
		query = query.Order("created_at DESC, id DESC")
	}

	var resources []domain.Resource
	err := query.Offset(q.Offset()).Limit(q.PageSize).Find(&resources).Error
	return resources, total, err
}

// FindRelated returns approved resources sharing the category,
// excluding the resource itself.
func (r *ResourceRepository) FindRelated(ctx context.Context, categoryID, excludeID uint, limit int) ([]domain.Resource, error) {
	var resources []domain.Resource
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND status = ?", categoryID, excludeID, domain.ResourceApproved).
		Order("view_count DESC").
		Limit(limit).
		Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *ResourceRepository) IncrementDownloadCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

// SetCommentCount overwrites the denormalized comment counter with an
// exact value.
func (r *ResourceRepository) SetCommentCount(ctx context.Context, id uint, n int64) error {
	return r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", n).Error
}

func (r *ResourceRepository) AdjustCollectCount(ctx context.Context, id uint, delta int) error {
	return r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("id = ?", id).
		UpdateColumn("collect_count", gorm.Expr("collect_count + ?", delta)).Error
}

func (r *ResourceRepository) CountByStatus(ctx context.Context, status domain.ResourceStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Resource{}).
		Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *ResourceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Resource{}).Count(&n).Error
	return n, err
}
