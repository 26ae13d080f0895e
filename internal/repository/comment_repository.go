package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) WithTx(tx *gorm.DB) *CommentRepository {
	return &CommentRepository{db: tx}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// SetRootID materializes the thread root on a freshly inserted root
// comment (its RootID is its own ID).
func (r *CommentRepository) SetRootID(ctx context.Context, commentID, rootID uint) error {
	return r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("root_id", rootID).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Images").
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	return r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *CommentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Comment{}, id).Error
}

// FindRoots pages top-level comments of a resource, newest first.
func (r *CommentRepository) FindRoots(ctx context.Context, resourceID uint, offset, limit int) ([]domain.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("resource_id = ? AND parent_id IS NULL", resourceID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var roots []domain.Comment
	err := q.Preload("User").Preload("Images").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&roots).Error
	return roots, total, err
}

// FindReplies pages the direct children of a comment, oldest first.
// Deeper levels are fetched by re-querying with the child's ID; every
// comment in the subtree shares the same root_id.
func (r *CommentRepository) FindReplies(ctx context.Context, parentID uint, offset, limit int) ([]domain.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("parent_id = ?", parentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var replies []domain.Comment
	err := q.Preload("User").Preload("Images").
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&replies).Error
	return replies, total, err
}

// ReplyCounts returns, for each given root ID, the number of replies
// in its thread (thread size minus the root itself, floored at zero).
func (r *CommentRepository) ReplyCounts(ctx context.Context, rootIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(rootIDs))
	if len(rootIDs) == 0 {
		return counts, nil
	}

	type row struct {
		RootID uint
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Select("root_id AS root_id, COUNT(*) AS n").
		Where("root_id IN ?", rootIDs).
		Group("root_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, rw := range rows {
		n := rw.N - 1
		if n < 0 {
			n = 0
		}
		counts[rw.RootID] = n
	}
	return counts, nil
}

// FindPreviewReplies returns the earliest direct replies of each listed
// root in one query, using a window function so the result stays flat.
// Replies to replies are not previewed.
func (r *CommentRepository) FindPreviewReplies(ctx context.Context, rootIDs []uint, perRoot int) ([]domain.Comment, error) {
	if len(rootIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Raw(`
		SELECT id FROM (
			SELECT id,
			       ROW_NUMBER() OVER (PARTITION BY parent_id ORDER BY created_at ASC, id ASC) AS rn
			FROM comments
			WHERE parent_id IN ?
		) t
		WHERE t.rn <= ?`, rootIDs, perRoot).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var replies []domain.Comment
	err = r.db.WithContext(ctx).
		Preload("User").Preload("Images").
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	return replies, err
}

// CountByResource counts every comment of a resource, roots and
// replies alike. Used to keep the denormalized resource counter exact.
func (r *CommentRepository) CountByResource(ctx context.Context, resourceID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("resource_id = ?", resourceID).Count(&n).Error
	return n, err
}

func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).Count(&n).Error
	return n, err
}

func (r *CommentRepository) CreateImage(ctx context.Context, img *domain.CommentImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *CommentRepository) FindImages(ctx context.Context, commentID uint) ([]domain.CommentImage, error) {
	var images []domain.CommentImage
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Order("sort_order ASC").
		Find(&images).Error
	return images, err
}

func (r *CommentRepository) DeleteImages(ctx context.Context, commentID uint) error {
	return r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Delete(&domain.CommentImage{}).Error
}
