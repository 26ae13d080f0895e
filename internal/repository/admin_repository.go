package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

// AdminRepository persists role change requests and operation logs.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) WithTx(tx *gorm.DB) *AdminRepository {
	return &AdminRepository{db: tx}
}

func (r *AdminRepository) CreateRoleRequest(ctx context.Context, req *domain.RoleChangeRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *AdminRepository) FindRoleRequest(ctx context.Context, id uint) (*domain.RoleChangeRequest, error) {
	var req domain.RoleChangeRequest
	err := r.db.WithContext(ctx).Preload("User").First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPendingRoleRequest reports whether a user already has an open
// application.
func (r *AdminRepository) HasPendingRoleRequest(ctx context.Context, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RoleChangeRequest{}).
		Where("user_id = ? AND status = ?", userID, domain.RoleRequestPending).
		Count(&n).Error
	return n > 0, err
}

func (r *AdminRepository) ListRoleRequests(ctx context.Context, status *domain.RoleRequestStatus, offset, limit int) ([]domain.RoleChangeRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.RoleChangeRequest{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []domain.RoleChangeRequest
	err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&reqs).Error
	return reqs, total, err
}

func (r *AdminRepository) UpdateRoleRequest(ctx context.Context, req *domain.RoleChangeRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *AdminRepository) CountPendingRoleRequests(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RoleChangeRequest{}).
		Where("status = ?", domain.RoleRequestPending).
		Count(&n).Error
	return n, err
}

func (r *AdminRepository) CreateOperationLog(ctx context.Context, log *domain.OperationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AdminRepository) ListOperationLogs(ctx context.Context, offset, limit int) ([]domain.OperationLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.OperationLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []domain.OperationLog
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&logs).Error
	return logs, total, err
}
