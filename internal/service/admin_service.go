package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/sanitize"
)

type AdminService struct {
	db            *gorm.DB
	admin         *repository.AdminRepository
	users         *repository.UserRepository
	resources     *repository.ResourceRepository
	comments      *repository.CommentRepository
	notifications *NotificationService
}

func NewAdminService(
	db *gorm.DB,
	admin *repository.AdminRepository,
	users *repository.UserRepository,
	resources *repository.ResourceRepository,
	comments *repository.CommentRepository,
	notifications *NotificationService,
) *AdminService {
	return &AdminService{
		db:            db,
		admin:         admin,
		users:         users,
		resources:     resources,
		comments:      comments,
		notifications: notifications,
	}
}

func (s *AdminService) ListRoleRequests(ctx context.Context, status *domain.RoleRequestStatus, p dto.Pagination) (*dto.PageResult, error) {
	reqs, total, err := s.admin.ListRoleRequests(ctx, status, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.RoleRequestInfo, 0, len(reqs))
	for i := range reqs {
		list = append(list, newRoleRequestInfo(&reqs[i]))
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

// AuditRoleRequest approves or rejects an application. Approval,
// the role grant, the notification and the audit log commit together.
func (s *AdminService) AuditRoleRequest(ctx context.Context, auditorID, requestID uint, body dto.AuditRoleRequestBody) error {
	request, err := s.admin.FindRoleRequest(ctx, requestID)
	if err != nil {
		return apperr.Internal(err)
	}
	if request == nil {
		return apperr.NotFound("Request not found")
	}
	if request.Status != domain.RoleRequestPending {
		return apperr.Validation("Request has already been audited")
	}

	now := time.Now()
	request.AuditorID = &auditorID
	request.AuditedAt = &now
	request.Remark = sanitize.Content(body.Remark)
	if body.Approve {
		request.Status = domain.RoleRequestApproved
	} else {
		request.Status = domain.RoleRequestRejected
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		adminTx := s.admin.WithTx(tx)
		if err := adminTx.UpdateRoleRequest(ctx, request); err != nil {
			return err
		}

		verdict := "rejected"
		if body.Approve {
			verdict = "approved"
			if err := s.users.WithTx(tx).UpdateRole(ctx, request.UserID, request.RequestedRole); err != nil {
				return err
			}
		}

		content := fmt.Sprintf("Your role request was %s", verdict)
		if request.Remark != "" {
			content += ": " + request.Remark
		}
		if err := s.notifications.Notify(ctx, tx, &domain.Notification{
			UserID:    request.UserID,
			SenderID:  &auditorID,
			Type:      domain.NotifyAudit,
			Content:   content,
			RelatedID: &request.ID,
		}); err != nil {
			return err
		}

		return adminTx.CreateOperationLog(ctx, &domain.OperationLog{
			OperatorID: auditorID,
			Action:     "audit_role_request",
			TargetType: "role_request",
			TargetID:   request.ID,
			Detail:     fmt.Sprintf("%s request of user %d", verdict, request.UserID),
		})
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// AuditResource moves a pending resource to approved or rejected and
// notifies the uploader.
func (s *AdminService) AuditResource(ctx context.Context, auditorID, resourceID uint, body dto.AuditResourceBody) error {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		return apperr.Internal(err)
	}
	if resource == nil {
		return apperr.NotFound("Resource not found")
	}
	if resource.Status != domain.ResourcePending {
		return apperr.Validation("Resource has already been audited")
	}

	verdict := "rejected"
	resource.Status = domain.ResourceRejected
	if body.Approve {
		verdict = "approved"
		resource.Status = domain.ResourceApproved
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.resources.WithTx(tx).Update(ctx, resource); err != nil {
			return err
		}

		content := fmt.Sprintf("Your resource \"%s\" was %s", resource.Title, verdict)
		if remark := sanitize.Content(body.Remark); remark != "" {
			content += ": " + remark
		}
		if err := s.notifications.Notify(ctx, tx, &domain.Notification{
			UserID:    resource.UploaderID,
			SenderID:  &auditorID,
			Type:      domain.NotifyAudit,
			Content:   content,
			RelatedID: &resource.ID,
		}); err != nil {
			return err
		}

		return s.admin.WithTx(tx).CreateOperationLog(ctx, &domain.OperationLog{
			OperatorID: auditorID,
			Action:     "audit_resource",
			TargetType: "resource",
			TargetID:   resource.ID,
			Detail:     fmt.Sprintf("%s resource %q", verdict, resource.Title),
		})
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// SetUserStatus enables or disables an account.
func (s *AdminService) SetUserStatus(ctx context.Context, adminID, userID uint, enabled bool) error {
	if adminID == userID {
		return apperr.Validation("Cannot change your own status")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}

	action := "disable_user"
	user.Status = 0
	if enabled {
		action = "enable_user"
		user.Status = 1
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Update(ctx, user); err != nil {
			return err
		}
		return s.admin.WithTx(tx).CreateOperationLog(ctx, &domain.OperationLog{
			OperatorID: adminID,
			Action:     action,
			TargetType: "user",
			TargetID:   userID,
			Detail:     user.Username,
		})
	})
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, keyword string, p dto.Pagination) (*dto.PageResult, error) {
	users, total, err := s.users.List(ctx, keyword, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		list = append(list, dto.NewUserInfo(&users[i]))
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

func (s *AdminService) ListOperationLogs(ctx context.Context, p dto.Pagination) (*dto.PageResult, error) {
	logs, total, err := s.admin.ListOperationLogs(ctx, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.OperationLogInfo, 0, len(logs))
	for i := range logs {
		list = append(list, newOperationLogInfo(&logs[i]))
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

// AllOperationLogs loads every log row for export, newest first.
func (s *AdminService) AllOperationLogs(ctx context.Context) ([]dto.OperationLogInfo, error) {
	logs, _, err := s.admin.ListOperationLogs(ctx, 0, 10000)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	list := make([]dto.OperationLogInfo, 0, len(logs))
	for i := range logs {
		list = append(list, newOperationLogInfo(&logs[i]))
	}
	return list, nil
}

func (s *AdminService) Stats(ctx context.Context) (*dto.PlatformStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resources, err := s.resources.Count(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	pending, err := s.resources.CountByStatus(ctx, domain.ResourcePending)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	comments, err := s.comments.Count(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	audits, err := s.admin.CountPendingRoleRequests(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &dto.PlatformStats{
		UserCount:         users,
		ResourceCount:     resources,
		PendingResources:  pending,
		CommentCount:      comments,
		PendingRoleAudits: audits,
	}, nil
}

func newRoleRequestInfo(r *domain.RoleChangeRequest) dto.RoleRequestInfo {
	info := dto.RoleRequestInfo{
		ID:            r.ID,
		UserID:        r.UserID,
		RequestedRole: r.RequestedRole,
		Reason:        r.Reason,
		Status:        r.Status,
		AuditorID:     r.AuditorID,
		Remark:        r.Remark,
		AuditedAt:     r.AuditedAt,
		CreatedAt:     r.CreatedAt,
	}
	if r.User != nil {
		info.Username = r.User.Username
		info.Nickname = r.User.Nickname
	}
	return info
}

func newOperationLogInfo(l *domain.OperationLog) dto.OperationLogInfo {
	info := dto.OperationLogInfo{
		ID:         l.ID,
		OperatorID: l.OperatorID,
		Action:     l.Action,
		TargetType: l.TargetType,
		TargetID:   l.TargetID,
		Detail:     l.Detail,
		CreatedAt:  l.CreatedAt,
	}
	if l.Operator != nil {
		info.OperatorName = l.Operator.Username
	}
	return info
}
