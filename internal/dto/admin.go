package dto

import (
	"time"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

type AuditRoleRequestBody struct {
	Approve bool   `json:"approve"`
	Remark  string `json:"remark"`
}

type AuditResourceBody struct {
	Approve bool   `json:"approve"`
	Remark  string `json:"remark"`
}

// RoleRequestInfo is one role application row in the admin view.
type RoleRequestInfo struct {
	ID            uint                     `json:"id"`
	UserID        uint                     `json:"userId"`
	Username      string                   `json:"username"`
	Nickname      string                   `json:"nickname"`
	RequestedRole domain.Role              `json:"requestedRole"`
	Reason        string                   `json:"reason"`
	Status        domain.RoleRequestStatus `json:"status"`
	AuditorID     *uint                    `json:"auditorId"`
	Remark        string                   `json:"remark"`
	AuditedAt     *time.Time               `json:"auditedAt"`
	CreatedAt     time.Time                `json:"createdAt"`
}

// OperationLogInfo is one audit-log row.
type OperationLogInfo struct {
	ID           uint      `json:"id"`
	OperatorID   uint      `json:"operatorId"`
	OperatorName string    `json:"operatorName"`
	Action       string    `json:"action"`
	TargetType   string    `json:"targetType"`
	TargetID     uint      `json:"targetId"`
	Detail       string    `json:"detail"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	UserCount         int64 `json:"userCount"`
	ResourceCount     int64 `json:"resourceCount"`
	PendingResources  int64 `json:"pendingResources"`
	CommentCount      int64 `json:"commentCount"`
	PendingRoleAudits int64 `json:"pendingRoleAudits"`
}
