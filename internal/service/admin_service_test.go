package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
)

func (e *testEnv) adminService() *AdminService {
	return NewAdminService(
		e.db,
		repository.NewAdminRepository(e.db),
		e.users,
		e.resources,
		e.comments,
		e.notifySvc,
	)
}

func TestAuditRoleRequestApprove(t *testing.T) {
	env := newTestEnv(t)
	svc := env.adminService()
	ctx := context.Background()

	admin := env.createUser(t, "admin", domain.RoleAdmin)
	applicant := env.createUser(t, "applicant", domain.RoleUser)

	request := &domain.RoleChangeRequest{
		UserID:        applicant.ID,
		RequestedRole: domain.RoleTeacher,
		Status:        domain.RoleRequestPending,
	}
	require.NoError(t, env.db.Create(request).Error)

	require.NoError(t, svc.AuditRoleRequest(ctx, admin.ID, request.ID, dto.AuditRoleRequestBody{
		Approve: true, Remark: "credentials verified",
	}))

	// role granted
	var updated domain.User
	require.NoError(t, env.db.First(&updated, applicant.ID).Error)
	assert.Equal(t, domain.RoleTeacher, updated.Role)

	// applicant notified
	n, err := env.notifications.CountUnread(ctx, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// action logged
	var logCount int64
	require.NoError(t, env.db.Model(&domain.OperationLog{}).Count(&logCount).Error)
	assert.Equal(t, int64(1), logCount)

	// re-auditing fails
	err = svc.AuditRoleRequest(ctx, admin.ID, request.ID, dto.AuditRoleRequestBody{Approve: false})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAuditRoleRequestReject(t *testing.T) {
	env := newTestEnv(t)
	svc := env.adminService()
	ctx := context.Background()

	admin := env.createUser(t, "admin", domain.RoleAdmin)
	applicant := env.createUser(t, "applicant", domain.RoleUser)

	request := &domain.RoleChangeRequest{
		UserID:        applicant.ID,
		RequestedRole: domain.RoleTeacher,
		Status:        domain.RoleRequestPending,
	}
	require.NoError(t, env.db.Create(request).Error)

	require.NoError(t, svc.AuditRoleRequest(ctx, admin.ID, request.ID, dto.AuditRoleRequestBody{Approve: false}))

	// role unchanged on rejection
	var updated domain.User
	require.NoError(t, env.db.First(&updated, applicant.ID).Error)
	assert.Equal(t, domain.RoleUser, updated.Role)
}

func TestAuditResource(t *testing.T) {
	env := newTestEnv(t)
	svc := env.adminService()
	ctx := context.Background()

	admin := env.createUser(t, "admin", domain.RoleAdmin)
	teacher := env.createUser(t, "teacher", domain.RoleTeacher)

	res := &domain.Resource{UploaderID: teacher.ID, Title: "draft", Status: domain.ResourcePending}
	require.NoError(t, env.db.Create(res).Error)

	require.NoError(t, svc.AuditResource(ctx, admin.ID, res.ID, dto.AuditResourceBody{Approve: true}))

	var updated domain.Resource
	require.NoError(t, env.db.First(&updated, res.ID).Error)
	assert.Equal(t, domain.ResourceApproved, updated.Status)

	n, err := env.notifications.CountUnread(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSetUserStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.adminService()
	ctx := context.Background()

	admin := env.createUser(t, "admin", domain.RoleAdmin)
	victim := env.createUser(t, "victim", domain.RoleUser)

	require.NoError(t, svc.SetUserStatus(ctx, admin.ID, victim.ID, false))
	var updated domain.User
	require.NoError(t, env.db.First(&updated, victim.ID).Error)
	assert.Equal(t, 0, updated.Status)

	// admins cannot lock themselves out
	err := svc.SetUserStatus(ctx, admin.ID, admin.ID, false)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPlatformStats(t *testing.T) {
	env := newTestEnv(t)
	svc := env.adminService()
	ctx := context.Background()

	teacher := env.createUser(t, "teacher", domain.RoleTeacher)
	env.createResource(t, teacher.ID, true)
	require.NoError(t, env.db.Create(&domain.Resource{
		UploaderID: teacher.ID, Title: "pending", Status: domain.ResourcePending,
	}).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UserCount)
	assert.Equal(t, int64(2), stats.ResourceCount)
	assert.Equal(t, int64(1), stats.PendingResources)
}
