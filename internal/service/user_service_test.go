package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/auth"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
)

func (e *testEnv) userService() *UserService {
	jwtService := auth.NewJWTService("test-secret-test-secret-test-secret", time.Hour, "edushare")
	return NewUserService(
		e.users,
		repository.NewFollowRepository(e.db),
		e.resources,
		repository.NewAdminRepository(e.db),
		jwtService,
		e.store,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	info, err := svc.Register(ctx, dto.RegisterRequest{
		Username: "alice_01",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, info.Role)
	assert.Equal(t, "alice_01", info.Nickname) // defaults to username

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "alice_01", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, info.ID, resp.User.ID)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "alice_01", Password: "wrong"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "x", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "valid_name", Password: "123"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "valid_name", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "valid_name", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "blocked", Password: "secret123"})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&domain.User{}).Where("username = ?", "blocked").Update("status", 0).Error)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "blocked", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	info, err := svc.Register(ctx, dto.RegisterRequest{Username: "carol", Password: "secret123"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, info.ID, dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newsecret"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.ChangePassword(ctx, info.ID, dto.ChangePasswordRequest{
		OldPassword: "secret123", NewPassword: "newsecret",
	}))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "carol", Password: "newsecret"})
	require.NoError(t, err)
}

func TestRequestRole(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	info, err := svc.Register(ctx, dto.RegisterRequest{Username: "applicant", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestRole(ctx, info.ID, dto.RoleRequestCreate{
		RequestedRole: domain.RoleTeacher, Reason: "I teach math",
	}))

	// duplicate pending requests are rejected
	err = svc.RequestRole(ctx, info.ID, dto.RoleRequestCreate{RequestedRole: domain.RoleTeacher})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// only the teacher role can be requested
	err = svc.RequestRole(ctx, info.ID, dto.RoleRequestCreate{RequestedRole: domain.RoleAdmin})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestProfileCountersAndFollowingFlag(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	alice := env.createUser(t, "alice", domain.RoleUser)
	bob := env.createUser(t, "bob", domain.RoleUser)
	require.NoError(t, env.db.Create(&domain.Follow{FollowerID: bob.ID, FolloweeID: alice.ID}).Error)

	profile, err := svc.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.FollowerCount)
	assert.True(t, profile.IsFollowing)
	assert.Empty(t, profile.Email)
}
