package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/auth"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/imaging"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/sanitize"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/storage"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

type UserService struct {
	users      *repository.UserRepository
	follows    *repository.FollowRepository
	resources  *repository.ResourceRepository
	admin      *repository.AdminRepository
	jwtService *auth.JWTService
	store      storage.ObjectStore
}

func NewUserService(
	users *repository.UserRepository,
	follows *repository.FollowRepository,
	resources *repository.ResourceRepository,
	admin *repository.AdminRepository,
	jwtService *auth.JWTService,
	store storage.ObjectStore,
) *UserService {
	return &UserService{
		users:      users,
		follows:    follows,
		resources:  resources,
		admin:      admin,
		jwtService: jwtService,
		store:      store,
	}
}

func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserInfo, error) {
	if !usernamePattern.MatchString(req.Username) {
		return nil, apperr.Validation("Username must be 3-32 letters, digits or underscores")
	}
	if len(req.Password) < 6 {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}

	existing, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = req.Username
	}

	user := &domain.User{
		Username: req.Username,
		Password: string(hash),
		Nickname: sanitize.PlainText(nickname),
		Email:    strings.TrimSpace(req.Email),
		Role:     domain.RoleUser,
		Status:   1,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}

	info := dto.NewUserInfo(user)
	return &info, nil
}

func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.Unauthorized("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("Invalid username or password")
	}
	if user.Status != 1 {
		return nil, apperr.Forbidden("Account is disabled")
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &dto.LoginResponse{Token: token, User: dto.NewUserInfo(user)}, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*dto.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

// Profile returns the public profile with social counters. viewerID
// may be zero for anonymous viewers.
func (s *UserService) Profile(ctx context.Context, userID, viewerID uint) (*dto.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	approved := domain.ResourceApproved
	_, resourceCount, err := s.resources.List(ctx, dto.ResourceListQuery{
		UploaderID: userID,
		Status:     &approved,
		Pagination: dto.Pagination{Page: 1, PageSize: 1},
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	profile := &dto.UserProfile{
		UserInfo:       dto.NewUserInfo(user),
		FollowerCount:  followers,
		FollowingCount: following,
		ResourceCount:  resourceCount,
	}
	profile.Email = "" // not exposed on public profiles

	if viewerID != 0 && viewerID != userID {
		isFollowing, err := s.follows.Exists(ctx, viewerID, userID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		profile.IsFollowing = isFollowing
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	if req.Nickname != nil {
		nickname := sanitize.PlainText(strings.TrimSpace(*req.Nickname))
		if nickname == "" {
			return nil, apperr.Validation("Nickname cannot be empty")
		}
		user.Nickname = nickname
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Bio != nil {
		user.Bio = sanitize.Content(*req.Bio)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return apperr.Validation("Password must be at least 6 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return apperr.Validation("Old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal(err)
	}
	user.Password = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// UpdateAvatar runs the upload through the image pipeline and stores
// the bounded result.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, data []byte) (*dto.UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	processed, err := imaging.Process(data)
	if err != nil {
		return nil, apperr.Validation("Invalid image file")
	}

	key := fmt.Sprintf("avatars/u_%d.jpg", userID)
	if err := s.store.Put(ctx, key, bytes.NewReader(processed.Thumb), int64(len(processed.Thumb)), processed.MimeType); err != nil {
		return nil, apperr.Internal(err)
	}

	user.AvatarURL = s.store.PublicURL(key)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

// RequestRole files a teacher-role application for later admin audit.
func (s *UserService) RequestRole(ctx context.Context, userID uint, req dto.RoleRequestCreate) error {
	if req.RequestedRole != domain.RoleTeacher {
		return apperr.Validation("Only the teacher role can be requested")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}
	if user.Role != domain.RoleUser {
		return apperr.Validation("Current role cannot request a change")
	}

	pending, err := s.admin.HasPendingRoleRequest(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if pending {
		return apperr.Conflict("A pending request already exists")
	}

	request := &domain.RoleChangeRequest{
		UserID:        userID,
		RequestedRole: req.RequestedRole,
		Reason:        sanitize.Content(req.Reason),
		Status:        domain.RoleRequestPending,
	}
	if err := s.admin.CreateRoleRequest(ctx, request); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
