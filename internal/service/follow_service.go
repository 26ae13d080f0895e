package service

import (
	"context"
	"fmt"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
)

type FollowService struct {
	follows       *repository.FollowRepository
	users         *repository.UserRepository
	notifications *NotificationService
}

func NewFollowService(follows *repository.FollowRepository, users *repository.UserRepository, notifications *NotificationService) *FollowService {
	return &FollowService{follows: follows, users: users, notifications: notifications}
}

// Follow creates the edge and notifies the followee.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return apperr.Validation("Cannot follow yourself")
	}

	followee, err := s.users.FindByID(ctx, followeeID)
	if err != nil {
		return apperr.Internal(err)
	}
	if followee == nil {
		return apperr.NotFound("User not found")
	}

	exists, err := s.follows.Exists(ctx, followerID, followeeID)
	if err != nil {
		return apperr.Internal(err)
	}
	if exists {
		return apperr.Conflict("Already following")
	}

	if err := s.follows.Create(ctx, &domain.Follow{FollowerID: followerID, FolloweeID: followeeID}); err != nil {
		return apperr.Internal(err)
	}

	follower, err := s.users.FindByID(ctx, followerID)
	if err != nil {
		return apperr.Internal(err)
	}
	name := "Someone"
	if follower != nil {
		name = displayName(follower)
	}
	return s.notifications.Notify(ctx, nil, &domain.Notification{
		UserID:   followeeID,
		SenderID: &followerID,
		Type:     domain.NotifyFollow,
		Content:  fmt.Sprintf("%s started following you", name),
	})
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	affected, err := s.follows.Delete(ctx, followerID, followeeID)
	if err != nil {
		return apperr.Internal(err)
	}
	if affected == 0 {
		return apperr.NotFound("Not following")
	}
	return nil
}

func (s *FollowService) Followers(ctx context.Context, userID uint, p dto.Pagination) (*dto.PageResult, error) {
	users, total, err := s.follows.FindFollowers(ctx, userID, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return userPage(users, total, p), nil
}

func (s *FollowService) Following(ctx context.Context, userID uint, p dto.Pagination) (*dto.PageResult, error) {
	users, total, err := s.follows.FindFollowing(ctx, userID, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return userPage(users, total, p), nil
}

func userPage(users []domain.User, total int64, p dto.Pagination) *dto.PageResult {
	list := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		info := dto.NewUserInfo(&users[i])
		info.Email = ""
		list = append(list, info)
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result
}
