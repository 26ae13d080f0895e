package dto

import (
	"time"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// UserInfo is the public view of an account.
type UserInfo struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Nickname  string      `json:"nickname"`
	Email     string      `json:"email,omitempty"`
	AvatarURL string      `json:"avatarUrl"`
	Bio       string      `json:"bio"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func NewUserInfo(u *domain.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type RoleRequestCreate struct {
	RequestedRole domain.Role `json:"requestedRole"`
	Reason        string      `json:"reason"`
}

// UserProfile extends UserInfo with social counters.
type UserProfile struct {
	UserInfo
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
	ResourceCount  int64 `json:"resourceCount"`
	IsFollowing    bool  `json:"isFollowing"`
}
