package domain

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser    Role = "user"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTeacher || r == RoleAdmin
}

// CanUpload reports whether the role may publish resources.
func (r Role) CanUpload() bool { return r == RoleTeacher || r == RoleAdmin }

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User is a registered account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	Nickname  string    `gorm:"size:64" json:"nickname"`
	Email     string    `gorm:"size:128" json:"email"`
	AvatarURL string    `gorm:"size:512" json:"avatarUrl"`
	Bio       string    `gorm:"size:512" json:"bio"`
	Role      Role      `gorm:"size:16;not null;default:user" json:"role"`
	Status    int       `gorm:"not null;default:1" json:"status"` // 1 active, 0 disabled
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups resources.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResourceStatus is the review lifecycle of a resource.
type ResourceStatus int

const (
	ResourcePending  ResourceStatus = 0
	ResourceApproved ResourceStatus = 1
	ResourceRejected ResourceStatus = 2
)

// Resource is an uploaded teaching material.
type Resource struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UploaderID    uint           `gorm:"index;not null" json:"uploaderId"`
	CategoryID    uint           `gorm:"index" json:"categoryId"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	FileKey       string         `gorm:"size:512" json:"-"`
	FileName      string         `gorm:"size:255" json:"fileName"`
	FileSize      int64          `json:"fileSize"`
	FileType      string         `gorm:"size:64" json:"fileType"`
	CoverKey      string         `gorm:"size:512" json:"-"`
	Status        ResourceStatus `gorm:"not null;default:0" json:"status"`
	// no default tag: gorm would skip the field on insert when false,
	// silently re-enabling comments. Creators set the value explicitly.
	AllowComments bool           `gorm:"not null" json:"allowComments"`
	ViewCount     int64          `gorm:"not null;default:0" json:"viewCount"`
	DownloadCount int64          `gorm:"not null;default:0" json:"downloadCount"`
	CollectCount  int64          `gorm:"not null;default:0" json:"collectCount"`
	CommentCount  int64          `gorm:"not null;default:0" json:"commentCount"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	Uploader *User     `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Comment is a node in a two-level thread. Roots carry RootID equal to
// their own ID; replies carry the root's ID so a whole subtree can be
// fetched with one indexed lookup.
type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ResourceID    uint      `gorm:"index;not null" json:"resourceId"`
	UserID        uint      `gorm:"index;not null" json:"userId"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ParentID      *uint     `gorm:"index" json:"parentId"`
	ReplyToUserID *uint     `json:"replyToUserId"`
	RootID        *uint     `gorm:"index" json:"rootId"`
	ImageCount    int       `gorm:"not null;default:0" json:"imageCount"`
	CreatedAt     time.Time `gorm:"index" json:"createTime"`

	User   *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Images []CommentImage `gorm:"foreignKey:CommentID" json:"images,omitempty"`
}

// CommentImage is one attachment of a comment. ObjectKey and ThumbKey
// point into object storage; the public URLs are derived at read time.
type CommentImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"index;not null" json:"commentId"`
	ObjectKey string    `gorm:"size:512;not null" json:"-"`
	ThumbKey  string    `gorm:"size:512;not null" json:"-"`
	MimeType  string    `gorm:"size:64;not null" json:"mimeType"`
	FileSize  int64     `json:"fileSize"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SortOrder int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

// Collection marks a resource saved by a user.
type Collection struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_collection_user_resource;not null" json:"userId"`
	ResourceID uint      `gorm:"uniqueIndex:idx_collection_user_resource;not null" json:"resourceId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Follow is a directed edge from follower to followee.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"uniqueIndex:idx_follow_pair;not null" json:"followerId"`
	FolloweeID uint      `gorm:"uniqueIndex:idx_follow_pair;not null" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NotificationType distinguishes what produced a notification.
type NotificationType string

const (
	NotifyComment NotificationType = "comment"
	NotifyReply   NotificationType = "reply"
	NotifyFollow  NotificationType = "follow"
	NotifyAudit   NotificationType = "audit"
	NotifySystem  NotificationType = "system"
)

// Notification is an in-app message for a user.
type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"index;not null" json:"userId"`
	SenderID   *uint            `json:"senderId"`
	Type       NotificationType `gorm:"size:16;not null" json:"type"`
	Content    string           `gorm:"size:512;not null" json:"content"`
	RelatedID  *uint            `json:"relatedId"`
	IsRead     bool             `gorm:"not null;default:false;index" json:"isRead"`
	CreatedAt  time.Time        `json:"createdAt"`
	ReadAt     *time.Time       `json:"readAt"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// Conversation is a two-party direct-message thread. UserAID is always
// the smaller of the two user IDs so each pair maps to one row.
type Conversation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserAID       uint      `gorm:"uniqueIndex:idx_conv_pair;not null" json:"userAId"`
	UserBID       uint      `gorm:"uniqueIndex:idx_conv_pair;not null" json:"userBId"`
	LastMessage   string    `gorm:"size:255" json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ChatMessageType is the payload kind of a chat message.
type ChatMessageType string

const (
	ChatText  ChatMessageType = "text"
	ChatImage ChatMessageType = "image"
	ChatVideo ChatMessageType = "video"
	ChatAudio ChatMessageType = "audio"
)

// ChatMessage is one message inside a conversation.
type ChatMessage struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ConversationID uint            `gorm:"index;not null" json:"conversationId"`
	SenderID       uint            `gorm:"not null" json:"senderId"`
	Type           ChatMessageType `gorm:"size:16;not null;default:text" json:"type"`
	Content        string          `gorm:"type:text" json:"content"`
	MediaKey       string          `gorm:"size:512" json:"-"`
	ThumbKey       string          `gorm:"size:512" json:"-"`
	IsRead         bool            `gorm:"not null;default:false" json:"isRead"`
	CreatedAt      time.Time       `gorm:"index" json:"createdAt"`
}

// RoleRequestStatus tracks the audit state of a role change request.
type RoleRequestStatus int

const (
	RoleRequestPending  RoleRequestStatus = 0
	RoleRequestApproved RoleRequestStatus = 1
	RoleRequestRejected RoleRequestStatus = 2
)

// RoleChangeRequest is a user's application to become a teacher.
type RoleChangeRequest struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	UserID        uint              `gorm:"index;not null" json:"userId"`
	RequestedRole Role              `gorm:"size:16;not null" json:"requestedRole"`
	Reason        string            `gorm:"size:512" json:"reason"`
	Status        RoleRequestStatus `gorm:"not null;default:0;index" json:"status"`
	AuditorID     *uint             `json:"auditorId"`
	Remark        string            `gorm:"size:512" json:"remark"`
	AuditedAt     *time.Time        `json:"auditedAt"`
	CreatedAt     time.Time         `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// OperationLog records an admin action for auditing.
type OperationLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OperatorID uint      `gorm:"index;not null" json:"operatorId"`
	Action     string    `gorm:"size:64;not null" json:"action"`
	TargetType string    `gorm:"size:32" json:"targetType"`
	TargetID   uint      `json:"targetId"`
	Detail     string    `gorm:"size:512" json:"detail"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`

	Operator *User `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
}

// AnalyticsEvent is a raw client event for usage reporting.
type AnalyticsEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"userId"`
	Event     string    `gorm:"size:64;not null;index" json:"event"`
	Page      string    `gorm:"size:255" json:"page"`
	TargetID  *uint     `json:"targetId"`
	UserAgent string    `gorm:"size:255" json:"userAgent"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
