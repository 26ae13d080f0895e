package dto

import "time"

// CreateCommentRequest is the multipart form for posting a comment.
// Images arrive as file parts named "images".
type CreateCommentRequest struct {
	ResourceID    uint   `json:"resourceId" form:"resourceId"`
	Content       string `json:"content" form:"content"`
	ParentID      *uint  `json:"parentId" form:"parentId"`
	ReplyToUserID *uint  `json:"replyToUserId" form:"replyToUserId"`
}

// UpdateCommentRequest carries the replacement text for an edit.
type UpdateCommentRequest struct {
	Content string `json:"content" form:"content"`
}

// CommentImageInfo is the public view of a comment attachment.
type CommentImageInfo struct {
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// CommentInfo is one comment as returned to clients.
type CommentInfo struct {
	ID             uint               `json:"id"`
	ResourceID     uint               `json:"resourceId"`
	UserID         uint               `json:"userId"`
	Username       string             `json:"username"`
	Nickname       string             `json:"nickname"`
	AvatarURL      string             `json:"avatarUrl"`
	Content        string             `json:"content"`
	ParentID       *uint              `json:"parentId"`
	RootID         *uint              `json:"rootId"`
	ReplyToUserID  *uint              `json:"replyToUserId"`
	ReplyToUser    string             `json:"replyToUser,omitempty"`
	Images         []CommentImageInfo `json:"images"`
	ReplyCount     int64              `json:"replyCount"`
	PreviewReplies []CommentInfo      `json:"previewReplies,omitempty"`
	CreateTime     time.Time          `json:"createTime"`
}
