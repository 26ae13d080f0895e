package dto

import (
	"time"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

type CreateResourceRequest struct {
	Title         string `json:"title" form:"title"`
	Description   string `json:"description" form:"description"`
	CategoryID    uint   `json:"categoryId" form:"categoryId"`
	AllowComments *bool  `json:"allowComments" form:"allowComments"`
}

type UpdateResourceRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	CategoryID    *uint   `json:"categoryId"`
	AllowComments *bool   `json:"allowComments"`
}

// ResourceListQuery carries search and filter parameters.
type ResourceListQuery struct {
	Keyword    string
	CategoryID uint
	UploaderID uint
	Status     *domain.ResourceStatus
	SortBy     string // newest | hottest | downloads
	Pagination
}

// ResourceInfo is the list/detail view of a resource.
type ResourceInfo struct {
	ID            uint                  `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	CategoryID    uint                  `json:"categoryId"`
	CategoryName  string                `json:"categoryName,omitempty"`
	UploaderID    uint                  `json:"uploaderId"`
	UploaderName  string                `json:"uploaderName,omitempty"`
	FileName      string                `json:"fileName"`
	FileSize      int64                 `json:"fileSize"`
	FileType      string                `json:"fileType"`
	CoverURL      string                `json:"coverUrl,omitempty"`
	Status        domain.ResourceStatus `json:"status"`
	AllowComments bool                  `json:"allowComments"`
	ViewCount     int64                 `json:"viewCount"`
	DownloadCount int64                 `json:"downloadCount"`
	CollectCount  int64                 `json:"collectCount"`
	CommentCount  int64                 `json:"commentCount"`
	IsCollected   bool                  `json:"isCollected"`
	CreatedAt     time.Time             `json:"createdAt"`
}
