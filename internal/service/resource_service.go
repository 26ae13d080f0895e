package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/sanitize"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/storage"
)

var allowedResourceExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true, ".txt": true, ".md": true, ".zip": true,
	".rar": true, ".mp4": true, ".mp3": true,
}

type ResourceService struct {
	resources   *repository.ResourceRepository
	categories  *repository.CategoryRepository
	collections *repository.CollectionRepository
	store       storage.ObjectStore
	maxFileSize int64
}

func NewResourceService(
	resources *repository.ResourceRepository,
	categories *repository.CategoryRepository,
	collections *repository.CollectionRepository,
	store storage.ObjectStore,
	maxFileSize int64,
) *ResourceService {
	return &ResourceService{
		resources:   resources,
		categories:  categories,
		collections: collections,
		store:       store,
		maxFileSize: maxFileSize,
	}
}

// Create uploads a new resource. Only teachers and admins may publish;
// new resources start pending until an admin approves them.
func (s *ResourceService) Create(ctx context.Context, userID uint, role domain.Role, req dto.CreateResourceRequest, fileName string, fileSize int64, file io.Reader) (*dto.ResourceInfo, error) {
	if !role.CanUpload() {
		return nil, apperr.Forbidden("Only teachers can upload resources")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("Title cannot be empty")
	}
	if fileSize <= 0 {
		return nil, apperr.Validation("Resource file is required")
	}
	if fileSize > s.maxFileSize {
		return nil, apperr.Validation("Resource file is too large")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedResourceExts[ext] {
		return nil, apperr.Validation("Unsupported file type")
	}

	if req.CategoryID != 0 {
		cat, err := s.categories.FindByID(ctx, req.CategoryID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if cat == nil {
			return nil, apperr.Validation("Category not found")
		}
	}

	key := fmt.Sprintf("resources/%s%s", uuid.NewString(), ext)
	if err := s.store.Put(ctx, key, file, fileSize, "application/octet-stream"); err != nil {
		return nil, apperr.Internal(err)
	}

	allowComments := true
	if req.AllowComments != nil {
		allowComments = *req.AllowComments
	}

	resource := &domain.Resource{
		UploaderID:    userID,
		CategoryID:    req.CategoryID,
		Title:         sanitize.PlainText(title),
		Description:   sanitize.Content(req.Description),
		FileKey:       key,
		FileName:      fileName,
		FileSize:      fileSize,
		FileType:      strings.TrimPrefix(ext, "."),
		Status:        domain.ResourcePending,
		AllowComments: allowComments,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		if delErr := s.store.Delete(context.Background(), key); delErr != nil {
			log.Printf("resource: cleanup %s: %v", key, delErr)
		}
		return nil, apperr.Internal(err)
	}

	info := s.newResourceInfo(resource, false)
	return &info, nil
}

func (s *ResourceService) Get(ctx context.Context, id, viewerID uint, countView bool) (*dto.ResourceInfo, error) {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if resource == nil {
		return nil, apperr.NotFound("Resource not found")
	}

	if countView {
		if err := s.resources.IncrementViewCount(ctx, id); err != nil {
			return nil, apperr.Internal(err)
		}
		resource.ViewCount++
	}

	collected := false
	if viewerID != 0 {
		collected, err = s.collections.Exists(ctx, viewerID, id)
		if err != nil {
			return nil, apperr.Internal(err)
		}
	}

	info := s.newResourceInfo(resource, collected)
	return &info, nil
}

func (s *ResourceService) List(ctx context.Context, q dto.ResourceListQuery) (*dto.PageResult, error) {
	resources, total, err := s.resources.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.ResourceInfo, 0, len(resources))
	for i := range resources {
		list = append(list, s.newResourceInfo(&resources[i], false))
	}
	result := dto.NewPageResult(list, total, q.Page, q.PageSize)
	return &result, nil
}

func (s *ResourceService) Update(ctx context.Context, userID uint, role domain.Role, id uint, req dto.UpdateResourceRequest) (*dto.ResourceInfo, error) {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if resource == nil {
		return nil, apperr.NotFound("Resource not found")
	}
	if resource.UploaderID != userID && !role.IsAdmin() {
		return nil, apperr.Forbidden("Not allowed to modify this resource")
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.Validation("Title cannot be empty")
		}
		resource.Title = sanitize.PlainText(title)
	}
	if req.Description != nil {
		resource.Description = sanitize.Content(*req.Description)
	}
	if req.CategoryID != nil {
		resource.CategoryID = *req.CategoryID
	}
	if req.AllowComments != nil {
		resource.AllowComments = *req.AllowComments
	}

	if err := s.resources.Update(ctx, resource); err != nil {
		return nil, apperr.Internal(err)
	}
	info := s.newResourceInfo(resource, false)
	return &info, nil
}

// Delete removes the resource row first and its stored file after the
// row is gone.
func (s *ResourceService) Delete(ctx context.Context, userID uint, role domain.Role, id uint) error {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if resource == nil {
		return apperr.NotFound("Resource not found")
	}
	if resource.UploaderID != userID && !role.IsAdmin() {
		return apperr.Forbidden("Not allowed to delete this resource")
	}

	imageKeys, err := s.resources.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}

	orphans := imageKeys
	if resource.FileKey != "" {
		orphans = append(orphans, resource.FileKey)
	}
	if resource.CoverKey != "" {
		orphans = append(orphans, resource.CoverKey)
	}
	for _, key := range orphans {
		if delErr := s.store.Delete(context.Background(), key); delErr != nil {
			log.Printf("resource: delete object %s: %v", key, delErr)
		}
	}
	return nil
}

// Download streams the stored file and bumps the download counter.
func (s *ResourceService) Download(ctx context.Context, id uint) (io.ReadCloser, *domain.Resource, error) {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	if resource == nil || resource.FileKey == "" {
		return nil, nil, apperr.NotFound("Resource not found")
	}

	rc, err := s.store.Get(ctx, resource.FileKey)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	if err := s.resources.IncrementDownloadCount(ctx, id); err != nil {
		rc.Close()
		return nil, nil, apperr.Internal(err)
	}
	return rc, resource, nil
}

func (s *ResourceService) Related(ctx context.Context, id uint, limit int) ([]dto.ResourceInfo, error) {
	resource, err := s.resources.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if resource == nil {
		return nil, apperr.NotFound("Resource not found")
	}

	related, err := s.resources.FindRelated(ctx, resource.CategoryID, id, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.ResourceInfo, 0, len(related))
	for i := range related {
		list = append(list, s.newResourceInfo(&related[i], false))
	}
	return list, nil
}

func (s *ResourceService) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cats, nil
}

// Collect saves a resource for the user. Collecting twice is a
// conflict.
func (s *ResourceService) Collect(ctx context.Context, userID, resourceID uint) error {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		return apperr.Internal(err)
	}
	if resource == nil {
		return apperr.NotFound("Resource not found")
	}

	exists, err := s.collections.Exists(ctx, userID, resourceID)
	if err != nil {
		return apperr.Internal(err)
	}
	if exists {
		return apperr.Conflict("Already collected")
	}

	if err := s.collections.Create(ctx, &domain.Collection{UserID: userID, ResourceID: resourceID}); err != nil {
		return apperr.Internal(err)
	}
	if err := s.resources.AdjustCollectCount(ctx, resourceID, 1); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *ResourceService) Uncollect(ctx context.Context, userID, resourceID uint) error {
	affected, err := s.collections.Delete(ctx, userID, resourceID)
	if err != nil {
		return apperr.Internal(err)
	}
	if affected == 0 {
		return apperr.NotFound("Not collected")
	}
	if err := s.resources.AdjustCollectCount(ctx, resourceID, -1); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *ResourceService) Collections(ctx context.Context, userID uint, p dto.Pagination) (*dto.PageResult, error) {
	resources, total, err := s.collections.FindResources(ctx, userID, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.ResourceInfo, 0, len(resources))
	for i := range resources {
		info := s.newResourceInfo(&resources[i], true)
		list = append(list, info)
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

func (s *ResourceService) newResourceInfo(r *domain.Resource, collected bool) dto.ResourceInfo {
	info := dto.ResourceInfo{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		UploaderID:    r.UploaderID,
		FileName:      r.FileName,
		FileSize:      r.FileSize,
		FileType:      r.FileType,
		Status:        r.Status,
		AllowComments: r.AllowComments,
		ViewCount:     r.ViewCount,
		DownloadCount: r.DownloadCount,
		CollectCount:  r.CollectCount,
		CommentCount:  r.CommentCount,
		IsCollected:   collected,
		CreatedAt:     r.CreatedAt,
	}
	if r.Uploader != nil {
		info.UploaderName = displayName(r.Uploader)
	}
	if r.Category != nil {
		info.CategoryName = r.Category.Name
	}
	if r.CoverKey != "" {
		info.CoverURL = s.store.PublicURL(r.CoverKey)
	}
	return info
}
