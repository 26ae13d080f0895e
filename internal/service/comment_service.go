package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/apperr"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/imaging"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/sanitize"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/storage"
)

const (
	// MaxCommentImages bounds attachments per comment.
	MaxCommentImages = 3
	// PreviewReplyCount is how many replies each root carries inline.
	PreviewReplyCount = 2
)

type CommentService struct {
	db            *gorm.DB
	comments      *repository.CommentRepository
	resources     *repository.ResourceRepository
	users         *repository.UserRepository
	notifications *NotificationService
	store         storage.ObjectStore
	maxImageSize  int64
}

func NewCommentService(
	db *gorm.DB,
	comments *repository.CommentRepository,
	resources *repository.ResourceRepository,
	users *repository.UserRepository,
	notifications *NotificationService,
	store storage.ObjectStore,
	maxImageSize int64,
) *CommentService {
	return &CommentService{
		db:            db,
		comments:      comments,
		resources:     resources,
		users:         users,
		notifications: notifications,
		store:         store,
		maxImageSize:  maxImageSize,
	}
}

// Create posts a comment or reply, with up to three image attachments.
// The comment row, its images, the denormalized resource counter and
// any notification commit atomically; uploaded objects are removed
// again if the transaction rolls back.
func (s *CommentService) Create(ctx context.Context, userID uint, req dto.CreateCommentRequest, images [][]byte) (*dto.CommentInfo, error) {
	// sanitize before the emptiness check: content made of control
	// characters alone collapses to the empty string
	content := sanitize.Content(strings.TrimSpace(req.Content))
	if content == "" && len(images) == 0 {
		return nil, apperr.Validation("Comment content cannot be empty")
	}
	if len(images) > MaxCommentImages {
		return nil, apperr.Validation("Too many images")
	}

	resource, err := s.resources.FindByID(ctx, req.ResourceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if resource == nil {
		return nil, apperr.NotFound("Resource not found")
	}
	if !resource.AllowComments {
		return nil, apperr.Forbidden("Comments are disabled for this resource")
	}

	var parent *domain.Comment
	if req.ParentID != nil {
		parent, err = s.comments.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if parent == nil {
			return nil, apperr.NotFound("Parent comment not found")
		}
		if parent.ResourceID != req.ResourceID {
			return nil, apperr.Validation("Parent comment belongs to a different resource")
		}
	}
	if req.ReplyToUserID != nil {
		target, err := s.users.FindByID(ctx, *req.ReplyToUserID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if target == nil {
			return nil, apperr.Validation("Reply target user not found")
		}
	}

	processed := make([]*imaging.Processed, 0, len(images))
	for _, data := range images {
		if int64(len(data)) > s.maxImageSize {
			return nil, apperr.Validation("Image too large")
		}
		p, err := imaging.Process(data)
		if err != nil {
			return nil, apperr.Validation("Invalid image file")
		}
		processed = append(processed, p)
	}

	comment := &domain.Comment{
		ResourceID:    req.ResourceID,
		UserID:        userID,
		Content:       content,
		ParentID:      req.ParentID,
		ReplyToUserID: req.ReplyToUserID,
		ImageCount:    len(processed),
	}

	var uploadedKeys []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		commentsTx := s.comments.WithTx(tx)
		resourcesTx := s.resources.WithTx(tx)

		if parent != nil {
			rootID := parent.ID
			if parent.RootID != nil {
				rootID = *parent.RootID
			}
			comment.RootID = &rootID
		}

		if err := commentsTx.Create(ctx, comment); err != nil {
			return err
		}
		if parent == nil {
			// a root's thread key is its own id, known only after insert
			if err := commentsTx.SetRootID(ctx, comment.ID, comment.ID); err != nil {
				return err
			}
			comment.RootID = &comment.ID
		}

		for i, p := range processed {
			mainKey := fmt.Sprintf("comments/c_%d_%d.jpg", comment.ID, i)
			thumbKey := fmt.Sprintf("comments_thumbs/c_%d_%d.jpg", comment.ID, i)

			if err := s.store.Put(ctx, mainKey, bytes.NewReader(p.Main), int64(len(p.Main)), p.MimeType); err != nil {
				return err
			}
			uploadedKeys = append(uploadedKeys, mainKey)
			if err := s.store.Put(ctx, thumbKey, bytes.NewReader(p.Thumb), int64(len(p.Thumb)), p.MimeType); err != nil {
				return err
			}
			uploadedKeys = append(uploadedKeys, thumbKey)

			img := &domain.CommentImage{
				CommentID: comment.ID,
				ObjectKey: mainKey,
				ThumbKey:  thumbKey,
				MimeType:  p.MimeType,
				FileSize:  int64(len(p.Main)),
				Width:     p.Width,
				Height:    p.Height,
				SortOrder: i,
			}
			if err := commentsTx.CreateImage(ctx, img); err != nil {
				return err
			}
		}

		// keep the denormalized counter exact rather than incrementing
		total, err := commentsTx.CountByResource(ctx, req.ResourceID)
		if err != nil {
			return err
		}
		if err := resourcesTx.SetCommentCount(ctx, req.ResourceID, total); err != nil {
			return err
		}

		return s.createCommentNotification(ctx, tx, comment, parent, resource)
	})
	if err != nil {
		// objects written before the rollback are orphans; remove them
		for _, key := range uploadedKeys {
			if delErr := s.store.Delete(context.Background(), key); delErr != nil {
				log.Printf("comment: cleanup %s after rollback: %v", key, delErr)
			}
		}
		if apperr.Is(err, apperr.KindInternal) {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	created, err := s.comments.FindByID(ctx, comment.ID)
	if err != nil || created == nil {
		return nil, apperr.Internal(err)
	}
	info := s.newCommentInfo(created)
	return &info, nil
}

// createCommentNotification applies the notification rules: a root
// comment notifies the resource uploader, a reply notifies the reply
// target (falling back to the parent's author). Nobody is notified
// about their own activity.
func (s *CommentService) createCommentNotification(ctx context.Context, tx *gorm.DB, comment, parent *domain.Comment, resource *domain.Resource) error {
	author, err := s.users.WithTx(tx).FindByID(ctx, comment.UserID)
	if err != nil {
		return err
	}
	name := "Someone"
	if author != nil {
		name = displayName(author)
	}

	if parent == nil {
		if resource.UploaderID == comment.UserID {
			return nil
		}
		return s.notifications.Notify(ctx, tx, &domain.Notification{
			UserID:    resource.UploaderID,
			SenderID:  &comment.UserID,
			Type:      domain.NotifyComment,
			Content:   fmt.Sprintf("%s commented on your resource \"%s\"", name, resource.Title),
			RelatedID: &comment.ResourceID,
		})
	}

	targetID := parent.UserID
	if comment.ReplyToUserID != nil {
		targetID = *comment.ReplyToUserID
	}
	if targetID == comment.UserID {
		return nil
	}
	return s.notifications.Notify(ctx, tx, &domain.Notification{
		UserID:    targetID,
		SenderID:  &comment.UserID,
		Type:      domain.NotifyReply,
		Content:   fmt.Sprintf("%s replied to your comment", name),
		RelatedID: &comment.ResourceID,
	})
}

// Update replaces a comment's text. Only the author or an admin may
// edit; images, counters and notifications stay untouched.
func (s *CommentService) Update(ctx context.Context, userID uint, role domain.Role, commentID uint, req dto.UpdateCommentRequest) (*dto.CommentInfo, error) {
	content := sanitize.Content(strings.TrimSpace(req.Content))
	if content == "" {
		return nil, apperr.Validation("Comment content cannot be empty")
	}

	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if comment == nil {
		return nil, apperr.NotFound("Comment not found")
	}
	if comment.UserID != userID && !role.IsAdmin() {
		return nil, apperr.Forbidden("Not allowed to edit this comment")
	}

	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, apperr.Internal(err)
	}
	comment.Content = content
	info := s.newCommentInfo(comment)
	return &info, nil
}

// ListByResource pages the top-level comments of a resource, each with
// its reply count and the two earliest replies inlined.
func (s *CommentService) ListByResource(ctx context.Context, resourceID uint, p dto.Pagination) (*dto.PageResult, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if resource == nil {
		return nil, apperr.NotFound("Resource not found")
	}

	roots, total, err := s.comments.FindRoots(ctx, resourceID, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	rootIDs := make([]uint, 0, len(roots))
	for i := range roots {
		rootIDs = append(rootIDs, roots[i].ID)
	}

	counts, err := s.comments.ReplyCounts(ctx, rootIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	previews, err := s.comments.FindPreviewReplies(ctx, rootIDs, PreviewReplyCount)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	previewsByRoot := make(map[uint][]dto.CommentInfo)
	for i := range previews {
		reply := &previews[i]
		if reply.ParentID == nil {
			continue
		}
		previewsByRoot[*reply.ParentID] = append(previewsByRoot[*reply.ParentID], s.newCommentInfo(reply))
	}

	list := make([]dto.CommentInfo, 0, len(roots))
	for i := range roots {
		info := s.newCommentInfo(&roots[i])
		info.ReplyCount = counts[roots[i].ID]
		info.PreviewReplies = previewsByRoot[roots[i].ID]
		list = append(list, info)
	}

	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

// ListReplies pages the direct replies of a comment, oldest first.
// Clients walk deeper levels by re-querying with a reply's ID.
func (s *CommentService) ListReplies(ctx context.Context, parentID uint, p dto.Pagination) (*dto.PageResult, error) {
	parent, err := s.comments.FindByID(ctx, parentID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if parent == nil {
		return nil, apperr.NotFound("Comment not found")
	}

	replies, total, err := s.comments.FindReplies(ctx, parentID, p.Offset(), p.PageSize)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	list := make([]dto.CommentInfo, 0, len(replies))
	for i := range replies {
		list = append(list, s.newCommentInfo(&replies[i]))
	}
	result := dto.NewPageResult(list, total, p.Page, p.PageSize)
	return &result, nil
}

// Delete removes a comment. Allowed for the author, an admin, or the
// owner of the resource the comment is on. Replies of a deleted root
// stay in place. Stored objects are removed only after the database
// transaction commits.
func (s *CommentService) Delete(ctx context.Context, userID uint, role domain.Role, commentID uint) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return apperr.Internal(err)
	}
	if comment == nil {
		return apperr.NotFound("Comment not found")
	}

	resource, err := s.resources.FindByID(ctx, comment.ResourceID)
	if err != nil {
		return apperr.Internal(err)
	}

	allowed := comment.UserID == userID || role.IsAdmin() ||
		(resource != nil && resource.UploaderID == userID)
	if !allowed {
		return apperr.Forbidden("Not allowed to delete this comment")
	}

	var orphanKeys []string
	for _, img := range comment.Images {
		orphanKeys = append(orphanKeys, img.ObjectKey, img.ThumbKey)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		commentsTx := s.comments.WithTx(tx)
		resourcesTx := s.resources.WithTx(tx)

		if err := commentsTx.DeleteImages(ctx, commentID); err != nil {
			return err
		}
		if err := commentsTx.Delete(ctx, commentID); err != nil {
			return err
		}

		total, err := commentsTx.CountByResource(ctx, comment.ResourceID)
		if err != nil {
			return err
		}
		return resourcesTx.SetCommentCount(ctx, comment.ResourceID, total)
	})
	if err != nil {
		return apperr.Internal(err)
	}

	for _, key := range orphanKeys {
		if delErr := s.store.Delete(context.Background(), key); delErr != nil {
			log.Printf("comment: delete object %s: %v", key, delErr)
		}
	}
	return nil
}

func (s *CommentService) newCommentInfo(c *domain.Comment) dto.CommentInfo {
	info := dto.CommentInfo{
		ID:            c.ID,
		ResourceID:    c.ResourceID,
		UserID:        c.UserID,
		Content:       c.Content,
		ParentID:      c.ParentID,
		RootID:        c.RootID,
		ReplyToUserID: c.ReplyToUserID,
		Images:        make([]dto.CommentImageInfo, 0, len(c.Images)),
		CreateTime:    c.CreatedAt,
	}
	if c.User != nil {
		info.Username = c.User.Username
		info.Nickname = c.User.Nickname
		info.AvatarURL = c.User.AvatarURL
	}
	for _, img := range c.Images {
		info.Images = append(info.Images, dto.CommentImageInfo{
			URL:      s.store.PublicURL(img.ObjectKey),
			ThumbURL: s.store.PublicURL(img.ThumbKey),
			MimeType: img.MimeType,
			FileSize: img.FileSize,
			Width:    img.Width,
			Height:   img.Height,
		})
	}
	return info
}
