package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yeonjae-dev/pizzaria-sns/internal/blob"
	"github.com/yeonjae-dev/pizzaria-sns/internal/repositories"
	"github.com/yeonjae-dev/pizzaria-sns/models"
	"github.com/yeonjae-dev/pizzaria-sns/validators"
)

// PostService owns post creation, edit and delete, including the image
// upload/cleanup steps around them
type PostService struct {
	posts     repositories.PostRepository
	blobs     blob.Store
	validator *validators.Validator
	logger    *zap.Logger
	now       func() int64
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, blobs blob.Store, v *validators.Validator, logger *zap.Logger) *PostService {
	return &PostService{
		posts:     posts,
		blobs:     blobs,
		validator: v,
		logger:    logger,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// CreatePost validates the input, uploads the image when one is supplied and
// writes the post record. An upload failure aborts the whole creation; no
// partial post is written.
func (s *PostService) CreatePost(ctx context.Context, req models.CreatePostRequest, principal models.Principal) (*models.Post, error) {
	req.Content = strings.TrimSpace(req.Content)
	req.Nickname = strings.TrimSpace(req.Nickname)
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var imageURL string
	if req.Image != nil {
		url, err := s.blobs.Upload(ctx, req.Image.Filename, req.Image.ContentType, req.Image.Reader)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		imageURL = url
	}

	post := &models.Post{
		Content:   req.Content,
		ImageURL:  imageURL,
		CreatedAt: s.now(),
		Nickname:  req.Nickname,
		Likes:     0,
		Comments:  0,
		AuthorIP:  principal.IPAddress,
		AuthorID:  principal.AccountID,
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if imageURL != "" {
			s.deleteBlob(ctx, imageURL)
		}
		return nil, err
	}
	return post, nil
}

// EditPost updates a post's content and image as a single record write,
// permitted only to the author
func (s *PostService) EditPost(ctx context.Context, postID string, req models.EditPostRequest, principal models.Principal) (*models.Post, error) {
	existing, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !principal.OwnsPost(existing) {
		return nil, ErrNotAuthor
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		content = existing.Content
	}

	update := repositories.PostUpdate{Content: content, Image: repositories.ImageUnchanged}
	imageURL := existing.ImageURL
	switch req.ImageChange {
	case models.ImageRemove:
		if existing.ImageURL != "" {
			s.deleteBlob(ctx, existing.ImageURL)
		}
		update.Image = repositories.ImageClear
		imageURL = ""
	case models.ImageReplace:
		if req.Image == nil {
			return nil, fmt.Errorf("%w: replacement image missing", ErrValidation)
		}
		if existing.ImageURL != "" {
			s.deleteBlob(ctx, existing.ImageURL)
		}
		url, err := s.blobs.Upload(ctx, req.Image.Filename, req.Image.ContentType, req.Image.Reader)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		update.Image = repositories.ImageSet
		update.ImageURL = url
		imageURL = url
	}

	if err := s.posts.UpdatePost(ctx, postID, update); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Content = content
	updated.ImageURL = imageURL
	return &updated, nil
}

// DeletePost removes a post, permitted only to the author and only while the
// post has no comments. The associated blob is deleted best-effort first.
func (s *PostService) DeletePost(ctx context.Context, postID string, principal models.Principal) error {
	existing, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if !principal.OwnsPost(existing) {
		return ErrNotAuthor
	}
	if existing.Comments > 0 {
		return ErrHasComments
	}

	if existing.ImageURL != "" {
		s.deleteBlob(ctx, existing.ImageURL)
	}
	return s.posts.DeletePost(ctx, postID)
}

// GetPost retrieves a single post record
func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.posts.GetPostByID(ctx, postID)
}

// deleteBlob removes an uploaded image best-effort; failures are logged and
// swallowed
func (s *PostService) deleteBlob(ctx context.Context, blobURL string) {
	if err := s.blobs.Delete(ctx, blobURL); err != nil {
		s.logger.Warn("blob delete failed", zap.String("url", blobURL), zap.Error(err))
	}
}
