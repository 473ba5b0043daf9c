package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yeonjae-dev/pizzaria-sns/internal/repositories"
	"github.com/yeonjae-dev/pizzaria-sns/models"
	"github.com/yeonjae-dev/pizzaria-sns/validators"
)

// CommentService owns the comment ledger operations and the per-post comment
// cache. The cache is filled on first List for a post and patched locally by
// Add/Edit/Delete, matching the lazy-load-then-cache behavior of the comment
// section.
type CommentService struct {
	comments  repositories.CommentRepository
	validator *validators.Validator
	logger    *zap.Logger
	now       func() int64

	mu    sync.Mutex
	cache map[string][]models.Comment
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, v *validators.Validator, logger *zap.Logger) *CommentService {
	return &CommentService{
		comments:  comments,
		validator: v,
		logger:    logger,
		now:       func() int64 { return time.Now().UnixMilli() },
		cache:     make(map[string][]models.Comment),
	}
}

// AddComment validates the input and writes the comment; the parent post's
// counter moves in the same atomic store write. The new comment is prepended
// to the cached sequence.
func (s *CommentService) AddComment(ctx context.Context, postID string, req models.CreateCommentRequest, principal models.Principal) (*models.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	req.Nickname = strings.TrimSpace(req.Nickname)
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	comment := &models.Comment{
		PostID:    postID,
		Content:   req.Content,
		Nickname:  req.Nickname,
		CreatedAt: s.now(),
		AuthorIP:  principal.IPAddress,
		AuthorID:  principal.AccountID,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cached, ok := s.cache[postID]; ok {
		s.cache[postID] = append([]models.Comment{*comment}, cached...)
	}
	s.mu.Unlock()
	return comment, nil
}

// EditComment rewrites a comment's content, permitted only to the comment's
// author (matched on network address)
func (s *CommentService) EditComment(ctx context.Context, commentID, newContent string, principal models.Principal) (*models.Comment, error) {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return nil, fmt.Errorf("%w: content", ErrValidation)
	}

	existing, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !principal.OwnsComment(existing) {
		return nil, ErrNotAuthor
	}

	if err := s.comments.UpdateComment(ctx, commentID, newContent); err != nil {
		return nil, err
	}

	existing.Content = newContent
	s.patchCache(existing.PostID, func(comments []models.Comment) []models.Comment {
		for i := range comments {
			if comments[i].ID == commentID {
				comments[i].Content = newContent
			}
		}
		return comments
	})
	return existing, nil
}

// DeleteComment removes a comment, permitted only to its author; the parent
// post's counter moves in the same atomic store write
func (s *CommentService) DeleteComment(ctx context.Context, commentID, postID string, principal models.Principal) error {
	existing, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !principal.OwnsComment(existing) {
		return ErrNotAuthor
	}

	if err := s.comments.DeleteComment(ctx, commentID, postID); err != nil {
		return err
	}

	s.patchCache(postID, func(comments []models.Comment) []models.Comment {
		out := comments[:0]
		for _, c := range comments {
			if c.ID != commentID {
				out = append(out, c)
			}
		}
		return out
	})
	return nil
}

// ListComments returns the post's comments newest first, fetching from the
// store once and serving the cached sequence on later calls
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	s.mu.Lock()
	if cached, ok := s.cache[postID]; ok {
		out := make([]models.Comment, len(cached))
		copy(out, cached)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[postID] = comments
	out := make([]models.Comment, len(comments))
	copy(out, comments)
	s.mu.Unlock()
	return out, nil
}

// Invalidate drops the cached sequence for a post so the next List refetches
func (s *CommentService) Invalidate(postID string) {
	s.mu.Lock()
	delete(s.cache, postID)
	s.mu.Unlock()
}

func (s *CommentService) patchCache(postID string, fn func([]models.Comment) []models.Comment) {
	s.mu.Lock()
	if cached, ok := s.cache[postID]; ok {
		s.cache[postID] = fn(cached)
	}
	s.mu.Unlock()
}
