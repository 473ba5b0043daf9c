package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/yeonjae-dev/pizzaria-sns/internal/repositories"
	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// LikeService drives the per-(post, principal) like state machine over the
// like ledger
type LikeService struct {
	likes  repositories.LikeRepository
	logger *zap.Logger
}

// NewLikeService creates a new LikeService
func NewLikeService(likes repositories.LikeRepository, logger *zap.Logger) *LikeService {
	return &LikeService{likes: likes, logger: logger}
}

// ToggleLike flips the principal's like on a post. The membership record and
// the post's counter move together atomically in the store; the returned
// flag is the settled liked state.
func (s *LikeService) ToggleLike(ctx context.Context, postID string, principal models.Principal) (bool, error) {
	liked, err := s.likes.ToggleLike(ctx, postID, principal.IPAddress)
	if err != nil {
		s.logger.Error("like toggle failed", zap.String("postId", postID), zap.Error(err))
		return false, err
	}
	return liked, nil
}

// LikeStatus reports whether the principal currently likes the post
func (s *LikeService) LikeStatus(ctx context.Context, postID string, principal models.Principal) (models.LikeStatus, error) {
	liked, err := s.likes.HasUserLikedPost(ctx, postID, principal.IPAddress)
	if err != nil {
		return models.LikeStatus{}, err
	}
	return models.LikeStatus{PostID: postID, IsLiked: liked}, nil
}
