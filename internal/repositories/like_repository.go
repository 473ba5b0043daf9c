package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// LikeRepository defines the interface for like ledger operations. The
// membership record and the post's likes counter always move together in
// one atomic store write.
type LikeRepository interface {
	// ToggleLike flips the (postID, userIP) membership: inserts the Like and
	// increments the counter when absent, deletes it and decrements when
	// present. Returns the resulting liked state.
	ToggleLike(ctx context.Context, postID, userIP string) (bool, error)
	HasUserLikedPost(ctx context.Context, postID, userIP string) (bool, error)
}

// FirestoreLikeRepository implements LikeRepository for Firestore
type FirestoreLikeRepository struct {
	client *firestore.Client
}

// NewFirestoreLikeRepository creates a new FirestoreLikeRepository
func NewFirestoreLikeRepository(client *firestore.Client) *FirestoreLikeRepository {
	return &FirestoreLikeRepository{client: client}
}

// ToggleLike runs the membership check, the like insert/delete and the
// counter mutation in a single transaction, so no reader observes a counter
// without its membership record.
func (r *FirestoreLikeRepository) ToggleLike(ctx context.Context, postID, userIP string) (bool, error) {
	likes := r.client.Collection("likes")
	postRef := r.client.Collection("posts").Doc(postID)

	var liked bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := likes.Where("postId", "==", postID).Where("userIp", "==", userIP).Limit(1)
		existing, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}

		if len(existing) == 0 {
			like := &models.Like{
				PostID:    postID,
				UserIP:    userIP,
				CreatedAt: time.Now().UnixMilli(),
			}
			if err := tx.Create(likes.NewDoc(), like); err != nil {
				return err
			}
			liked = true
			return tx.Update(postRef, []firestore.Update{
				{Path: "likes", Value: firestore.Increment(1)},
			})
		}

		if err := tx.Delete(existing[0].Ref); err != nil {
			return err
		}
		liked = false
		return tx.Update(postRef, []firestore.Update{
			{Path: "likes", Value: firestore.Increment(-1)},
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like on post %s: %w", postID, err)
	}
	return liked, nil
}

// HasUserLikedPost checks whether a membership record exists for the pair
func (r *FirestoreLikeRepository) HasUserLikedPost(ctx context.Context, postID, userIP string) (bool, error) {
	query := r.client.Collection("likes").
		Where("postId", "==", postID).
		Where("userIp", "==", userIP).
		Limit(1)
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to query like for post %s: %w", postID, err)
	}
	return len(docs) > 0, nil
}
