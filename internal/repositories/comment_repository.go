package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// CommentRepository defines the interface for comment ledger operations.
// Create and delete move the parent post's comments counter in the same
// atomic store write as the comment record.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	// GetCommentsByPostID returns the post's comments in descending
	// createdAt order.
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id, content string) error
	DeleteComment(ctx context.Context, id, postID string) error
}

// FirestoreCommentRepository implements CommentRepository for Firestore
type FirestoreCommentRepository struct {
	client *firestore.Client
}

// NewFirestoreCommentRepository creates a new FirestoreCommentRepository
func NewFirestoreCommentRepository(client *firestore.Client) *FirestoreCommentRepository {
	return &FirestoreCommentRepository{client: client}
}

func (r *FirestoreCommentRepository) comments() *firestore.CollectionRef {
	return r.client.Collection("comments")
}

// CreateComment writes the comment and increments the parent post's counter
// in one transaction, assigning the comment's id on success
func (r *FirestoreCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	ref := r.comments().NewDoc()
	postRef := r.client.Collection("posts").Doc(comment.PostID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(postRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Create(ref, comment); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "comments", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create comment on post %s: %w", comment.PostID, err)
	}
	comment.ID = ref.ID
	return nil
}

// GetCommentByID retrieves a comment by id
func (r *FirestoreCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	snap, err := r.comments().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment %s: %w", id, err)
	}
	var comment models.Comment
	if err := snap.DataTo(&comment); err != nil {
		return nil, fmt.Errorf("failed to decode comment %s: %w", id, err)
	}
	comment.ID = snap.Ref.ID
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a post, newest first
func (r *FirestoreCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	query := r.comments().
		Where("postId", "==", postID).
		OrderBy("createdAt", firestore.Desc)

	var comments []models.Comment
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list comments for post %s: %w", postID, err)
		}
		var comment models.Comment
		if err := snap.DataTo(&comment); err != nil {
			return nil, fmt.Errorf("failed to decode comment %s: %w", snap.Ref.ID, err)
		}
		comment.ID = snap.Ref.ID
		comments = append(comments, comment)
	}
	return comments, nil
}

// UpdateComment rewrites a comment's content in place
func (r *FirestoreCommentRepository) UpdateComment(ctx context.Context, id, content string) error {
	_, err := r.comments().Doc(id).Update(ctx, []firestore.Update{
		{Path: "content", Value: content},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update comment %s: %w", id, err)
	}
	return nil
}

// DeleteComment deletes the comment and decrements the parent post's counter
// in one transaction
func (r *FirestoreCommentRepository) DeleteComment(ctx context.Context, id, postID string) error {
	ref := r.comments().Doc(id)
	postRef := r.client.Collection("posts").Doc(postID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		return tx.Update(postRef, []firestore.Update{
			{Path: "comments", Value: firestore.Increment(-1)},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	return nil
}
