package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// MongoCommentRepository implements CommentRepository for MongoDB using
// session transactions for the record/counter batches
type MongoCommentRepository struct {
	db *mongo.Database
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{db: db}
}

// CreateComment inserts the comment and increments the parent post's counter
// in one transaction, assigning the comment's id on success
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	comments := r.db.Collection("comments")
	posts := r.db.Collection("posts")
	id := primitive.NewObjectID().Hex()

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := posts.FindOne(sc, bson.M{"_id": comment.PostID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrNotFound
			}
			return nil, err
		}
		stored := *comment
		stored.ID = id
		if _, err := comments.InsertOne(sc, &stored); err != nil {
			return nil, err
		}
		_, err := posts.UpdateOne(sc, bson.M{"_id": comment.PostID}, bson.M{"$inc": bson.M{"comments": 1}})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create comment on post %s: %w", comment.PostID, err)
	}
	comment.ID = id
	return nil
}

// GetCommentByID retrieves a comment by id from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Collection("comments").FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment %s: %w", id, err)
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a post, newest first
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.db.Collection("comments").Find(ctx, bson.M{"postId": postID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for post %s: %w", postID, err)
	}
	defer cur.Close(ctx)

	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments for post %s: %w", postID, err)
	}
	return comments, nil
}

// UpdateComment rewrites a comment's content in place
func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id, content string) error {
	res, err := r.db.Collection("comments").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content}},
	)
	if err != nil {
		return fmt.Errorf("failed to update comment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteComment removes the comment and decrements the parent post's counter
// in one transaction
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id, postID string) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	comments := r.db.Collection("comments")
	posts := r.db.Collection("posts")

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := comments.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, ErrNotFound
		}
		_, err = posts.UpdateOne(sc, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"comments": -1}})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	return nil
}
