package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// MongoLikeRepository implements LikeRepository for MongoDB using session
// transactions for the membership/counter batch
type MongoLikeRepository struct {
	db *mongo.Database
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{db: db}
}

// ToggleLike flips the (postID, userIP) membership and moves the counter in
// a single multi-document transaction
func (r *MongoLikeRepository) ToggleLike(ctx context.Context, postID, userIP string) (bool, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return false, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	likes := r.db.Collection("likes")
	posts := r.db.Collection("posts")
	filter := bson.M{"postId": postID, "userIp": userIP}

	var liked bool
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var existing models.Like
		err := likes.FindOne(sc, filter).Decode(&existing)
		switch {
		case err == mongo.ErrNoDocuments:
			like := &models.Like{
				ID:        primitive.NewObjectID().Hex(),
				PostID:    postID,
				UserIP:    userIP,
				CreatedAt: time.Now().UnixMilli(),
			}
			if _, err := likes.InsertOne(sc, like); err != nil {
				return nil, err
			}
			liked = true
			_, err = posts.UpdateOne(sc, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"likes": 1}})
			return nil, err
		case err != nil:
			return nil, err
		default:
			if _, err := likes.DeleteOne(sc, bson.M{"_id": existing.ID}); err != nil {
				return nil, err
			}
			liked = false
			_, err = posts.UpdateOne(sc, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"likes": -1}})
			return nil, err
		}
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like on post %s: %w", postID, err)
	}
	return liked, nil
}

// HasUserLikedPost checks if a membership record exists for the pair
func (r *MongoLikeRepository) HasUserLikedPost(ctx context.Context, postID, userIP string) (bool, error) {
	count, err := r.db.Collection("likes").CountDocuments(ctx, bson.M{"postId": postID, "userIp": userIP})
	if err != nil {
		return false, fmt.Errorf("failed to query like for post %s: %w", postID, err)
	}
	return count > 0, nil
}
