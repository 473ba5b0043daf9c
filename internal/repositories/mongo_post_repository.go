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

// MongoPostRepository implements PostRepository for MongoDB, the alternate
// document-store backend
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB and assigns its id
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID().Hex()
	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		post.ID = ""
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post by id from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	return &post, nil
}

// ListPosts retrieves one descending-createdAt page of posts from MongoDB
func (r *MongoPostRepository) ListPosts(ctx context.Context, cursor *models.FeedCursor, limit int) ([]models.Post, []PostRepair, error) {
	filter := bson.M{}
	if cursor != nil {
		filter = bson.M{"$or": bson.A{
			bson.M{"createdAt": bson.M{"$lt": cursor.CreatedAt}},
			bson.M{"createdAt": cursor.CreatedAt, "_id": bson.M{"$lt": cursor.LastID}},
		}}
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cur.Close(ctx)

	var (
		posts   []models.Post
		repairs []PostRepair
	)
	for cur.Next(ctx) {
		raw := cur.Current

		var post models.Post
		if err := bson.Unmarshal(raw, &post); err != nil {
			return nil, nil, fmt.Errorf("failed to decode post: %w", err)
		}

		repair := PostRepair{ID: post.ID}
		if _, err := raw.LookupErr("authorIp"); err != nil {
			post.AuthorIP = models.LegacyAuthor
			repair.SetAuthorIP = true
		}
		if _, err := raw.LookupErr("comments"); err != nil {
			post.Comments = 0
			repair.SetComments = true
		}
		posts = append(posts, post)
		if repair.SetAuthorIP || repair.SetComments {
			repairs = append(repairs, repair)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, repairs, nil
}

// UpdatePost applies a content/image update as a single record write
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, update PostUpdate) error {
	set := bson.M{"content": update.Content}
	unset := bson.M{}
	switch update.Image {
	case ImageClear:
		unset["imageUrl"] = ""
	case ImageSet:
		set["imageUrl"] = update.ImageURL
	}

	changes := bson.M{"$set": set}
	if len(unset) > 0 {
		changes["$unset"] = unset
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, changes)
	if err != nil {
		return fmt.Errorf("failed to update post %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost deletes a post by id from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RepairPosts backfills legacy records with unordered best-effort writes
func (r *MongoPostRepository) RepairPosts(ctx context.Context, repairs []PostRepair) error {
	if len(repairs) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(repairs))
	for _, repair := range repairs {
		set := bson.M{}
		if repair.SetAuthorIP {
			set["authorIp"] = models.LegacyAuthor
		}
		if repair.SetComments {
			set["comments"] = int64(0)
		}
		if len(set) == 0 {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": repair.ID}).
			SetUpdate(bson.M{"$set": set}))
	}
	if len(writes) == 0 {
		return nil
	}
	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to repair posts: %w", err)
	}
	return nil
}
