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

// ImageUpdate selects what an UpdatePost does with the stored image URL
type ImageUpdate int

const (
	ImageUnchanged ImageUpdate = iota
	ImageClear
	ImageSet
)

// PostUpdate is a single-record post update: content plus an optional image
// URL change, written together.
type PostUpdate struct {
	Content  string
	Image    ImageUpdate
	ImageURL string
}

// PostRepair is a read-repair correction for a legacy post record
type PostRepair struct {
	ID          string
	SetAuthorIP bool // assign the legacy sentinel
	SetComments bool // backfill the missing counter to 0
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns up to limit posts in descending createdAt order,
	// strictly after the cursor when one is given, plus the read-repair
	// corrections for any legacy records in the page.
	ListPosts(ctx context.Context, cursor *models.FeedCursor, limit int) ([]models.Post, []PostRepair, error)
	UpdatePost(ctx context.Context, id string, update PostUpdate) error
	DeletePost(ctx context.Context, id string) error
	// RepairPosts writes legacy-record corrections back best-effort; callers
	// log and ignore failures.
	RepairPosts(ctx context.Context, repairs []PostRepair) error
}

// FirestorePostRepository implements PostRepository for Firestore
type FirestorePostRepository struct {
	client *firestore.Client
}

// NewFirestorePostRepository creates a new FirestorePostRepository
func NewFirestorePostRepository(client *firestore.Client) *FirestorePostRepository {
	return &FirestorePostRepository{client: client}
}

func (r *FirestorePostRepository) posts() *firestore.CollectionRef {
	return r.client.Collection("posts")
}

// CreatePost creates a new post record and assigns its id
func (r *FirestorePostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	ref := r.posts().NewDoc()
	if _, err := ref.Create(ctx, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	post.ID = ref.ID
	return nil
}

// GetPostByID retrieves a post by id
func (r *FirestorePostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	snap, err := r.posts().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	post, _, err := decodePost(snap)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts retrieves one descending-createdAt page of posts
func (r *FirestorePostRepository) ListPosts(ctx context.Context, cursor *models.FeedCursor, limit int) ([]models.Post, []PostRepair, error) {
	q := r.posts().
		OrderBy("createdAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc).
		Limit(limit)
	if cursor != nil {
		q = q.StartAfter(cursor.CreatedAt, cursor.LastID)
	}

	var (
		posts   []models.Post
		repairs []PostRepair
	)
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list posts: %w", err)
		}
		post, repair, err := decodePost(snap)
		if err != nil {
			return nil, nil, err
		}
		posts = append(posts, *post)
		if repair != nil {
			repairs = append(repairs, *repair)
		}
	}
	return posts, repairs, nil
}

// UpdatePost applies a content/image update as a single record write
func (r *FirestorePostRepository) UpdatePost(ctx context.Context, id string, update PostUpdate) error {
	updates := []firestore.Update{{Path: "content", Value: update.Content}}
	switch update.Image {
	case ImageClear:
		updates = append(updates, firestore.Update{Path: "imageUrl", Value: firestore.Delete})
	case ImageSet:
		updates = append(updates, firestore.Update{Path: "imageUrl", Value: update.ImageURL})
	}

	if _, err := r.posts().Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update post %s: %w", id, err)
	}
	return nil
}

// DeletePost deletes a post record by id
func (r *FirestorePostRepository) DeletePost(ctx context.Context, id string) error {
	if _, err := r.posts().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	return nil
}

// RepairPosts backfills legacy records through a BulkWriter; the writes are
// independent and best-effort.
func (r *FirestorePostRepository) RepairPosts(ctx context.Context, repairs []PostRepair) error {
	if len(repairs) == 0 {
		return nil
	}
	bw := r.client.BulkWriter(ctx)
	defer bw.End()
	for _, repair := range repairs {
		var updates []firestore.Update
		if repair.SetAuthorIP {
			updates = append(updates, firestore.Update{Path: "authorIp", Value: models.LegacyAuthor})
		}
		if repair.SetComments {
			updates = append(updates, firestore.Update{Path: "comments", Value: int64(0)})
		}
		if len(updates) == 0 {
			continue
		}
		if _, err := bw.Update(r.posts().Doc(repair.ID), updates); err != nil {
			return fmt.Errorf("failed to enqueue repair for post %s: %w", repair.ID, err)
		}
	}
	return nil
}

// decodePost maps a document snapshot onto a Post and reports the repair a
// legacy record needs: a missing authorIp gets the sentinel, a missing
// comments counter is treated as 0.
func decodePost(snap *firestore.DocumentSnapshot) (*models.Post, *PostRepair, error) {
	var post models.Post
	if err := snap.DataTo(&post); err != nil {
		return nil, nil, fmt.Errorf("failed to decode post %s: %w", snap.Ref.ID, err)
	}
	post.ID = snap.Ref.ID

	data := snap.Data()
	repair := PostRepair{ID: snap.Ref.ID}
	if _, ok := data["authorIp"]; !ok {
		post.AuthorIP = models.LegacyAuthor
		repair.SetAuthorIP = true
	}
	if _, ok := data["comments"]; !ok {
		post.Comments = 0
		repair.SetComments = true
	}
	if repair.SetAuthorIP || repair.SetComments {
		return &post, &repair, nil
	}
	return &post, nil, nil
}
