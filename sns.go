// Package sns is the core of an anonymous social-feed application: posts,
// likes and comments over a managed document store and blob store, with an
// anonymous per-session principal attached to every write. The presentation
// layer consumes the Client; rendering, scroll handling and theming live
// there, not here.
package sns

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/yeonjae-dev/pizzaria-sns/internal/blob"
	"github.com/yeonjae-dev/pizzaria-sns/internal/feed"
	"github.com/yeonjae-dev/pizzaria-sns/internal/identity"
	"github.com/yeonjae-dev/pizzaria-sns/internal/repositories"
	"github.com/yeonjae-dev/pizzaria-sns/internal/services"
	"github.com/yeonjae-dev/pizzaria-sns/models"
	"github.com/yeonjae-dev/pizzaria-sns/pkg/config"
	"github.com/yeonjae-dev/pizzaria-sns/pkg/firebase"
	"github.com/yeonjae-dev/pizzaria-sns/validators"
)

// Operation outcomes a caller can discriminate with errors.Is
var (
	ErrValidation  = services.ErrValidation
	ErrNotAuthor   = services.ErrNotAuthor
	ErrHasComments = services.ErrHasComments
	ErrNotFound    = repositories.ErrNotFound
)

// Client is the session-scoped entry point. It resolves the anonymous
// principal on first use, pages the feed, and routes every mutation through
// the ledgers with optimistic local updates and rollback on failure.
type Client struct {
	cfg      *config.Config
	logger   *zap.Logger
	firebase *firebase.App
	mongo    *mongo.Client

	resolver *identity.Resolver
	posts    *services.PostService
	likes    *services.LikeService
	comments *services.CommentService
	feed     *feed.Paginator
}

// New wires a Client from configuration: Firebase (identity, blob store and
// the default Firestore backend) plus MongoDB when the alternate backend is
// selected.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, logger: logger, firebase: fb}

	var (
		postRepo    repositories.PostRepository
		likeRepo    repositories.LikeRepository
		commentRepo repositories.CommentRepository
	)
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		postRepo = repositories.NewFirestorePostRepository(fb.Firestore)
		likeRepo = repositories.NewFirestoreLikeRepository(fb.Firestore)
		commentRepo = repositories.NewFirestoreCommentRepository(fb.Firestore)
	case config.BackendMongo:
		mongoClient, err := config.InitMongo(cfg.MongoURI)
		if err != nil {
			fb.Close()
			return nil, err
		}
		c.mongo = mongoClient
		db := mongoClient.Database(cfg.MongoDatabase)
		postRepo = repositories.NewMongoPostRepository(db)
		likeRepo = repositories.NewMongoLikeRepository(db)
		commentRepo = repositories.NewMongoCommentRepository(db)
	default:
		fb.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	signer, err := identity.NewIdentityToolkitSigner(ctx, cfg.FirebaseAPIKey)
	if err != nil {
		c.Close()
		return nil, err
	}

	v := validators.NewValidator()
	blobs := blob.NewGCSStore(fb.Bucket, cfg.StorageBucket)

	c.resolver = identity.NewResolver(signer, cfg.IPLookupEndpoints, logger)
	c.posts = services.NewPostService(postRepo, blobs, v, logger)
	c.likes = services.NewLikeService(likeRepo, logger)
	c.comments = services.NewCommentService(commentRepo, v, logger)
	c.feed = feed.NewPaginator(postRepo, cfg.FeedPageSize, logger)
	return c, nil
}

// Close releases the underlying store connections
func (c *Client) Close() {
	if c.firebase != nil {
		if err := c.firebase.Close(); err != nil {
			c.logger.Warn("firestore close failed", zap.Error(err))
		}
	}
	if c.mongo != nil {
		config.CloseMongo(c.mongo)
	}
}

// Resolve returns the session principal, establishing it on first call
func (c *Client) Resolve(ctx context.Context) (models.Principal, error) {
	return c.resolver.Resolve(ctx)
}

// CreatePost writes a new post and announces it on the new-post bus so the
// feed unshifts it without re-querying the store
func (c *Client) CreatePost(ctx context.Context, req models.CreatePostRequest) (*models.Post, error) {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	post, err := c.posts.CreatePost(ctx, req, principal)
	if err != nil {
		return nil, err
	}
	c.feed.Bus().Publish(*post)
	return post, nil
}

// EditPost updates a post's content and/or image, author only
func (c *Client) EditPost(ctx context.Context, postID string, req models.EditPostRequest) (*models.Post, error) {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	post, err := c.posts.EditPost(ctx, postID, req, principal)
	if err != nil {
		return nil, err
	}
	c.feed.ApplyPostUpdate(*post)
	return post, nil
}

// DeletePost removes a post; refused unless the caller is the author and the
// post has no comments
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := c.posts.DeletePost(ctx, postID, principal); err != nil {
		return err
	}
	c.feed.RemovePost(postID)
	return nil
}

// ToggleLike flips the session's like on a post. The displayed state is
// patched optimistically before the write and rolled back symmetrically if
// the write fails.
func (c *Client) ToggleLike(ctx context.Context, postID string) (bool, error) {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return false, err
	}

	snap := c.feed.ToggleLikeLocal(postID)
	liked, err := c.likes.ToggleLike(ctx, postID, principal)
	if err != nil {
		c.feed.RestoreLike(snap)
		return snap.Liked, err
	}
	return liked, nil
}

// LikeStatus reports the store's settled like state for the session
func (c *Client) LikeStatus(ctx context.Context, postID string) (models.LikeStatus, error) {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return models.LikeStatus{}, err
	}
	return c.likes.LikeStatus(ctx, postID, principal)
}

// AddComment appends a comment to a post and patches the displayed counter
func (c *Client) AddComment(ctx context.Context, postID string, req models.CreateCommentRequest) (*models.Comment, error) {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := c.comments.AddComment(ctx, postID, req, principal)
	if err != nil {
		return nil, err
	}
	c.feed.ApplyCommentDelta(postID, 1)
	return comment, nil
}

// EditComment rewrites a comment's content, author only
func (c *Client) EditComment(ctx context.Context, commentID, newContent string) (*models.Comment, error) {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.comments.EditComment(ctx, commentID, newContent, principal)
}

// DeleteComment removes a comment, author only, and patches the counter
func (c *Client) DeleteComment(ctx context.Context, commentID, postID string) error {
	principal, err := c.Resolve(ctx)
	if err != nil {
		return err
	}
	if err := c.comments.DeleteComment(ctx, commentID, postID, principal); err != nil {
		return err
	}
	c.feed.ApplyCommentDelta(postID, -1)
	return nil
}

// ListComments returns a post's comments newest first, cached after the
// first load
func (c *Client) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	return c.comments.ListComments(ctx, postID)
}

// InvalidateComments drops a post's cached comment sequence so the next
// ListComments refetches from the store
func (c *Client) InvalidateComments(postID string) {
	c.comments.Invalidate(postID)
}

// LoadInitial fetches the first feed page
func (c *Client) LoadInitial(ctx context.Context) ([]models.Post, error) {
	return c.feed.LoadInitial(ctx)
}

// LoadMore fetches the next feed page
func (c *Client) LoadMore(ctx context.Context) ([]models.Post, error) {
	return c.feed.LoadMore(ctx)
}

// HasMore reports whether another feed page may exist
func (c *Client) HasMore() bool {
	return c.feed.HasMore()
}

// Posts returns the current local feed projection
func (c *Client) Posts() []models.Post {
	return c.feed.Posts()
}

// IsLiked reports the displayed like state for a post
func (c *Client) IsLiked(postID string) bool {
	return c.feed.IsLiked(postID)
}

// SubscribeNewPosts registers fn for posts created during this session and
// returns a cancel function tied to the subscriber's lifecycle
func (c *Client) SubscribeNewPosts(fn func(models.Post)) (cancel func()) {
	sub := c.feed.Bus().Subscribe(fn)
	return sub.Cancel
}
