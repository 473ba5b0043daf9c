package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yeonjae-dev/pizzaria-sns/internal/repositories"
	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// Paginator pages through posts in descending createdAt order and holds the
// session's local feed projection. The projection is the list the
// presentation layer renders: pagination results so far, union posts created
// this session (delivered through the bus), with optimistic like/comment
// patches applied before the store confirms them.
type Paginator struct {
	repo     repositories.PostRepository
	bus      *Bus
	logger   *zap.Logger
	pageSize int

	mu      sync.Mutex
	posts   []models.Post
	seen    map[string]bool
	liked   map[string]bool
	cursor  *models.FeedCursor
	hasMore bool
}

// NewPaginator creates a Paginator over the post repository. The paginator
// owns the new-post bus; its own subscriber unshifts published posts onto
// the projection.
func NewPaginator(repo repositories.PostRepository, pageSize int, logger *zap.Logger) *Paginator {
	p := &Paginator{
		repo:     repo,
		bus:      NewBus(),
		logger:   logger,
		pageSize: pageSize,
		seen:     make(map[string]bool),
		liked:    make(map[string]bool),
		hasMore:  true,
	}
	p.bus.Subscribe(p.prepend)
	return p
}

// Bus returns the paginator's new-post bus
func (p *Paginator) Bus() *Bus {
	return p.bus
}

// LoadInitial fetches the first page, resetting the projection. Legacy
// records are read-repaired in the returned page and the corrections written
// back best-effort; a failed write-back never blocks display.
func (p *Paginator) LoadInitial(ctx context.Context) ([]models.Post, error) {
	posts, repairs, err := p.repo.ListPosts(ctx, nil, p.pageSize)
	if err != nil {
		return nil, err
	}
	p.writeRepairs(ctx, repairs)

	p.mu.Lock()
	p.posts = nil
	p.seen = make(map[string]bool)
	p.liked = make(map[string]bool)
	p.cursor = nil
	p.appendLocked(posts)
	p.hasMore = len(posts) == p.pageSize
	snapshot := p.snapshotLocked()
	p.mu.Unlock()
	return snapshot, nil
}

// LoadMore fetches the next page strictly after the current cursor and
// appends it to the projection. HasMore stays true while pages come back
// exactly full, an approximation resolved by the next empty fetch.
func (p *Paginator) LoadMore(ctx context.Context) ([]models.Post, error) {
	p.mu.Lock()
	cursor := p.cursor
	hasMore := p.hasMore
	p.mu.Unlock()

	if !hasMore || cursor == nil {
		return p.Posts(), nil
	}

	posts, repairs, err := p.repo.ListPosts(ctx, cursor, p.pageSize)
	if err != nil {
		return nil, err
	}
	p.writeRepairs(ctx, repairs)

	p.mu.Lock()
	p.appendLocked(posts)
	p.hasMore = len(posts) == p.pageSize
	snapshot := p.snapshotLocked()
	p.mu.Unlock()
	return snapshot, nil
}

// HasMore reports whether another page may exist
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Posts returns a copy of the current projection
func (p *Paginator) Posts() []models.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// IsLiked reports the projection's displayed like state for a post
func (p *Paginator) IsLiked(postID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.liked[postID]
}

// LikeSnapshot captures a post's like state before an optimistic toggle so
// a failed write can be rolled back symmetrically.
type LikeSnapshot struct {
	PostID string
	Liked  bool
	Likes  int64
}

// ToggleLikeLocal optimistically flips the displayed like state of a post
// and returns the pre-toggle snapshot for rollback
func (p *Paginator) ToggleLikeLocal(postID string) LikeSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := LikeSnapshot{PostID: postID, Liked: p.liked[postID]}
	for i := range p.posts {
		if p.posts[i].ID == postID {
			snap.Likes = p.posts[i].Likes
			if snap.Liked {
				p.posts[i].Likes--
			} else {
				p.posts[i].Likes++
			}
			break
		}
	}
	p.liked[postID] = !snap.Liked
	return snap
}

// RestoreLike rolls the projection back to a pre-toggle snapshot
func (p *Paginator) RestoreLike(snap LikeSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.liked[snap.PostID] = snap.Liked
	for i := range p.posts {
		if p.posts[i].ID == snap.PostID {
			p.posts[i].Likes = snap.Likes
			break
		}
	}
}

// ApplyCommentDelta patches a post's displayed comment counter
func (p *Paginator) ApplyCommentDelta(postID string, delta int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.posts {
		if p.posts[i].ID == postID {
			p.posts[i].Comments += delta
			if p.posts[i].Comments < 0 {
				p.posts[i].Comments = 0
			}
			break
		}
	}
}

// ApplyPostUpdate patches a post's displayed content and image after a
// confirmed edit
func (p *Paginator) ApplyPostUpdate(post models.Post) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.posts {
		if p.posts[i].ID == post.ID {
			p.posts[i].Content = post.Content
			p.posts[i].ImageURL = post.ImageURL
			break
		}
	}
}

// RemovePost drops a deleted post from the projection
func (p *Paginator) RemovePost(postID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.posts[:0]
	for _, post := range p.posts {
		if post.ID != postID {
			out = append(out, post)
		}
	}
	p.posts = out
	delete(p.seen, postID)
	delete(p.liked, postID)
}

// prepend unshifts a session-created post onto the projection
func (p *Paginator) prepend(post models.Post) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen[post.ID] {
		return
	}
	p.seen[post.ID] = true
	p.posts = append([]models.Post{post}, p.posts...)
}

func (p *Paginator) appendLocked(posts []models.Post) {
	for _, post := range posts {
		if !p.seen[post.ID] {
			p.seen[post.ID] = true
			p.posts = append(p.posts, post)
		}
	}
	if len(posts) > 0 {
		last := posts[len(posts)-1]
		p.cursor = &models.FeedCursor{CreatedAt: last.CreatedAt, LastID: last.ID}
	}
}

func (p *Paginator) snapshotLocked() []models.Post {
	out := make([]models.Post, len(p.posts))
	copy(out, p.posts)
	return out
}

func (p *Paginator) writeRepairs(ctx context.Context, repairs []repositories.PostRepair) {
	if len(repairs) == 0 {
		return
	}
	if err := p.repo.RepairPosts(ctx, repairs); err != nil {
		p.logger.Warn("legacy post backfill failed", zap.Int("records", len(repairs)), zap.Error(err))
	}
}
