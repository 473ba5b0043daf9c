package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/yeonjae-dev/pizzaria-sns/internal/repositories"
	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// memStore backs the fake repositories with one shared state so counter and
// record mutations land together, mirroring the store's atomic batches.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	likes    map[string]*models.Like

	// failWith makes every mutating call fail without touching state
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
		likes:    make(map[string]*models.Like),
	}
}

func (s *memStore) genID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memStore) likeCount(postID string) int {
	n := 0
	for _, l := range s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n
}

func (s *memStore) commentCount(postID string) int {
	n := 0
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

type fakePostRepo struct {
	store    *memStore
	updates  []repositories.PostUpdate
	repaired []repositories.PostRepair
}

func (r *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failWith != nil {
		return r.store.failWith
	}
	post.ID = r.store.genID("post")
	stored := *post
	r.store.posts[post.ID] = &stored
	return nil
}

func (r *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	post, ok := r.store.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *post
	return &out, nil
}

func (r *fakePostRepo) ListPosts(ctx context.Context, cursor *models.FeedCursor, limit int) ([]models.Post, []repositories.PostRepair, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := make([]models.Post, 0, len(r.store.posts))
	for _, p := range r.store.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID > all[j].ID
	})
	var out []models.Post
	for _, p := range all {
		if cursor != nil {
			after := p.CreatedAt < cursor.CreatedAt ||
				(p.CreatedAt == cursor.CreatedAt && p.ID < cursor.LastID)
			if !after {
				continue
			}
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil, nil
}

func (r *fakePostRepo) UpdatePost(ctx context.Context, id string, update repositories.PostUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failWith != nil {
		return r.store.failWith
	}
	post, ok := r.store.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Content = update.Content
	switch update.Image {
	case repositories.ImageClear:
		post.ImageURL = ""
	case repositories.ImageSet:
		post.ImageURL = update.ImageURL
	}
	r.updates = append(r.updates, update)
	return nil
}

func (r *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failWith != nil {
		return r.store.failWith
	}
	if _, ok := r.store.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.posts, id)
	return nil
}

func (r *fakePostRepo) RepairPosts(ctx context.Context, repairs []repositories.PostRepair) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.repaired = append(r.repaired, repairs...)
	return nil
}

type fakeLikeRepo struct {
	store *memStore
}

func (r *fakeLikeRepo) ToggleLike(ctx context.Context, postID, userIP string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failWith != nil {
		return false, r.store.failWith
	}
	post, ok := r.store.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	key := postID + "|" + userIP
	if _, exists := r.store.likes[key]; exists {
		delete(r.store.likes, key)
		post.Likes--
		return false, nil
	}
	r.store.likes[key] = &models.Like{ID: r.store.genID("like"), PostID: postID, UserIP: userIP}
	post.Likes++
	return true, nil
}

func (r *fakeLikeRepo) HasUserLikedPost(ctx context.Context, postID, userIP string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, exists := r.store.likes[postID+"|"+userIP]
	return exists, nil
}

type fakeCommentRepo struct {
	store   *memStore
	fetches int
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failWith != nil {
		return r.store.failWith
	}
	post, ok := r.store.posts[comment.PostID]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.ID = r.store.genID("comment")
	stored := *comment
	r.store.comments[comment.ID] = &stored
	post.Comments++
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	comment, ok := r.store.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *comment
	return &out, nil
}

func (r *fakeCommentRepo) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.fetches++
	var out []models.Comment
	for _, c := range r.store.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r *fakeCommentRepo) UpdateComment(ctx context.Context, id, content string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failWith != nil {
		return r.store.failWith
	}
	comment, ok := r.store.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content = content
	return nil
}

func (r *fakeCommentRepo) DeleteComment(ctx context.Context, id, postID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failWith != nil {
		return r.store.failWith
	}
	if _, ok := r.store.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.store.comments, id)
	if post, ok := r.store.posts[postID]; ok {
		post.Comments--
	}
	return nil
}

// fakeBlobStore records uploads and deletes instead of talking to a bucket
type fakeBlobStore struct {
	mu         sync.Mutex
	uploads    []string
	deleted    []string
	failUpload error
}

func (b *fakeBlobStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload != nil {
		return "", b.failUpload
	}
	url := "https://storage.googleapis.com/test-bucket/posts/" + filename
	b.uploads = append(b.uploads, url)
	return url, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, blobURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, blobURL)
	return nil
}

func testImage(name string) *models.ImageUpload {
	return &models.ImageUpload{
		Filename:    name,
		ContentType: "image/jpeg",
		Reader:      bytes.NewReader([]byte("not-really-a-jpeg")),
	}
}
