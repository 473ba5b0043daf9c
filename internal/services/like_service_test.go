package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yeonjae-dev/pizzaria-sns/models"
	"github.com/yeonjae-dev/pizzaria-sns/validators"
)

func newLikeFixture(t *testing.T) (*LikeService, *memStore, *models.Post) {
	t.Helper()
	store := newMemStore()
	posts := &fakePostRepo{store: store}
	postSvc := NewPostService(posts, &fakeBlobStore{}, validators.NewValidator(), zap.NewNop())
	post, err := postSvc.CreatePost(context.Background(), models.CreatePostRequest{
		Content:  "toggle me",
		Nickname: "gio",
	}, authorA)
	require.NoError(t, err)
	return NewLikeService(&fakeLikeRepo{store: store}, zap.NewNop()), store, post
}

func TestToggleLikePairIsIdempotent(t *testing.T) {
	svc, store, post := newLikeFixture(t)
	ctx := context.Background()

	liked, err := svc.ToggleLike(ctx, post.ID, authorA)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, store.posts[post.ID].Likes)
	assert.Equal(t, 1, store.likeCount(post.ID))

	liked, err = svc.ToggleLike(ctx, post.ID, authorA)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.EqualValues(t, 0, store.posts[post.ID].Likes)
	assert.Equal(t, 0, store.likeCount(post.ID), "toggle pair must return to the original state")
}

func TestAtMostOneLikePerPrincipal(t *testing.T) {
	svc, store, post := newLikeFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ToggleLike(ctx, post.ID, authorA)
		require.NoError(t, err)
		_, err = svc.ToggleLike(ctx, post.ID, authorA)
		require.NoError(t, err)
		_, err = svc.ToggleLike(ctx, post.ID, authorA)
		require.NoError(t, err)
		// settled state after an odd number of toggles: exactly one record
		assert.Equal(t, 1, store.likeCount(post.ID))
		assert.EqualValues(t, 1, store.posts[post.ID].Likes)
		_, err = svc.ToggleLike(ctx, post.ID, authorA)
		require.NoError(t, err)
	}
}

func TestLikesFromDistinctPrincipalsAccumulate(t *testing.T) {
	svc, store, post := newLikeFixture(t)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, post.ID, authorA)
	require.NoError(t, err)
	_, err = svc.ToggleLike(ctx, post.ID, authorB)
	require.NoError(t, err)

	assert.EqualValues(t, 2, store.posts[post.ID].Likes)
	assert.Equal(t, 2, store.likeCount(post.ID))

	statusA, err := svc.LikeStatus(ctx, post.ID, authorA)
	require.NoError(t, err)
	assert.True(t, statusA.IsLiked)
}

func TestToggleLikeFailureLeavesCountersUntouched(t *testing.T) {
	svc, store, post := newLikeFixture(t)
	store.failWith = errors.New("store down")

	_, err := svc.ToggleLike(context.Background(), post.ID, authorA)
	require.Error(t, err)
	assert.EqualValues(t, 0, store.posts[post.ID].Likes)
	assert.Equal(t, 0, store.likeCount(post.ID))
}

// counter always matches the membership records at settled states
func TestLikeCounterMatchesLedger(t *testing.T) {
	svc, store, post := newLikeFixture(t)
	ctx := context.Background()

	principals := []models.Principal{
		authorA,
		authorB,
		{AccountID: "acct-c", IPAddress: "203.0.113.30"},
	}
	for i, p := range principals {
		for j := 0; j <= i; j++ {
			_, err := svc.ToggleLike(ctx, post.ID, p)
			require.NoError(t, err)
		}
	}
	assert.EqualValues(t, store.likeCount(post.ID), store.posts[post.ID].Likes)
}
