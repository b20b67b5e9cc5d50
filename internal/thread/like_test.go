package thread

import (
	"context"
	"errors"
	"testing"

	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_ToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("Optimistic change is visible before the server answers and rolled back on failure", func(t *testing.T) {
		called := make(chan struct{})
		release := make(chan struct{})

		store := mocks.NewMockCommentStorage()
		store.LikeCommentFunc = func(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
			close(called)
			<-release
			return nil, errors.New("network down")
		}
		th := New(testPostID, store, loggedIn(t, "1"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 5)})

		done := make(chan error, 1)
		go func() { done <- th.ToggleLike(ctx, "a") }()
		waitSignal(t, called)

		assert.Equal(t, LikeState{Count: 6, Liked: true}, mustNode(t, th, "a").Like)

		close(release)
		err := <-done
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Contains(t, err.Error(), "network down")
		assert.Equal(t, LikeState{Count: 5, Liked: false}, mustNode(t, th, "a").Like)
	})

	t.Run("Success reconciles with server state", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		store.LikeCommentFunc = func(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
			return newComment("a", "2", "", 10, "1", "5"), nil
		}
		th := New(testPostID, store, loggedIn(t, "1"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 5)})

		require.NoError(t, th.ToggleLike(ctx, "a"))

		n := mustNode(t, th, "a")
		assert.Equal(t, LikeState{Count: 10, Liked: true}, n.Like)
		assert.Equal(t, 10, n.Comment.LikeCount)
		assert.Equal(t, []string{"1", "5"}, n.Comment.LikedBy)
	})

	t.Run("Unlike rolls back to liked", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		store.LikeCommentFunc = func(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
			return nil, errors.New("comment deleted")
		}
		th := New(testPostID, store, loggedIn(t, "1"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 1, "1")})

		assert.ErrorIs(t, th.ToggleLike(ctx, "a"), ErrNetwork)
		assert.Equal(t, LikeState{Count: 1, Liked: true}, mustNode(t, th, "a").Like)
	})

	t.Run("Unauthenticated viewer cannot like", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, anonymous())
		th.Reset([]*comment.Comment{newComment("a", "2", "", 5)})

		err := th.ToggleLike(ctx, "a")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Equal(t, 0, store.TotalCalls())
		assert.Equal(t, LikeState{Count: 5, Liked: false}, mustNode(t, th, "a").Like)
	})

	t.Run("Second toggle while pending is rejected", func(t *testing.T) {
		called := make(chan struct{})
		release := make(chan struct{})

		store := mocks.NewMockCommentStorage()
		store.LikeCommentFunc = func(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
			close(called)
			<-release
			return newComment("a", "2", "", 6, "1"), nil
		}
		th := New(testPostID, store, loggedIn(t, "1"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 5)})

		done := make(chan error, 1)
		go func() { done <- th.ToggleLike(ctx, "a") }()
		waitSignal(t, called)

		assert.ErrorIs(t, th.ToggleLike(ctx, "a"), ErrLikePending)
		assert.Equal(t, LikeState{Count: 6, Liked: true}, mustNode(t, th, "a").Like)

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, 1, store.Calls("LikeComment"))
	})

	t.Run("Unknown comment", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, loggedIn(t, "1"))

		assert.ErrorIs(t, th.ToggleLike(ctx, "missing"), ErrNotFound)
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Failure on one node leaves others untouched", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		store.LikeCommentFunc = func(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
			if commentID == "a" {
				return nil, errors.New("boom")
			}
			return newComment(commentID, "2", "", 1, "1"), nil
		}
		th := New(testPostID, store, loggedIn(t, "1"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0), newComment("b", "2", "", 0)})

		require.NoError(t, th.ToggleLike(ctx, "b"))
		assert.Error(t, th.ToggleLike(ctx, "a"))

		assert.Equal(t, LikeState{Count: 0, Liked: false}, mustNode(t, th, "a").Like)
		assert.Equal(t, LikeState{Count: 1, Liked: true}, mustNode(t, th, "b").Like)
	})
}
