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

type hookCounter struct {
	added, updated, deleted int
}

func (h *hookCounter) hooks() Hooks {
	return Hooks{
		OnCommentAdded:   func(ctx context.Context) { h.added++ },
		OnCommentUpdated: func(ctx context.Context) { h.updated++ },
		OnCommentDeleted: func(ctx context.Context) { h.deleted++ },
	}
}

func answer(ok bool) (*int, Confirmer) {
	asked := new(int)
	return asked, ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		*asked++
		return ok, nil
	})
}

func TestThread_CreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty or whitespace content fails without calls", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, loggedIn(t, "1"))

		for _, content := range []string{"", "   ", "\n\t"} {
			_, err := th.CreateComment(ctx, content, "")
			assert.ErrorIs(t, err, ErrValidation)
		}
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Anonymous user cannot comment", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, anonymous())

		_, err := th.CreateComment(ctx, "hello", "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Success fires refresh and does not insert locally", func(t *testing.T) {
		var got struct{ postID, content, parentID string }
		store := mocks.NewMockCommentStorage()
		store.SubmitCommentFunc = func(ctx context.Context, postID, content, parentID string) (*comment.Comment, error) {
			got.postID, got.content, got.parentID = postID, content, parentID
			return newComment("new", "1", parentID, 0), nil
		}
		hooks := &hookCounter{}
		th := New(testPostID, store, loggedIn(t, "1"), WithHooks(hooks.hooks()))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		created, err := th.CreateComment(ctx, "  a reply  ", "a")
		require.NoError(t, err)
		assert.Equal(t, "new", created.ID)
		assert.Equal(t, testPostID, got.postID)
		assert.Equal(t, "a reply", got.content)
		assert.Equal(t, "a", got.parentID)

		assert.Equal(t, 1, hooks.added)
		assert.Equal(t, 1, th.Total())
		assert.False(t, mustNode(t, th, "a").Submitting)
	})

	t.Run("Reply to unknown parent", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, loggedIn(t, "1"))

		_, err := th.CreateComment(ctx, "hi", "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Network failure is reported distinctly", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		store.SubmitCommentFunc = func(ctx context.Context, postID, content, parentID string) (*comment.Comment, error) {
			return nil, comment.ErrCommentsDisabled
		}
		hooks := &hookCounter{}
		th := New(testPostID, store, loggedIn(t, "1"), WithHooks(hooks.hooks()))

		_, err := th.CreateComment(ctx, "hello", "")
		assert.ErrorIs(t, err, ErrNetwork)
		assert.ErrorIs(t, err, comment.ErrCommentsDisabled)
		assert.NotErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrUnauthorized)

		var netErr *NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.Equal(t, "add comment", netErr.Op)
		assert.Equal(t, 0, hooks.added)
	})
}

func TestThread_UpdateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Non-author is rejected and content unchanged", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, loggedIn(t, "1"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		_, err := th.UpdateComment(ctx, "a", "hijacked")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, 0, store.TotalCalls())
		assert.Equal(t, "comment a", mustNode(t, th, "a").Comment.Content)
	})

	t.Run("Anonymous user", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, anonymous())
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		_, err := th.UpdateComment(ctx, "a", "text")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("Author with empty content", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, loggedIn(t, "2"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		_, err := th.UpdateComment(ctx, "a", "  ")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Author updates content", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		store.EditCommentFunc = func(ctx context.Context, postID, commentID, content string) (*comment.Comment, error) {
			c := newComment(commentID, "2", "", 0)
			c.Content = content
			return c, nil
		}
		hooks := &hookCounter{}
		th := New(testPostID, store, loggedIn(t, "2"), WithHooks(hooks.hooks()))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})
		require.NoError(t, th.SetEditing("a", true))

		updated, err := th.UpdateComment(ctx, "a", "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)

		n := mustNode(t, th, "a")
		assert.Equal(t, "edited", n.Comment.Content)
		assert.False(t, n.Editing)
		assert.False(t, n.Submitting)
		assert.Equal(t, 1, hooks.updated)
	})

	t.Run("Server rejection keeps old content", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		store.EditCommentFunc = func(ctx context.Context, postID, commentID, content string) (*comment.Comment, error) {
			return nil, comment.ErrNotAuthor
		}
		hooks := &hookCounter{}
		th := New(testPostID, store, loggedIn(t, "2"), WithHooks(hooks.hooks()))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		_, err := th.UpdateComment(ctx, "a", "edited")
		assert.ErrorIs(t, err, ErrNetwork)
		assert.ErrorIs(t, err, comment.ErrNotAuthor)
		assert.Equal(t, "comment a", mustNode(t, th, "a").Comment.Content)
		assert.Equal(t, 0, hooks.updated)
	})
}

func TestThread_DeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Declined confirmation makes no call", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		asked, confirm := answer(false)
		th := New(testPostID, store, loggedIn(t, "2"), WithConfirmer(confirm))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		deleted, err := th.DeleteComment(ctx, "a")
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 1, *asked)
		assert.Equal(t, 0, store.Calls("RemoveComment"))
	})

	t.Run("Confirmed delete by author", func(t *testing.T) {
		var removed string
		store := mocks.NewMockCommentStorage()
		store.RemoveCommentFunc = func(ctx context.Context, postID, commentID string) error {
			removed = commentID
			return nil
		}
		hooks := &hookCounter{}
		_, confirm := answer(true)
		th := New(testPostID, store, loggedIn(t, "2"), WithConfirmer(confirm), WithHooks(hooks.hooks()))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		deleted, err := th.DeleteComment(ctx, "a")
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, "a", removed)
		assert.Equal(t, 1, hooks.deleted)
	})

	t.Run("Non-author is rejected before confirmation", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		asked, confirm := answer(true)
		th := New(testPostID, store, loggedIn(t, "1"), WithConfirmer(confirm))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		_, err := th.DeleteComment(ctx, "a")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, 0, *asked)
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Without a confirmer nothing is deleted", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		th := New(testPostID, store, loggedIn(t, "2"))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		deleted, err := th.DeleteComment(ctx, "a")
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Confirmer error is returned", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		confirm := ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
			return false, errors.New("stdin closed")
		})
		th := New(testPostID, store, loggedIn(t, "2"), WithConfirmer(confirm))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		_, err := th.DeleteComment(ctx, "a")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNetwork)
		assert.Equal(t, 0, store.TotalCalls())
	})

	t.Run("Network failure", func(t *testing.T) {
		store := mocks.NewMockCommentStorage()
		store.RemoveCommentFunc = func(ctx context.Context, postID, commentID string) error {
			return errors.New("timeout")
		}
		hooks := &hookCounter{}
		_, confirm := answer(true)
		th := New(testPostID, store, loggedIn(t, "2"), WithConfirmer(confirm), WithHooks(hooks.hooks()))
		th.Reset([]*comment.Comment{newComment("a", "2", "", 0)})

		deleted, err := th.DeleteComment(ctx, "a")
		assert.False(t, deleted)
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Equal(t, 0, hooks.deleted)
		assert.False(t, mustNode(t, th, "a").Submitting)
	})
}
