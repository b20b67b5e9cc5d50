package page

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/devshare/internal/api"
	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/storage/memory"
	"github.com/VitaminP8/devshare/internal/subscription"
	"github.com/VitaminP8/devshare/internal/thread"
)

const testSecret = "page_test_secret"

type env struct {
	url     string
	manager *subscription.SubscriptionManager
	post    *post.Post
}

func newEnv(t *testing.T) *env {
	t.Helper()
	posts := memory.NewPostMemoryStorage()
	users := memory.NewUserMemoryStorage(testSecret)
	manager := subscription.NewSubscriptionManager()

	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Posts:     posts,
		Users:     users,
		Comments:  memory.NewCommentMemoryStorage(posts, users, manager),
		Events:    manager,
		JWTSecret: testSecret,
	}))
	t.Cleanup(srv.Close)

	e := &env{url: srv.URL, manager: manager}
	author, _ := e.signUp(t, "author")
	p, err := author.CreatePost(context.Background(), "Hello", "first post")
	require.NoError(t, err)
	e.post = p
	return e
}

func (e *env) signUp(t *testing.T, name string) (*api.Client, *auth.Session) {
	t.Helper()
	ctx := context.Background()
	session := auth.NewSession("")
	client := api.NewClient(e.url, session)

	_, err := client.Register(ctx, name, name+"@example.com", "password")
	require.NoError(t, err)
	token, profile, err := client.Login(ctx, name, "password")
	require.NoError(t, err)
	require.NoError(t, session.Login(token, profile))
	return client, session
}

func (e *env) page(t *testing.T, name string, opts ...Option) *PostPage {
	t.Helper()
	client, session := e.signUp(t, name)
	opts = append([]Option{WithPost(e.post)}, opts...)
	p := New(e.post.ID, client, session, opts...)
	require.NoError(t, p.Refresh(context.Background()))
	return p
}

func render(t *testing.T, p *PostPage) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))
	return buf.String()
}

func TestPostPage_Render(t *testing.T) {
	t.Run("Empty thread", func(t *testing.T) {
		e := newEnv(t)
		p := e.page(t, "reader")

		out := render(t, p)
		assert.Contains(t, out, "Hello\nfirst post")
		assert.Contains(t, out, "Comments (0)")
		assert.Contains(t, out, emptyThread)
	})

	t.Run("Collapsed replies show a counter", func(t *testing.T) {
		e := newEnv(t)
		p := e.page(t, "writer")
		ctx := context.Background()

		root, err := p.Thread().CreateComment(ctx, "root", "")
		require.NoError(t, err)
		_, err = p.Thread().CreateComment(ctx, "reply", root.ID)
		require.NoError(t, err)

		out := render(t, p)
		assert.Contains(t, out, "Comments (1)")
		assert.Contains(t, out, "writer: root  ♡ 0")
		assert.Contains(t, out, "show 1 reply")
		assert.NotContains(t, out, emptyThread)
	})
}

func TestPostPage_Mutations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.page(t, "writer", WithConfirmer(thread.ConfirmFunc(func(context.Context, string) (bool, error) {
		return true, nil
	})))
	th := p.Thread()

	root, err := th.CreateComment(ctx, "root", "")
	require.NoError(t, err)

	t.Run("Created comment appears after refresh", func(t *testing.T) {
		assert.Equal(t, 1, th.Total())
		_, err := th.Node(root.ID)
		assert.NoError(t, err)
	})

	t.Run("Reply keeps the branch expanded", func(t *testing.T) {
		_, err := th.Expand(ctx, root.ID)
		require.NoError(t, err)

		_, err = th.CreateComment(ctx, "a reply", root.ID)
		require.NoError(t, err)

		n, err := th.Node(root.ID)
		require.NoError(t, err)
		assert.True(t, n.Expanded)
		require.Len(t, n.Replies(), 1)
		assert.Equal(t, "a reply", n.Replies()[0].Comment.Content)

		out := render(t, p)
		assert.Contains(t, out, "Comments (2)")
		assert.Contains(t, out, "\n  ["+n.Replies()[0].ID()+"] writer: a reply")
	})

	t.Run("Like is reflected in render", func(t *testing.T) {
		require.NoError(t, th.ToggleLike(ctx, root.ID))
		assert.Contains(t, render(t, p), "writer: root  ♥ 1")
	})

	t.Run("Deleted comment disappears", func(t *testing.T) {
		deleted, err := th.DeleteComment(ctx, root.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		assert.Equal(t, 0, th.Total())
		assert.Contains(t, render(t, p), emptyThread)
	})
}

func TestPostPage_Watch(t *testing.T) {
	e := newEnv(t)
	viewer := e.page(t, "viewer")
	other, _ := e.signUp(t, "other")

	events, cancel := e.manager.Subscribe(e.post.ID)
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- viewer.Watch(ctx, events) }()

	_, err := other.SubmitComment(context.Background(), e.post.ID, "live!", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return viewer.Thread().Total() == 1
	}, 2*time.Second, 10*time.Millisecond)

	stop()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestPostPage_WatchClosedChannel(t *testing.T) {
	e := newEnv(t)
	p := e.page(t, "viewer")

	events := make(chan comment.Event, 2)
	events <- comment.Event{Kind: comment.EventAdded, PostID: e.post.ID}
	close(events)

	assert.NoError(t, p.Watch(context.Background(), events))
}

func TestPostPage_WatchStream(t *testing.T) {
	e := newEnv(t)
	changed := make(chan struct{}, 4)
	viewer := e.page(t, "viewer", WithOnChange(func() { changed <- struct{}{} }))
	other, _ := e.signUp(t, "other")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	client := api.NewClient(e.url, nil)
	events, err := client.Subscribe(ctx, e.post.ID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- viewer.Watch(ctx, events) }()

	_, err = other.SubmitComment(context.Background(), e.post.ID, "over the wire", "")
	require.NoError(t, err)

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
	assert.Contains(t, render(t, viewer), "other: over the wire")

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
