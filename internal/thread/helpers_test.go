package thread

import (
	"testing"
	"time"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/user"
	"github.com/stretchr/testify/require"
)

const testPostID = "p1"

func newComment(id, authorID string, parentID string, likes int, likedBy ...string) *comment.Comment {
	c := &comment.Comment{
		ID:        id,
		Content:   "comment " + id,
		Author:    comment.Author{ID: authorID, Name: "user" + authorID},
		PostID:    testPostID,
		LikeCount: likes,
		LikedBy:   append([]string{}, likedBy...),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if parentID != "" {
		pid := parentID
		c.ParentID = &pid
	}
	return c
}

// loggedIn - сессия без сохранения на диск
func loggedIn(t *testing.T, userID string) *auth.Session {
	t.Helper()
	s := auth.NewSession("")
	require.NoError(t, s.Login("token-"+userID, &user.User{ID: userID, Username: "user" + userID}))
	return s
}

func anonymous() *auth.Session {
	return auth.NewSession("")
}

func mustNode(t *testing.T, th *Thread, id string) *Node {
	t.Helper()
	n, err := th.Node(id)
	require.NoError(t, err)
	return n
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for storage call")
	}
}
