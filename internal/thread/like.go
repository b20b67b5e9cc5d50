package thread

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ToggleLike сразу переключает лайк локально, затем сверяется с сервером.
// При ошибке сервера состояние откатывается к исходному.
func (t *Thread) ToggleLike(ctx context.Context, commentID string) error {
	viewer := t.viewerID()
	if viewer == "" {
		return ErrUnauthenticated
	}

	t.mu.Lock()
	n, ok := t.nodes[commentID]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, commentID)
	}
	if n.liking {
		t.mu.Unlock()
		return ErrLikePending
	}
	prev := n.Like
	n.Like = ApplyLike(prev, LikeEvent{Kind: LikeToggle})
	n.liking = true
	t.mu.Unlock()

	updated, err := t.store.LikeComment(ctx, t.postID, commentID)

	t.mu.Lock()
	defer t.mu.Unlock()
	n.liking = false

	if err != nil {
		if !n.detached {
			n.Like = ApplyLike(n.Like, LikeEvent{Kind: LikeRollback, Previous: prev})
		}
		t.log.Warn("like rolled back", zap.String("comment_id", commentID), zap.Error(err))
		return &NetworkError{Op: "like comment", CommentID: commentID, Err: err}
	}

	if n.detached || updated == nil {
		return nil
	}
	n.Like = ApplyLike(n.Like, LikeEvent{Kind: LikeConfirm, Server: updated, ViewerID: viewer})
	n.Comment.LikeCount = updated.LikeCount
	n.Comment.LikedBy = append([]string(nil), updated.LikedBy...)
	return nil
}
