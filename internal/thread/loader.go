package thread

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// LoadReplies возвращает ответы комментария, загружая их при первом обращении.
// Повторный вызов берет кэш узла, одновременные вызовы делят один запрос.
func (t *Thread) LoadReplies(ctx context.Context, commentID string) ([]*Node, error) {
	t.mu.Lock()
	n, ok := t.nodes[commentID]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, commentID)
	}
	if n.fetched {
		cached := snapshotAll(n.replies)
		t.mu.Unlock()
		return cached, nil
	}
	// ключ по порядковому номеру узла: после Reset тот же id - уже другой узел
	key := strconv.FormatUint(n.seq, 10)
	t.mu.Unlock()

	// общий запрос не должен отменяться вместе с контекстом первого вызывающего
	fetchCtx := context.WithoutCancel(ctx)
	ch := t.loads.DoChan(key, func() (interface{}, error) {
		return t.fetchReplies(fetchCtx, n)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*Node), nil
	}
}

func (t *Thread) fetchReplies(ctx context.Context, n *Node) ([]*Node, error) {
	commentID := n.ID()

	t.mu.Lock()
	switch {
	case n.detached:
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDetached, commentID)
	case n.fetched:
		// успели загрузить, пока ждали блокировку
		cached := snapshotAll(n.replies)
		t.mu.Unlock()
		return cached, nil
	}
	n.Loading = true
	t.mu.Unlock()

	t.log.Debug("loading replies", zap.String("comment_id", commentID))
	replies, err := t.store.FetchReplies(ctx, t.postID, commentID)
	viewer := t.viewerID()

	t.mu.Lock()
	defer t.mu.Unlock()

	if n.detached {
		t.log.Debug("dropping replies of detached comment", zap.String("comment_id", commentID))
		return nil, fmt.Errorf("%w: %s", ErrDetached, commentID)
	}
	n.Loading = false

	if err != nil {
		t.log.Warn("failed to load replies", zap.String("comment_id", commentID), zap.Error(err))
		return nil, &NetworkError{Op: "load replies", CommentID: commentID, Err: err}
	}

	children := make([]*Node, 0, len(replies))
	for _, c := range replies {
		if c == nil {
			continue
		}
		// ребенок крепится только к проверенному родителю и только один раз
		if c.ParentID == nil || *c.ParentID != commentID {
			t.log.Warn("reply with foreign parent skipped",
				zap.String("comment_id", commentID), zap.String("reply_id", c.ID))
			continue
		}
		if _, exists := t.nodes[c.ID]; exists {
			t.log.Warn("reply already in thread skipped",
				zap.String("comment_id", commentID), zap.String("reply_id", c.ID))
			continue
		}
		children = append(children, t.newNodeLocked(c, viewer))
	}
	n.setReplies(children)

	return snapshotAll(children), nil
}

// Expand загружает ответы (если нужно) и раскрывает узел
func (t *Thread) Expand(ctx context.Context, commentID string) ([]*Node, error) {
	replies, err := t.LoadReplies(ctx, commentID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[commentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDetached, commentID)
	}
	n.Expanded = true
	return replies, nil
}
