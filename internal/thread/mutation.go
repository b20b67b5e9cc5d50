package thread

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/comment"
)

const deletePrompt = "Are you sure you want to delete this comment?"

// CreateComment отправляет новый комментарий или ответ (parentID != "").
// Локально ничего не вставляет: дерево обновит страница через OnCommentAdded.
func (t *Thread) CreateComment(ctx context.Context, content, parentID string) (*comment.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrValidation
	}
	if t.viewerID() == "" {
		return nil, ErrUnauthenticated
	}

	if parentID != "" {
		if err := t.setSubmitting(parentID, true); err != nil {
			return nil, err
		}
		defer t.setSubmitting(parentID, false)
	}

	created, err := t.store.SubmitComment(ctx, t.postID, content, parentID)
	if err != nil {
		t.log.Warn("failed to add comment", zap.String("parent_id", parentID), zap.Error(err))
		return nil, &NetworkError{Op: "add comment", CommentID: parentID, Err: err}
	}

	t.fire(ctx, t.hooks.OnCommentAdded)
	return created, nil
}

// UpdateComment меняет текст; разрешено только автору
func (t *Thread) UpdateComment(ctx context.Context, commentID, content string) (*comment.Comment, error) {
	viewer := t.viewerID()
	if viewer == "" {
		return nil, ErrUnauthenticated
	}

	t.mu.Lock()
	n, ok := t.nodes[commentID]
	if !ok {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, commentID)
	}
	if !IsAuthor(n, viewer) {
		t.mu.Unlock()
		return nil, ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		t.mu.Unlock()
		return nil, ErrValidation
	}
	n.Submitting = true
	t.mu.Unlock()

	updated, err := t.store.EditComment(ctx, t.postID, commentID, content)

	t.mu.Lock()
	n.Submitting = false
	if err != nil {
		t.mu.Unlock()
		t.log.Warn("failed to update comment", zap.String("comment_id", commentID), zap.Error(err))
		return nil, &NetworkError{Op: "update comment", CommentID: commentID, Err: err}
	}
	if !n.detached && updated != nil {
		n.Comment.Content = updated.Content
		n.Comment.UpdatedAt = updated.UpdatedAt
		n.Editing = false
	}
	t.mu.Unlock()

	t.fire(ctx, t.hooks.OnCommentUpdated)
	return updated, nil
}

// DeleteComment удаляет комментарий автора после подтверждения.
// Отказ в подтверждении возвращает (false, nil) без обращения к серверу.
func (t *Thread) DeleteComment(ctx context.Context, commentID string) (bool, error) {
	viewer := t.viewerID()
	if viewer == "" {
		return false, ErrUnauthenticated
	}

	t.mu.Lock()
	n, ok := t.nodes[commentID]
	if !ok {
		t.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNotFound, commentID)
	}
	authored := IsAuthor(n, viewer)
	t.mu.Unlock()

	if !authored {
		return false, ErrUnauthorized
	}

	// без подтверждающего удаление не выполняется
	if t.confirm == nil {
		return false, nil
	}
	confirmed, err := t.confirm.Confirm(ctx, deletePrompt)
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !confirmed {
		return false, nil
	}

	if err := t.setSubmitting(commentID, true); err != nil {
		return false, err
	}
	err = t.store.RemoveComment(ctx, t.postID, commentID)
	t.setSubmitting(commentID, false)
	if err != nil {
		t.log.Warn("failed to delete comment", zap.String("comment_id", commentID), zap.Error(err))
		return false, &NetworkError{Op: "delete comment", CommentID: commentID, Err: err}
	}

	t.fire(ctx, t.hooks.OnCommentDeleted)
	return true, nil
}

func (t *Thread) setSubmitting(commentID string, v bool) error {
	return t.update(commentID, func(n *Node) { n.Submitting = v })
}

func (t *Thread) fire(ctx context.Context, hook func(ctx context.Context)) {
	if hook != nil {
		hook(ctx)
	}
}
