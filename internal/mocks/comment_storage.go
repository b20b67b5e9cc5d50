package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/VitaminP8/devshare/internal/comment"
)

// ErrMockNotConfigured - метод мока вызван без заданного поведения
var ErrMockNotConfigured = errors.New("mock: behaviour not configured")

// MockCommentStorage реализует comment.CommentStorage через подменяемые функции
// и считает вызовы каждого метода.
type MockCommentStorage struct {
	mu    sync.Mutex
	calls map[string]int

	FetchCommentsFunc func(ctx context.Context, postID string) ([]*comment.Comment, error)
	FetchRepliesFunc  func(ctx context.Context, postID, commentID string) ([]*comment.Comment, error)
	SubmitCommentFunc func(ctx context.Context, postID, content, parentID string) (*comment.Comment, error)
	EditCommentFunc   func(ctx context.Context, postID, commentID, content string) (*comment.Comment, error)
	RemoveCommentFunc func(ctx context.Context, postID, commentID string) error
	LikeCommentFunc   func(ctx context.Context, postID, commentID string) (*comment.Comment, error)
}

func NewMockCommentStorage() *MockCommentStorage {
	return &MockCommentStorage{calls: make(map[string]int)}
}

// Calls - сколько раз вызывался метод
func (m *MockCommentStorage) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// TotalCalls - вызовы всех методов вместе
func (m *MockCommentStorage) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *MockCommentStorage) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

func (m *MockCommentStorage) FetchComments(ctx context.Context, postID string) ([]*comment.Comment, error) {
	m.record("FetchComments")
	if m.FetchCommentsFunc == nil {
		return []*comment.Comment{}, nil
	}
	return m.FetchCommentsFunc(ctx, postID)
}

func (m *MockCommentStorage) FetchReplies(ctx context.Context, postID, commentID string) ([]*comment.Comment, error) {
	m.record("FetchReplies")
	if m.FetchRepliesFunc == nil {
		return []*comment.Comment{}, nil
	}
	return m.FetchRepliesFunc(ctx, postID, commentID)
}

func (m *MockCommentStorage) SubmitComment(ctx context.Context, postID, content, parentID string) (*comment.Comment, error) {
	m.record("SubmitComment")
	if m.SubmitCommentFunc == nil {
		return nil, ErrMockNotConfigured
	}
	return m.SubmitCommentFunc(ctx, postID, content, parentID)
}

func (m *MockCommentStorage) EditComment(ctx context.Context, postID, commentID, content string) (*comment.Comment, error) {
	m.record("EditComment")
	if m.EditCommentFunc == nil {
		return nil, ErrMockNotConfigured
	}
	return m.EditCommentFunc(ctx, postID, commentID, content)
}

func (m *MockCommentStorage) RemoveComment(ctx context.Context, postID, commentID string) error {
	m.record("RemoveComment")
	if m.RemoveCommentFunc == nil {
		return ErrMockNotConfigured
	}
	return m.RemoveCommentFunc(ctx, postID, commentID)
}

func (m *MockCommentStorage) LikeComment(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
	m.record("LikeComment")
	if m.LikeCommentFunc == nil {
		return nil, ErrMockNotConfigured
	}
	return m.LikeCommentFunc(ctx, postID, commentID)
}
