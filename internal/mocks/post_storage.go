package mocks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/post"
)

// MockPostStorage реализует post.PostStorage без проверок авторства
type MockPostStorage struct {
	posts map[string]*post.Post
	mu    sync.Mutex
}

func NewMockPostStorage() *MockPostStorage {
	return &MockPostStorage{
		posts: make(map[string]*post.Post),
	}
}

func (m *MockPostStorage) CreatePost(ctx context.Context, title, content string) (*post.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := strconv.Itoa(len(m.posts) + 1)
	p := &post.Post{
		ID:       id,
		Title:    title,
		Content:  content,
		AuthorID: strconv.Itoa(int(userID)),
	}
	m.posts[id] = p
	cp := *p
	return &cp, nil
}

func (m *MockPostStorage) GetPostById(id string) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPostStorage) GetAllPosts() ([]*post.Post, error) {
	return m.SearchPosts("")
}

func (m *MockPostStorage) SearchPosts(query string) ([]*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	posts := make([]*post.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if strings.Contains(p.Title, query) || strings.Contains(p.Content, query) {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	return posts, nil
}

func (m *MockPostStorage) DisableComment(ctx context.Context, id string) error {
	return m.setDisabled(id, true)
}

func (m *MockPostStorage) EnableComment(ctx context.Context, id string) error {
	return m.setDisabled(id, false)
}

func (m *MockPostStorage) setDisabled(id string, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return fmt.Errorf("%w: %s", post.ErrPostNotFound, id)
	}
	p.CommentsDisabled = disabled
	return nil
}

func (m *MockPostStorage) DeletePostById(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[id]; !ok {
		return post.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}
