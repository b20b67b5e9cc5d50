package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/post"
)

type PostMemoryStorage struct {
	mu     sync.Mutex
	posts  map[string]*post.Post
	nextId int
}

func NewPostMemoryStorage() *PostMemoryStorage {
	return &PostMemoryStorage{
		posts:  make(map[string]*post.Post),
		nextId: 1,
	}
}

func (s *PostMemoryStorage) CreatePost(ctx context.Context, title, content string) (*post.Post, error) {
	// Контекст — это read-only структура, поэтому читаем его до мьютекса
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, post.ErrInvalidPost
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := strconv.Itoa(s.nextId)
	s.nextId++

	p := &post.Post{
		ID:        id,
		Title:     title,
		Content:   content,
		AuthorID:  fmt.Sprint(userID),
		CreatedAt: time.Now(),
	}

	s.posts[id] = p
	cp := *p
	return &cp, nil
}

func (s *PostMemoryStorage) GetPostById(id string) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[id]
	if !exists {
		return nil, post.ErrPostNotFound
	}

	cp := *p
	return &cp, nil
}

func (s *PostMemoryStorage) GetAllPosts() ([]*post.Post, error) {
	return s.filter(func(*post.Post) bool { return true }), nil
}

func (s *PostMemoryStorage) SearchPosts(query string) ([]*post.Post, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.filter(func(p *post.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Content), q)
	}), nil
}

// filter возвращает копии постов, новые первыми
func (s *PostMemoryStorage) filter(match func(*post.Post) bool) []*post.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := []*post.Post{}
	for _, p := range s.posts {
		if match(p) {
			cp := *p
			posts = append(posts, &cp)
		}
	}

	sort.Slice(posts, func(i, j int) bool {
		a, _ := strconv.Atoi(posts[i].ID)
		b, _ := strconv.Atoi(posts[j].ID)
		return a > b
	})
	return posts
}

func (s *PostMemoryStorage) DisableComment(ctx context.Context, id string) error {
	return s.setCommentsDisabled(ctx, id, true)
}

func (s *PostMemoryStorage) EnableComment(ctx context.Context, id string) error {
	return s.setCommentsDisabled(ctx, id, false)
}

func (s *PostMemoryStorage) setCommentsDisabled(ctx context.Context, id string, disabled bool) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[id]
	if !exists {
		return post.ErrPostNotFound
	}

	if p.AuthorID != fmt.Sprint(userID) {
		return post.ErrNotAuthor
	}

	p.CommentsDisabled = disabled
	return nil
}

func (s *PostMemoryStorage) DeletePostById(ctx context.Context, id string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("unauthorized: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[id]
	if !exists {
		return post.ErrPostNotFound
	}

	if p.AuthorID != fmt.Sprint(userID) {
		return post.ErrNotAuthor
	}

	delete(s.posts, id)
	return nil
}
