package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/subscription"
	"github.com/VitaminP8/devshare/internal/user"
)

type CommentMemoryStorage struct {
	mu          sync.Mutex
	comments    map[string]*comment.Comment
	roots       map[string][]string // postID -> корневые комментарии в порядке создания
	children    map[string][]string // parentID -> ответы в порядке создания
	postStorage post.PostStorage    // Хранилище постов (внедрение зависимости (DI))
	userStorage user.UserStorage    // для имени автора, может быть nil
	manager     subscription.Manager
}

func NewCommentMemoryStorage(postStore post.PostStorage, userStore user.UserStorage, manager subscription.Manager) *CommentMemoryStorage {
	return &CommentMemoryStorage{
		comments:    make(map[string]*comment.Comment),
		roots:       make(map[string][]string),
		children:    make(map[string][]string),
		postStorage: postStore,
		userStorage: userStore,
		manager:     manager,
	}
}

func (s *CommentMemoryStorage) FetchComments(ctx context.Context, postID string) ([]*comment.Comment, error) {
	curPost, err := s.postStorage.GetPostById(postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", comment.ErrPostNotFound, postID)
	}

	if curPost.CommentsDisabled {
		return []*comment.Comment{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(s.roots[postID]), nil
}

func (s *CommentMemoryStorage) FetchReplies(ctx context.Context, postID, commentID string) ([]*comment.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(postID, commentID); err != nil {
		return nil, err
	}

	return s.snapshot(s.children[commentID]), nil
}

func (s *CommentMemoryStorage) SubmitComment(ctx context.Context, postID, content, parentID string) (*comment.Comment, error) {
	content, err := comment.ValidateContent(content)
	if err != nil {
		return nil, err
	}

	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", comment.ErrUnauthenticated, err)
	}

	curPost, err := s.postStorage.GetPostById(postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", comment.ErrPostNotFound, postID)
	}

	if curPost.CommentsDisabled {
		return nil, comment.ErrCommentsDisabled
	}

	author := s.author(userID)

	s.mu.Lock()

	var parentPtr *string
	if parentID != "" {
		// проверяем что родительский комментарий существует и принадлежит тому же посту
		if _, err := s.lookup(postID, parentID); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		pid := parentID
		parentPtr = &pid
	}

	now := time.Now()
	c := &comment.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		Author:    author,
		PostID:    postID,
		ParentID:  parentPtr,
		LikedBy:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.comments[c.ID] = c
	if parentPtr != nil {
		s.children[parentID] = append(s.children[parentID], c.ID)
	} else {
		s.roots[postID] = append(s.roots[postID], c.ID)
	}

	result := s.view(c)
	s.mu.Unlock()

	s.publish(comment.EventAdded, result)
	return result, nil
}

func (s *CommentMemoryStorage) EditComment(ctx context.Context, postID, commentID, content string) (*comment.Comment, error) {
	content, err := comment.ValidateContent(content)
	if err != nil {
		return nil, err
	}

	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", comment.ErrUnauthenticated, err)
	}

	s.mu.Lock()

	c, err := s.lookup(postID, commentID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if c.Author.ID != fmt.Sprint(userID) {
		s.mu.Unlock()
		return nil, comment.ErrNotAuthor
	}

	c.Content = content
	c.UpdatedAt = time.Now()

	result := s.view(c)
	s.mu.Unlock()

	s.publish(comment.EventUpdated, result)
	return result, nil
}

func (s *CommentMemoryStorage) RemoveComment(ctx context.Context, postID, commentID string) error {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", comment.ErrUnauthenticated, err)
	}

	s.mu.Lock()

	c, err := s.lookup(postID, commentID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if c.Author.ID != fmt.Sprint(userID) {
		s.mu.Unlock()
		return comment.ErrNotAuthor
	}

	// отцепляем от родителя, затем удаляем все поддерево
	if c.ParentID != nil {
		s.children[*c.ParentID] = without(s.children[*c.ParentID], commentID)
	} else {
		s.roots[postID] = without(s.roots[postID], commentID)
	}

	stack := []string{commentID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, s.children[id]...)
		delete(s.children, id)
		delete(s.comments, id)
	}

	removed := c.Clone()
	s.mu.Unlock()

	s.publish(comment.EventDeleted, removed)
	return nil
}

func (s *CommentMemoryStorage) LikeComment(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", comment.ErrUnauthenticated, err)
	}
	uid := fmt.Sprint(userID)

	s.mu.Lock()

	c, err := s.lookup(postID, commentID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if c.IsLikedBy(uid) {
		c.LikedBy = without(c.LikedBy, uid)
	} else {
		c.LikedBy = append(c.LikedBy, uid)
	}
	c.LikeCount = len(c.LikedBy)

	result := s.view(c)
	s.mu.Unlock()

	s.publish(comment.EventLiked, result)
	return result, nil
}

// lookup ищет комментарий поста; вызывать под s.mu
func (s *CommentMemoryStorage) lookup(postID, commentID string) (*comment.Comment, error) {
	c, ok := s.comments[commentID]
	if !ok || c.PostID != postID {
		return nil, fmt.Errorf("%w: %s", comment.ErrCommentNotFound, commentID)
	}
	return c, nil
}

// view - копия для отдачи наружу; вызывать под s.mu
func (s *CommentMemoryStorage) view(c *comment.Comment) *comment.Comment {
	cp := c.Clone()
	cp.ReplyCount = len(s.children[c.ID])
	return cp
}

func (s *CommentMemoryStorage) snapshot(ids []string) []*comment.Comment {
	result := make([]*comment.Comment, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.view(s.comments[id]))
	}
	return result
}

func (s *CommentMemoryStorage) author(userID uint) comment.Author {
	a := comment.Author{ID: fmt.Sprint(userID)}
	if s.userStorage == nil {
		return a
	}
	if u, err := s.userStorage.GetUserById(a.ID); err == nil {
		a.Name = u.Username
	}
	return a
}

func (s *CommentMemoryStorage) publish(kind comment.EventKind, c *comment.Comment) {
	if s.manager == nil {
		return
	}
	s.manager.Publish(comment.Event{Kind: kind, PostID: c.PostID, Comment: c})
}

func without(ids []string, id string) []string {
	result := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}
