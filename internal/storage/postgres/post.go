package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/models"
)

type PostPostgresStorage struct{}

func NewPostPostgresStorage() *PostPostgresStorage {
	return &PostPostgresStorage{}
}

func (s *PostPostgresStorage) CreatePost(ctx context.Context, title, content string) (*post.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, post.ErrInvalidPost
	}

	p := &models.Post{
		Title:            title,
		Content:          content,
		UserID:           userID,
		CommentsDisabled: false,
	}

	err = DB.Create(p).Error
	if err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	return toPost(p), nil
}

func (s *PostPostgresStorage) GetPostById(id string) (*post.Post, error) {
	p, err := findPost(DB, id)
	if err != nil {
		return nil, err
	}
	return toPost(p), nil
}

func (s *PostPostgresStorage) GetAllPosts() ([]*post.Post, error) {
	var posts []models.Post
	err := DB.Order("id desc").Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("could not get posts: %w", err)
	}
	return toPosts(posts), nil
}

func (s *PostPostgresStorage) SearchPosts(query string) ([]*post.Post, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var posts []models.Post
	err := DB.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern).
		Order("id desc").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("could not search posts: %w", err)
	}
	return toPosts(posts), nil
}

func (s *PostPostgresStorage) DisableComment(ctx context.Context, id string) error {
	return s.setCommentsDisabled(ctx, id, true)
}

func (s *PostPostgresStorage) EnableComment(ctx context.Context, id string) error {
	return s.setCommentsDisabled(ctx, id, false)
}

func (s *PostPostgresStorage) setCommentsDisabled(ctx context.Context, id string, disabled bool) error {
	p, err := authoredPost(ctx, id)
	if err != nil {
		return err
	}

	err = DB.Model(p).Update("comments_disabled", disabled).Error
	if err != nil {
		return fmt.Errorf("could not update post: %w", err)
	}
	return nil
}

// DeletePostById удаляет пост вместе с его комментариями
func (s *PostPostgresStorage) DeletePostById(ctx context.Context, id string) error {
	p, err := authoredPost(ctx, id)
	if err != nil {
		return err
	}

	tx := DB.Begin()
	if err := tx.Where("post_id = ?", p.ID).Delete(&models.Comment{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete post comments: %w", err)
	}
	if err := tx.Delete(p).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete post: %w", err)
	}
	return tx.Commit().Error
}

// authoredPost возвращает пост, если текущий пользователь - его автор
func authoredPost(ctx context.Context, id string) (*models.Post, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}

	p, err := findPost(DB, id)
	if err != nil {
		return nil, err
	}

	if p.UserID != userID {
		return nil, post.ErrNotAuthor
	}
	return p, nil
}

func findPost(db *gorm.DB, id string) (*models.Post, error) {
	pid, ok := parseID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", post.ErrPostNotFound, id)
	}

	var p models.Post
	err := db.First(&p, pid).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("%w: %s", post.ErrPostNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get post by id: %w", err)
	}
	return &p, nil
}

func toPost(p *models.Post) *post.Post {
	return &post.Post{
		ID:               fmt.Sprint(p.ID),
		Title:            p.Title,
		Content:          p.Content,
		AuthorID:         fmt.Sprint(p.UserID),
		CommentsDisabled: p.CommentsDisabled,
		CreatedAt:        p.CreatedAt,
	}
}

func toPosts(posts []models.Post) []*post.Post {
	results := make([]*post.Post, 0, len(posts))
	for i := range posts {
		results = append(results, toPost(&posts[i]))
	}
	return results
}

// parseID - идентификаторы в базе целочисленные, снаружи строки
func parseID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
