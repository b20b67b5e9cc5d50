package postgres

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/subscription"
	"github.com/VitaminP8/devshare/models"
)

type CommentPostgresStorage struct {
	manager subscription.Manager
}

func NewCommentPostgresStorage(manager subscription.Manager) *CommentPostgresStorage {
	return &CommentPostgresStorage{manager: manager}
}

func (s *CommentPostgresStorage) FetchComments(ctx context.Context, postID string) ([]*comment.Comment, error) {
	p, err := findCommentPost(postID)
	if err != nil {
		return nil, err
	}

	// Проверяем, если комментарии отключены — ничего не возвращаем
	if p.CommentsDisabled {
		return []*comment.Comment{}, nil
	}

	var rows []models.Comment
	err = DB.Where("post_id = ? AND parent_id IS NULL", p.ID).Order("id asc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get root comments: %w", err)
	}
	return views(DB, rows)
}

func (s *CommentPostgresStorage) FetchReplies(ctx context.Context, postID, commentID string) ([]*comment.Comment, error) {
	parent, err := findComment(DB, postID, commentID)
	if err != nil {
		return nil, err
	}

	var rows []models.Comment
	err = DB.Where("parent_id = ?", parent.ID).Order("id asc").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("could not get replies: %w", err)
	}
	return views(DB, rows)
}

func (s *CommentPostgresStorage) SubmitComment(ctx context.Context, postID, content, parentID string) (*comment.Comment, error) {
	content, err := comment.ValidateContent(content)
	if err != nil {
		return nil, err
	}

	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", comment.ErrUnauthenticated, err)
	}

	p, err := findCommentPost(postID)
	if err != nil {
		return nil, err
	}

	if p.CommentsDisabled {
		return nil, comment.ErrCommentsDisabled
	}

	row := &models.Comment{
		PostID:  p.ID,
		UserID:  userID,
		Content: content,
	}

	if parentID != "" {
		parent, err := findComment(DB, postID, parentID)
		if err != nil {
			return nil, err
		}
		row.ParentID = &parent.ID
	}

	err = DB.Create(row).Error
	if err != nil {
		return nil, fmt.Errorf("could not create comment: %w", err)
	}

	return s.publishRow(comment.EventAdded, row)
}

func (s *CommentPostgresStorage) EditComment(ctx context.Context, postID, commentID, content string) (*comment.Comment, error) {
	content, err := comment.ValidateContent(content)
	if err != nil {
		return nil, err
	}

	row, err := authoredComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}

	err = DB.Model(row).Update("content", content).Error
	if err != nil {
		return nil, fmt.Errorf("could not update comment: %w", err)
	}

	return s.publishRow(comment.EventUpdated, row)
}

// RemoveComment удаляет комментарий со всеми ответами и их лайками
func (s *CommentPostgresStorage) RemoveComment(ctx context.Context, postID, commentID string) error {
	row, err := authoredComment(ctx, postID, commentID)
	if err != nil {
		return err
	}

	removed, err := view(DB, *row)
	if err != nil {
		return err
	}

	tx := DB.Begin()
	ids, err := subtreeIDs(tx, row.ID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Where("comment_id IN (?)", ids).Delete(&models.CommentLike{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete likes: %w", err)
	}
	if err := tx.Where("id IN (?)", ids).Delete(&models.Comment{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("could not delete comment: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("could not delete comment: %w", err)
	}

	s.publish(comment.EventDeleted, removed)
	return nil
}

// LikeComment ставит лайк текущего пользователя или снимает уже поставленный
func (s *CommentPostgresStorage) LikeComment(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", comment.ErrUnauthenticated, err)
	}

	row, err := findComment(DB, postID, commentID)
	if err != nil {
		return nil, err
	}

	tx := DB.Begin()

	var like models.CommentLike
	err = tx.Where("comment_id = ? AND user_id = ?", row.ID, userID).First(&like).Error
	switch {
	case err == nil:
		err = tx.Delete(&like).Error
	case gorm.IsRecordNotFoundError(err):
		err = tx.Create(&models.CommentLike{CommentID: row.ID, UserID: userID}).Error
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("could not toggle like: %w", err)
	}

	var count int
	err = tx.Model(&models.CommentLike{}).Where("comment_id = ?", row.ID).Count(&count).Error
	if err == nil {
		err = tx.Model(row).UpdateColumn("like_count", count).Error
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("could not update like count: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("could not toggle like: %w", err)
	}

	return s.publishRow(comment.EventLiked, row)
}

func (s *CommentPostgresStorage) publishRow(kind comment.EventKind, row *models.Comment) (*comment.Comment, error) {
	c, err := view(DB, *row)
	if err != nil {
		return nil, err
	}
	s.publish(kind, c)
	return c, nil
}

func (s *CommentPostgresStorage) publish(kind comment.EventKind, c *comment.Comment) {
	if s.manager == nil {
		return
	}
	s.manager.Publish(comment.Event{Kind: kind, PostID: c.PostID, Comment: c.Clone()})
}

func findCommentPost(postID string) (*models.Post, error) {
	p, err := findPost(DB, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", comment.ErrPostNotFound, postID)
	}
	return p, nil
}

// findComment ищет комментарий, принадлежащий посту
func findComment(db *gorm.DB, postID, commentID string) (*models.Comment, error) {
	cid, ok := parseID(commentID)
	pid, okPost := parseID(postID)
	if !ok || !okPost {
		return nil, fmt.Errorf("%w: %s", comment.ErrCommentNotFound, commentID)
	}

	var row models.Comment
	err := db.Where("id = ? AND post_id = ?", cid, pid).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("%w: %s", comment.ErrCommentNotFound, commentID)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get comment: %w", err)
	}
	return &row, nil
}

func authoredComment(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	userID, err := auth.GetUserIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", comment.ErrUnauthenticated, err)
	}

	row, err := findComment(DB, postID, commentID)
	if err != nil {
		return nil, err
	}

	if row.UserID != userID {
		return nil, comment.ErrNotAuthor
	}
	return row, nil
}

// subtreeIDs собирает id комментария и всех его потомков
func subtreeIDs(db *gorm.DB, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	level := []uint{rootID}
	for len(level) > 0 {
		var next []uint
		err := db.Model(&models.Comment{}).Where("parent_id IN (?)", level).Pluck("id", &next).Error
		if err != nil {
			return nil, fmt.Errorf("could not collect replies: %w", err)
		}
		ids = append(ids, next...)
		level = next
	}
	return ids, nil
}

func view(db *gorm.DB, row models.Comment) (*comment.Comment, error) {
	result, err := views(db, []models.Comment{row})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

type replyCount struct {
	ParentID uint
	N        int
}

// views переводит строки в доменные комментарии: автор, число ответов, лайки
func views(db *gorm.DB, rows []models.Comment) ([]*comment.Comment, error) {
	results := make([]*comment.Comment, 0, len(rows))
	if len(rows) == 0 {
		return results, nil
	}

	ids := make([]uint, 0, len(rows))
	userIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		userIDs = append(userIDs, r.UserID)
	}

	var counts []replyCount
	err := db.Model(&models.Comment{}).
		Select("parent_id, count(*) as n").
		Where("parent_id IN (?)", ids).
		Group("parent_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("could not count replies: %w", err)
	}
	replies := make(map[uint]int, len(counts))
	for _, c := range counts {
		replies[c.ParentID] = c.N
	}

	var likes []models.CommentLike
	err = db.Where("comment_id IN (?)", ids).Order("id asc").Find(&likes).Error
	if err != nil {
		return nil, fmt.Errorf("could not get likes: %w", err)
	}
	likedBy := make(map[uint][]string)
	for _, l := range likes {
		likedBy[l.CommentID] = append(likedBy[l.CommentID], fmt.Sprint(l.UserID))
	}

	var users []models.User
	err = db.Where("id IN (?)", userIDs).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("could not get authors: %w", err)
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	for _, r := range rows {
		c := &comment.Comment{
			ID:         fmt.Sprint(r.ID),
			Content:    r.Content,
			Author:     comment.Author{ID: fmt.Sprint(r.UserID), Name: names[r.UserID]},
			PostID:     fmt.Sprint(r.PostID),
			ReplyCount: replies[r.ID],
			LikeCount:  len(likedBy[r.ID]),
			LikedBy:    likedBy[r.ID],
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		}
		if r.ParentID != nil {
			pid := fmt.Sprint(*r.ParentID)
			c.ParentID = &pid
		}
		results = append(results, c)
	}
	return results, nil
}
