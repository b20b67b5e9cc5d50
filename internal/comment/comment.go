package comment

import (
	"errors"
	"strings"
	"time"
)

// MaxContentLength - максимальная длина комментария в символах
const MaxContentLength = 2000

var (
	ErrInvalidContent   = errors.New("content is too long or empty")
	ErrPostNotFound     = errors.New("post not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCommentsDisabled = errors.New("comments are disabled for this post")
	ErrNotAuthor        = errors.New("forbidden: not author")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

// Author - ссылка на автора, комментарий им не владеет
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Comment struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Author     Author    `json:"author"`
	PostID     string    `json:"postId"`
	ParentID   *string   `json:"parentId,omitempty"`
	ReplyCount int       `json:"replyCount"`
	LikeCount  int       `json:"likeCount"`
	LikedBy    []string  `json:"likedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsLikedBy сообщает, есть ли userID среди лайкнувших
func (c *Comment) IsLikedBy(userID string) bool {
	for _, id := range c.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// IsReply - true для ответа на другой комментарий
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// Clone возвращает копию, не разделяющую срезы и указатели с оригиналом
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	cp := *c
	if c.ParentID != nil {
		pid := *c.ParentID
		cp.ParentID = &pid
	}
	cp.LikedBy = append([]string(nil), c.LikedBy...)
	return &cp
}

// ValidateContent обрезает пробелы и проверяет длину
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len([]rune(trimmed)) > MaxContentLength {
		return "", ErrInvalidContent
	}
	return trimmed, nil
}
