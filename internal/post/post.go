package post

import (
	"errors"
	"time"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("forbidden: not author")
	ErrInvalidPost  = errors.New("title and content are required")
)

type Post struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	AuthorID         string    `json:"authorId"`
	CommentsDisabled bool      `json:"commentsDisabled"`
	CreatedAt        time.Time `json:"createdAt"`
}
