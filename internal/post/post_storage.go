package post

import (
	"context"
)

type PostStorage interface {
	CreatePost(ctx context.Context, title, content string) (*Post, error)
	GetPostById(id string) (*Post, error)
	GetAllPosts() ([]*Post, error)
	// SearchPosts ищет подстроку в заголовке и тексте (без учета регистра)
	SearchPosts(query string) ([]*Post, error)
	DisableComment(ctx context.Context, id string) error
	EnableComment(ctx context.Context, id string) error
	DeletePostById(ctx context.Context, id string) error
}
