package comment

import "context"

// CommentStorage - контракт источника комментариев.
// Пользователь (для записи) берется из контекста через auth.GetUserIDFromContext.
type CommentStorage interface {
	FetchComments(ctx context.Context, postID string) ([]*Comment, error)
	FetchReplies(ctx context.Context, postID, commentID string) ([]*Comment, error)
	SubmitComment(ctx context.Context, postID, content, parentID string) (*Comment, error)
	EditComment(ctx context.Context, postID, commentID, content string) (*Comment, error)
	RemoveComment(ctx context.Context, postID, commentID string) error
	// LikeComment переключает лайк текущего пользователя и возвращает итоговое состояние
	LikeComment(ctx context.Context, postID, commentID string) (*Comment, error)
}
