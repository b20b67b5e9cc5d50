package thread

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("comment content must not be empty")
	ErrUnauthorized    = errors.New("only the author can change this comment")
	ErrUnauthenticated = errors.New("please login to continue")
	ErrNetwork         = errors.New("comment service request failed")

	ErrNotFound    = errors.New("comment is not in the thread")
	ErrDetached    = errors.New("comment was removed from the thread")
	ErrLikePending = errors.New("like is already being processed")
)

// NetworkError - отказ коллаборатора (хранилища или API).
// errors.Is(err, ErrNetwork) истинно, исходная ошибка доступна через Unwrap.
type NetworkError struct {
	Op        string
	CommentID string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.CommentID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.CommentID, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
