package api

import (
	"errors"
	"net/http"

	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/user"
)

var (
	ErrBadRequest = errors.New("invalid request body")
	ErrInternal   = errors.New("internal server error")
)

// errorKind связывает код ответа с доменными ошибками.
// Сервер по ошибке выбирает код, клиент по коду восстанавливает ошибку.
type errorKind struct {
	code   string
	status int
	errs   []error
}

var errorKinds = []errorKind{
	{"bad_request", http.StatusBadRequest, []error{ErrBadRequest}},
	{"invalid_content", http.StatusBadRequest, []error{comment.ErrInvalidContent}},
	{"invalid_post", http.StatusBadRequest, []error{post.ErrInvalidPost}},
	{"unauthenticated", http.StatusUnauthorized, []error{comment.ErrUnauthenticated}},
	{"invalid_credentials", http.StatusUnauthorized, []error{user.ErrInvalidCredentials}},
	{"not_author", http.StatusForbidden, []error{comment.ErrNotAuthor, post.ErrNotAuthor}},
	{"comments_disabled", http.StatusForbidden, []error{comment.ErrCommentsDisabled}},
	{"post_not_found", http.StatusNotFound, []error{comment.ErrPostNotFound, post.ErrPostNotFound}},
	{"comment_not_found", http.StatusNotFound, []error{comment.ErrCommentNotFound}},
	{"user_not_found", http.StatusNotFound, []error{user.ErrUserNotFound}},
	{"user_exists", http.StatusConflict, []error{user.ErrUserExists}},
}

func classify(err error) (errorKind, bool) {
	for _, kind := range errorKinds {
		for _, target := range kind.errs {
			if errors.Is(err, target) {
				return kind, true
			}
		}
	}
	return errorKind{code: "internal", status: http.StatusInternalServerError, errs: []error{ErrInternal}}, false
}

func kindByCode(code string) (errorKind, bool) {
	for _, kind := range errorKinds {
		if kind.code == code {
			return kind, true
		}
	}
	return errorKind{}, false
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error - ошибка, полученная от сервера.
// errors.Is сопоставляет ее с доменными ошибками по коду ответа.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	kind, ok := kindByCode(e.Code)
	if !ok {
		if e.Status >= http.StatusInternalServerError {
			return target == ErrInternal
		}
		return false
	}
	for _, err := range kind.errs {
		if err == target {
			return true
		}
	}
	return false
}
