package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey struct{}

// ErrNoUser - в контексте нет пользователя, запрос анонимный
var ErrNoUser = errors.New("user ID not found in context")

func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

func GetUserIDFromContext(ctx context.Context) (uint, error) {
	id, ok := ctx.Value(contextKey{}).(uint)
	if !ok || id == 0 {
		return 0, ErrNoUser
	}
	return id, nil
}

// AuthMiddleware кладет в контекст user_id из Bearer токена.
// Без токена или с невалидным токеном запрос идет дальше анонимным,
// решение о доступе принимают обработчики.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			if secret == "" {
				http.Error(w, "JWT secret not set", http.StatusInternalServerError)
				return
			}

			userID, err := ParseToken(secret, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// bearerToken - токен из "Bearer <token>", схема без учета регистра
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
