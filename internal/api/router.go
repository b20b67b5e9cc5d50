package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/logger"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/subscription"
	"github.com/VitaminP8/devshare/internal/user"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Posts     post.PostStorage
	Users     user.UserStorage
	Comments  comment.CommentStorage
	Events    subscription.Manager // nil - без потока событий
	JWTSecret string
	Logger    *zap.Logger
}

type handler struct {
	posts    post.PostStorage
	users    user.UserStorage
	comments comment.CommentStorage
	events   subscription.Manager
	secret   string
	log      *zap.Logger
}

// NewRouter собирает JSON API поверх хранилищ
func NewRouter(d Deps) http.Handler {
	h := &handler{
		posts:    d.Posts,
		users:    d.Users,
		comments: d.Comments,
		events:   d.Events,
		secret:   d.JWTSecret,
		log:      logger.OrNop(d.Logger),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(auth.AuthMiddleware(d.JWTSecret))

	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	r.Get("/posts", h.listPosts)
	r.Get("/posts/search", h.searchPosts)
	r.Get("/posts/{postID}", h.getPost)
	r.Get("/posts/{postID}/comments", h.listComments)
	r.Get("/posts/{postID}/comments/{commentID}/replies", h.listReplies)
	if h.events != nil {
		r.Get("/posts/{postID}/events", h.streamEvents)
	}

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/auth/profile", h.profile)

		r.Post("/posts", h.createPost)
		r.Patch("/posts/{postID}", h.updatePost)
		r.Delete("/posts/{postID}", h.deletePost)

		r.Post("/posts/{postID}/comments", h.createComment)
		r.Put("/posts/{postID}/comments/{commentID}", h.updateComment)
		r.Delete("/posts/{postID}/comments/{commentID}", h.deleteComment)
		r.Post("/posts/{postID}/comments/{commentID}/like", h.likeComment)
	})

	return r
}

// requestID берет X-Request-ID клиента или выдает новый uuid
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// requireUser пропускает только запросы с валидным токеном
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.GetUserIDFromContext(r.Context()); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: comment.ErrUnauthenticated.Error(),
				Code:  "unauthenticated",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, known := classify(err)
	msg := err.Error()
	if !known {
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		msg = ErrInternal.Error()
	}
	writeJSON(w, kind.status, errorResponse{Error: msg, Code: kind.code})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
