package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/user"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updatePostRequest struct {
	CommentsDisabled *bool `json:"commentsDisabled"`
}

type commentRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parentId,omitempty"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.writeError(w, r, fmt.Errorf("%w: username, email and password are required", ErrBadRequest))
		return
	}

	u, err := h.users.RegisterUser(req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.users.LoginUser(req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	userID, err := auth.ParseToken(h.secret, token)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("issued token is invalid: %w", err))
		return
	}

	u, err := h.users.GetUserById(fmt.Sprint(userID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	u, err := h.users.GetUserById(fmt.Sprint(userID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// listPosts отдает все посты, ?author= оставляет посты одного автора
func (h *handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.GetAllPosts()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if author := r.URL.Query().Get("author"); author != "" {
		filtered := make([]*post.Post, 0, len(posts))
		for _, p := range posts {
			if p.AuthorID == author {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handler) searchPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.SearchPosts(r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handler) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.GetPostById(chi.URLParam(r, "postID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.CreatePost(r.Context(), req.Title, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// updatePost включает или отключает комментарии
func (h *handler) updatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.CommentsDisabled == nil {
		h.writeError(w, r, fmt.Errorf("%w: commentsDisabled is required", ErrBadRequest))
		return
	}

	postID := chi.URLParam(r, "postID")
	var err error
	if *req.CommentsDisabled {
		err = h.posts.DisableComment(r.Context(), postID)
	} else {
		err = h.posts.EnableComment(r.Context(), postID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.GetPostById(postID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.DeletePostById(r.Context(), chi.URLParam(r, "postID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.FetchComments(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *handler) listReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.comments.FetchReplies(r.Context(), chi.URLParam(r, "postID"), chi.URLParam(r, "commentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, replies)
}

func (h *handler) createComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.comments.SubmitComment(r.Context(), chi.URLParam(r, "postID"), req.Content, req.ParentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) updateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.comments.EditComment(r.Context(), chi.URLParam(r, "postID"), chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.comments.RemoveComment(r.Context(), chi.URLParam(r, "postID"), chi.URLParam(r, "commentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) likeComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.comments.LikeComment(r.Context(), chi.URLParam(r, "postID"), chi.URLParam(r, "commentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
