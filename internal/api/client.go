package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/user"
)

// TokenSource отдает токен текущей сессии (auth.Session)
type TokenSource interface {
	Token() string
}

// Client ходит в JSON API и реализует comment.CommentStorage
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ comment.CommentStorage = (*Client)(nil)

func (c *Client) Register(ctx context.Context, username, email, password string) (*user.User, error) {
	var u user.User
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login возвращает токен и профиль; сохранять их - дело вызывающего
func (c *Client) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	var resp loginResponse
	req := loginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return "", nil, err
	}
	return resp.Token, resp.User, nil
}

// Profile проверяет токен на сервере; подходит как auth.ProfileResolver
func (c *Client) Profile(ctx context.Context, token string) (*user.User, error) {
	var u user.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]*post.Post, error) {
	var posts []*post.Post
	err := c.do(ctx, http.MethodGet, "/posts", c.token(), nil, &posts)
	return posts, err
}

func (c *Client) SearchPosts(ctx context.Context, query string) ([]*post.Post, error) {
	var posts []*post.Post
	err := c.do(ctx, http.MethodGet, "/posts/search?q="+url.QueryEscape(query), c.token(), nil, &posts)
	return posts, err
}

func (c *Client) GetPost(ctx context.Context, postID string) (*post.Post, error) {
	var p post.Post
	if err := c.do(ctx, http.MethodGet, postPath(postID), c.token(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePost(ctx context.Context, title, content string) (*post.Post, error) {
	var p post.Post
	req := postRequest{Title: title, Content: content}
	if err := c.do(ctx, http.MethodPost, "/posts", c.token(), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SetCommentsDisabled(ctx context.Context, postID string, disabled bool) (*post.Post, error) {
	var p post.Post
	req := updatePostRequest{CommentsDisabled: &disabled}
	if err := c.do(ctx, http.MethodPatch, postPath(postID), c.token(), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) FetchComments(ctx context.Context, postID string) ([]*comment.Comment, error) {
	var comments []*comment.Comment
	err := c.do(ctx, http.MethodGet, postPath(postID)+"/comments", c.token(), nil, &comments)
	return comments, err
}

func (c *Client) FetchReplies(ctx context.Context, postID, commentID string) ([]*comment.Comment, error) {
	var replies []*comment.Comment
	err := c.do(ctx, http.MethodGet, commentPath(postID, commentID)+"/replies", c.token(), nil, &replies)
	return replies, err
}

func (c *Client) SubmitComment(ctx context.Context, postID, content, parentID string) (*comment.Comment, error) {
	var created comment.Comment
	req := commentRequest{Content: content, ParentID: parentID}
	if err := c.do(ctx, http.MethodPost, postPath(postID)+"/comments", c.token(), req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) EditComment(ctx context.Context, postID, commentID, content string) (*comment.Comment, error) {
	var updated comment.Comment
	req := commentRequest{Content: content}
	if err := c.do(ctx, http.MethodPut, commentPath(postID, commentID), c.token(), req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) RemoveComment(ctx context.Context, postID, commentID string) error {
	return c.do(ctx, http.MethodDelete, commentPath(postID, commentID), c.token(), nil, nil)
}

func (c *Client) LikeComment(ctx context.Context, postID, commentID string) (*comment.Comment, error) {
	var liked comment.Comment
	if err := c.do(ctx, http.MethodPost, commentPath(postID, commentID)+"/like", c.token(), nil, &liked); err != nil {
		return nil, err
	}
	return &liked, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body errorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if json.Unmarshal(data, &body) == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	} else if text := strings.TrimSpace(string(data)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

func postPath(postID string) string {
	return "/posts/" + url.PathEscape(postID)
}

func commentPath(postID, commentID string) string {
	return postPath(postID) + "/comments/" + url.PathEscape(commentID)
}
