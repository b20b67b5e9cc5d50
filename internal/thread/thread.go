package thread

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/logger"
	"github.com/VitaminP8/devshare/internal/user"
)

// Identity - доступ к текущему пользователю только на чтение (auth.Session)
type Identity interface {
	CurrentUser() *user.User
}

// Confirmer - блокирующее подтверждение действия пользователем
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Hooks вызываются после успешных изменений, чтобы страница перечитала список
type Hooks struct {
	OnCommentAdded   func(ctx context.Context)
	OnCommentUpdated func(ctx context.Context)
	OnCommentDeleted func(ctx context.Context)
}

type Option func(*Thread)

func WithHooks(h Hooks) Option {
	return func(t *Thread) { t.hooks = h }
}

func WithConfirmer(c Confirmer) Option {
	return func(t *Thread) { t.confirm = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Thread) { t.log = logger.OrNop(l) }
}

// Thread - дерево комментариев одного поста.
// Узлы хранятся в арене по id; дерево меняется только под mu,
// вызовы хранилища идут без блокировки.
type Thread struct {
	postID   string
	store    comment.CommentStorage
	identity Identity
	confirm  Confirmer
	hooks    Hooks
	log      *zap.Logger

	mu    sync.Mutex
	roots []*Node
	nodes map[string]*Node
	seq   uint64

	loads singleflight.Group
}

func New(postID string, store comment.CommentStorage, identity Identity, opts ...Option) *Thread {
	t := &Thread{
		postID:   postID,
		store:    store,
		identity: identity,
		log:      zap.NewNop(),
		nodes:    make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Thread) PostID() string { return t.postID }

// Load перечитывает корневые комментарии поста и заменяет ими дерево
func (t *Thread) Load(ctx context.Context) error {
	comments, err := t.store.FetchComments(ctx, t.postID)
	if err != nil {
		return &NetworkError{Op: "fetch comments", Err: err}
	}
	t.Reset(comments)
	return nil
}

// Reset заменяет дерево каноническим списком. Все прежние узлы отсоединяются,
// поэтому запоздавшие ответы для них отбрасываются.
func (t *Thread) Reset(comments []*comment.Comment) {
	viewer := t.viewerID()

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, n := range t.nodes {
		n.detached = true
	}

	t.nodes = make(map[string]*Node, len(comments))
	t.roots = make([]*Node, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		if _, dup := t.nodes[c.ID]; dup {
			t.log.Warn("duplicate top-level comment skipped", zap.String("comment_id", c.ID))
			continue
		}
		n := t.newNodeLocked(c, viewer)
		t.roots = append(t.roots, n)
	}
}

func (t *Thread) newNodeLocked(c *comment.Comment, viewer string) *Node {
	t.seq++
	n := NewNode(c.Clone(), viewer)
	n.seq = t.seq
	t.nodes[c.ID] = n
	return n
}

// Roots - снимок корневых узлов в порядке сервера
func (t *Thread) Roots() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return snapshotAll(t.roots)
}

// Node - снимок одного узла вместе с загруженным поддеревом
func (t *Thread) Node(commentID string) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[commentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, commentID)
	}
	return n.snapshot(), nil
}

// Remove отсоединяет узел вместе с поддеревом
func (t *Thread) Remove(commentID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[commentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, commentID)
	}

	if pid := n.Comment.ParentID; pid != nil {
		if parent, ok := t.nodes[*pid]; ok && parent.fetched {
			parent.replies = withoutNode(parent.replies, n)
		}
	} else {
		t.roots = withoutNode(t.roots, n)
	}

	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, cur.replies...)
		cur.detached = true
		if t.nodes[cur.ID()] == cur {
			delete(t.nodes, cur.ID())
		}
	}
	return nil
}

// Total - число комментариев, загруженных в память
func (t *Thread) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return AggregateTotal(t.roots)
}

func (t *Thread) Collapse(commentID string) error {
	return t.update(commentID, func(n *Node) { n.Expanded = false })
}

func (t *Thread) SetEditing(commentID string, editing bool) error {
	return t.update(commentID, func(n *Node) { n.Editing = editing })
}

func (t *Thread) update(commentID string, fn func(n *Node)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[commentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, commentID)
	}
	fn(n)
	return nil
}

func (t *Thread) viewerID() string {
	if t.identity == nil {
		return ""
	}
	u := t.identity.CurrentUser()
	if u == nil {
		return ""
	}
	return u.ID
}

func withoutNode(nodes []*Node, target *Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}
