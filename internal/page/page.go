package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/logger"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/internal/thread"
)

const emptyThread = "No comments yet. Be the first to comment!"

type Option func(*options)

type options struct {
	post    *post.Post
	confirm  thread.Confirmer
	log      *zap.Logger
	onChange func()
}

// WithPost - заголовок и текст поста для Render
func WithPost(p *post.Post) Option {
	return func(o *options) { o.post = p }
}

func WithConfirmer(c thread.Confirmer) Option {
	return func(o *options) { o.confirm = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithOnChange вызывается после каждого удачного обновления в Watch
func WithOnChange(fn func()) Option {
	return func(o *options) { o.onChange = fn }
}

// PostPage - страница поста. Владеет каноническим списком комментариев
// и перечитывает его после каждого изменения в дереве.
type PostPage struct {
	postID string
	post   *post.Post
	thread   *thread.Thread
	log      *zap.Logger
	onChange func()
}

func New(postID string, store comment.CommentStorage, identity thread.Identity, opts ...Option) *PostPage {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &PostPage{
		postID:   postID,
		post:     o.post,
		log:      logger.OrNop(o.log),
		onChange: o.onChange,
	}

	refresh := func(ctx context.Context) {
		if err := p.Refresh(ctx); err != nil {
			p.log.Warn("refresh after change failed", zap.String("post_id", postID), zap.Error(err))
		}
	}

	p.thread = thread.New(postID, store, identity,
		thread.WithHooks(thread.Hooks{
			OnCommentAdded:   refresh,
			OnCommentUpdated: refresh,
			OnCommentDeleted: refresh,
		}),
		thread.WithConfirmer(o.confirm),
		thread.WithLogger(p.log),
	)
	return p
}

func (p *PostPage) Thread() *thread.Thread { return p.thread }

// Refresh перечитывает список и заново раскрывает ветки, открытые до этого
func (p *PostPage) Refresh(ctx context.Context) error {
	var expanded []string
	thread.Walk(p.thread.Roots(), func(_ int, n *thread.Node) bool {
		if n.Expanded {
			expanded = append(expanded, n.ID())
		}
		return true
	})

	if err := p.thread.Load(ctx); err != nil {
		return err
	}

	for _, id := range expanded {
		_, err := p.thread.Expand(ctx, id)
		if err != nil && !errors.Is(err, thread.ErrNotFound) {
			return err
		}
	}
	return nil
}

// Watch перечитывает список на каждое событие поста, пока не закроется
// канал или не отменится ctx. Накопившиеся события дают одно обновление.
func (p *PostPage) Watch(ctx context.Context, events <-chan comment.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !drain(events) {
				return nil
			}
			p.log.Debug("post changed", zap.String("post_id", p.postID), zap.String("kind", string(ev.Kind)))
			if err := p.Refresh(ctx); err != nil {
				p.log.Warn("live refresh failed", zap.String("post_id", p.postID), zap.Error(err))
				continue
			}
			if p.onChange != nil {
				p.onChange()
			}
		}
	}
}

// drain выбирает уже пришедшие события; false - канал закрыт
func drain(events <-chan comment.Event) bool {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// Render печатает пост и раскрытую часть дерева
func (p *PostPage) Render(w io.Writer) error {
	var b strings.Builder

	if p.post != nil {
		fmt.Fprintf(&b, "%s\n%s\n\n", p.post.Title, p.post.Content)
	}

	roots := p.thread.Roots()
	fmt.Fprintf(&b, "Comments (%d)\n", thread.AggregateTotal(roots))
	if len(roots) == 0 {
		b.WriteString(emptyThread + "\n")
	}

	thread.WalkExpanded(roots, func(depth int, n *thread.Node) bool {
		renderNode(&b, depth, n)
		return true
	})

	_, err := io.WriteString(w, b.String())
	return err
}

func renderNode(b *strings.Builder, depth int, n *thread.Node) {
	indent := strings.Repeat("  ", depth)
	c := n.Comment

	heart := "♡"
	if n.Like.Liked {
		heart = "♥"
	}
	fmt.Fprintf(b, "%s[%s] %s: %s  %s %d\n", indent, c.ID, authorName(c), c.Content, heart, n.Like.Count)

	switch {
	case n.Loading:
		fmt.Fprintf(b, "%s  loading replies...\n", indent)
	case !n.Expanded && hiddenReplies(n) > 0:
		fmt.Fprintf(b, "%s  show %d %s\n", indent, hiddenReplies(n), plural(hiddenReplies(n), "reply", "replies"))
	}
}

// hiddenReplies - загруженные ответы, а до загрузки - счетчик сервера
func hiddenReplies(n *thread.Node) int {
	if n.ReplyState() == thread.RepliesNotFetched {
		return n.Comment.ReplyCount
	}
	return len(n.Replies())
}

func authorName(c *comment.Comment) string {
	if c.Author.Name != "" {
		return c.Author.Name
	}
	return "user " + c.Author.ID
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
