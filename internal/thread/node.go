package thread

import (
	"github.com/VitaminP8/devshare/internal/comment"
)

// ReplyState - ровно одно из трех состояний ответов узла
type ReplyState int

const (
	RepliesNotFetched ReplyState = iota
	RepliesEmpty
	RepliesLoaded
)

func (s ReplyState) String() string {
	switch s {
	case RepliesEmpty:
		return "empty"
	case RepliesLoaded:
		return "loaded"
	default:
		return "not fetched"
	}
}

// LikeState - локальное (возможно оптимистичное) состояние лайка зрителя
type LikeState struct {
	Count int
	Liked bool
}

// Node - комментарий в дереве обсуждения вместе с локальным состоянием.
// Узлы, которые отдает Thread, - снимки: их изменение не влияет на дерево.
type Node struct {
	Comment    *comment.Comment
	Like       LikeState
	Expanded   bool
	Editing    bool
	Submitting bool
	Loading    bool

	replies  []*Node // валиден только при fetched
	fetched  bool
	detached bool
	liking   bool
	seq      uint64
}

// NewNode строит узел с еще не загруженными ответами
func NewNode(c *comment.Comment, viewerID string) *Node {
	return &Node{
		Comment: c,
		Like:    likeStateOf(c, viewerID),
	}
}

func (n *Node) ID() string { return n.Comment.ID }

func (n *Node) ReplyState() ReplyState {
	switch {
	case !n.fetched:
		return RepliesNotFetched
	case len(n.replies) == 0:
		return RepliesEmpty
	default:
		return RepliesLoaded
	}
}

// Replies возвращает nil, пока ответы не загружены, после загрузки - не-nil срез
func (n *Node) Replies() []*Node {
	if !n.fetched {
		return nil
	}
	return n.replies
}

// setReplies переводит узел в состояние "загружено"
func (n *Node) setReplies(children []*Node) {
	if children == nil {
		children = []*Node{}
	}
	n.replies = children
	n.fetched = true
}

func (n *Node) snapshot() *Node {
	cp := &Node{
		Comment:    n.Comment.Clone(),
		Like:       n.Like,
		Expanded:   n.Expanded,
		Editing:    n.Editing,
		Submitting: n.Submitting,
		Loading:    n.Loading,
		fetched:    n.fetched,
		detached:   n.detached,
		liking:     n.liking,
		seq:        n.seq,
	}
	if n.fetched {
		cp.replies = snapshotAll(n.replies)
	}
	return cp
}

func snapshotAll(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.snapshot())
	}
	return out
}

// IsAuthor - может ли пользователь редактировать и удалять комментарий
func IsAuthor(n *Node, currentUserID string) bool {
	if n == nil || n.Comment == nil || currentUserID == "" {
		return false
	}
	return n.Comment.Author.ID == currentUserID
}

// WithOptimisticLike возвращает копию узла с переключенным лайком.
// Для анонима копия не меняется. Ответы копия делит с оригиналом.
func WithOptimisticLike(n *Node, currentUserID string) *Node {
	cp := *n
	if currentUserID != "" {
		cp.Like = ApplyLike(n.Like, LikeEvent{Kind: LikeToggle})
	}
	return &cp
}

type LikeEventKind int

const (
	LikeToggle LikeEventKind = iota
	LikeConfirm
	LikeRollback
)

// LikeEvent - вход редьюсера ApplyLike.
// Confirm несет ответ сервера и зрителя, Rollback - состояние до переключения.
type LikeEvent struct {
	Kind     LikeEventKind
	Server   *comment.Comment
	ViewerID string
	Previous LikeState
}

// ApplyLike - чистый переход состояния лайка. Счетчик никогда не уходит ниже нуля.
func ApplyLike(s LikeState, ev LikeEvent) LikeState {
	switch ev.Kind {
	case LikeToggle:
		if s.Liked {
			s.Liked = false
			if s.Count > 0 {
				s.Count--
			}
			return s
		}
		s.Liked = true
		s.Count++
		return s
	case LikeConfirm:
		if ev.Server == nil {
			return s
		}
		return likeStateOf(ev.Server, ev.ViewerID)
	case LikeRollback:
		if ev.Previous.Count < 0 {
			ev.Previous.Count = 0
		}
		return ev.Previous
	default:
		return s
	}
}

func likeStateOf(c *comment.Comment, viewerID string) LikeState {
	s := LikeState{Count: c.LikeCount}
	if s.Count < 0 {
		s.Count = 0
	}
	if viewerID != "" {
		s.Liked = c.IsLikedBy(viewerID)
	}
	return s
}
