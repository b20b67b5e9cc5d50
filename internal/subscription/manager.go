package subscription

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/comment"
	"github.com/VitaminP8/devshare/internal/logger"
)

// publishTimeout - сколько ждем медленного подписчика, прежде чем пропустить событие
const publishTimeout = 500 * time.Millisecond

type Option func(*SubscriptionManager)

func WithLogger(l *zap.Logger) Option {
	return func(m *SubscriptionManager) { m.log = logger.OrNop(l) }
}

// SubscriptionManager рассылает события комментариев подписчикам поста.
// После Close новые подписки сразу получают закрытый канал.
type SubscriptionManager struct {
	mu     sync.Mutex
	subs   map[string]map[chan comment.Event]struct{} // postID -> каналы подписчиков
	closed bool
	log    *zap.Logger
}

func NewSubscriptionManager(opts ...Option) *SubscriptionManager {
	m := &SubscriptionManager{
		subs: make(map[string]map[chan comment.Event]struct{}),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SubscriptionManager) Subscribe(postID string) (<-chan comment.Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan comment.Event, 1)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	if m.subs[postID] == nil {
		m.subs[postID] = make(map[chan comment.Event]struct{})
	}
	m.subs[postID][ch] = struct{}{}
	m.log.Debug("subscribed", zap.String("post_id", postID), zap.Int("subscribers", len(m.subs[postID])))

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.removeLocked(postID, ch)
		})
	}
	return ch, cancel
}

// removeLocked закрывает канал, если он еще подписан
func (m *SubscriptionManager) removeLocked(postID string, ch chan comment.Event) {
	subscribers, ok := m.subs[postID]
	if !ok {
		return
	}
	if _, ok := subscribers[ch]; !ok {
		return
	}
	delete(subscribers, ch)
	close(ch)
	if len(subscribers) == 0 {
		delete(m.subs, postID)
	}
}

func (m *SubscriptionManager) Publish(event comment.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sub := range m.subs[event.PostID] {
		select {
		case sub <- event:
		case <-time.After(publishTimeout):
			m.log.Warn("slow subscriber, event dropped",
				zap.String("post_id", event.PostID), zap.String("kind", string(event.Kind)))
		}
	}
}

// Subscribers - число активных подписчиков поста
func (m *SubscriptionManager) Subscribers(postID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[postID])
}

// Close закрывает все каналы, чтобы потоки событий завершились
func (m *SubscriptionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for postID, subscribers := range m.subs {
		for ch := range subscribers {
			close(ch)
		}
		delete(m.subs, postID)
	}
}
