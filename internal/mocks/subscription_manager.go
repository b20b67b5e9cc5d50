package mocks

import (
	"sync"

	"github.com/VitaminP8/devshare/internal/comment"
)

// MockSubscriptionManager запоминает опубликованные события для проверок в тестах
type MockSubscriptionManager struct {
	mu            sync.Mutex
	subs          map[string][]chan comment.Event
	notifications map[string][]comment.Event
}

func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		subs:          make(map[string][]chan comment.Event),
		notifications: make(map[string][]comment.Event),
	}
}

func (m *MockSubscriptionManager) Subscribe(postID string) (<-chan comment.Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan comment.Event, 16)
	m.subs[postID] = append(m.subs[postID], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subscribers := m.subs[postID]
			for i, sub := range subscribers {
				if sub == ch {
					m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}

	return ch, cancel
}

// Publish не блокируется: переполненный подписчик просто пропускает событие
func (m *MockSubscriptionManager) Publish(event comment.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[event.PostID] {
		select {
		case sub <- event:
		default:
		}
	}

	m.notifications[event.PostID] = append(m.notifications[event.PostID], event)
}

// GetNotificationsForPost возвращает все события конкретного поста
func (m *MockSubscriptionManager) GetNotificationsForPost(postID string) []comment.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]comment.Event(nil), m.notifications[postID]...)
}
