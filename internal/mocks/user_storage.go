package mocks

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/VitaminP8/devshare/internal/user"
)

// MockUserStorage реализует интерфейс user.UserStorage для тестирования
type MockUserStorage struct {
	mu        sync.Mutex
	users     map[string]*user.User // username -> user
	emails    map[string]string     // email -> username
	passwords map[string]string     // username -> password
	nextID    int
}

func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:     make(map[string]*user.User),
		emails:    make(map[string]string),
		passwords: make(map[string]string),
		nextID:    1,
	}
}

func (m *MockUserStorage) RegisterUser(username, email, password string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; exists {
		return nil, fmt.Errorf("%w: %s", user.ErrUserExists, username)
	}
	if _, exists := m.emails[email]; exists {
		return nil, fmt.Errorf("%w: %s", user.ErrUserExists, email)
	}

	id := m.nextID
	m.nextID++

	u := &user.User{
		ID:       strconv.Itoa(id),
		Username: username,
		Email:    email,
	}

	m.users[username] = u
	m.emails[email] = username
	m.passwords[username] = password

	cp := *u
	return &cp, nil
}

// LoginUser возвращает псевдо-токен (для тестов просто строка)
func (m *MockUserStorage) LoginUser(username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, exists := m.users[username]
	if !exists || m.passwords[username] != password {
		return "", user.ErrInvalidCredentials
	}

	return "jwt-token-for-user-" + u.ID, nil
}

func (m *MockUserStorage) GetUserById(id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}
