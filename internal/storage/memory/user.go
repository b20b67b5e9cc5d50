package memory

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/user"

	"golang.org/x/crypto/bcrypt"
)

type UserMemoryStorage struct {
	mu        sync.Mutex
	users     map[string]*user.User // username -> user
	byID      map[string]*user.User
	passwords map[string]string
	nextId    int
	jwtSecret string
}

func NewUserMemoryStorage(jwtSecret string) *UserMemoryStorage {
	return &UserMemoryStorage{
		users:     make(map[string]*user.User),
		byID:      make(map[string]*user.User),
		passwords: make(map[string]string),
		nextId:    1,
		jwtSecret: jwtSecret,
	}
}

func (s *UserMemoryStorage) RegisterUser(username, email, password string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, fmt.Errorf("%w: %s", user.ErrUserExists, username)
	}
	for _, u := range s.users {
		if u.Email == email {
			return nil, fmt.Errorf("%w: %s", user.ErrUserExists, email)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := strconv.Itoa(s.nextId)
	s.nextId++

	u := &user.User{
		ID:       id,
		Username: username,
		Email:    email,
	}

	s.users[username] = u
	s.byID[id] = u
	s.passwords[username] = string(hashedPassword)

	cp := *u
	return &cp, nil
}

func (s *UserMemoryStorage) LoginUser(username, password string) (string, error) {
	s.mu.Lock()
	u, exists := s.users[username]
	hashedPassword := s.passwords[username]
	s.mu.Unlock()

	if !exists {
		return "", user.ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return "", user.ErrInvalidCredentials
	}

	id, err := strconv.Atoi(u.ID)
	if err != nil {
		return "", fmt.Errorf("invalid user id %s: %w", u.ID, err)
	}
	return auth.IssueToken(s.jwtSecret, uint(id), u.Username)
}

func (s *UserMemoryStorage) GetUserById(id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
