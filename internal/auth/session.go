package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/VitaminP8/devshare/internal/user"
)

// ProfileResolver превращает сохраненный токен в профиль пользователя
type ProfileResolver func(ctx context.Context, token string) (*user.User, error)

// Session - идентичность текущего пользователя в процессе клиента.
// Init читает сохраненный токен, Logout его стирает. Остальные только читают.
type Session struct {
	mu    sync.RWMutex
	path  string // пустой путь - без сохранения на диск
	token string
	user  *user.User
}

func NewSession(path string) *Session {
	return &Session{path: path}
}

// Init поднимает сессию из файла с токеном.
// Если профиль получить не удалось, токен удаляется и сессия остается анонимной.
func (s *Session) Init(ctx context.Context, resolve ProfileResolver) error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil
	}

	profile, err := resolve(ctx, token)
	if err != nil {
		_ = s.Logout()
		return fmt.Errorf("stored token rejected: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = profile
	s.mu.Unlock()
	return nil
}

// Login запоминает токен и профиль, сохраняя токен на диск
func (s *Session) Login(token string, profile *user.User) error {
	if s.path != "" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return fmt.Errorf("could not create token dir: %w", err)
		}
		if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
			return fmt.Errorf("could not save token: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = profile
	return nil
}

func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not remove token: %w", err)
	}
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser возвращает копию профиля или nil для анонима
func (s *Session) CurrentUser() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}
