package postgres

import (
	"fmt"

	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/user"
	"github.com/VitaminP8/devshare/models"
)

type UserPostgresStorage struct {
	jwtSecret string
}

func NewUserPostgresStorage(jwtSecret string) *UserPostgresStorage {
	return &UserPostgresStorage{jwtSecret: jwtSecret}
}

func (s *UserPostgresStorage) RegisterUser(username, email, password string) (*user.User, error) {
	// проверка - существует ли такой пользователь
	var existUser models.User
	err := DB.Where("username = ? OR email = ?", username, email).First(&existUser).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s", user.ErrUserExists, username)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	err = DB.Create(u).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return toUser(u), nil
}

func (s *UserPostgresStorage) LoginUser(username, password string) (string, error) {
	var u models.User
	err := DB.Where("username = ?", username).First(&u).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", user.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	if err != nil {
		return "", user.ErrInvalidCredentials
	}

	return auth.IssueToken(s.jwtSecret, u.ID, u.Username)
}

func (s *UserPostgresStorage) GetUserById(id string) (*user.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, user.ErrUserNotFound
	}

	var u models.User
	err := DB.First(&u, uid).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toUser(&u), nil
}

func toUser(u *models.User) *user.User {
	return &user.User{
		ID:       fmt.Sprint(u.ID),
		Username: u.Username,
		Email:    u.Email,
	}
}
