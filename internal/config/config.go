package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

// DSN - строка подключения для postgres
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

type Config struct {
	JWTSecret  string
	DB         DBConfig
	SQLitePath string
	Addr       string
	APIURL     string
	TokenPath  string
}

// LoadEnv загружает .env, если он есть. Отсутствие файла - не ошибка.
func LoadEnv(filenames ...string) bool {
	return godotenv.Load(filenames...) == nil
}

// GetEnv возвращает обязательную переменную окружения
func GetEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("environment variable %s is not set", key)
	}
	return value, nil
}

func getEnvDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// Load собирает конфигурацию из окружения (после LoadEnv)
func Load() Config {
	return Config{
		JWTSecret: os.Getenv("JWT_SECRET"),
		DB: DBConfig{
			Host:     getEnvDefault("DB_HOST", "localhost"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnvDefault("DB_PORT", "5432"),
			SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
		},
		SQLitePath: getEnvDefault("SQLITE_PATH", "devshare.db"),
		Addr:       getEnvDefault("SERVER_ADDR", ":8080"),
		APIURL:     getEnvDefault("DEVSHARE_API", "http://localhost:8080"),
		TokenPath:  getEnvDefault("DEVSHARE_TOKEN", defaultTokenPath()),
	}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".devshare-token"
	}
	return filepath.Join(home, ".devshare", "token")
}

// RequireJWTSecret - серверу без секрета стартовать нельзя
func (c Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("environment variable JWT_SECRET is not set")
	}
	return nil
}
