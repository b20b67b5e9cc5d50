package postgres

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/logger"
	"github.com/VitaminP8/devshare/models"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

var DB *gorm.DB

// GetDB возвращает глобальную переменную DB (для тестирования)
func GetDB() *gorm.DB {
	return DB
}

// InitDB подключается к базе (postgres или sqlite3), мигрирует схему
// и устанавливает глобальную переменную DB
func InitDB(dialect, dsn string, log *zap.Logger) error {
	log = logger.OrNop(log)

	db, err := gorm.Open(dialect, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}

	if dialect == DialectSQLite {
		db.Exec("PRAGMA foreign_keys = ON")
	}
	db.LogMode(false)

	if err := Migrate(db); err != nil {
		db.Close()
		return err
	}

	DB = db
	log.Info("successfully connected to the database", zap.String("dialect", dialect))
	return nil
}

// Migrate создает или обновляет таблицы
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.CommentLike{}).Error
	if err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// CloseDB закрывает соединение с базой данных
func CloseDB() error {
	if DB == nil {
		return nil
	}

	err := DB.Close()
	if err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}

	DB = nil
	return nil
}

// InitDBWithConnection для тестирования (позволяет инъекцию соединения БД)
func InitDBWithConnection(db *gorm.DB) {
	DB = db
}
