package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/devshare/internal/auth"
	"github.com/VitaminP8/devshare/internal/post"
	"github.com/VitaminP8/devshare/models"
)

func createUserContext(userID uint) context.Context {
	ctx := context.Background()
	return auth.WithUserID(ctx, userID)
}

// setupTestDB создает тестовую БД в памяти и выполняет миграции
func setupTestDB(t *testing.T) *gorm.DB {
	// Сохраняем оригинальное соединение (если оно есть)
	oldDB := GetDB()

	db, err := gorm.Open(DialectSQLite, ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory SQLite")

	// у каждого соединения своя база в памяти
	db.DB().SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys = ON")
	db.LogMode(false)

	require.NoError(t, Migrate(db), "Failed to migrate database schema")
	InitDBWithConnection(db)

	t.Cleanup(func() { db.Close() })
	return oldDB
}

// teardownTestDB восстанавливает оригинальную базу данных
func teardownTestDB(db *gorm.DB) {
	InitDBWithConnection(db)
}

// createTestUser создает тестового пользователя и возвращает его ID
func createTestUser(t *testing.T, username string) uint {
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}

	err := DB.Create(u).Error
	require.NoError(t, err, "Failed to create test user")

	return u.ID
}

// createTestPost создает тестовый пост и возвращает его ID
func createTestPost(t *testing.T, userID uint, title, content string) uint {
	p := &models.Post{
		Title:   title,
		Content: content,
		UserID:  userID,
	}

	err := DB.Create(p).Error
	require.NoError(t, err, "Failed to create test post")

	return p.ID
}

func TestPostPostgresStorage_CreatePost(t *testing.T) {
	storage := NewPostPostgresStorage()

	t.Run("Success post creation", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "testuser")
		ctx := createUserContext(userID)

		p, err := storage.CreatePost(ctx, "Test Post Title", "This is a test post content")
		require.NoError(t, err)
		assert.Equal(t, "Test Post Title", p.Title)
		assert.Equal(t, fmt.Sprint(userID), p.AuthorID)
		assert.False(t, p.CommentsDisabled)
		assert.False(t, p.CreatedAt.IsZero())

		// Проверяем, что пост действительно создался в БД
		var dbPost models.Post
		err = DB.First(&dbPost, p.ID).Error
		assert.NoError(t, err)
		assert.Equal(t, userID, dbPost.UserID)
	})

	t.Run("Error: empty content", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		_, err := storage.CreatePost(createUserContext(1), "Title", "  ")
		assert.ErrorIs(t, err, post.ErrInvalidPost)
	})

	t.Run("Error: no authorization", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		p, err := storage.CreatePost(context.Background(), "Test Title", "Test Content")
		assert.Error(t, err)
		assert.Nil(t, p)
		assert.Contains(t, err.Error(), "unauthorized")
	})
}

func TestPostPostgresStorage_GetPostById(t *testing.T) {
	storage := NewPostPostgresStorage()

	t.Run("Getting exists post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		userID := createTestUser(t, "testuser")
		postID := createTestPost(t, userID, "Test Post Title", "content")

		p, err := storage.GetPostById(fmt.Sprint(postID))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(postID), p.ID)
		assert.Equal(t, "Test Post Title", p.Title)
	})

	t.Run("Trying to get not exist post", func(t *testing.T) {
		oldDB := setupTestDB(t)
		defer teardownTestDB(oldDB)

		_, err := storage.GetPostById("999")
		assert.ErrorIs(t, err, post.ErrPostNotFound)

		_, err = storage.GetPostById("1 OR 1=1")
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})
}

func TestPostPostgresStorage_ListAndSearch(t *testing.T) {
	storage := NewPostPostgresStorage()
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	userID := createTestUser(t, "testuser")
	createTestPost(t, userID, "Go channels", "select and close")
	createTestPost(t, userID, "Databases", "gorm with GO")
	createTestPost(t, userID, "Gardening", "tomatoes")

	t.Run("Get all posts newest first", func(t *testing.T) {
		posts, err := storage.GetAllPosts()
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, "Gardening", posts[0].Title)
		assert.Equal(t, "Go channels", posts[2].Title)
	})

	t.Run("Search is case insensitive", func(t *testing.T) {
		posts, err := storage.SearchPosts("go")
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "Databases", posts[0].Title)
		assert.Equal(t, "Go channels", posts[1].Title)
	})

	t.Run("Search without match", func(t *testing.T) {
		posts, err := storage.SearchPosts("kotlin")
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestPostPostgresStorage_CommentsToggle(t *testing.T) {
	storage := NewPostPostgresStorage()
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	otherID := createTestUser(t, "other")
	postID := fmt.Sprint(createTestPost(t, authorID, "Title", "Content"))

	t.Run("Disable comments by author", func(t *testing.T) {
		require.NoError(t, storage.DisableComment(createUserContext(authorID), postID))

		p, err := storage.GetPostById(postID)
		require.NoError(t, err)
		assert.True(t, p.CommentsDisabled)
	})

	t.Run("Enable comments by author", func(t *testing.T) {
		require.NoError(t, storage.EnableComment(createUserContext(authorID), postID))

		p, err := storage.GetPostById(postID)
		require.NoError(t, err)
		assert.False(t, p.CommentsDisabled)
	})

	t.Run("Disable comments by not author", func(t *testing.T) {
		err := storage.DisableComment(createUserContext(otherID), postID)
		assert.ErrorIs(t, err, post.ErrNotAuthor)
	})

	t.Run("Disable comment for not exists post", func(t *testing.T) {
		err := storage.DisableComment(createUserContext(authorID), "999")
		assert.ErrorIs(t, err, post.ErrPostNotFound)
	})

	t.Run("Disable comment by unauthorized user", func(t *testing.T) {
		err := storage.DisableComment(context.Background(), postID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unauthorized")
	})
}

func TestPostPostgresStorage_DeletePostById(t *testing.T) {
	storage := NewPostPostgresStorage()
	oldDB := setupTestDB(t)
	defer teardownTestDB(oldDB)

	authorID := createTestUser(t, "author")
	otherID := createTestUser(t, "other")
	postID := createTestPost(t, authorID, "Title", "Content")
	require.NoError(t, DB.Create(&models.Comment{PostID: postID, UserID: otherID, Content: "hi"}).Error)

	t.Run("Delete post by not author", func(t *testing.T) {
		err := storage.DeletePostById(createUserContext(otherID), fmt.Sprint(postID))
		assert.ErrorIs(t, err, post.ErrNotAuthor)
	})

	t.Run("Delete post by author", func(t *testing.T) {
		require.NoError(t, storage.DeletePostById(createUserContext(authorID), fmt.Sprint(postID)))

		_, err := storage.GetPostById(fmt.Sprint(postID))
		assert.ErrorIs(t, err, post.ErrPostNotFound)

		var count int
		require.NoError(t, DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error)
		assert.Equal(t, 0, count)
	})
}
