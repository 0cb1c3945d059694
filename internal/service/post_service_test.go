package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: "hashed",
		Avatar:   "https://example.com/" + name + ".png",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newPostService(db *gorm.DB) *PostService {
	return NewPostService(repository.NewPostRepository(db), repository.NewUserRepository(db))
}

func TestCreatePost(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "alice", "alice@example.com")

	t.Run("rejects empty text", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: user.ID, Text: "   "})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("rejects unknown author", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: "not-a-uuid", Text: "hello"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("copies author name and avatar", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, CreatePostInput{UserID: user.ID, Text: "hello world"})
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.Equal(t, "alice", post.Name)
		assert.Equal(t, user.Avatar, post.Avatar)
		assert.Empty(t, post.Likes)
		assert.Empty(t, post.Comments)
	})

	t.Run("snapshot survives a profile change", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, CreatePostInput{UserID: user.ID, Text: "before rename"})
		require.NoError(t, err)

		require.NoError(t, db.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"name": "alicia", "avatar": "https://example.com/new.png"}).Error)

		got, err := svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Name)
		assert.Equal(t, "https://example.com/alice.png", got.Avatar)

		// A new post picks up the new profile.
		fresh, err := svc.CreatePost(ctx, CreatePostInput{UserID: user.ID, Text: "after rename"})
		require.NoError(t, err)
		assert.Equal(t, "alicia", fresh.Name)
	})
}

func TestGetPost(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(db)
	ctx := context.Background()

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := svc.GetPost(ctx, "definitely-not-a-uuid")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := svc.GetPost(ctx, "7b0d12a4-0000-4000-8000-000000000000")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestListPosts(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(db)
	ctx := context.Background()
	user := createTestUser(t, db, "bob", "bob@example.com")

	// Explicit timestamps keep the ordering deterministic.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"oldest", "middle", "newest"} {
		post := &models.Post{
			UserID:    user.ID,
			Text:      text,
			Name:      user.Name,
			Avatar:    user.Avatar,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(post).Error)
	}

	t.Run("newest first", func(t *testing.T) {
		posts, err := svc.ListPosts(ctx, ListPostsInput{})
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, "newest", posts[0].Text)
		assert.Equal(t, "middle", posts[1].Text)
		assert.Equal(t, "oldest", posts[2].Text)
	})

	t.Run("limit and offset", func(t *testing.T) {
		posts, err := svc.ListPosts(ctx, ListPostsInput{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "middle", posts[0].Text)
	})
}

func TestDeletePost(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(db)
	ctx := context.Background()
	author := createTestUser(t, db, "carol", "carol@example.com")
	other := createTestUser(t, db, "dave", "dave@example.com")

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Text: "mine"})
	require.NoError(t, err)

	_, err = svc.LikePost(ctx, other.ID, post.ID)
	require.NoError(t, err)

	t.Run("only the author may delete", func(t *testing.T) {
		err := svc.DeletePost(ctx, other.ID, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeForbidden, appErr.Code)

		// Nothing was removed.
		got, err := svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, got.Likes, 1)
	})

	t.Run("author delete removes the post and its likes", func(t *testing.T) {
		require.NoError(t, svc.DeletePost(ctx, author.ID, post.ID))

		_, err := svc.GetPost(ctx, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)

		var likeCount int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error)
		assert.Zero(t, likeCount)
	})

	t.Run("deleting a missing post is not found", func(t *testing.T) {
		err := svc.DeletePost(ctx, author.ID, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestLikeUnlikePost(t *testing.T) {
	db := setupTestDB(t)
	svc := newPostService(db)
	ctx := context.Background()
	author := createTestUser(t, db, "erin", "erin@example.com")
	fan := createTestUser(t, db, "frank", "frank@example.com")

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Text: "likeable"})
	require.NoError(t, err)

	t.Run("like adds one entry", func(t *testing.T) {
		likes, err := svc.LikePost(ctx, fan.ID, post.ID)
		require.NoError(t, err)
		require.Len(t, likes, 1)
		assert.Equal(t, fan.ID, likes[0].UserID)
		assert.Equal(t, post.ID, likes[0].PostID)
	})

	t.Run("second like from the same user is a conflict", func(t *testing.T) {
		_, err := svc.LikePost(ctx, fan.ID, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)

		var count int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("unlike removes only the caller's like", func(t *testing.T) {
		_, err := svc.LikePost(ctx, author.ID, post.ID)
		require.NoError(t, err)

		likes, err := svc.UnlikePost(ctx, fan.ID, post.ID)
		require.NoError(t, err)
		require.Len(t, likes, 1)
		assert.Equal(t, author.ID, likes[0].UserID)
	})

	t.Run("unlike without a like is a conflict", func(t *testing.T) {
		_, err := svc.UnlikePost(ctx, fan.ID, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("like on a missing post is not found", func(t *testing.T) {
		_, err := svc.LikePost(ctx, fan.ID, "11111111-2222-4333-8444-555555555555")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestConcurrentLikesConverge(t *testing.T) {
	db := setupTestDB(t)

	// A single connection serializes statements against the in-memory store
	// while still exercising the add-if-absent insert from many goroutines.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	svc := newPostService(db)
	ctx := context.Background()
	author := createTestUser(t, db, "grace", "grace@example.com")
	fan := createTestUser(t, db, "heidi", "heidi@example.com")

	post, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Text: "race me"})
	require.NoError(t, err)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LikePost(ctx, fan.ID, post.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			default:
				var appErr *models.AppError
				if assert.ErrorAs(t, err, &appErr) {
					assert.Equal(t, models.CodeConflict, appErr.Code)
				}
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", post.ID, fan.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
