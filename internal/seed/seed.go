// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with test data. Every seeded user has the
// password "password123".
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	likes, err := createLikes(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("created %d likes", likes)

	comments, err := createComments(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("created %d comments", comments)

	return nil
}

func clearData(db *gorm.DB) error {
	// Unscoped drops soft-deleted rows as well. Order matters for FK-ish
	// hygiene even though the schema has no hard constraints on likes.
	for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := models.User{
			Name: gofakeit.Name(),
			// Index suffix keeps generated emails unique
			Email:    fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Password: string(hashed),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/200?u=%s", gofakeit.UUID()),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			UserID: author.ID,
			Text:   gofakeit.Paragraph(1, 3, 8, " "),
			// Name and avatar are captured from the author at creation time
			Name:      author.Name,
			Avatar:    author.Avatar,
			CreatedAt: randomPastTime(90),
		}
		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createLikes(db *gorm.DB, users []models.User, posts []models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		// Each post gets likes from a random subset of users. The
		// seen map keeps the (post, user) pairs unique.
		numLikes := rand.Intn(len(users) + 1)
		seen := make(map[string]bool, numLikes)
		for i := 0; i < numLikes; i++ {
			user := users[rand.Intn(len(users))]
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true

			like := models.Like{
				PostID:    post.ID,
				UserID:    user.ID,
				CreatedAt: randomTimeAfter(post.CreatedAt),
			}
			if err := db.Create(&like).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func createComments(db *gorm.DB, users []models.User, posts []models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		numComments := rand.Intn(6)
		for i := 0; i < numComments; i++ {
			author := users[rand.Intn(len(users))]
			comment := models.Comment{
				PostID:    post.ID,
				UserID:    author.ID,
				Text:      gofakeit.Sentence(12),
				Name:      author.Name,
				Avatar:    author.Avatar,
				CreatedAt: randomTimeAfter(post.CreatedAt),
			}
			if err := db.Create(&comment).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// randomPastTime returns a time up to maxDays in the past.
func randomPastTime(maxDays int) time.Time {
	back := time.Duration(rand.Intn(maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

// randomTimeAfter returns a time between t and now.
func randomTimeAfter(t time.Time) time.Time {
	span := time.Since(t)
	if span <= 0 {
		return t
	}
	return t.Add(time.Duration(rand.Int63n(int64(span))))
}
