// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations.
//
// Like and Unlike are single conditional statements against the store, never
// fetch-then-save: the unique (post_id, user_id) index plus ON CONFLICT DO
// NOTHING makes concurrent duplicate likes converge to one row.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, postID, userID string) (bool, error)
	Unlike(ctx context.Context, postID, userID string) (bool, error)
	ListLikes(ctx context.Context, postID string) ([]models.Like, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// orderedLikes and orderedComments keep the owned collections most-recent-first.
func orderedLikes(db *gorm.DB) *gorm.DB {
	return db.Order("likes.created_at DESC")
}

func orderedComments(db *gorm.DB) *gorm.DB {
	return db.Order("comments.created_at DESC")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	cache.Invalidate(ctx, cache.PostsListKey)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	// The store's kind-tagged malformed-identifier failure maps to NotFound:
	// an id that does not parse cannot name any document.
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.NewNotFoundError("Post", id)
	}

	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Likes", orderedLikes).
			Preload("Comments", orderedComments).
			First(&post, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	fetch := func(dest *[]*models.Post) error {
		q := r.db.WithContext(ctx).
			Preload("Likes", orderedLikes).
			Preload("Comments", orderedComments).
			Order("created_at DESC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		if offset > 0 {
			q = q.Offset(offset)
		}
		return q.Find(dest).Error
	}

	var posts []*models.Post
	if limit == 0 && offset == 0 {
		err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.PostsListTTL, func() error {
			return fetch(&posts)
		})
		return posts, err
	}
	return posts, fetch(&posts)
}

// Delete removes the post together with its owned likes and comments in one
// transaction. The sub-collections have no lifecycle outside their post.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	r.log.LogMutation(ctx, "delete", map[string]interface{}{"post_id": id})
	cache.InvalidatePost(ctx, id)
	return nil
}

// Like atomically adds the (post, user) membership. Returns false when the
// user had already liked the post; no row is written in that case.
func (r *postRepository) Like(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("like", "likes")()

	like := models.Like{PostID: postID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "like")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidatePost(ctx, postID)
	return true, nil
}

// Unlike atomically removes the (post, user) membership. Returns false when
// no such like existed.
func (r *postRepository) Unlike(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("unlike", "likes")()

	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "unlike")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidatePost(ctx, postID)
	return true, nil
}

func (r *postRepository) ListLikes(ctx context.Context, postID string) ([]models.Like, error) {
	defer observability.TrackQuery("list", "likes")()

	var likes []models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}
