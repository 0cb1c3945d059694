package repository

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, postID, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteOwned(ctx context.Context, id, userID string) (bool, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, postID, id string) (*models.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.NewNotFoundError("Comment", id)
	}

	defer observability.TrackQuery("get", "comments")()

	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", id, postID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		r.log.LogError(ctx, err, "get")
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()

	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// DeleteOwned removes the comment only if userID authored it. The ownership
// predicate rides on the DELETE itself so the removal is a single conditional
// statement against the store.
func (r *commentRepository) DeleteOwned(ctx context.Context, id, userID string) (bool, error) {
	defer observability.TrackQuery("delete", "comments")()

	var owner models.Comment
	_ = r.db.WithContext(ctx).Select("post_id").Where("id = ?", id).Take(&owner).Error

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Comment{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if owner.PostID != "" {
		cache.InvalidatePost(ctx, owner.PostID)
	}
	return true, nil
}
