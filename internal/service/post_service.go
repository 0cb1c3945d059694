// Package service contains the business rules for posts, comments and users.
package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

// PostService owns the lifecycle of a Post and the mutation rules for its
// likes. All operations take the verified caller identity, never a
// client-supplied id.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID string
	Text   string
}

type ListPostsInput struct {
	Limit  int
	Offset int
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// CreatePost validates the text, snapshots the author's current name and
// avatar onto the post, and persists it. The snapshot is deliberate: a later
// profile change must not rewrite past posts.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxTextLen = 50000

	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Text) > maxTextLen {
		return nil, models.NewValidationError("Text too long (max 50000 characters)")
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID: in.UserID,
		Text:   in.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		observability.RecordMutation("create_post", "error")
		return nil, err
	}
	observability.RecordMutation("create_post", "ok")

	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns posts ordered by creation time descending. Limit zero
// means the full feed.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, in.Limit, in.Offset)
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// DeletePost removes the post and its owned likes and comments. Only the
// author may delete; the check runs before any mutation.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		observability.RecordMutation("delete_post", "error")
		return err
	}
	observability.RecordMutation("delete_post", "ok")
	return nil
}

// LikePost adds the caller's like. A duplicate like is a Conflict and leaves
// the likes untouched. Returns the updated likes, most recent first.
func (s *PostService) LikePost(ctx context.Context, userID, postID string) ([]models.Like, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	added, err := s.postRepo.Like(ctx, postID, userID)
	if err != nil {
		observability.RecordMutation("like", "error")
		return nil, err
	}
	if !added {
		observability.RecordMutation("like", "conflict")
		return nil, models.NewConflictError("Post already liked")
	}
	observability.RecordMutation("like", "ok")

	return s.postRepo.ListLikes(ctx, postID)
}

// UnlikePost removes the caller's like. Unliking a post the caller never
// liked is a Conflict. Returns the updated likes, most recent first.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID string) ([]models.Like, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	removed, err := s.postRepo.Unlike(ctx, postID, userID)
	if err != nil {
		observability.RecordMutation("unlike", "error")
		return nil, err
	}
	if !removed {
		observability.RecordMutation("unlike", "conflict")
		return nil, models.NewConflictError("Post has not yet been liked")
	}
	observability.RecordMutation("unlike", "ok")

	return s.postRepo.ListLikes(ctx, postID)
}
