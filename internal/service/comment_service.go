package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

// CommentService owns the mutation rules for a post's comments.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
}

type AddCommentInput struct {
	UserID string
	PostID string
	Text   string
}

type RemoveCommentInput struct {
	UserID    string
	PostID    string
	CommentID string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// AddComment validates the text, snapshots the commenter's current name and
// avatar, and prepends the comment. Returns the post's comments, most recent
// first.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) ([]models.Comment, error) {
	const maxCommentLen = 10000

	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: in.PostID,
		UserID: in.UserID,
		Text:   in.Text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		observability.RecordMutation("add_comment", "error")
		return nil, err
	}
	observability.RecordMutation("add_comment", "ok")

	return s.commentRepo.ListByPost(ctx, in.PostID)
}

// RemoveComment deletes the comment matched by its own id, not by author.
// Only the comment's author may remove it. Returns the post's remaining
// comments, most recent first.
func (s *CommentService) RemoveComment(ctx context.Context, in RemoveCommentInput) ([]models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	// The ownership predicate is re-checked on the DELETE itself, so a racing
	// removal cannot drop someone else's comment.
	removed, err := s.commentRepo.DeleteOwned(ctx, in.CommentID, in.UserID)
	if err != nil {
		observability.RecordMutation("remove_comment", "error")
		return nil, err
	}
	if !removed {
		observability.RecordMutation("remove_comment", "conflict")
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}
	observability.RecordMutation("remove_comment", "ok")

	return s.commentRepo.ListByPost(ctx, in.PostID)
}
