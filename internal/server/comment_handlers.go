package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Text string `json:"text"`
}

// CreateComment adds a comment to a post and returns the post's comments.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	comments, err := s.commentService.AddComment(c.Context(), service.AddCommentInput{
		UserID: userID,
		PostID: c.Params("id"),
		Text:   req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(comments)
}

// DeleteComment removes a comment owned by the authenticated user and
// returns the post's remaining comments.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	comments, err := s.commentService.RemoveComment(c.Context(), service.RemoveCommentInput{
		UserID:    userID,
		PostID:    c.Params("id"),
		CommentID: c.Params("comment_id"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(comments)
}
