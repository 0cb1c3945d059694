package server

import (
	"strconv"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Text string `json:"text"`
}

// CreatePost creates a post authored by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID: userID,
		Text:   req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// GetPosts returns the feed, newest first. Supports optional limit/offset.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return respondError(c, err)
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return respondError(c, err)
	}

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(posts)
}

// GetPost returns a single post with its likes and comments.
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost removes a post owned by the authenticated user.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	if err := s.postService.DeletePost(c.Context(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"msg": "Post removed"})
}

// LikePost records a like and returns the post's updated like list.
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	likes, err := s.postService.LikePost(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(likes)
}

// UnlikePost removes the caller's like and returns the updated like list.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	likes, err := s.postService.UnlikePost(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(likes)
}

func parseQueryInt(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return v, nil
}
