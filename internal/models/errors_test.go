package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFoundError("Post", "abc"), fiber.StatusNotFound},
		{"validation", NewValidationError("Text is required"), fiber.StatusBadRequest},
		{"conflict", NewConflictError("Post already liked"), fiber.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("Invalid credentials"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not yours"), fiber.StatusForbidden},
		{"internal", NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("context: %w", NewNotFoundError("User", "x")), fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusForError(tc.err))
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	err := NewInternalError(errors.New("pq: connection refused"))

	// The message presented to clients stays generic; the cause is still
	// reachable for logging.
	assert.Equal(t, "Internal server error", err.Message)
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorContains(t, err.Unwrap(), "connection refused")
}
