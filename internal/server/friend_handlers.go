package server

import (
	"sidebet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListFriends handles GET /api/friends
func (s *Server) ListFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.ListFriends(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(friends)
}

// AddFriend handles POST /api/friends/:friendId
func (s *Server) AddFriend(c *fiber.Ctx) error {
	friendID := c.Params("friendId")
	if friendID == "" {
		return models.RespondWithError(c,
			models.NewInvalidArgumentError("Invalid friend ID"))
	}

	if err := s.friendService.AddFriend(c.Context(), currentUserID(c), friendID); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"detail": "Friend added",
	})
}
