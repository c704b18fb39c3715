package server

import (
	"sidebet/internal/models"
	"sidebet/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListBets handles GET /api/bets
func (s *Server) ListBets(c *fiber.Ctx) error {
	p := parsePagination(c)

	bets, err := s.betService.ListBets(c.Context(), currentUserID(c), p.Skip, p.Limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(bets)
}

// CreateBet handles POST /api/bets
func (s *Server) CreateBet(c *fiber.Ctx) error {
	var req createBetRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewInvalidArgumentError("Invalid request body"))
	}
	if err := validateRequest(&req); err != nil {
		return models.RespondWithError(c, err)
	}

	bet, err := s.betService.CreateBet(c.Context(), service.CreateBetInput{
		CreatorID:   currentUserID(c),
		OpponentID:  req.OpponentID,
		Description: req.Description,
		Wager:       req.Wager,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(bet)
}

// ResolveBet handles PUT /api/bets/:id/resolve
func (s *Server) ResolveBet(c *fiber.Ctx) error {
	betID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req resolveBetRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewInvalidArgumentError("Invalid request body"))
	}
	if err := validateRequest(&req); err != nil {
		return models.RespondWithError(c, err)
	}

	bet, err := s.betService.ResolveBet(c.Context(), service.ResolveBetInput{
		BetID:       betID,
		RequestorID: currentUserID(c),
		WinnerID:    req.WinnerID,
		Result:      req.Result,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(bet)
}
