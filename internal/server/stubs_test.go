package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sidebet/internal/config"
	"sidebet/internal/models"
	"sidebet/internal/repository"
	"sidebet/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// Repository stubs backed by function fields, so each test overrides only
// the calls it cares about.

type userRepoStub struct {
	getByIDFn     func(ctx context.Context, id string) (*models.User, error)
	getOrCreateFn func(ctx context.Context, id string, email *string) (*models.User, error)
	updateFn      func(ctx context.Context, user *models.User) error
	searchFn      func(ctx context.Context, query, excludeUserID string, limit int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return &models.User{ID: id}, nil
}

func (s *userRepoStub) GetOrCreate(ctx context.Context, id string, email *string) (*models.User, error) {
	if s.getOrCreateFn != nil {
		return s.getOrCreateFn(ctx, id, email)
	}
	return &models.User{ID: id, Email: email}, nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Search(ctx context.Context, query, excludeUserID string, limit int) ([]models.User, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query, excludeUserID, limit)
	}
	return []models.User{}, nil
}

type friendRepoStub struct {
	edgeExistsFn  func(ctx context.Context, userID, friendID string) (bool, error)
	createPairFn  func(ctx context.Context, userID, friendID string) error
	listFriendsFn func(ctx context.Context, userID string) ([]models.User, error)
}

func (s *friendRepoStub) EdgeExists(ctx context.Context, userID, friendID string) (bool, error) {
	if s.edgeExistsFn != nil {
		return s.edgeExistsFn(ctx, userID, friendID)
	}
	return false, nil
}

func (s *friendRepoStub) CreatePair(ctx context.Context, userID, friendID string) error {
	if s.createPairFn != nil {
		return s.createPairFn(ctx, userID, friendID)
	}
	return nil
}

func (s *friendRepoStub) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	if s.listFriendsFn != nil {
		return s.listFriendsFn(ctx, userID)
	}
	return []models.User{}, nil
}

type betRepoStub struct {
	createFn      func(ctx context.Context, bet *models.Bet) error
	getByIDFn     func(ctx context.Context, id uint) (*models.Bet, error)
	listForUserFn func(ctx context.Context, userID string, offset, limit int) ([]models.Bet, error)
	resolveFn     func(ctx context.Context, id uint, winnerID, result string, at time.Time) (*models.Bet, error)
}

func (s *betRepoStub) Create(ctx context.Context, bet *models.Bet) error {
	if s.createFn != nil {
		return s.createFn(ctx, bet)
	}
	bet.ID = 1
	return nil
}

func (s *betRepoStub) GetByID(ctx context.Context, id uint) (*models.Bet, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Bet", id)
}

func (s *betRepoStub) ListForUser(ctx context.Context, userID string, offset, limit int) ([]models.Bet, error) {
	if s.listForUserFn != nil {
		return s.listForUserFn(ctx, userID, offset, limit)
	}
	return []models.Bet{}, nil
}

func (s *betRepoStub) Resolve(ctx context.Context, id uint, winnerID, result string, at time.Time) (*models.Bet, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, id, winnerID, result, at)
	}
	return nil, models.NewConflictError("Bet has already been resolved")
}

// newTestServer wires a Server around stub repositories, skipping DB, Redis
// and metrics setup.
func newTestServer(userRepo repository.UserRepository, friendRepo repository.FriendRepository, betRepo repository.BetRepository) *Server {
	s := &Server{
		config:     &config.Config{Env: "test"},
		userRepo:   userRepo,
		friendRepo: friendRepo,
		betRepo:    betRepo,
	}
	s.userService = service.NewUserService(userRepo)
	s.friendService = service.NewFriendService(friendRepo, userRepo)
	s.betService = service.NewBetService(betRepo, userRepo)
	return s
}

// newTestApp registers the handlers behind a shim that injects the
// authenticated user, standing in for AuthRequired.
func newTestApp(s *Server, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})

	api := app.Group("/api")
	users := api.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/search", s.SearchUsers)

	friends := api.Group("/friends")
	friends.Get("/", s.ListFriends)
	friends.Post("/:friendId", s.AddFriend)

	bets := api.Group("/bets")
	bets.Get("/", s.ListBets)
	bets.Post("/", s.CreateBet)
	bets.Put("/:id/resolve", s.ResolveBet)

	return app
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest), "body: %s", raw)
}
