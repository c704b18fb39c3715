package repository

import (
	"context"
	"log"
	"os"
	"testing"

	"sidebet/internal/config"
	"sidebet/internal/database"
	"sidebet/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Integration tests against a real Postgres instance. When no database is
// reachable the whole package is skipped so unit test runs stay green.

var testDB *gorm.DB

func TestMain(m *testing.M) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("skipping repository tests: config: %v", err)
		os.Exit(0)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Printf("skipping repository tests: database unavailable: %v", err)
		os.Exit(0)
	}
	testDB = db

	os.Exit(m.Run())
}

// seedUser inserts a directory row with a random ID and registers cleanup of
// everything hanging off it.
func seedUser(t *testing.T, username *string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.NewString(), Username: username}
	if err := testDB.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	cleanupUser(t, user.ID)
	return user
}

func cleanupUser(t *testing.T, id string) {
	t.Helper()
	t.Cleanup(func() {
		testDB.Where("user_id = ? OR friend_id = ?", id, id).Delete(&models.Friendship{})
		testDB.Where("creator_id = ? OR opponent_id = ?", id, id).Delete(&models.Bet{})
		testDB.Where("id = ?", id).Delete(&models.User{})
	})
}

func testCtx() context.Context {
	return context.Background()
}
