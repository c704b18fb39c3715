// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a local profile anchored to the identity provider's subject
// identifier. The ID is the provider's UUID, never a locally generated key.
// Username and email stay null until the user fills in their profile, so a
// row can exist for someone who has never signed in themselves (they were
// referenced as a bet opponent or friend target first).
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  *string   `gorm:"uniqueIndex;size:50" json:"username"`
	Email     *string   `gorm:"uniqueIndex;size:100" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
