package models

import "time"

// Friendship is one directed edge of a symmetric friend relation. Every
// friendship is stored as a pair of rows, (A,B) and (B,A), inserted in a
// single transaction so the relation can never be half-written. The unique
// index on the ordered pair makes repeated inserts a no-op.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_friendship_pair" json:"user_id"`
	FriendID  string    `gorm:"size:36;not null;uniqueIndex:idx_friendship_pair" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User   User `gorm:"foreignKey:UserID" json:"-"`
	Friend User `gorm:"foreignKey:FriendID" json:"-"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}
