package models

import "time"

// BetStatus represents the lifecycle state of a bet.
type BetStatus string

const (
	// BetStatusPending indicates a bet that has not been resolved yet.
	BetStatusPending BetStatus = "pending"
	// BetStatusActive is accepted when reading rows but no operation
	// currently transitions a bet into it.
	BetStatusActive BetStatus = "active"
	// BetStatusResolved indicates a bet with a recorded winner. Terminal.
	BetStatusResolved BetStatus = "resolved"
)

// Bet is a wager between two users. WinnerID, ResolvedAt and Result are
// set together, exactly once, when the bet is resolved.
type Bet struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Wager       int        `gorm:"not null" json:"wager"`
	Status      BetStatus  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatorID   string     `gorm:"size:36;not null;index" json:"creator_id"`
	OpponentID  string     `gorm:"size:36;not null;index" json:"opponent_id"`
	WinnerID    *string    `gorm:"size:36" json:"winner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	Result      *string    `gorm:"size:255" json:"result"`

	// Relationships. Kept out of JSON: omitempty never omits a struct, so
	// un-preloaded responses would embed zero-value users.
	Creator  User `gorm:"foreignKey:CreatorID" json:"-"`
	Opponent User `gorm:"foreignKey:OpponentID" json:"-"`
}

// TableName specifies the table name for GORM
func (Bet) TableName() string {
	return "bets"
}

// IsParticipant reports whether the given user created the bet or is its opponent.
func (b *Bet) IsParticipant(userID string) bool {
	return b.CreatorID == userID || b.OpponentID == userID
}

// IsResolved reports whether the bet has reached its terminal state.
func (b *Bet) IsResolved() bool {
	return b.Status == BetStatusResolved
}
