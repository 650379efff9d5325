package models

import (
	"time"
)

// MatchRequest is a paid request to be matched with another player.
// Creation costs a flat fee charged through the ledger in the same
// transaction that inserts the row.
type MatchRequest struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"not null;index" json:"user_id"`
	GameName   string    `gorm:"not null" json:"game_name"`
	OpponentID string    `gorm:"index" json:"opponent_id,omitempty"`
	Message    string    `gorm:"type:text" json:"message,omitempty"`
	Status     string    `gorm:"type:varchar(16);default:'open'" json:"status"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
