package models

import (
	"time"
)

// Subscription tiers. The tier stored on the user may be stale; callers must
// check SubscriptionEndDate before treating it as active.
const (
	TierFree = "free"
	TierPro  = "pro"
	TierGold = "gold"
)

// User is the local account record for the economy/tournament service.
// The ID is the external identity ID forwarded by the Gateway (X-User-ID);
// rows are created lazily on first authenticated request and never hard-deleted.
type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string `gorm:"index" json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// Economy
	Coins int64 `gorm:"not null;default:0;check:coins >= 0" json:"coins"`
	XP    int64 `gorm:"not null;default:0" json:"xp"`
	Level int   `gorm:"not null;default:1" json:"level"`

	// Subscription
	SubscriptionTier            string     `gorm:"type:varchar(16);not null;default:'free'" json:"subscription_tier"`
	SubscriptionEndDate         *time.Time `json:"subscription_end_date,omitempty"`
	ConnectionRequestsUsedToday int        `gorm:"not null;default:0" json:"connection_requests_used_today"`
	LastConnectionRequestReset  *time.Time `json:"last_connection_request_reset,omitempty"`

	// Reward gates
	DailyRewardLastClaimed *time.Time `json:"daily_reward_last_claimed,omitempty"`
	AdRewardLastClaimed    *time.Time `json:"ad_reward_last_claimed,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	GameProfiles []GameProfile `json:"game_profiles,omitempty" gorm:"foreignKey:UserID"`
}

// GameProfile stores a user's in-game identity for one game.
// Snapshotted onto TournamentParticipant at join time so the roster keeps
// the identity the player registered with.
type GameProfile struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"not null;index;uniqueIndex:idx_user_game" json:"user_id"`
	GameName   string    `gorm:"not null;uniqueIndex:idx_user_game" json:"game_name"`
	InGameID   string    `json:"in_game_id"`
	InGameName string    `json:"in_game_name"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
