package models

import (
	"time"
)

// Tournament lifecycle: upcoming → active → completed. Transitions are
// forward-only; completed is terminal and refuses joins.
const (
	TournamentUpcoming  = "upcoming"
	TournamentActive    = "active"
	TournamentCompleted = "completed"
)

// Participant registration states. "pending" is used for team registrations
// awaiting teammates; there is no server-side accept flow yet.
const (
	ParticipantRegistered = "registered"
	ParticipantPending    = "pending"
	ParticipantRejected   = "rejected"
)

type Tournament struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	Slug            string     `json:"slug" gorm:"index"`
	Name            string     `json:"name" gorm:"not null"`
	GameName        string     `json:"game_name" gorm:"not null;index"`
	Description     string     `json:"description"`
	PrizePool       string     `json:"prize_pool"`
	EntryFee        int64      `json:"entry_fee" gorm:"default:0"`
	MaxParticipants int        `json:"max_participants" gorm:"default:0"`
	PlayersPerTeam  int        `json:"players_per_team" gorm:"default:1"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	Status          string     `json:"status" gorm:"type:varchar(16);default:'upcoming';index"`
	BannerURL       string     `json:"banner_url,omitempty"`
	CreatedBy       string     `json:"created_by" gorm:"not null;index"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Participants []TournamentParticipant `json:"participants,omitempty" gorm:"foreignKey:TournamentID"`
	Messages     []TournamentMessage     `json:"messages,omitempty" gorm:"foreignKey:TournamentID"`

	// Calculated (not stored)
	ParticipantsCount int64 `json:"participants_count,omitempty" gorm:"-"`
	AvailableSlots    int64 `json:"available_slots,omitempty" gorm:"-"`
}

// TournamentParticipant is created atomically with the entry-fee deduction.
type TournamentParticipant struct {
	ID           string `json:"id" gorm:"primaryKey"`
	TournamentID string `json:"tournament_id" gorm:"not null;index;uniqueIndex:idx_tournament_user"`
	UserID       string `json:"user_id" gorm:"not null;index;uniqueIndex:idx_tournament_user"`

	// In-game identity snapshot taken at join time
	InGameID   string `json:"in_game_id"`
	InGameName string `json:"in_game_name"`

	// Comma-separated teammate user IDs for team tournaments
	TeammateIDs string `json:"teammate_ids,omitempty"`

	Status   string    `json:"status" gorm:"type:varchar(16);default:'registered'"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// TournamentMessage is append-only chat inside a tournament. Announcements
// (host-authored) and participant queries share the table and are split by
// the flag at the presentation layer.
type TournamentMessage struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	TournamentID   string    `json:"tournament_id" gorm:"not null;index"`
	SenderID       string    `json:"sender_id" gorm:"not null;index"`
	Message        string    `json:"message" gorm:"type:text;not null"`
	IsAnnouncement bool      `json:"is_announcement" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
