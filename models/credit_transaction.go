package models

import (
	"time"
)

// TransactionType is the closed set of reasons a balance can change.
type TransactionType string

const (
	TxDailyReward        TransactionType = "daily_reward"
	TxAdReward           TransactionType = "ad_reward"
	TxMatchRequest       TransactionType = "match_request"
	TxTournamentEntry    TransactionType = "tournament_entry"
	TxSubscriptionCharge TransactionType = "subscription_charge"
	TxAdminAdjustment    TransactionType = "admin_adjustment"
)

// ValidTransactionType reports whether t is one of the enumerated kinds.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TxDailyReward, TxAdReward, TxMatchRequest, TxTournamentEntry,
		TxSubscriptionCharge, TxAdminAdjustment:
		return true
	}
	return false
}

// CreditTransaction is the append-only audit row written alongside every
// balance mutation. Amount is signed: negative for deductions, positive for
// credits. The stored balance on User is authoritative; these rows are
// observational only and are never updated or deleted.
type CreditTransaction struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	UserID    string          `gorm:"not null;index" json:"user_id"`
	Amount    int64           `gorm:"not null" json:"amount"`
	Type      TransactionType `gorm:"type:varchar(32);not null" json:"type"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}
