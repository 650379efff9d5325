// services/reward_service.go
package services

import (
	"log"
	"time"

	"playarena-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	DailyRewardAmount   int64 = 50
	DailyRewardCooldown       = 24 * time.Hour

	AdRewardAmount   int64 = 5
	AdRewardCooldown       = 3 * time.Minute
)

// RewardService owns the time-gated reward claims. Both gates use the same
// conditional-update trick as the ledger: the timestamp only moves forward,
// and a concurrent double-claim loses the UPDATE race instead of double
// crediting.
type RewardService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewRewardService(db *gorm.DB, ledger *LedgerService) *RewardService {
	return &RewardService{DB: db, Ledger: ledger}
}

// ClaimResult is a reported business outcome, not an error. The HTTP layer
// returns 200 whether or not the claim succeeded.
type ClaimResult struct {
	Success bool   `json:"success"`
	Coins   int64  `json:"coins"`
	Message string `json:"message"`
}

// claimTimed credits amount if the gate column is null or at least cooldown
// old (boundary inclusive), advancing the gate to now in the same transaction.
func (s *RewardService) claimTimed(userID, column string, amount int64, cooldown time.Duration, txType models.TransactionType) (ClaimResult, error) {
	user, err := EnsureUser(s.DB, userID)
	if err != nil {
		return ClaimResult{}, err
	}

	now := time.Now()
	cutoff := now.Add(-cooldown)

	var result ClaimResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND ("+column+" IS NULL OR "+column+" <= ?)", userID, cutoff).
			UpdateColumn(column, now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Too early; report current balance unchanged
			result = ClaimResult{Success: false, Coins: user.Coins, Message: "Too early!"}
			return nil
		}

		balance, err := s.Ledger.CreditTx(tx, userID, amount, txType)
		if err != nil {
			return err
		}
		result = ClaimResult{Success: true, Coins: balance, Message: "Reward claimed!"}
		return nil
	})
	return result, err
}

// ClaimDaily credits the daily login reward if 24h have passed since the last
// claim. Exactly 24h counts as eligible.
func (s *RewardService) ClaimDaily(userID string) (ClaimResult, error) {
	return s.claimTimed(userID, "daily_reward_last_claimed", DailyRewardAmount, DailyRewardCooldown, models.TxDailyReward)
}

// ClaimAdReward credits the rewarded-ad bonus. The cooldown is enforced
// server-side; the client timer is cosmetic.
func (s *RewardService) ClaimAdReward(userID string) (ClaimResult, error) {
	return s.claimTimed(userID, "ad_reward_last_claimed", AdRewardAmount, AdRewardCooldown, models.TxAdReward)
}

// --- HTTP handlers ---

// ClaimDailyReward handles POST /api/user/claim-reward.
func (s *RewardService) ClaimDailyReward(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	result, err := s.ClaimDaily(userID)
	if err != nil {
		log.Printf("Daily claim failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "claim failed"})
	}
	return c.JSON(result)
}

// RewardAdCredit handles POST /api/credits/reward-ad.
func (s *RewardService) RewardAdCredit(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	result, err := s.ClaimAdReward(userID)
	if err != nil {
		log.Printf("Ad reward failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "reward failed"})
	}
	return c.JSON(fiber.Map{
		"success": result.Success,
		"balance": result.Coins,
		"message": result.Message,
	})
}
