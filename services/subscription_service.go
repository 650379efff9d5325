// services/subscription_service.go
package services

import (
	"errors"
	"log"
	"time"

	"playarena-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const SubscriptionDuration = 48 * time.Hour

// TierCosts in coins. Free is not purchasable.
var TierCosts = map[string]int64{
	models.TierPro:  150,
	models.TierGold: 300,
}

// DailyRequestLimits per effective tier.
var DailyRequestLimits = map[string]int{
	models.TierFree: 3,
	models.TierPro:  15,
	models.TierGold: 30,
}

type SubscriptionService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewSubscriptionService(db *gorm.DB, ledger *LedgerService) *SubscriptionService {
	return &SubscriptionService{DB: db, Ledger: ledger}
}

// Purchase charges the tier cost and activates the tier for 48h, resetting
// the daily request counter. All of it commits or none of it does.
func (s *SubscriptionService) Purchase(userID, tier string) (*models.User, error) {
	cost, ok := TierCosts[tier]
	if !ok {
		return nil, ErrInvalidTier
	}

	if _, err := EnsureUser(s.DB, userID); err != nil {
		return nil, err
	}

	var user models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.Ledger.DeductTx(tx, userID, cost, models.TxSubscriptionCharge); err != nil {
			return err
		}
		now := time.Now()
		end := now.Add(SubscriptionDuration)
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"subscription_tier":              tier,
			"subscription_end_date":          end,
			"connection_requests_used_today": 0,
			"last_connection_request_reset":  now,
		}).Error; err != nil {
			return err
		}
		return tx.First(&user, "id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SubscriptionStatus is the quota view for the authenticated user.
type SubscriptionStatus struct {
	Tier              string `json:"tier"`
	IsActive          bool   `json:"isActive"`
	DailyLimit        int    `json:"dailyLimit"`
	RequestsUsedToday int    `json:"requestsUsedToday"`
	RequestsRemaining int    `json:"requestsRemaining"`
}

// Status computes the effective tier and remaining quota. A stale reset
// timestamp (>24h) zeroes the usage counter as a persisted side effect of the
// check itself; there is no background sweep.
func (s *SubscriptionService) Status(userID string) (SubscriptionStatus, error) {
	user, err := EnsureUser(s.DB, userID)
	if err != nil {
		return SubscriptionStatus{}, err
	}

	now := time.Now()
	if user.LastConnectionRequestReset == nil || now.Sub(*user.LastConnectionRequestReset) > 24*time.Hour {
		if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"connection_requests_used_today": 0,
			"last_connection_request_reset":  now,
		}).Error; err != nil {
			return SubscriptionStatus{}, err
		}
		user.ConnectionRequestsUsedToday = 0
		user.LastConnectionRequestReset = &now
	}

	isActive := user.SubscriptionEndDate != nil && user.SubscriptionEndDate.After(now)
	tier := models.TierFree
	if isActive {
		tier = user.SubscriptionTier
	}

	limit, ok := DailyRequestLimits[tier]
	if !ok {
		limit = DailyRequestLimits[models.TierFree]
	}
	remaining := limit - user.ConnectionRequestsUsedToday
	if remaining < 0 {
		remaining = 0
	}

	return SubscriptionStatus{
		Tier:              tier,
		IsActive:          isActive,
		DailyLimit:        limit,
		RequestsUsedToday: user.ConnectionRequestsUsedToday,
		RequestsRemaining: remaining,
	}, nil
}

// --- HTTP handlers ---

// PurchaseSubscription handles POST /api/subscription/purchase/:tier.
func (s *SubscriptionService) PurchaseSubscription(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	tier := c.Params("tier")

	user, err := s.Purchase(userID, tier)
	switch {
	case errors.Is(err, ErrInvalidTier):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid subscription tier"})
	case errors.Is(err, ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Insufficient credits"})
	case err != nil:
		log.Printf("Subscription purchase failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "purchase failed"})
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}

// GetSubscriptionStatus handles GET /api/subscription/status.
func (s *SubscriptionService) GetSubscriptionStatus(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	status, err := s.Status(userID)
	if err != nil {
		log.Printf("Status check failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "status check failed"})
	}
	return c.JSON(status)
}
