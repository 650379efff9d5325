// services/ledger_service.go
package services

import (
	"errors"
	"log"
	"strconv"

	"playarena-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService is the single point of truth for coin balance mutation.
// Every balance change goes through DeductTx/CreditTx so the audit row and
// the balance update always land in the same database transaction.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// DeductTx decrements the balance inside the caller's transaction.
// The conditional UPDATE (coins >= amount) is what serializes concurrent
// deductions on the same row — two racing requests cannot both pass the
// balance check and overdraw.
func (s *LedgerService) DeductTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if !models.ValidTransactionType(txType) {
		return 0, ErrInvalidTxType
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND coins >= ?", userID, amount).
		UpdateColumn("coins", gorm.Expr("coins - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the user doesn't exist or the balance check failed
		var u models.User
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrUserNotFound
			}
			return 0, err
		}
		return u.Coins, ErrInsufficientFunds
	}

	record := models.CreditTransaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Amount: -amount,
		Type:   txType,
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, err
	}

	var u models.User
	if err := tx.First(&u, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return u.Coins, nil
}

// CreditTx increments the balance inside the caller's transaction.
func (s *LedgerService) CreditTx(tx *gorm.DB, userID string, amount int64, txType models.TransactionType) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if !models.ValidTransactionType(txType) {
		return 0, ErrInvalidTxType
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("coins", gorm.Expr("coins + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}

	record := models.CreditTransaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Amount: amount,
		Type:   txType,
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, err
	}

	var u models.User
	if err := tx.First(&u, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return u.Coins, nil
}

// Deduct wraps DeductTx in its own transaction. A failed balance check rolls
// everything back: no audit row, no balance change.
func (s *LedgerService) Deduct(userID string, amount int64, txType models.TransactionType) (int64, error) {
	var balance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := s.DeductTx(tx, userID, amount, txType)
		balance = b
		return err
	})
	return balance, err
}

// Credit wraps CreditTx in its own transaction.
func (s *LedgerService) Credit(userID string, amount int64, txType models.TransactionType) (int64, error) {
	var balance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := s.CreditTx(tx, userID, amount, txType)
		balance = b
		return err
	})
	return balance, err
}

// Balance returns the current stored balance.
func (s *LedgerService) Balance(userID string) (int64, error) {
	var u models.User
	if err := s.DB.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return u.Coins, nil
}

// --- HTTP handlers ---

// GetCredits returns the authenticated user's balance.
func (s *LedgerService) GetCredits(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	user, err := EnsureUser(s.DB, userID)
	if err != nil {
		log.Printf("DB error ensuring user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}
	return c.JSON(fiber.Map{"balance": user.Coins})
}

// DeductCredits charges the authenticated user an arbitrary amount with a
// caller-supplied reason (used by game flows that spend coins directly).
func (s *LedgerService) DeductCredits(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Amount int64                  `json:"amount" validate:"required,gt=0"`
		Type   models.TransactionType `json:"type" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid JSON"})
	}

	if _, err := EnsureUser(s.DB, userID); err != nil {
		log.Printf("DB error ensuring user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	balance, err := s.Deduct(userID, req.Amount, req.Type)
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidTxType):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Insufficient credits"})
	case err != nil:
		log.Printf("Deduct failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "deduction failed"})
	}
	return c.JSON(fiber.Map{"balance": balance})
}

// GetTransactions lists the authenticated user's audit trail, newest first.
func (s *LedgerService) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var records []models.CreditTransaction
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		log.Printf("DB error fetching transactions for %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to fetch transactions"})
	}
	return c.JSON(records)
}
