// services/match_service.go
package services

import (
	"errors"
	"log"
	"strings"

	"playarena-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchRequestCost is the flat coin charge for posting a match request.
const MatchRequestCost int64 = 10

type MatchService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewMatchService(db *gorm.DB, ledger *LedgerService) *MatchService {
	return &MatchService{DB: db, Ledger: ledger}
}

// Create charges the flat fee and inserts the request in one transaction.
func (s *MatchService) Create(userID, gameName, opponentID, message string) (*models.MatchRequest, int64, error) {
	if _, err := EnsureUser(s.DB, userID); err != nil {
		return nil, 0, err
	}

	request := &models.MatchRequest{
		ID:         uuid.NewString(),
		UserID:     userID,
		GameName:   gameName,
		OpponentID: opponentID,
		Message:    message,
		Status:     "open",
	}

	var balance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		b, err := s.Ledger.DeductTx(tx, userID, MatchRequestCost, models.TxMatchRequest)
		if err != nil {
			return err
		}
		balance = b
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return request, balance, nil
}

// CreateMatchRequest handles POST /api/match-requests.
func (s *MatchService) CreateMatchRequest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		GameName   string `json:"game_name" validate:"required"`
		OpponentID string `json:"opponent_id"`
		Message    string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid JSON"})
	}
	if strings.TrimSpace(req.GameName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "game_name is required"})
	}

	request, balance, err := s.Create(userID, req.GameName, req.OpponentID, req.Message)
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Insufficient credits"})
	case err != nil:
		log.Printf("Match request failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to create match request"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"match_request": request,
		"new_balance":   balance,
	})
}

// GetMatchRequests handles GET /api/match-requests (caller's own, newest first).
func (s *MatchService) GetMatchRequests(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var requests []models.MatchRequest
	if err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to fetch match requests"})
	}
	return c.JSON(requests)
}
