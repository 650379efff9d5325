// services/user_service.go
package services

import (
	"errors"
	"log"

	"playarena-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnsureUser fetches the user row, creating it on first authenticated request.
// The Gateway already vouched for the identity, so an unknown ID here just
// means the user has never touched this service before.
func EnsureUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:               userID,
			Level:            1,
			SubscriptionTier: models.TierFree,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		log.Printf("👤 Provisioned new user %s on first request", userID)
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// GetMe returns the authenticated user's profile with game profiles preloaded.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	if _, err := EnsureUser(s.DB, userID); err != nil {
		log.Printf("DB error ensuring user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	var user models.User
	if err := s.DB.Preload("GameProfiles").First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}
	return c.JSON(user)
}

// UpsertGameProfile stores or replaces the caller's in-game identity for one game.
func (s *UserService) UpsertGameProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		GameName   string `json:"game_name" validate:"required"`
		InGameID   string `json:"in_game_id" validate:"required"`
		InGameName string `json:"in_game_name" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid JSON"})
	}
	if req.GameName == "" || req.InGameID == "" || req.InGameName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "game_name, in_game_id and in_game_name are required"})
	}

	if _, err := EnsureUser(s.DB, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	var profile models.GameProfile
	err := s.DB.Where("user_id = ? AND game_name = ?", userID, req.GameName).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.GameProfile{
			ID:         uuid.NewString(),
			UserID:     userID,
			GameName:   req.GameName,
			InGameID:   req.InGameID,
			InGameName: req.InGameName,
		}
		if err := s.DB.Create(&profile).Error; err != nil {
			log.Printf("DB error creating game profile: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to save game profile"})
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	profile.InGameID = req.InGameID
	profile.InGameName = req.InGameName
	if err := s.DB.Save(&profile).Error; err != nil {
		log.Printf("DB error updating game profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to save game profile"})
	}
	return c.JSON(profile)
}
