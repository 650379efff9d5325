package services

import (
	"fmt"
	"testing"

	"playarena-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.GameProfile{},
		&models.CreditTransaction{},
		&models.Tournament{},
		&models.TournamentParticipant{},
		&models.TournamentMessage{},
		&models.MatchRequest{},
	))
	return db
}

// seedUser creates a user with the given starting balance.
func seedUser(t *testing.T, db *gorm.DB, coins int64) *models.User {
	t.Helper()

	user := &models.User{
		ID:               uuid.NewString(),
		Username:         "player",
		Coins:            coins,
		Level:            1,
		SubscriptionTier: models.TierFree,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// transactionsFor returns the audit rows for a user, oldest first.
func transactionsFor(t *testing.T, db *gorm.DB, userID string) []models.CreditTransaction {
	t.Helper()

	var records []models.CreditTransaction
	require.NoError(t, db.Where("user_id = ?", userID).Order("created_at ASC").Find(&records).Error)
	return records
}
