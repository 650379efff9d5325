package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"playarena-backend/models"
	"playarena-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the tournament routes against a private in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	ledger := services.NewLedgerService(db)
	users := services.NewUserService(db)
	rewards := services.NewRewardService(db, ledger)
	subscriptions := services.NewSubscriptionService(db, ledger)
	matches := services.NewMatchService(db, ledger)
	tournaments := services.NewTournamentService(db, ledger, nil)

	app := fiber.New()
	SetupCreditRoutes(app, ledger, rewards, users)
	SetupSubscriptionRoutes(app, subscriptions, matches)
	SetupTournamentRoutes(app, tournaments)
	return app, db
}

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

func seedTournament(t *testing.T, db *gorm.DB, hostID string, entryFee int64, status string) *models.Tournament {
	t.Helper()

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Slug:            "spring-cup",
		Name:            "Spring Cup",
		GameName:        "chess",
		EntryFee:        entryFee,
		MaxParticipants: 16,
		PlayersPerTeam:  1,
		Status:          status,
		CreatedBy:       hostID,
	}
	require.NoError(t, db.Create(tournament).Error)
	return tournament
}

// doJSON performs a request as the given user and decodes the JSON response.
func doJSON(t *testing.T, app *fiber.App, method, path, userID, roles string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-User-Roles", roles)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func userBalance(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	return user.Coins
}
