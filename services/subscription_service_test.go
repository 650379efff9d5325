package services

import (
	"testing"
	"time"

	"playarena-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseGold(t *testing.T) {
	db := newTestDB(t)
	subs := NewSubscriptionService(db, NewLedgerService(db))
	user := seedUser(t, db, 300)

	updated, err := subs.Purchase(user.ID, models.TierGold)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Coins)
	assert.Equal(t, models.TierGold, updated.SubscriptionTier)
	assert.Equal(t, 0, updated.ConnectionRequestsUsedToday)

	require.NotNil(t, updated.SubscriptionEndDate)
	assert.WithinDuration(t, time.Now().Add(SubscriptionDuration), *updated.SubscriptionEndDate, time.Minute)

	records := transactionsFor(t, db, user.ID)
	require.Len(t, records, 1)
	assert.Equal(t, int64(-300), records[0].Amount)
	assert.Equal(t, models.TxSubscriptionCharge, records[0].Type)
}

func TestPurchaseInvalidTier(t *testing.T) {
	db := newTestDB(t)
	subs := NewSubscriptionService(db, NewLedgerService(db))
	user := seedUser(t, db, 500)

	_, err := subs.Purchase(user.ID, "platinum")
	assert.ErrorIs(t, err, ErrInvalidTier)

	_, err = subs.Purchase(user.ID, models.TierFree)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestPurchaseInsufficientFundsKeepsTier(t *testing.T) {
	db := newTestDB(t)
	subs := NewSubscriptionService(db, NewLedgerService(db))
	user := seedUser(t, db, 100)

	_, err := subs.Purchase(user.ID, models.TierPro)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var after models.User
	require.NoError(t, db.First(&after, "id = ?", user.ID).Error)
	assert.Equal(t, int64(100), after.Coins)
	assert.Equal(t, models.TierFree, after.SubscriptionTier)
	assert.Nil(t, after.SubscriptionEndDate)
	assert.Empty(t, transactionsFor(t, db, user.ID))
}

func TestStatusQuotaExhausted(t *testing.T) {
	db := newTestDB(t)
	subs := NewSubscriptionService(db, NewLedgerService(db))
	user := seedUser(t, db, 0)

	recent := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"connection_requests_used_today": 3,
		"last_connection_request_reset":  recent,
	}).Error)

	status, err := subs.Status(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, status.Tier)
	assert.False(t, status.IsActive)
	assert.Equal(t, 3, status.DailyLimit)
	assert.Equal(t, 3, status.RequestsUsedToday)
	assert.Equal(t, 0, status.RequestsRemaining)
}

// A reset timestamp older than 24h zeroes the counter on the next status check
// and persists the reset.
func TestStatusLazyQuotaReset(t *testing.T) {
	db := newTestDB(t)
	subs := NewSubscriptionService(db, NewLedgerService(db))
	user := seedUser(t, db, 0)

	stale := time.Now().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"connection_requests_used_today": 3,
		"last_connection_request_reset":  stale,
	}).Error)

	status, err := subs.Status(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.RequestsUsedToday)
	assert.Equal(t, 3, status.RequestsRemaining)

	var after models.User
	require.NoError(t, db.First(&after, "id = ?", user.ID).Error)
	assert.Equal(t, 0, after.ConnectionRequestsUsedToday)
	require.NotNil(t, after.LastConnectionRequestReset)
	assert.WithinDuration(t, time.Now(), *after.LastConnectionRequestReset, time.Minute)
}

// An expired subscription is reported as free even though the stored tier
// column still says otherwise.
func TestStatusExpiredSubscriptionFallsBackToFree(t *testing.T) {
	db := newTestDB(t)
	subs := NewSubscriptionService(db, NewLedgerService(db))
	user := seedUser(t, db, 0)

	expired := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"subscription_tier":     models.TierGold,
		"subscription_end_date": expired,
	}).Error)

	status, err := subs.Status(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, status.Tier)
	assert.False(t, status.IsActive)
	assert.Equal(t, 3, status.DailyLimit)
}

func TestStatusActivePro(t *testing.T) {
	db := newTestDB(t)
	subs := NewSubscriptionService(db, NewLedgerService(db))
	user := seedUser(t, db, 150)

	_, err := subs.Purchase(user.ID, models.TierPro)
	require.NoError(t, err)

	status, err := subs.Status(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierPro, status.Tier)
	assert.True(t, status.IsActive)
	assert.Equal(t, 15, status.DailyLimit)
	assert.Equal(t, 15, status.RequestsRemaining)
}
