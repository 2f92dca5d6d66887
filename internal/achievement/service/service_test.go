package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	achievementdomain "github.com/tonbox-app/tonbox/internal/achievement/domain"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/grant"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&userdomain.User{}, &grant.Grant{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) achievementdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	})
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&userdomain.User{
		ID:           id,
		ReferralCode: "CODE" + id,
		ReferralLink: "https://t.me/Tonboxxx_bot?start=" + id,
		Level:        1,
	}).Error)
}

func TestUnlock_OncePerAchievement(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "alice")

	require.NoError(t, svc.Unlock(context.Background(), "alice", achievementdomain.EarlyAdopter))

	var alice userdomain.User
	require.NoError(t, db.First(&alice, "id = ?", "alice").Error)
	assert.Equal(t, 1, alice.Achievements)

	// A repeat unlock reports the conflict and does not move the counter.
	err := svc.Unlock(context.Background(), "alice", achievementdomain.EarlyAdopter)
	assert.ErrorIs(t, err, achievementdomain.ErrAlreadyUnlocked)

	require.NoError(t, db.First(&alice, "id = ?", "alice").Error)
	assert.Equal(t, 1, alice.Achievements)
}

func TestUnlock_UnknownAchievement(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "alice")

	err := svc.Unlock(context.Background(), "alice", "speedrunner")
	assert.ErrorIs(t, err, achievementdomain.ErrUnknownAchievement)
}

func TestUnlock_IndependentAchievements(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	seedUser(t, db, "alice")

	require.NoError(t, svc.Unlock(context.Background(), "alice", achievementdomain.EarlyAdopter))
	require.NoError(t, svc.Unlock(context.Background(), "alice", achievementdomain.NFTCollector))
	require.NoError(t, svc.Unlock(context.Background(), "alice", achievementdomain.SuperReferrer))

	var alice userdomain.User
	require.NoError(t, db.First(&alice, "id = ?", "alice").Error)
	assert.Equal(t, 3, alice.Achievements)

	unlocked, err := svc.Unlocked(context.Background(), "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		achievementdomain.EarlyAdopter,
		achievementdomain.NFTCollector,
		achievementdomain.SuperReferrer,
	}, unlocked)
}
