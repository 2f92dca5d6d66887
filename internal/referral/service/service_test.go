package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/config"
	"github.com/tonbox-app/tonbox/internal/grant"
	referraldomain "github.com/tonbox-app/tonbox/internal/referral/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// An in-memory database exists per connection, so the pool must stay
	// at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_strip_for_update", stripForUpdate)
	db.Callback().Row().Before("gorm:row").Register("sqlite_strip_for_update_row", stripForUpdate)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&referraldomain.ReferralRecord{},
		&grant.Grant{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) *Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Rewards: config.NewStaticRewardsHolder(config.DefaultRewardsConfig()),
	})
	return svc.(*Service)
}

func seedUser(t *testing.T, db *gorm.DB, id, code string, invites int) *userdomain.User {
	t.Helper()

	account := &userdomain.User{
		ID:           id,
		Username:     "user_" + id,
		ReferralCode: code,
		ReferralLink: "https://t.me/Tonboxxx_bot?start=" + code,
		TotalInvites: invites,
		Level:        1,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func TestApplyReferralCode_FirstReferral(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)

	seedUser(t, db, "alice", "ALICE123", 0)
	seedUser(t, db, "bob", "BOB45678", 0)

	result, err := svc.ApplyReferralCode(context.Background(), "bob", "ALICE123")
	require.NoError(t, err)

	assert.Equal(t, "alice", result.ReferrerID)
	assert.Equal(t, int64(150), result.RefereePoints)
	// 150 base + 1000 Bronze tier at the first invite.
	assert.Equal(t, int64(1150), result.ReferrerPoints)
	assert.Equal(t, 1, result.ReferrerInvites)
	assert.Equal(t, 1, result.TierReached)
	assert.Equal(t, "Bronze", result.TierTitle)

	var alice, bob userdomain.User
	require.NoError(t, db.First(&alice, "id = ?", "alice").Error)
	require.NoError(t, db.First(&bob, "id = ?", "bob").Error)

	assert.Equal(t, int64(1150), alice.Points)
	assert.Equal(t, 1, alice.TotalInvites)
	assert.Equal(t, 1, alice.ReferralTier)
	require.NotNil(t, alice.LastReferralAt)

	assert.Equal(t, int64(150), bob.Points)
	require.NotNil(t, bob.ReferredBy)
	assert.Equal(t, "alice", *bob.ReferredBy)

	var records []referraldomain.ReferralRecord
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].ReferrerID)
	assert.Equal(t, "bob", records[0].RefereeID)
	assert.Equal(t, 1, records[0].TierReached)
}

func TestApplyReferralCode_CodeFormat(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Now().UTC()))

	for _, code := range []string{"", "short", "toolongcode1", "lower123", "ABC-1234"} {
		_, err := svc.ApplyReferralCode(context.Background(), "bob", code)
		assert.ErrorIs(t, err, referraldomain.ErrCodeFormat, "code %q", code)
	}

	// Format is checked before any state is read, so no users are needed.
	var count int64
	require.NoError(t, db.Model(&referraldomain.ReferralRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyReferralCode_CaseInsensitiveInput(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Now().UTC()))

	seedUser(t, db, "alice", "ALICE123", 0)
	seedUser(t, db, "bob", "BOB45678", 0)

	result, err := svc.ApplyReferralCode(context.Background(), "bob", "  alice123 ")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.ReferrerID)
}

func TestApplyReferralCode_UnknownCode(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Now().UTC()))

	seedUser(t, db, "bob", "BOB45678", 0)

	_, err := svc.ApplyReferralCode(context.Background(), "bob", "NOSUCH00")
	assert.ErrorIs(t, err, referraldomain.ErrInvalidCode)
}

func TestApplyReferralCode_RefereeMissing(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Now().UTC()))

	seedUser(t, db, "alice", "ALICE123", 0)

	_, err := svc.ApplyReferralCode(context.Background(), "ghost", "ALICE123")
	assert.ErrorIs(t, err, referraldomain.ErrUserNotFound)
}

func TestApplyReferralCode_SelfReferral(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Now().UTC()))

	seedUser(t, db, "alice", "ALICE123", 0)

	_, err := svc.ApplyReferralCode(context.Background(), "alice", "ALICE123")
	assert.ErrorIs(t, err, referraldomain.ErrSelfReferral)

	var alice userdomain.User
	require.NoError(t, db.First(&alice, "id = ?", "alice").Error)
	assert.Zero(t, alice.Points)
	assert.Zero(t, alice.TotalInvites)
}

func TestApplyReferralCode_AlreadyReferred(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Now().UTC()))

	seedUser(t, db, "alice", "ALICE123", 0)
	seedUser(t, db, "carol", "CAROL123", 0)
	seedUser(t, db, "bob", "BOB45678", 0)

	_, err := svc.ApplyReferralCode(context.Background(), "bob", "ALICE123")
	require.NoError(t, err)

	_, err = svc.ApplyReferralCode(context.Background(), "bob", "CAROL123")
	assert.ErrorIs(t, err, referraldomain.ErrAlreadyReferred)

	var carol userdomain.User
	require.NoError(t, db.First(&carol, "id = ?", "carol").Error)
	assert.Zero(t, carol.Points)
	assert.Zero(t, carol.TotalInvites)
}

func TestApplyReferralCode_TierRewardIsOneTime(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)

	// Referrer already sits at the Bronze threshold with the tier granted.
	alice := seedUser(t, db, "alice", "ALICE123", 1)
	alice.ReferralTier = 1
	require.NoError(t, db.Save(alice).Error)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	granted, err := grant.Take(context.Background(), db, node, "alice", grant.TierID(0), clk.Now())
	require.NoError(t, err)
	require.True(t, granted)

	// Drop back to zero invites, then re-cross the threshold.
	require.NoError(t, db.Model(&userdomain.User{}).Where("id = ?", "alice").Update("total_invites", 0).Error)
	seedUser(t, db, "bob", "BOB45678", 0)

	result, err := svc.ApplyReferralCode(context.Background(), "bob", "ALICE123")
	require.NoError(t, err)

	// Base reward only: tier 1 was already consumed.
	assert.Equal(t, int64(150), result.ReferrerPoints)
	assert.Zero(t, result.TierReached)
	assert.Empty(t, result.TierTitle)
}

func TestApplyReferralCode_SilverAtThree(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)

	seedUser(t, db, "alice", "ALICE123", 2)
	seedUser(t, db, "bob", "BOB45678", 0)

	result, err := svc.ApplyReferralCode(context.Background(), "bob", "ALICE123")
	require.NoError(t, err)

	assert.Equal(t, 3, result.ReferrerInvites)
	assert.Equal(t, 2, result.TierReached)
	assert.Equal(t, "Silver", result.TierTitle)
	assert.Equal(t, int64(150+2000), result.ReferrerPoints)
}

func TestHistoryAndRecent(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)

	seedUser(t, db, "alice", "ALICE123", 0)
	seedUser(t, db, "bob", "BOB45678", 0)
	seedUser(t, db, "carol", "CAROL123", 0)

	_, err := svc.ApplyReferralCode(context.Background(), "bob", "ALICE123")
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.ApplyReferralCode(context.Background(), "carol", "ALICE123")
	require.NoError(t, err)

	history, err := svc.History(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "carol", history[0].RefereeID)

	asBob, err := svc.History(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, asBob, 1)

	recent, err := svc.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "carol", recent[0].RefereeID)
}
