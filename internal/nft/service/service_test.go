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

	achievementservice "github.com/tonbox-app/tonbox/internal/achievement/service"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/grant"
	nftdomain "github.com/tonbox-app/tonbox/internal/nft/domain"
	paymentdomain "github.com/tonbox-app/tonbox/internal/providers/payment/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

type fakeProcessor struct {
	err     error
	charges []paymentdomain.Request
}

func (f *fakeProcessor) Charge(ctx context.Context, req paymentdomain.Request) error {
	_ = ctx
	f.charges = append(f.charges, req)
	return f.err
}

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
		&nftdomain.Collection{},
		&nftdomain.Stats{},
		&grant.Grant{},
	))
	require.NoError(t, db.Create(&nftdomain.Stats{ID: nftdomain.StatsRowID}).Error)
	return db
}

func newTestService(t *testing.T, db *gorm.DB, payments paymentdomain.Processor) nftdomain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	achievementSvc := achievementservice.NewService(achievementservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
	})

	return NewService(Params{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          clk,
		Payments:       payments,
		AchievementSvc: achievementSvc,
	})
}

func seedUser(t *testing.T, db *gorm.DB, id string, earlyAdopter bool) {
	t.Helper()
	require.NoError(t, db.Create(&userdomain.User{
		ID:             id,
		Username:       "user_" + id,
		ReferralCode:   strings.ToUpper(id + "00000000")[:8],
		ReferralLink:   "https://t.me/Tonboxxx_bot?start=" + id,
		IsEarlyAdopter: earlyAdopter,
		Level:          1,
	}).Error)
}

func seedCollection(t *testing.T, db *gorm.DB, c nftdomain.Collection) {
	t.Helper()
	if c.Name == "" {
		c.Name = c.ID
	}
	require.NoError(t, db.Create(&c).Error)
}

func TestClaim_FreeCollection(t *testing.T) {
	db := openTestDB(t)
	payments := &fakeProcessor{}
	svc := newTestService(t, db, payments)

	seedUser(t, db, "alice", true)
	seedCollection(t, db, nftdomain.Collection{
		ID:                   nftdomain.CollectionEarlyAdopter,
		TotalSupply:          5000,
		Remaining:            5000,
		RequiresEarlyAdopter: true,
		Available:            true,
	})

	result, err := svc.Claim(context.Background(), "alice", nftdomain.CollectionEarlyAdopter, "")
	require.NoError(t, err)
	assert.Equal(t, 4999, result.Remaining)
	assert.False(t, result.Paid)
	assert.Empty(t, payments.charges)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalClaimed)

	var alice userdomain.User
	require.NoError(t, db.First(&alice, "id = ?", "alice").Error)
	assert.Equal(t, 1, alice.Achievements)
}

func TestClaim_RequiresEarlyAdopter(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProcessor{})

	seedUser(t, db, "bob", false)
	seedCollection(t, db, nftdomain.Collection{
		ID:                   nftdomain.CollectionEarlyAdopter,
		TotalSupply:          5000,
		Remaining:            5000,
		RequiresEarlyAdopter: true,
		Available:            true,
	})

	_, err := svc.Claim(context.Background(), "bob", nftdomain.CollectionEarlyAdopter, "")
	assert.ErrorIs(t, err, nftdomain.ErrNotEligible)
}

func TestClaim_Unavailable(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProcessor{})

	seedUser(t, db, "alice", true)
	seedCollection(t, db, nftdomain.Collection{
		ID:          nftdomain.CollectionLimitedStar,
		PriceNano:   500_000_000,
		TotalSupply: 10000,
		Remaining:   10000,
		Available:   false,
	})

	_, err := svc.Claim(context.Background(), "alice", nftdomain.CollectionLimitedStar, "")
	assert.ErrorIs(t, err, nftdomain.ErrNotAvailable)
}

func TestClaim_SoldOut(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProcessor{})

	seedUser(t, db, "alice", true)
	seedCollection(t, db, nftdomain.Collection{
		ID:          "drop",
		TotalSupply: 1,
		Remaining:   0,
		Available:   true,
	})

	_, err := svc.Claim(context.Background(), "alice", "drop", "")
	assert.ErrorIs(t, err, nftdomain.ErrSoldOut)
}

func TestClaim_OncePerUser(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProcessor{})

	seedUser(t, db, "alice", true)
	seedCollection(t, db, nftdomain.Collection{
		ID:          "drop",
		TotalSupply: 10,
		Remaining:   10,
		Available:   true,
	})

	_, err := svc.Claim(context.Background(), "alice", "drop", "")
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), "alice", "drop", "")
	assert.ErrorIs(t, err, nftdomain.ErrAlreadyClaimed)

	var collection nftdomain.Collection
	require.NoError(t, db.First(&collection, "id = ?", "drop").Error)
	assert.Equal(t, 9, collection.Remaining)
}

func TestClaim_PaidCollection(t *testing.T) {
	db := openTestDB(t)
	payments := &fakeProcessor{}
	svc := newTestService(t, db, payments)

	seedUser(t, db, "alice", false)
	seedCollection(t, db, nftdomain.Collection{
		ID:          nftdomain.CollectionLimitedStar,
		PriceNano:   500_000_000,
		TotalSupply: 10000,
		Remaining:   10000,
		Available:   true,
	})

	result, err := svc.Claim(context.Background(), "alice", nftdomain.CollectionLimitedStar, "ref-1")
	require.NoError(t, err)
	assert.True(t, result.Paid)

	require.Len(t, payments.charges, 1)
	assert.Equal(t, "alice", payments.charges[0].UserID)
	assert.Equal(t, "ref-1", payments.charges[0].Reference)
	assert.Equal(t, int64(500_000_000), payments.charges[0].AmountNano)
}

func TestClaim_PaymentFailureLeavesNoTrace(t *testing.T) {
	db := openTestDB(t)
	payments := &fakeProcessor{err: paymentdomain.ErrPaymentFailed}
	svc := newTestService(t, db, payments)

	seedUser(t, db, "alice", false)
	seedCollection(t, db, nftdomain.Collection{
		ID:          nftdomain.CollectionLimitedStar,
		PriceNano:   500_000_000,
		TotalSupply: 10000,
		Remaining:   10000,
		Available:   true,
	})

	_, err := svc.Claim(context.Background(), "alice", nftdomain.CollectionLimitedStar, "ref-1")
	assert.ErrorIs(t, err, paymentdomain.ErrPaymentFailed)

	var collection nftdomain.Collection
	require.NoError(t, db.First(&collection, "id = ?", nftdomain.CollectionLimitedStar).Error)
	assert.Equal(t, 10000, collection.Remaining)

	var grants int64
	require.NoError(t, db.Model(&grant.Grant{}).Count(&grants).Error)
	assert.Zero(t, grants)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalClaimed)
}

func TestClaim_UnknownCollectionAndUser(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProcessor{})

	_, err := svc.Claim(context.Background(), "alice", "nope", "")
	assert.ErrorIs(t, err, nftdomain.ErrCollectionNotFound)

	seedCollection(t, db, nftdomain.Collection{ID: "drop", TotalSupply: 1, Remaining: 1, Available: true})
	_, err = svc.Claim(context.Background(), "ghost", "drop", "")
	assert.ErrorIs(t, err, nftdomain.ErrUserNotFound)
}

func TestUpdateCollection(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db, &fakeProcessor{})

	seedCollection(t, db, nftdomain.Collection{
		ID:          nftdomain.CollectionLimitedStar,
		PriceNano:   500_000_000,
		TotalSupply: 10000,
		Remaining:   10000,
		Available:   false,
	})

	available := true
	remaining := 250
	updated, err := svc.UpdateCollection(context.Background(), nftdomain.CollectionLimitedStar, nftdomain.UpdateCollectionRequest{
		Available: &available,
		Remaining: &remaining,
	})
	require.NoError(t, err)
	assert.True(t, updated.Available)
	assert.Equal(t, 250, updated.Remaining)

	var row nftdomain.Collection
	require.NoError(t, db.First(&row, "id = ?", nftdomain.CollectionLimitedStar).Error)
	assert.True(t, row.Available)
	assert.Equal(t, 250, row.Remaining)

	_, err = svc.UpdateCollection(context.Background(), "nope", nftdomain.UpdateCollectionRequest{Available: &available})
	assert.ErrorIs(t, err, nftdomain.ErrCollectionNotFound)
}
