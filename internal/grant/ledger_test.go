package grant

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Grant{}))
	return db
}

func TestTake_FirstWinsSecondNoops(t *testing.T) {
	db := openTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	granted, err := Take(context.Background(), db, node, "alice", TierID(0), now)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = Take(context.Background(), db, node, "alice", TierID(0), now)
	require.NoError(t, err)
	assert.False(t, granted)

	// Same grant for another user is independent.
	granted, err = Take(context.Background(), db, node, "bob", TierID(0), now)
	require.NoError(t, err)
	assert.True(t, granted)

	var count int64
	require.NoError(t, db.Model(&Grant{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestTaken(t *testing.T) {
	db := openTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	taken, err := Taken(context.Background(), db, "alice", NFTID("early-adopter"))
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = Take(context.Background(), db, node, "alice", NFTID("early-adopter"), now)
	require.NoError(t, err)

	taken, err = Taken(context.Background(), db, "alice", NFTID("early-adopter"))
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestGrantIDs(t *testing.T) {
	assert.Equal(t, "tier:3", TierID(3))
	assert.Equal(t, "achievement:early_adopter", AchievementID("early_adopter"))
	assert.Equal(t, "task:invite", TaskID("invite"))
	assert.Equal(t, "nft:limited-star", NFTID("limited-star"))
}
