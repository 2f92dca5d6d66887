package grant

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Grant is one row of the one-time-grant ledger. The unique (user_id,
// grant_id) index is what makes every grant set-once: tier rewards, task
// completions, achievement unlocks and NFT claims all funnel through it.
type Grant struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    string       `gorm:"not null;uniqueIndex:ux_grants_user_grant,priority:1"`
	GrantID   string       `gorm:"type:text;not null;uniqueIndex:ux_grants_user_grant,priority:2"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Grant) TableName() string { return "grants" }

func TierID(index int) string { return fmt.Sprintf("tier:%d", index) }

func AchievementID(achievement string) string { return "achievement:" + achievement }

func TaskID(task string) string { return "task:" + task }

func NFTID(collection string) string { return "nft:" + collection }
