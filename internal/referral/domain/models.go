package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ReferralRecord is an append-only log entry written once per successful
// referral. It backs both per-user histories (queried by referrer or
// referee) and the global analytics feed; rows are never mutated.
type ReferralRecord struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	ReferrerID       string       `gorm:"not null;index" json:"referrer_id"`
	RefereeID        string       `gorm:"not null;index" json:"referee_id"`
	ReferrerUsername string       `json:"referrer_username,omitempty"`
	RefereeUsername  string       `json:"referee_username,omitempty"`
	Points           int64        `gorm:"not null" json:"points"`
	TierReached      int          `gorm:"not null;default:0" json:"tier_reached"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ReferralRecord) TableName() string { return "referral_records" }

// ApplyResult reports what a successful application changed, for display.
type ApplyResult struct {
	ReferrerID      string `json:"referrer_id"`
	RefereePoints   int64  `json:"referee_points"`
	ReferrerPoints  int64  `json:"referrer_points"`
	ReferrerInvites int    `json:"referrer_invites"`
	TierReached     int    `json:"tier_reached"` // 1-based, 0 when no new tier
	TierTitle       string `json:"tier_title,omitempty"`
}
