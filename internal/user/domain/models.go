package domain

import (
	"time"

	"gorm.io/datatypes"
)

// User is the durable account record, keyed by the external messaging
// platform user id. Point balances and one-time-grant fields mutate only
// through the ledger services.
type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"index" json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url,omitempty"`

	Points       int64  `gorm:"not null;default:0" json:"points"`
	ReferralCode string `gorm:"size:8;not null;uniqueIndex:ux_users_referral_code" json:"referral_code"`
	ReferralLink string `gorm:"not null" json:"referral_link"`

	ReferredBy     *string    `gorm:"index" json:"referred_by,omitempty"`
	TotalInvites   int        `gorm:"not null;default:0" json:"total_invites"`
	ReferralTier   int        `gorm:"not null;default:0" json:"referral_tier"`
	LastReferralAt *time.Time `json:"last_referral_at,omitempty"`

	Achievements          int        `gorm:"not null;default:0" json:"achievements"`
	IsEarlyAdopter        bool       `gorm:"not null;default:false" json:"is_early_adopter"`
	EarlyAdopterClaimedAt *time.Time `json:"early_adopter_claimed_at,omitempty"`
	BoosterEndTime        *time.Time `json:"booster_end_time,omitempty"`

	WalletAddress    *string    `gorm:"uniqueIndex:ux_users_wallet_address" json:"wallet_address,omitempty"`
	WalletAnalyzedAt *time.Time `json:"wallet_analyzed_at,omitempty"`

	// ClaimedDays tracks which weekdays of the current check-in cycle have
	// been claimed, for the weekly calendar display.
	ClaimedDays datatypes.JSON `json:"claimed_days,omitempty"`

	Level      int   `gorm:"not null;default:1" json:"level"`
	Balance    int64 `gorm:"not null;default:0" json:"balance"`
	GlobalRank int   `gorm:"not null;default:0" json:"global_rank"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// BoosterActive reports whether a points booster is running at now.
func (u *User) BoosterActive(now time.Time) bool {
	return u.BoosterEndTime != nil && u.BoosterEndTime.After(now)
}
