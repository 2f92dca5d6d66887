package domain

import "time"

// Collection is an NFT collection with a bounded supply counter. Remaining
// decrements exactly once per successful claim and never goes negative.
type Collection struct {
	ID                   string    `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description"`
	PriceNano            int64     `gorm:"not null;default:0" json:"price_nano"`
	TotalSupply          int       `gorm:"not null" json:"total_supply"`
	Remaining            int       `gorm:"not null" json:"remaining"`
	RequiresEarlyAdopter bool      `gorm:"not null;default:false" json:"requires_early_adopter"`
	Available            bool      `gorm:"not null;default:false" json:"available"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Collection) TableName() string { return "nft_collections" }

// Stats is the single global claim counter row.
type Stats struct {
	ID           string `gorm:"primaryKey" json:"id"`
	TotalClaimed int64  `gorm:"not null;default:0" json:"total_claimed"`
}

// TableName sets the database table name.
func (Stats) TableName() string { return "nft_stats" }

const StatsRowID = "supply"

// Seed collections.
const (
	CollectionEarlyAdopter = "early-adopter"
	CollectionLimitedStar  = "limited-star"
)

type ClaimResult struct {
	CollectionID string `json:"collection_id"`
	Remaining    int    `json:"remaining"`
	Paid         bool   `json:"paid"`
}
