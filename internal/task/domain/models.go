package domain

import "time"

// CheckIn tracks the daily streak, one row per user.
type CheckIn struct {
	UserID      string    `gorm:"primaryKey" json:"user_id"`
	LastCheckIn time.Time `gorm:"not null" json:"last_check_in"`
	Streak      int       `gorm:"not null;default:0" json:"streak"`
}

// TableName sets the database table name.
func (CheckIn) TableName() string { return "check_ins" }

// Task identifiers used as grant keys.
const (
	TaskInvite         = "invite"
	TaskEarlyAdopter   = "early_adopter"
	TaskWalletAnalysis = "wallet_analysis"
)

type CheckInResult struct {
	Streak int   `json:"streak"`
	Points int64 `json:"points"`
}

type InviteTaskResult struct {
	Points int64 `json:"points"`
}

type EarlyAdopterResult struct {
	Points    int64     `json:"points"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// WalletStats is the activity summary produced by the wallet analyzer
// collaborator. Fetching it from the chain is outside the ledger contract.
type WalletStats struct {
	WalletAge         int     `json:"wallet_age_days"`
	TotalTransactions int     `json:"total_transactions"`
	TotalVolumeTON    float64 `json:"total_volume_ton"`
}

type WalletAnalysisResult struct {
	AgePoints         int64 `json:"age_points"`
	TransactionPoints int64 `json:"transaction_points"`
	VolumePoints      int64 `json:"volume_points"`
	Total             int64 `json:"total"`
}

const (
	walletAgePointsPerDay = 2
	walletAgePointsCap    = 1000
	walletPointsPerTx     = 5
	walletTxPointsCap     = 2000
	walletPointsPerTON    = 1
	walletVolumePointsCap = 2000
)

// ScoreWallet converts wallet activity into points, capped per category.
func ScoreWallet(stats WalletStats) WalletAnalysisResult {
	age := int64(stats.WalletAge) * walletAgePointsPerDay
	if age > walletAgePointsCap {
		age = walletAgePointsCap
	}
	if age < 0 {
		age = 0
	}

	tx := int64(stats.TotalTransactions) * walletPointsPerTx
	if tx > walletTxPointsCap {
		tx = walletTxPointsCap
	}
	if tx < 0 {
		tx = 0
	}

	volume := int64(stats.TotalVolumeTON) * walletPointsPerTON
	if volume > walletVolumePointsCap {
		volume = walletVolumePointsCap
	}
	if volume < 0 {
		volume = 0
	}

	return WalletAnalysisResult{
		AgePoints:         age,
		TransactionPoints: tx,
		VolumePoints:      volume,
		Total:             age + tx + volume,
	}
}
