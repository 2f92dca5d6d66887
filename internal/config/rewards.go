package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReferralTier is a one-time milestone unlocked when a referrer's invite
// count first reaches Invites.
type ReferralTier struct {
	Invites int    `mapstructure:"invites"`
	Reward  int64  `mapstructure:"reward"`
	Title   string `mapstructure:"title"`
}

// RewardsConfig holds every point amount and threshold the ledger hands out.
type RewardsConfig struct {
	PointsPerReferral int64          `mapstructure:"pointsPerReferral"`
	CheckInBonus      int64          `mapstructure:"checkInBonus"`
	InviteTaskTarget  int            `mapstructure:"inviteTaskTarget"`
	InviteTaskBonus   int64          `mapstructure:"inviteTaskBonus"`
	EarlyAdopterMin   int            `mapstructure:"earlyAdopterMinInvites"`
	EarlyAdopterBonus int64          `mapstructure:"earlyAdopterBonus"`
	BoosterPriceNano  int64          `mapstructure:"boosterPriceNano"`
	BoosterDays       int            `mapstructure:"boosterDays"`
	Tiers             []ReferralTier `mapstructure:"tiers"`
}

func DefaultRewardsConfig() RewardsConfig {
	return RewardsConfig{
		PointsPerReferral: 150,
		CheckInBonus:      20,
		InviteTaskTarget:  20,
		InviteTaskBonus:   3000,
		EarlyAdopterMin:   7,
		EarlyAdopterBonus: 10000,
		BoosterPriceNano:  500_000_000, // 0.5 TON
		BoosterDays:       7,
		Tiers: []ReferralTier{
			{Invites: 1, Reward: 1000, Title: "Bronze"},
			{Invites: 3, Reward: 2000, Title: "Silver"},
			{Invites: 7, Reward: 5000, Title: "Gold"},
			{Invites: 15, Reward: 10000, Title: "Platinum"},
			{Invites: 25, Reward: 20000, Title: "Diamond"},
			{Invites: 50, Reward: 50000, Title: "Master"},
		},
	}
}

// RewardsConfigHolder exposes the current rewards table and hot-reloads it
// when rewards.yml changes on disk.
type RewardsConfigHolder struct {
	current atomic.Value // holds RewardsConfig
}

func NewRewardsConfigHolder() (*RewardsConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("rewards")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tonbox/config")
	v.AddConfigPath("/etc/tonbox")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TONBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultRewardsConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else {
		if err := v.UnmarshalKey("rewards", &cfg); err != nil {
			return nil, err
		}
	}
	if err := validateRewardsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RewardsConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated := DefaultRewardsConfig()
		if err := v.UnmarshalKey("rewards", &updated); err != nil {
			log.Printf("[rewards-config] reload failed: %v", err)
			return
		}
		if err := validateRewardsConfig(updated); err != nil {
			log.Printf("[rewards-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[rewards-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *RewardsConfigHolder) Get() RewardsConfig {
	return h.current.Load().(RewardsConfig)
}

// NewStaticRewardsHolder returns a holder pinned to cfg. Used by tests.
func NewStaticRewardsHolder(cfg RewardsConfig) *RewardsConfigHolder {
	holder := &RewardsConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateRewardsConfig(cfg RewardsConfig) error {
	if cfg.PointsPerReferral <= 0 {
		return errors.New("rewards.pointsPerReferral must be positive")
	}
	if cfg.CheckInBonus <= 0 {
		return errors.New("rewards.checkInBonus must be positive")
	}
	if len(cfg.Tiers) == 0 {
		return errors.New("rewards.tiers cannot be empty")
	}
	prev := 0
	for _, tier := range cfg.Tiers {
		if tier.Invites <= prev {
			return errors.New("rewards.tiers must have strictly ascending invite thresholds")
		}
		if tier.Reward <= 0 {
			return errors.New("rewards.tiers rewards must be positive")
		}
		prev = tier.Invites
	}
	return nil
}
