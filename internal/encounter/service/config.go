package service

import (
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// Config holds the registry's tuning knobs. Numeric balance values are
// configuration data, never engine constants.
type Config struct {
	// AllowMultiplePerDefinition keys the one-active-instance rule by
	// (definition, location) instead of definition alone.
	AllowMultiplePerDefinition bool

	// AnnounceCountdown is how long an announced encounter waits before
	// going active.
	AnnounceCountdown time.Duration

	// IdleExpire bounds how long a scheduled or announced encounter may sit
	// without a single join before it expires.
	IdleExpire time.Duration

	// DotTickInterval spaces the follow-up ticks of damage-over-time
	// abilities.
	DotTickInterval time.Duration

	// TerminalRetention is how long a settled encounter stays queryable in
	// memory before its instance is dropped. The history store keeps the
	// permanent record.
	TerminalRetention time.Duration

	// TierMultipliers scales ranked rewards per definition tier.
	TierMultipliers map[int]float64

	// Rank holds the defense-variant rank bands and multipliers.
	Rank domain.RankConfig
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		AnnounceCountdown: 30 * time.Second,
		IdleExpire:        5 * time.Minute,
		DotTickInterval:   time.Second,
		TerminalRetention: 5 * time.Minute,
		TierMultipliers: map[int]float64{
			1: 1.0,
			2: 1.25,
			3: 1.5,
			4: 2.0,
		},
		Rank: domain.DefaultRankConfig(),
	}
}

// tierMultiplier looks up the tier multiplier, defaulting to 1.
func (c Config) tierMultiplier(tier int) float64 {
	if multiplier, ok := c.TierMultipliers[tier]; ok && multiplier > 0 {
		return multiplier
	}
	return 1.0
}
