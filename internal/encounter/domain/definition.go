package domain

import (
	"fmt"

	apperrors "github.com/stoneveil/bastion/internal/platform/errors"
)

// Kind describes the victory condition of a definition.
type Kind int

const (
	// KindUnspecified represents an invalid kind value.
	KindUnspecified Kind = iota
	// KindAssault wins by depleting the adversary pool.
	KindAssault
	// KindDefense wins by keeping the defended structure standing until the
	// encounter clock runs out; the pool reaching zero is a failure.
	KindDefense
)

// Tier bounds for definitions.
const (
	TierMin = 1
	TierMax = 4
)

// Targeting describes how an adversary ability picks its victims.
type Targeting int

const (
	// TargetingUnspecified represents an invalid targeting value.
	TargetingUnspecified Targeting = iota
	// TargetingSingle strikes the active participant with the highest damage dealt.
	TargetingSingle
	// TargetingArea strikes every active participant.
	TargetingArea
)

// Phase is a scripted escalation tier, activated when the shared pool drops
// to ThresholdPercent of the maximum.
type Phase struct {
	ThresholdPercent int      `json:"thresholdPercent"`
	MechanicsDelta   []string `json:"mechanicsDelta"`
}

// Ability is an adversary-side special action gated by a cooldown.
type Ability struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CooldownSeconds int       `json:"cooldownSeconds"`
	Targeting       Targeting `json:"targeting"`
	BasePower       int       `json:"basePower"`
	Effect          Effect    `json:"-"`
}

// GuaranteedReward is rolled independently per participant at its listed chance.
type GuaranteedReward struct {
	ItemID string  `json:"itemId"`
	Chance float64 `json:"chance"`
	Amount int     `json:"amount"`
}

// RandomReward is rolled per participant with a contribution-weighted chance.
type RandomReward struct {
	ItemID    string  `json:"itemId"`
	Chance    float64 `json:"chance"`
	AmountMin int     `json:"amountMin"`
	AmountMax int     `json:"amountMax"`
}

// IntRange is a closed integer interval sampled uniformly.
type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RewardTable describes the loot a definition can pay out.
type RewardTable struct {
	Guaranteed []GuaranteedReward `json:"guaranteed"`
	Random     []RandomReward     `json:"random"`
	XP         IntRange           `json:"xpRange"`
	Gold       IntRange           `json:"goldRange"`
}

// Definition is the immutable template an encounter is spawned from.
// Definitions are loaded once at startup and read-only at runtime.
type Definition struct {
	ID               string      `json:"id"`
	DisplayName      string      `json:"displayName"`
	Kind             Kind        `json:"kind"`
	Tier             int         `json:"tier"`
	BasePoolSize     int         `json:"basePoolSize"`
	LevelRequirement int         `json:"levelRequirement"`
	// DurationSeconds bounds defense encounters; the clock starts when the
	// encounter goes active. Zero for assault encounters.
	DurationSeconds int `json:"durationSeconds"`
	// WaveRestSeconds is a defense-only lull after each phase crossing during
	// which the adversary neither strikes nor uses abilities.
	WaveRestSeconds int         `json:"waveRestSeconds,omitempty"`
	Phases          []Phase     `json:"phases"`
	Abilities       []Ability   `json:"abilities"`
	Rewards         RewardTable `json:"rewardTable"`
}

// AbilityByID returns the ability with the given id.
func (d Definition) AbilityByID(id string) (Ability, bool) {
	for _, ability := range d.Abilities {
		if ability.ID == id {
			return ability, true
		}
	}
	return Ability{}, false
}

// Validate checks structural invariants of a loaded definition.
//
// Phase thresholds must be strictly decreasing and inside (0, 100): phases
// are scripted against a shrinking pool, so a later phase always names a
// lower threshold.
func (d Definition) Validate() error {
	if d.ID == "" {
		return apperrors.New(apperrors.CodeDefinitionEmptyID, "definition id is required")
	}
	if d.Kind != KindAssault && d.Kind != KindDefense {
		return apperrors.New(apperrors.CodeDefinitionInvalidTier, fmt.Sprintf("definition %s: invalid kind %d", d.ID, d.Kind))
	}
	if d.Tier < TierMin || d.Tier > TierMax {
		return apperrors.WithMetadata(apperrors.CodeDefinitionInvalidTier,
			fmt.Sprintf("definition %s: tier %d outside [%d, %d]", d.ID, d.Tier, TierMin, TierMax),
			map[string]string{"tier": fmt.Sprint(d.Tier)})
	}
	if d.BasePoolSize <= 0 {
		return apperrors.New(apperrors.CodeDefinitionInvalidPool,
			fmt.Sprintf("definition %s: base pool size %d must be positive", d.ID, d.BasePoolSize))
	}
	if d.LevelRequirement < 0 {
		return apperrors.New(apperrors.CodeDefinitionInvalidPool,
			fmt.Sprintf("definition %s: negative level requirement", d.ID))
	}
	if d.Kind == KindDefense && d.DurationSeconds <= 0 {
		return apperrors.New(apperrors.CodeDefinitionInvalidPool,
			fmt.Sprintf("definition %s: defense encounters require a positive duration", d.ID))
	}
	if d.WaveRestSeconds < 0 {
		return apperrors.New(apperrors.CodeDefinitionInvalidPhases,
			fmt.Sprintf("definition %s: negative wave rest", d.ID))
	}
	if d.WaveRestSeconds > 0 && d.Kind != KindDefense {
		return apperrors.New(apperrors.CodeDefinitionInvalidPhases,
			fmt.Sprintf("definition %s: wave rest applies to defense encounters only", d.ID))
	}

	previous := 100
	for i, phase := range d.Phases {
		if phase.ThresholdPercent <= 0 || phase.ThresholdPercent >= 100 {
			return apperrors.New(apperrors.CodeDefinitionInvalidPhases,
				fmt.Sprintf("definition %s: phase %d threshold %d outside (0, 100)", d.ID, i, phase.ThresholdPercent))
		}
		if phase.ThresholdPercent >= previous {
			return apperrors.New(apperrors.CodeDefinitionInvalidPhases,
				fmt.Sprintf("definition %s: phase %d threshold %d not strictly decreasing", d.ID, i, phase.ThresholdPercent))
		}
		previous = phase.ThresholdPercent
	}

	seen := make(map[string]struct{}, len(d.Abilities))
	for _, ability := range d.Abilities {
		if ability.ID == "" {
			return apperrors.New(apperrors.CodeDefinitionInvalidAbility,
				fmt.Sprintf("definition %s: ability id is required", d.ID))
		}
		if _, dup := seen[ability.ID]; dup {
			return apperrors.New(apperrors.CodeDefinitionInvalidAbility,
				fmt.Sprintf("definition %s: duplicate ability %s", d.ID, ability.ID))
		}
		seen[ability.ID] = struct{}{}
		if ability.CooldownSeconds <= 0 {
			return apperrors.New(apperrors.CodeDefinitionInvalidAbility,
				fmt.Sprintf("definition %s: ability %s cooldown must be positive", d.ID, ability.ID))
		}
		if ability.Targeting != TargetingSingle && ability.Targeting != TargetingArea {
			return apperrors.New(apperrors.CodeDefinitionInvalidAbility,
				fmt.Sprintf("definition %s: ability %s has invalid targeting", d.ID, ability.ID))
		}
		if ability.Effect == nil {
			return apperrors.New(apperrors.CodeDefinitionInvalidAbility,
				fmt.Sprintf("definition %s: ability %s is missing an effect", d.ID, ability.ID))
		}
	}

	for _, reward := range d.Rewards.Guaranteed {
		if reward.Chance < 0 || reward.Chance > 1 {
			return apperrors.New(apperrors.CodeDefinitionInvalidRewardTable,
				fmt.Sprintf("definition %s: guaranteed %s chance %v outside [0, 1]", d.ID, reward.ItemID, reward.Chance))
		}
	}
	for _, reward := range d.Rewards.Random {
		if reward.Chance < 0 || reward.Chance > 1 {
			return apperrors.New(apperrors.CodeDefinitionInvalidRewardTable,
				fmt.Sprintf("definition %s: random %s chance %v outside [0, 1]", d.ID, reward.ItemID, reward.Chance))
		}
		if reward.AmountMax < reward.AmountMin {
			return apperrors.New(apperrors.CodeDefinitionInvalidRewardTable,
				fmt.Sprintf("definition %s: random %s amount range inverted", d.ID, reward.ItemID))
		}
	}
	if d.Rewards.XP.Max < d.Rewards.XP.Min || d.Rewards.Gold.Max < d.Rewards.Gold.Min {
		return apperrors.New(apperrors.CodeDefinitionInvalidRewardTable,
			fmt.Sprintf("definition %s: xp or gold range inverted", d.ID))
	}

	return nil
}
