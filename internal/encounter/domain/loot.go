package domain

import (
	"math"
	"math/rand"
)

// Award is one item grant inside a reward bundle.
type Award struct {
	ItemID string `json:"itemId"`
	Amount int    `json:"amount"`
}

// RewardBundle is the per-participant outcome of the loot allocation.
type RewardBundle struct {
	PlayerID            string  `json:"playerId"`
	ContributionPercent float64 `json:"contributionPercent"`
	Items               []Award `json:"items,omitempty"`
	XP                  int     `json:"xp"`
	Gold                int     `json:"gold"`
	Rank                Rank    `json:"rank,omitempty"`
	Multiplier          float64 `json:"multiplier,omitempty"`
}

func (b RewardBundle) clone() RewardBundle {
	cloned := b
	if b.Items != nil {
		cloned.Items = append([]Award(nil), b.Items...)
	}
	return cloned
}

// Contribution returns each ledger entry's share of the total damage dealt,
// keyed by player id. All shares are zero when the total is zero; otherwise
// they sum to 1 within floating tolerance.
func Contribution(ledger []ParticipantRecord) map[string]float64 {
	total := 0
	for _, record := range ledger {
		total += record.DamageDealt
	}

	shares := make(map[string]float64, len(ledger))
	for _, record := range ledger {
		if total == 0 {
			shares[record.PlayerID] = 0
			continue
		}
		shares[record.PlayerID] = float64(record.DamageDealt) / float64(total)
	}
	return shares
}

// EffectiveChance weights a listed drop chance by a participant's
// contribution share, capped at 1.
func EffectiveChance(listed, contribution float64) float64 {
	return math.Min(1, listed*(0.5+contribution))
}

// Allocate computes the per-participant reward bundles for a completed
// encounter from its final ledger snapshot.
//
// The function is pure: it mutates nothing and draws all randomness from the
// provided RNG, so a seed fully determines the outcome and the allocation is
// auditable by replay.
func Allocate(table RewardTable, ledger []ParticipantRecord, rng *rand.Rand) []RewardBundle {
	shares := Contribution(ledger)

	bundles := make([]RewardBundle, 0, len(ledger))
	for _, record := range ledger {
		contribution := shares[record.PlayerID]
		bundle := RewardBundle{
			PlayerID:            record.PlayerID,
			ContributionPercent: contribution,
		}

		for _, reward := range table.Guaranteed {
			if rng.Float64() < reward.Chance {
				bundle.Items = append(bundle.Items, Award{ItemID: reward.ItemID, Amount: reward.Amount})
			}
		}
		for _, reward := range table.Random {
			if rng.Float64() < EffectiveChance(reward.Chance, contribution) {
				amount := rollRange(rng, IntRange{Min: reward.AmountMin, Max: reward.AmountMax})
				bundle.Items = append(bundle.Items, Award{ItemID: reward.ItemID, Amount: amount})
			}
		}

		bundle.XP = scaleReward(rollRange(rng, table.XP), contribution)
		bundle.Gold = scaleReward(rollRange(rng, table.Gold), contribution)

		bundles = append(bundles, bundle)
	}
	return bundles
}

// AllocateRanked extends Allocate for the time-boxed defense variant: each
// participant is classified into a rank tier by their share of the weighted
// participation score, and the rank and tier multipliers scale XP and gold.
func AllocateRanked(table RewardTable, ledger []ParticipantRecord, cfg RankConfig, tierMultiplier float64, rng *rand.Rand) []RewardBundle {
	bundles := Allocate(table, ledger, rng)

	scores := participationScores(ledger, cfg.Weights)
	total := 0.0
	for _, score := range scores {
		total += score
	}
	if tierMultiplier <= 0 {
		tierMultiplier = 1
	}

	for i := range bundles {
		share := 0.0
		if total > 0 {
			share = scores[bundles[i].PlayerID] / total
		}
		rank := cfg.Classify(share)
		multiplier := cfg.Multiplier(rank) * tierMultiplier

		bundles[i].Rank = rank
		bundles[i].Multiplier = multiplier
		bundles[i].XP = int(math.Floor(float64(bundles[i].XP) * multiplier))
		bundles[i].Gold = int(math.Floor(float64(bundles[i].Gold) * multiplier))
	}
	return bundles
}

// scaleReward applies the contribution scaling to a rolled base value.
func scaleReward(base int, contribution float64) int {
	return int(math.Floor(float64(base) * (0.3 + contribution)))
}

// rollRange samples the closed interval uniformly.
func rollRange(rng *rand.Rand, r IntRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// MVP returns the participant with the highest contribution share and that
// share. Ties resolve to the earliest joiner. The second return is false for
// an empty ledger.
func MVP(ledger []ParticipantRecord) (string, float64, bool) {
	if len(ledger) == 0 {
		return "", 0, false
	}
	shares := Contribution(ledger)
	best := ledger[0]
	for _, record := range ledger[1:] {
		if record.DamageDealt > best.DamageDealt {
			best = record
		}
	}
	return best.PlayerID, shares[best.PlayerID], true
}
