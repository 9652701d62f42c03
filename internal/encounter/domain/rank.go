package domain

// Rank classifies a participant's share of the weighted participation score
// in a defense encounter.
type Rank string

const (
	// RankMVP is the top contribution band.
	RankMVP Rank = "mvp"
	// RankHero is the second contribution band.
	RankHero Rank = "hero"
	// RankDefender is the third contribution band.
	RankDefender Rank = "defender"
	// RankParticipant is the minimal meaningful contribution band.
	RankParticipant Rank = "participant"
	// RankSpectator contributed below every band.
	RankSpectator Rank = "spectator"
)

// ScoreWeights weighs the contribution counters into one participation
// score. These are game-balance configuration, not engine logic.
type ScoreWeights struct {
	Damage  float64 `json:"damage" env:"DAMAGE" envDefault:"1.0"`
	Healing float64 `json:"healing" env:"HEALING" envDefault:"0.8"`
	Utility float64 `json:"utility" env:"UTILITY" envDefault:"1.2"`
	// Survival is a flat bonus for participants still active at the end.
	Survival float64 `json:"survival" env:"SURVIVAL" envDefault:"50"`
}

// RankConfig holds the rank thresholds (as shares of the total participation
// score) and the reward multipliers per rank. The documented defaults come
// from DefaultRankConfig; the engine never hard-codes them.
type RankConfig struct {
	MVPThreshold         float64 `json:"mvpThreshold"`
	HeroThreshold        float64 `json:"heroThreshold"`
	DefenderThreshold    float64 `json:"defenderThreshold"`
	ParticipantThreshold float64 `json:"participantThreshold"`

	MVPMultiplier      float64 `json:"mvpMultiplier"`
	HeroMultiplier     float64 `json:"heroMultiplier"`
	DefenderMultiplier float64 `json:"defenderMultiplier"`

	Weights ScoreWeights `json:"weights"`
}

// DefaultRankConfig returns the documented rank bands and multipliers.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		MVPThreshold:         0.30,
		HeroThreshold:        0.20,
		DefenderThreshold:    0.10,
		ParticipantThreshold: 0.05,
		MVPMultiplier:        2.0,
		HeroMultiplier:       1.5,
		DefenderMultiplier:   1.2,
		Weights: ScoreWeights{
			Damage:   1.0,
			Healing:  0.8,
			Utility:  1.2,
			Survival: 50,
		},
	}
}

// Classify maps a participation share onto a rank band.
func (c RankConfig) Classify(share float64) Rank {
	switch {
	case share >= c.MVPThreshold:
		return RankMVP
	case share >= c.HeroThreshold:
		return RankHero
	case share >= c.DefenderThreshold:
		return RankDefender
	case share >= c.ParticipantThreshold:
		return RankParticipant
	default:
		return RankSpectator
	}
}

// Multiplier returns the reward multiplier for a rank. Ranks below defender
// pay the base rate.
func (c RankConfig) Multiplier(rank Rank) float64 {
	switch rank {
	case RankMVP:
		return c.MVPMultiplier
	case RankHero:
		return c.HeroMultiplier
	case RankDefender:
		return c.DefenderMultiplier
	default:
		return 1.0
	}
}

// participationScores computes each participant's weighted score.
func participationScores(ledger []ParticipantRecord, weights ScoreWeights) map[string]float64 {
	scores := make(map[string]float64, len(ledger))
	for _, record := range ledger {
		score := float64(record.DamageDealt)*weights.Damage +
			float64(record.HealingDone)*weights.Healing +
			float64(record.UtilityScore)*weights.Utility
		if record.Active {
			score += weights.Survival
		}
		scores[record.PlayerID] = score
	}
	return scores
}
