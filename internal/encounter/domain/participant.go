package domain

import "time"

// PlayerSnapshot is the session layer's view of a player at join time.
type PlayerSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxHp"`
}

// ParticipantRecord tracks one player's state and contribution inside an
// encounter. A record is owned by its parent encounter and never migrates
// between encounters.
//
// Contribution counters are monotonic accumulators: leaving and rejoining
// reactivates the existing record in place and never resets them.
type ParticipantRecord struct {
	PlayerID    string     `json:"playerId"`
	DisplayName string     `json:"displayName"`
	JoinedAt    time.Time  `json:"joinedAt"`
	LeftAt      *time.Time `json:"leftAt,omitempty"`
	Active      bool       `json:"active"`
	CurrentHP   int        `json:"currentHp"`
	MaxHP       int        `json:"maxHp"`
	DamageDealt int        `json:"damageDealt"`
	HealingDone int        `json:"healingDone"`
	// UtilityScore accumulates repairs and other contributions not expressed
	// as damage.
	UtilityScore int `json:"utilityScore"`
	// LootReceived is filled exactly once, at completion.
	LootReceived *RewardBundle `json:"lootReceived,omitempty"`
}

// clone returns a deep copy of the record for read snapshots.
func (p *ParticipantRecord) clone() ParticipantRecord {
	cloned := *p
	if p.LeftAt != nil {
		leftAt := *p.LeftAt
		cloned.LeftAt = &leftAt
	}
	if p.LootReceived != nil {
		loot := p.LootReceived.clone()
		cloned.LootReceived = &loot
	}
	return cloned
}
