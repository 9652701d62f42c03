package domain

import "time"

// Outcome is the terminal result recorded in history. Expired encounters
// leave no history row.
type Outcome string

const (
	// OutcomeSuccess records a completed encounter.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure records a failed encounter.
	OutcomeFailure Outcome = "failure"
)

// HistorySummary is the write-once record persisted at an encounter's
// terminal transition. It is never mutated afterward.
type HistorySummary struct {
	EncounterID     string         `json:"encounterId"`
	DefinitionID    string         `json:"definitionId"`
	Outcome         Outcome        `json:"outcome"`
	DurationSeconds int            `json:"durationSeconds"`
	ParticipantIDs  []string       `json:"participantIds"`
	MVPID           string         `json:"mvpId,omitempty"`
	MVPContribution float64        `json:"mvpContribution,omitempty"`
	Loot            []RewardBundle `json:"lootDistribution,omitempty"`
	EndedAt         time.Time      `json:"endedAt"`
}

// AchievementUnlock is one idempotent achievement grant. The
// (PlayerID, AchievementID) pair is unique; granting an already-held
// achievement is a no-op, not an error.
type AchievementUnlock struct {
	PlayerID      string    `json:"playerId"`
	AchievementID string    `json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

// Achievement ids granted by deterministic rules at completion.
const (
	// AchievementFirstClearPrefix prefixes per-definition first-completion
	// achievements: "first-clear:" + definition id.
	AchievementFirstClearPrefix = "first-clear:"
	// AchievementMVP marks the highest contribution in a completed encounter.
	AchievementMVP = "encounter-mvp"
)

// FirstClearAchievementID builds the per-definition first-clear achievement id.
func FirstClearAchievementID(definitionID string) string {
	return AchievementFirstClearPrefix + definitionID
}
