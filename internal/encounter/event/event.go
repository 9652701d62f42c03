// Package event defines the engine's broadcast events and the in-process
// bus the transport layer subscribes to. The encounter service writes to the
// bus; fan-out to participant connections is the transport's concern, which
// keeps the engine decoupled from any delivery mechanism.
package event

import (
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// Type identifies a broadcast event.
type Type string

const (
	// TypeEncounterStarted fires on the announced-to-active transition.
	TypeEncounterStarted Type = "encounter:started"
	// TypePhaseChanged fires when the pool crosses a phase threshold.
	TypePhaseChanged Type = "phase:changed"
	// TypeAbilityUsed fires when an adversary ability resolves.
	TypeAbilityUsed Type = "ability:used"
	// TypeEncounterCompleted fires on the active-to-completed transition.
	TypeEncounterCompleted Type = "encounter:completed"
	// TypeEncounterFailed fires on the active-to-failed transition.
	TypeEncounterFailed Type = "encounter:failed"
	// TypeProgressUpdated fires after every pool or contribution mutation.
	TypeProgressUpdated Type = "progress:updated"
)

// Event is one broadcast message scoped to a single encounter.
type Event struct {
	EncounterID string    `json:"encounterId"`
	Type        Type      `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload,omitempty"`
}

// StartedPayload accompanies TypeEncounterStarted.
type StartedPayload struct {
	DefinitionID string `json:"definitionId"`
	MaxPool      int    `json:"maxPool"`
}

// PhaseChangedPayload accompanies TypePhaseChanged.
type PhaseChangedPayload struct {
	NewPhaseIndex  int      `json:"newPhaseIndex"`
	MechanicsDelta []string `json:"mechanicsDelta,omitempty"`
}

// AbilityUsedPayload accompanies TypeAbilityUsed.
type AbilityUsedPayload struct {
	AbilityID            string    `json:"abilityId"`
	AffectedParticipants []string  `json:"affectedParticipants"`
	CooldownUntil        time.Time `json:"cooldownUntil"`
}

// CompletedPayload accompanies TypeEncounterCompleted.
type CompletedPayload struct {
	MVPID string                `json:"mvpId,omitempty"`
	Loot  []domain.RewardBundle `json:"lootDistribution"`
}

// FailedPayload accompanies TypeEncounterFailed.
type FailedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// Contributor is one entry of a progress update's contributor list.
type Contributor struct {
	PlayerID    string `json:"playerId"`
	DamageDealt int    `json:"damageDealt"`
}

// ProgressPayload accompanies TypeProgressUpdated.
type ProgressPayload struct {
	PoolRemaining int           `json:"poolRemaining"`
	MaxPool       int           `json:"maxPool"`
	Contributors  []Contributor `json:"contributors,omitempty"`
}
