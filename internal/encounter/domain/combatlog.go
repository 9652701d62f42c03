package domain

import "time"

// ActorType identifies which side of the encounter performed an action.
type ActorType string

const (
	// ActorTypeParticipant marks a player action.
	ActorTypeParticipant ActorType = "participant"
	// ActorTypeAdversary marks a scripted adversary action.
	ActorTypeAdversary ActorType = "adversary"
)

// ActionType identifies what a combat log entry records.
type ActionType string

const (
	// ActionTypeAttack is damage dealt against the shared pool.
	ActionTypeAttack ActionType = "attack"
	// ActionTypeAbility is an adversary special action.
	ActionTypeAbility ActionType = "ability"
	// ActionTypeHeal is healing applied to a participant.
	ActionTypeHeal ActionType = "heal"
	// ActionTypeRepair is structure repair in defense encounters.
	ActionTypeRepair ActionType = "repair"
)

// CombatLogEntry is one immutable row of the append-only combat log.
// Entries are never edited or removed once appended; Seq is assigned by the
// owning encounter and strictly increases.
type CombatLogEntry struct {
	Seq       uint64     `json:"seq"`
	Timestamp time.Time  `json:"timestamp"`
	ActorID   string     `json:"actorId"`
	ActorType ActorType  `json:"actorType"`
	Action    ActionType `json:"action"`
	// Source names the weapon or effect behind the action, when the caller
	// supplied one.
	Source   string `json:"source,omitempty"`
	Amount   int    `json:"amount"`
	Critical bool   `json:"critical"`
}
