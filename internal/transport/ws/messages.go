package ws

import (
	"encoding/json"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// Command is one inbound client message. Payload decoding depends on Type.
type Command struct {
	Type        string          `json:"type"`
	RequestID   string          `json:"requestId,omitempty"`
	EncounterID string          `json:"encounterId,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Command types accepted over the socket.
const (
	CommandSpawn        = "spawn"
	CommandAnnounce     = "announce"
	CommandJoin         = "join"
	CommandLeave        = "leave"
	CommandAttack       = "attack"
	CommandHeal         = "heal"
	CommandRepair       = "repair"
	CommandUseAbility   = "useAbility"
	CommandStrike       = "adversaryStrike"
	CommandGetState     = "getState"
	CommandList         = "list"
	CommandHistory      = "history"
	CommandAchievements = "achievements"
	CommandWatch        = "watch"
	CommandUnwatch      = "unwatch"
)

type spawnPayload struct {
	DefinitionID string  `json:"definitionId"`
	Location     string  `json:"location,omitempty"`
	PoolModifier float64 `json:"poolModifier,omitempty"`
}

type joinPayload struct {
	Player domain.PlayerSnapshot `json:"player"`
}

type leavePayload struct {
	PlayerID string `json:"playerId"`
}

type attackPayload struct {
	PlayerID   string `json:"playerId"`
	Damage     int    `json:"damage"`
	Critical   bool   `json:"critical,omitempty"`
	SourceName string `json:"sourceName,omitempty"`
}

type healPayload struct {
	PlayerID string `json:"playerId"`
	TargetID string `json:"targetId,omitempty"`
	Amount   int    `json:"amount"`
}

type repairPayload struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

type useAbilityPayload struct {
	AbilityID string `json:"abilityId"`
}

type strikePayload struct {
	Amount int `json:"amount"`
}

type listPayload struct {
	Status string `json:"status,omitempty"`
}

type historyPayload struct {
	PlayerID string `json:"playerId,omitempty"`
}

// Response is one outbound message: a command result, a command error, or a
// broadcast event relayed from the bus.
type Response struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Payload   any    `json:"payload,omitempty"`
	Error     *Fault `json:"error,omitempty"`
}

// Response types.
const (
	ResponseResult = "result"
	ResponseError  = "error"
	ResponseEvent  = "event"
)

// Fault is the wire form of a failed command.
type Fault struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
