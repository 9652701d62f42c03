// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Definition errors
	CodeDefinitionNotFound           Code = "DEFINITION_NOT_FOUND"
	CodeDefinitionEmptyID            Code = "DEFINITION_EMPTY_ID"
	CodeDefinitionInvalidTier        Code = "DEFINITION_INVALID_TIER"
	CodeDefinitionInvalidPool        Code = "DEFINITION_INVALID_POOL"
	CodeDefinitionInvalidPhases      Code = "DEFINITION_INVALID_PHASES"
	CodeDefinitionInvalidAbility     Code = "DEFINITION_INVALID_ABILITY"
	CodeDefinitionInvalidRewardTable Code = "DEFINITION_INVALID_REWARD_TABLE"

	// Encounter errors
	CodeEncounterNotFound          Code = "ENCOUNTER_NOT_FOUND"
	CodeEncounterDuplicateActive   Code = "ENCOUNTER_DUPLICATE_ACTIVE"
	CodeEncounterInvalidState      Code = "ENCOUNTER_INVALID_STATE"
	CodeEncounterInvalidTransition Code = "ENCOUNTER_INVALID_TRANSITION"
	CodeEncounterWaveRest          Code = "ENCOUNTER_WAVE_REST"

	// Participant errors
	CodeParticipantNotJoined   Code = "PARTICIPANT_NOT_JOINED"
	CodeParticipantInactive    Code = "PARTICIPANT_INACTIVE"
	CodeParticipantLevelTooLow Code = "PARTICIPANT_LEVEL_TOO_LOW"
	CodeParticipantEmptyID     Code = "PARTICIPANT_EMPTY_ID"

	// Ability errors
	CodeAbilityNotFound   Code = "ABILITY_NOT_FOUND"
	CodeAbilityOnCooldown Code = "ABILITY_ON_COOLDOWN"
	CodeAbilityNoTargets  Code = "ABILITY_NO_TARGETS"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Internal coordination code. Never surfaced to callers; operations that
	// hit one retry under the encounter lock instead.
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
)

// HTTPStatus maps domain codes to the HTTP-style status carried in the
// transport result envelope.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeDefinitionEmptyID,
		CodeDefinitionInvalidTier,
		CodeDefinitionInvalidPool,
		CodeDefinitionInvalidPhases,
		CodeDefinitionInvalidAbility,
		CodeDefinitionInvalidRewardTable,
		CodeParticipantEmptyID:
		return http.StatusBadRequest

	// Conflict - state doesn't allow operation
	case CodeEncounterInvalidState,
		CodeEncounterInvalidTransition,
		CodeEncounterDuplicateActive,
		CodeEncounterWaveRest,
		CodeAbilityOnCooldown,
		CodeAbilityNoTargets,
		CodeParticipantInactive:
		return http.StatusConflict

	// Forbidden - caller does not meet a prerequisite
	case CodeParticipantLevelTooLow,
		CodeParticipantNotJoined:
		return http.StatusForbidden

	// Not found - resource doesn't exist
	case CodeNotFound,
		CodeDefinitionNotFound,
		CodeEncounterNotFound,
		CodeAbilityNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
