package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeDefinitionNotFound           = "DEFINITION_NOT_FOUND"
	CodeDefinitionEmptyID            = "DEFINITION_EMPTY_ID"
	CodeDefinitionInvalidTier        = "DEFINITION_INVALID_TIER"
	CodeDefinitionInvalidPool        = "DEFINITION_INVALID_POOL"
	CodeDefinitionInvalidPhases      = "DEFINITION_INVALID_PHASES"
	CodeDefinitionInvalidAbility     = "DEFINITION_INVALID_ABILITY"
	CodeDefinitionInvalidRewardTable = "DEFINITION_INVALID_REWARD_TABLE"
	CodeEncounterNotFound            = "ENCOUNTER_NOT_FOUND"
	CodeEncounterDuplicateActive     = "ENCOUNTER_DUPLICATE_ACTIVE"
	CodeEncounterInvalidState        = "ENCOUNTER_INVALID_STATE"
	CodeEncounterInvalidTransition   = "ENCOUNTER_INVALID_TRANSITION"
	CodeEncounterWaveRest            = "ENCOUNTER_WAVE_REST"
	CodeParticipantNotJoined         = "PARTICIPANT_NOT_JOINED"
	CodeParticipantInactive          = "PARTICIPANT_INACTIVE"
	CodeParticipantLevelTooLow       = "PARTICIPANT_LEVEL_TOO_LOW"
	CodeParticipantEmptyID           = "PARTICIPANT_EMPTY_ID"
	CodeAbilityNotFound              = "ABILITY_NOT_FOUND"
	CodeAbilityOnCooldown            = "ABILITY_ON_COOLDOWN"
	CodeAbilityNoTargets             = "ABILITY_NO_TARGETS"
	CodeNotFound                     = "NOT_FOUND"
)

// enUS holds the base-locale user-facing message templates.
var enUS = map[Code]string{
	CodeDefinitionNotFound:           "unknown encounter definition",
	CodeDefinitionEmptyID:            "definition id is required",
	CodeDefinitionInvalidTier:        "invalid tier",
	CodeDefinitionInvalidPool:        "invalid pool size",
	CodeDefinitionInvalidPhases:      "invalid phase thresholds",
	CodeDefinitionInvalidAbility:     "invalid ability",
	CodeDefinitionInvalidRewardTable: "invalid reward table",
	CodeEncounterNotFound:            "encounter not found",
	CodeEncounterDuplicateActive:     "encounter already in progress",
	CodeEncounterInvalidState:        "encounter is not active",
	CodeEncounterInvalidTransition:   "encounter state does not allow this",
	CodeEncounterWaveRest:            "wave rest in progress ({{.seconds}}s)",
	CodeParticipantNotJoined:         "not a participant",
	CodeParticipantInactive:          "participant has left",
	CodeParticipantLevelTooLow:       "level too low (requires {{.required}})",
	CodeParticipantEmptyID:           "player id is required",
	CodeAbilityNotFound:              "unknown ability",
	CodeAbilityOnCooldown:            "on cooldown",
	CodeAbilityNoTargets:             "no valid targets",
	CodeNotFound:                     "not found",
}
