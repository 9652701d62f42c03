package i18n

// esES holds the Spanish user-facing message templates.
var esES = map[Code]string{
	CodeDefinitionNotFound:           "definición de encuentro desconocida",
	CodeDefinitionEmptyID:            "se requiere el id de definición",
	CodeDefinitionInvalidTier:        "tier inválido",
	CodeDefinitionInvalidPool:        "tamaño de pool inválido",
	CodeDefinitionInvalidPhases:      "umbrales de fase inválidos",
	CodeDefinitionInvalidAbility:     "habilidad inválida",
	CodeDefinitionInvalidRewardTable: "tabla de recompensas inválida",
	CodeEncounterNotFound:            "encuentro no encontrado",
	CodeEncounterDuplicateActive:     "ya hay un encuentro en curso",
	CodeEncounterInvalidState:        "el encuentro no está activo",
	CodeEncounterInvalidTransition:   "el estado del encuentro no lo permite",
	CodeEncounterWaveRest:            "descanso entre oleadas en curso ({{.seconds}}s)",
	CodeParticipantNotJoined:         "no eres participante",
	CodeParticipantInactive:          "el participante se ha retirado",
	CodeParticipantLevelTooLow:       "nivel insuficiente (requiere {{.required}})",
	CodeParticipantEmptyID:           "se requiere el id del jugador",
	CodeAbilityNotFound:              "habilidad desconocida",
	CodeAbilityOnCooldown:            "en cooldown",
	CodeAbilityNoTargets:             "sin objetivos válidos",
	CodeNotFound:                     "no encontrado",
}
