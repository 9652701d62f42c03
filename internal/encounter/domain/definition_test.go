package domain

import (
	"testing"

	apperrors "github.com/stoneveil/bastion/internal/platform/errors"
)

func TestValidateAcceptsWellFormedDefinition(t *testing.T) {
	if err := assaultDefinition().Validate(); err != nil {
		t.Fatalf("expected valid definition, got %v", err)
	}
	if err := defenseDefinition().Validate(); err != nil {
		t.Fatalf("expected valid defense definition, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		code   apperrors.Code
	}{
		{
			"empty id",
			func(d *Definition) { d.ID = "" },
			apperrors.CodeDefinitionEmptyID,
		},
		{
			"tier too high",
			func(d *Definition) { d.Tier = 5 },
			apperrors.CodeDefinitionInvalidTier,
		},
		{
			"zero pool",
			func(d *Definition) { d.BasePoolSize = 0 },
			apperrors.CodeDefinitionInvalidPool,
		},
		{
			"threshold at 100",
			func(d *Definition) { d.Phases = []Phase{{ThresholdPercent: 100}} },
			apperrors.CodeDefinitionInvalidPhases,
		},
		{
			"thresholds not decreasing",
			func(d *Definition) {
				d.Phases = []Phase{{ThresholdPercent: 40}, {ThresholdPercent: 60}}
			},
			apperrors.CodeDefinitionInvalidPhases,
		},
		{
			"negative wave rest",
			func(d *Definition) {
				d.Kind = KindDefense
				d.DurationSeconds = 300
				d.WaveRestSeconds = -5
			},
			apperrors.CodeDefinitionInvalidPhases,
		},
		{
			"wave rest on assault",
			func(d *Definition) { d.WaveRestSeconds = 15 },
			apperrors.CodeDefinitionInvalidPhases,
		},
		{
			"duplicate ability ids",
			func(d *Definition) {
				d.Abilities = append(d.Abilities, d.Abilities[0])
			},
			apperrors.CodeDefinitionInvalidAbility,
		},
		{
			"zero cooldown",
			func(d *Definition) { d.Abilities[0].CooldownSeconds = 0 },
			apperrors.CodeDefinitionInvalidAbility,
		},
		{
			"missing effect",
			func(d *Definition) { d.Abilities[0].Effect = nil },
			apperrors.CodeDefinitionInvalidAbility,
		},
		{
			"chance above one",
			func(d *Definition) { d.Rewards.Guaranteed[0].Chance = 1.5 },
			apperrors.CodeDefinitionInvalidRewardTable,
		},
		{
			"inverted xp range",
			func(d *Definition) { d.Rewards.XP = IntRange{Min: 200, Max: 100} },
			apperrors.CodeDefinitionInvalidRewardTable,
		},
		{
			"defense without duration",
			func(d *Definition) { d.Kind = KindDefense; d.DurationSeconds = 0 },
			apperrors.CodeDefinitionInvalidPool,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := assaultDefinition()
			tc.mutate(&def)
			err := def.Validate()
			if apperrors.CodeOf(err) != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestAbilityByID(t *testing.T) {
	def := assaultDefinition()
	if _, ok := def.AbilityByID("tail-swipe"); !ok {
		t.Fatal("expected tail-swipe")
	}
	if _, ok := def.AbilityByID("missing"); ok {
		t.Fatal("expected miss on unknown ability")
	}
}
