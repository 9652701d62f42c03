package domain

import (
	"encoding/json"
	"fmt"
)

// EffectKind identifies a concrete effect variant.
type EffectKind string

const (
	// EffectKindDamage is a flat hit on the ability's target.
	EffectKindDamage EffectKind = "damage"
	// EffectKindAreaDamage is a radius hit applied to each target.
	EffectKindAreaDamage EffectKind = "area_damage"
	// EffectKindDot is damage applied over a number of ticks.
	EffectKindDot EffectKind = "dot"
	// EffectKindStun suppresses a target's actions for a number of turns.
	EffectKindStun EffectKind = "stun"
)

// Effect is the closed set of adversary ability effects. Each variant is
// matched exhaustively where it is applied; there is no property-bag escape
// hatch.
type Effect interface {
	Kind() EffectKind
}

// DamageEffect deals Amount damage to the resolved target.
type DamageEffect struct {
	Amount int `json:"amount"`
}

// Kind identifies the damage variant.
func (DamageEffect) Kind() EffectKind { return EffectKindDamage }

// AreaDamageEffect deals Amount damage to every resolved target inside Radius.
type AreaDamageEffect struct {
	Amount int `json:"amount"`
	Radius int `json:"radius"`
}

// Kind identifies the area damage variant.
func (AreaDamageEffect) Kind() EffectKind { return EffectKindAreaDamage }

// DotEffect deals AmountPerTick damage for Ticks consecutive ticks.
// The first tick lands immediately; the remainder are scheduled by the
// service layer.
type DotEffect struct {
	AmountPerTick int `json:"amountPerTick"`
	Ticks         int `json:"ticks"`
}

// Kind identifies the damage-over-time variant.
func (DotEffect) Kind() EffectKind { return EffectKindDot }

// StunEffect suppresses the target for Turns turns. The engine records the
// hit in the combat log; turn suppression itself is enforced by the combat
// simulation, which is outside this subsystem.
type StunEffect struct {
	Turns int `json:"turns"`
}

// Kind identifies the stun variant.
func (StunEffect) Kind() EffectKind { return EffectKindStun }

// effectEnvelope is the wire form of an Effect inside definition documents.
type effectEnvelope struct {
	Kind          EffectKind `json:"kind"`
	Amount        int        `json:"amount,omitempty"`
	Radius        int        `json:"radius,omitempty"`
	AmountPerTick int        `json:"amountPerTick,omitempty"`
	Ticks         int        `json:"ticks,omitempty"`
	Turns         int        `json:"turns,omitempty"`
}

// abilityDocument mirrors Ability with the effect flattened into an envelope.
type abilityDocument struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	CooldownSeconds int            `json:"cooldownSeconds"`
	Targeting       Targeting      `json:"targeting"`
	BasePower       int            `json:"basePower"`
	Effect          effectEnvelope `json:"effect"`
}

// MarshalJSON encodes the ability with its effect variant tagged by kind.
func (a Ability) MarshalJSON() ([]byte, error) {
	doc := abilityDocument{
		ID:              a.ID,
		Name:            a.Name,
		CooldownSeconds: a.CooldownSeconds,
		Targeting:       a.Targeting,
		BasePower:       a.BasePower,
	}
	switch effect := a.Effect.(type) {
	case DamageEffect:
		doc.Effect = effectEnvelope{Kind: EffectKindDamage, Amount: effect.Amount}
	case AreaDamageEffect:
		doc.Effect = effectEnvelope{Kind: EffectKindAreaDamage, Amount: effect.Amount, Radius: effect.Radius}
	case DotEffect:
		doc.Effect = effectEnvelope{Kind: EffectKindDot, AmountPerTick: effect.AmountPerTick, Ticks: effect.Ticks}
	case StunEffect:
		doc.Effect = effectEnvelope{Kind: EffectKindStun, Turns: effect.Turns}
	case nil:
		return nil, fmt.Errorf("ability %s: effect is required", a.ID)
	default:
		return nil, fmt.Errorf("ability %s: unknown effect kind %q", a.ID, effect.Kind())
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the ability, rejecting unknown effect kinds.
func (a *Ability) UnmarshalJSON(data []byte) error {
	var doc abilityDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	a.ID = doc.ID
	a.Name = doc.Name
	a.CooldownSeconds = doc.CooldownSeconds
	a.Targeting = doc.Targeting
	a.BasePower = doc.BasePower

	switch doc.Effect.Kind {
	case EffectKindDamage:
		a.Effect = DamageEffect{Amount: doc.Effect.Amount}
	case EffectKindAreaDamage:
		a.Effect = AreaDamageEffect{Amount: doc.Effect.Amount, Radius: doc.Effect.Radius}
	case EffectKindDot:
		a.Effect = DotEffect{AmountPerTick: doc.Effect.AmountPerTick, Ticks: doc.Effect.Ticks}
	case EffectKindStun:
		a.Effect = StunEffect{Turns: doc.Effect.Turns}
	default:
		return fmt.Errorf("ability %s: unknown effect kind %q", doc.ID, doc.Effect.Kind)
	}
	return nil
}
