package domain

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/stoneveil/bastion/internal/platform/errors"
)

// Status describes the lifecycle state of an encounter.
type Status int

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = iota
	// StatusScheduled indicates the encounter exists but has not been announced.
	StatusScheduled
	// StatusAnnounced indicates the countdown to activation is running.
	StatusAnnounced
	// StatusActive indicates the encounter is live and accepting actions.
	StatusActive
	// StatusCompleted indicates the encounter ended in success.
	StatusCompleted
	// StatusFailed indicates the encounter ended in failure.
	StatusFailed
	// StatusExpired indicates the encounter timed out before anyone joined.
	StatusExpired
)

// String returns the lowercase wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusAnnounced:
		return "announced"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusExpired:
		return "expired"
	default:
		return "unspecified"
	}
}

// StatusFromString parses a wire status name. Unknown names map to
// StatusUnspecified.
func StatusFromString(name string) Status {
	switch name {
	case "scheduled":
		return StatusScheduled
	case "announced":
		return StatusAnnounced
	case "active":
		return StatusActive
	case "completed":
		return StatusCompleted
	case "failed":
		return StatusFailed
	case "expired":
		return StatusExpired
	default:
		return StatusUnspecified
	}
}

// Terminal reports whether the status is an end state. Transitions are
// one-way; no terminal encounter ever re-enters a prior state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

var (
	// ErrInvalidState indicates an action attempted outside a state that permits it.
	ErrInvalidState = apperrors.New(apperrors.CodeEncounterInvalidState, "encounter is not active")
	// ErrInvalidTransition indicates a lifecycle transition that is not allowed.
	ErrInvalidTransition = apperrors.New(apperrors.CodeEncounterInvalidTransition, "transition not allowed")
	// ErrNotParticipant indicates the player never joined the encounter.
	ErrNotParticipant = apperrors.New(apperrors.CodeParticipantNotJoined, "player is not a participant")
	// ErrParticipantInactive indicates the player left and has not rejoined.
	ErrParticipantInactive = apperrors.New(apperrors.CodeParticipantInactive, "participant has left the encounter")
	// ErrAbilityOnCooldown indicates the ability has not cooled down yet.
	ErrAbilityOnCooldown = apperrors.New(apperrors.CodeAbilityOnCooldown, "ability is on cooldown")
	// ErrNoTargets indicates an ability resolved against an empty ledger.
	ErrNoTargets = apperrors.New(apperrors.CodeAbilityNoTargets, "no active participants to target")
)

// Encounter is one live instance of a scripted cooperative combat event.
//
// The struct carries no locking: the service layer serializes all mutating
// calls per instance. Methods uphold the pool invariant
// 0 <= CurrentPool <= MaxPool and the monotonicity of CurrentPhaseIndex.
type Encounter struct {
	ID           string
	DefinitionID string
	Location     string
	Kind         Kind
	Status       Status

	CurrentPool       int
	MaxPool           int
	CurrentPhaseIndex int
	// ActiveMechanics is the additive overlay of every crossed phase's
	// mechanics delta. Entries are never removed mid-encounter.
	ActiveMechanics []string

	// AbilityCooldowns maps ability id to the instant it is ready again.
	AbilityCooldowns map[string]time.Time

	// RestUntil marks a defense wave lull: until this instant the adversary
	// neither strikes nor uses abilities. Zero when no lull is running.
	RestUntil time.Time

	SpawnedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time

	participants map[string]*ParticipantRecord
	joinOrder    []string

	log     []CombatLogEntry
	nextSeq uint64
}

// Spawn creates a scheduled encounter from a definition. The pool modifier
// scales the base pool (defensive structure bonuses are consumed here, at
// spawn time only); values <= 0 mean no scaling.
func Spawn(def Definition, location string, poolModifier float64, now func() time.Time, idGenerator func() (string, error)) (*Encounter, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	encounterID, err := idGenerator()
	if err != nil {
		return nil, fmt.Errorf("generate encounter id: %w", err)
	}

	maxPool := def.BasePoolSize
	if poolModifier > 0 {
		maxPool = int(math.Round(float64(def.BasePoolSize) * poolModifier))
		if maxPool < 1 {
			maxPool = 1
		}
	}

	return &Encounter{
		ID:               encounterID,
		DefinitionID:     def.ID,
		Location:         location,
		Kind:             def.Kind,
		Status:           StatusScheduled,
		CurrentPool:      maxPool,
		MaxPool:          maxPool,
		AbilityCooldowns: make(map[string]time.Time),
		SpawnedAt:        now().UTC(),
		participants:     make(map[string]*ParticipantRecord),
	}, nil
}

// Restore rebuilds a live encounter from a recovery checkpoint. Terminal
// snapshots cannot be restored. Ability cooldowns are not checkpointed, so
// a restored adversary starts with every ability ready.
func Restore(def Definition, snapshot Snapshot) (*Encounter, error) {
	status := StatusFromString(snapshot.Status)
	if status == StatusUnspecified {
		return nil, fmt.Errorf("checkpoint %s: unknown status %q", snapshot.ID, snapshot.Status)
	}
	if status.Terminal() {
		return nil, fmt.Errorf("checkpoint %s: status %s is terminal", snapshot.ID, snapshot.Status)
	}
	if snapshot.DefinitionID != def.ID {
		return nil, fmt.Errorf("checkpoint %s: definition %s does not match %s", snapshot.ID, snapshot.DefinitionID, def.ID)
	}

	enc := &Encounter{
		ID:                snapshot.ID,
		DefinitionID:      snapshot.DefinitionID,
		Location:          snapshot.Location,
		Kind:              def.Kind,
		Status:            status,
		CurrentPool:       snapshot.CurrentPool,
		MaxPool:           snapshot.MaxPool,
		CurrentPhaseIndex: snapshot.CurrentPhaseIndex,
		AbilityCooldowns:  make(map[string]time.Time),
		SpawnedAt:         snapshot.SpawnedAt,
		participants:      make(map[string]*ParticipantRecord),
	}
	if len(snapshot.ActiveMechanics) > 0 {
		enc.ActiveMechanics = append([]string(nil), snapshot.ActiveMechanics...)
	}
	if snapshot.StartedAt != nil {
		startedAt := *snapshot.StartedAt
		enc.StartedAt = &startedAt
	}
	if snapshot.RestUntil != nil {
		enc.RestUntil = *snapshot.RestUntil
	}
	for i := range snapshot.Participants {
		record := snapshot.Participants[i].clone()
		enc.participants[record.PlayerID] = &record
		enc.joinOrder = append(enc.joinOrder, record.PlayerID)
	}
	enc.log = append(enc.log, snapshot.CombatLog...)
	if n := len(enc.log); n > 0 {
		enc.nextSeq = enc.log[n-1].Seq
	}
	return enc, nil
}

// Announce moves the encounter from scheduled to announced.
func (e *Encounter) Announce() error {
	if e.Status != StatusScheduled {
		return ErrInvalidTransition
	}
	e.Status = StatusAnnounced
	return nil
}

// Activate moves the encounter from announced to active and stamps StartedAt.
func (e *Encounter) Activate(now time.Time) error {
	if e.Status != StatusAnnounced {
		return ErrInvalidTransition
	}
	e.Status = StatusActive
	startedAt := now.UTC()
	e.StartedAt = &startedAt
	return nil
}

// Expire ends a scheduled or announced encounter that nobody joined.
func (e *Encounter) Expire(now time.Time) error {
	if e.Status != StatusScheduled && e.Status != StatusAnnounced {
		return ErrInvalidTransition
	}
	e.Status = StatusExpired
	endedAt := now.UTC()
	e.EndedAt = &endedAt
	return nil
}

// Fail ends an active encounter in failure.
func (e *Encounter) Fail(now time.Time) error {
	if e.Status != StatusActive {
		return ErrInvalidTransition
	}
	e.Status = StatusFailed
	endedAt := now.UTC()
	e.EndedAt = &endedAt
	return nil
}

func (e *Encounter) complete(now time.Time) {
	e.Status = StatusCompleted
	endedAt := now.UTC()
	e.EndedAt = &endedAt
}

// Join adds a player to the ledger, or reactivates their existing record.
// Rejoining mutates the record in place; contribution counters are never
// reset. The definition's level requirement gates first joins and rejoins
// alike.
func (e *Encounter) Join(player PlayerSnapshot, def Definition, now time.Time) error {
	if e.Status.Terminal() {
		return ErrInvalidState
	}
	if player.ID == "" {
		return apperrors.New(apperrors.CodeParticipantEmptyID, "player id is required")
	}
	if player.Level < def.LevelRequirement {
		return apperrors.WithMetadata(apperrors.CodeParticipantLevelTooLow,
			fmt.Sprintf("player %s level %d below requirement %d", player.ID, player.Level, def.LevelRequirement),
			map[string]string{"required": fmt.Sprint(def.LevelRequirement)})
	}

	if record, ok := e.participants[player.ID]; ok {
		record.Active = true
		record.LeftAt = nil
		record.CurrentHP = player.HP
		record.MaxHP = player.MaxHP
		return nil
	}

	e.participants[player.ID] = &ParticipantRecord{
		PlayerID:    player.ID,
		DisplayName: player.Name,
		JoinedAt:    now.UTC(),
		Active:      true,
		CurrentHP:   player.HP,
		MaxHP:       player.MaxHP,
	}
	e.joinOrder = append(e.joinOrder, player.ID)
	return nil
}

// Leave deactivates a participant. Their contribution is retained for the
// final allocation.
func (e *Encounter) Leave(playerID string, now time.Time) error {
	record, ok := e.participants[playerID]
	if !ok {
		return ErrNotParticipant
	}
	if !record.Active {
		return ErrParticipantInactive
	}
	record.Active = false
	leftAt := now.UTC()
	record.LeftAt = &leftAt
	return nil
}

// HasParticipants reports whether anyone ever joined.
func (e *Encounter) HasParticipants() bool {
	return len(e.joinOrder) > 0
}

// AttackInput describes one participant attack.
type AttackInput struct {
	PlayerID   string
	Damage     int
	Critical   bool
	SourceName string
}

// AttackResult reports the observable outcome of one attack.
type AttackResult struct {
	PoolRemaining  int
	PhaseChanged   bool
	NewPhaseIndex  int
	MechanicsDelta []string
	Terminal       bool
}

// ApplyAttack applies one attack as a single unit: pool decrement,
// contribution increment, combat log append, phase evaluation, and the
// terminal check. The caller holds the per-encounter lock, so concurrent
// attacks are observed atomically and in a consistent order.
//
// In assault encounters the pool is the adversary's health and completion
// fires when it reaches zero. In defense encounters the pool is the defended
// structure, which participant attacks never touch; the attack still counts
// toward contribution.
func (e *Encounter) ApplyAttack(in AttackInput, def Definition, now time.Time) (AttackResult, error) {
	if e.Status != StatusActive {
		return AttackResult{}, ErrInvalidState
	}
	record, ok := e.participants[in.PlayerID]
	if !ok {
		return AttackResult{}, ErrNotParticipant
	}
	if !record.Active {
		return AttackResult{}, ErrParticipantInactive
	}

	damage := in.Damage
	if damage < 0 {
		// Invariant breach from the caller; clamp rather than crash a live
		// session. The service layer logs the occurrence.
		damage = 0
	}

	record.DamageDealt += damage
	e.appendLogSource(in.PlayerID, ActorTypeParticipant, ActionTypeAttack, in.SourceName, damage, in.Critical, now)

	result := AttackResult{}
	if e.Kind == KindAssault {
		e.CurrentPool = max(0, e.CurrentPool-damage)
	}
	result.PoolRemaining = e.CurrentPool

	changed, newIndex, delta := e.evaluatePhases(def)
	result.PhaseChanged = changed
	result.NewPhaseIndex = newIndex
	result.MechanicsDelta = delta

	if e.Kind == KindAssault && e.CurrentPool == 0 {
		e.complete(now)
		result.Terminal = true
	}
	return result, nil
}

// ApplyHeal heals a target participant and credits the healer's
// contribution. An empty target heals the healer.
func (e *Encounter) ApplyHeal(playerID, targetID string, amount int, now time.Time) error {
	if e.Status != StatusActive {
		return ErrInvalidState
	}
	healer, ok := e.participants[playerID]
	if !ok {
		return ErrNotParticipant
	}
	if !healer.Active {
		return ErrParticipantInactive
	}
	if targetID == "" {
		targetID = playerID
	}
	target, ok := e.participants[targetID]
	if !ok {
		return ErrNotParticipant
	}
	if amount < 0 {
		amount = 0
	}

	target.CurrentHP = min(target.CurrentHP+amount, target.MaxHP)
	healer.HealingDone += amount
	e.appendLog(playerID, ActorTypeParticipant, ActionTypeHeal, amount, false, now)
	return nil
}

// ApplyRepair credits utility contribution. In defense encounters it also
// restores the structure pool, clamped at the maximum; phase transitions
// never rewind when the pool climbs back above a crossed threshold.
func (e *Encounter) ApplyRepair(playerID string, amount int, now time.Time) error {
	if e.Status != StatusActive {
		return ErrInvalidState
	}
	record, ok := e.participants[playerID]
	if !ok {
		return ErrNotParticipant
	}
	if !record.Active {
		return ErrParticipantInactive
	}
	if amount < 0 {
		amount = 0
	}

	record.UtilityScore += amount
	if e.Kind == KindDefense {
		e.CurrentPool = min(e.CurrentPool+amount, e.MaxPool)
	}
	e.appendLog(playerID, ActorTypeParticipant, ActionTypeRepair, amount, false, now)
	return nil
}

// StrikeResult reports the outcome of an adversary strike on the structure.
type StrikeResult struct {
	PoolRemaining  int
	PhaseChanged   bool
	NewPhaseIndex  int
	MechanicsDelta []string
	Terminal       bool
	// RestUntil is non-zero when this strike crossed a phase and started a
	// wave lull.
	RestUntil time.Time
}

// restError builds the rejection for adversary actions attempted during a
// wave lull.
func (e *Encounter) restError(now time.Time) error {
	remaining := e.RestUntil.Sub(now)
	return apperrors.WithMetadata(apperrors.CodeEncounterWaveRest,
		fmt.Sprintf("wave rest for another %s", remaining),
		map[string]string{"seconds": fmt.Sprint(int(remaining.Seconds()) + 1)})
}

// ApplyAdversaryStrike damages the defended structure of a defense
// encounter. The pool reaching zero fails the encounter.
func (e *Encounter) ApplyAdversaryStrike(amount int, def Definition, now time.Time) (StrikeResult, error) {
	if e.Kind != KindDefense {
		return StrikeResult{}, ErrInvalidState
	}
	if e.Status != StatusActive {
		return StrikeResult{}, ErrInvalidState
	}
	if now.Before(e.RestUntil) {
		return StrikeResult{}, e.restError(now)
	}
	if amount < 0 {
		amount = 0
	}

	e.CurrentPool = max(0, e.CurrentPool-amount)
	e.appendLog(e.DefinitionID, ActorTypeAdversary, ActionTypeAttack, amount, false, now)

	result := StrikeResult{PoolRemaining: e.CurrentPool}
	changed, newIndex, delta := e.evaluatePhases(def)
	result.PhaseChanged = changed
	result.NewPhaseIndex = newIndex
	result.MechanicsDelta = delta
	if changed && def.WaveRestSeconds > 0 && e.CurrentPool > 0 {
		e.RestUntil = now.Add(time.Duration(def.WaveRestSeconds) * time.Second)
		result.RestUntil = e.RestUntil
	}

	if e.CurrentPool == 0 {
		if err := e.Fail(now); err != nil {
			return StrikeResult{}, err
		}
		result.Terminal = true
	}
	return result, nil
}

// CompleteOnTimeout completes a defense encounter whose clock ran out with
// the structure still standing.
func (e *Encounter) CompleteOnTimeout(now time.Time) error {
	if e.Kind != KindDefense || e.Status != StatusActive {
		return ErrInvalidTransition
	}
	e.complete(now)
	return nil
}

// AbilityResult reports the outcome of an adversary ability use.
type AbilityResult struct {
	AbilityID            string
	AffectedParticipants []string
	CooldownUntil        time.Time
	// DotTicksRemaining and DotTickAmount describe follow-up ticks the
	// service schedules after the immediate first tick.
	DotTicksRemaining int
	DotTickAmount     int
}

// UseAbility resolves an adversary ability against the ledger. The cooldown
// check and the cooldown write happen together under the caller's lock, so
// two concurrent triggers can never both pass the gate.
func (e *Encounter) UseAbility(ability Ability, now time.Time) (AbilityResult, error) {
	if e.Status != StatusActive {
		return AbilityResult{}, ErrInvalidState
	}
	if now.Before(e.RestUntil) {
		return AbilityResult{}, e.restError(now)
	}

	if readyAt, ok := e.AbilityCooldowns[ability.ID]; ok && now.Before(readyAt) {
		remaining := readyAt.Sub(now)
		return AbilityResult{}, apperrors.WithMetadata(apperrors.CodeAbilityOnCooldown,
			fmt.Sprintf("ability %s ready in %s", ability.ID, remaining),
			map[string]string{"seconds": fmt.Sprint(int(remaining.Seconds()) + 1)})
	}

	targets := e.resolveTargets(ability.Targeting)
	if len(targets) == 0 {
		return AbilityResult{}, ErrNoTargets
	}

	result := AbilityResult{
		AbilityID:            ability.ID,
		AffectedParticipants: make([]string, 0, len(targets)),
	}

	amount := 0
	switch effect := ability.Effect.(type) {
	case DamageEffect:
		amount = effect.Amount
	case AreaDamageEffect:
		amount = effect.Amount
	case DotEffect:
		amount = effect.AmountPerTick
		result.DotTicksRemaining = max(0, effect.Ticks-1)
		result.DotTickAmount = effect.AmountPerTick
	case StunEffect:
		// Stun does not touch HP; turn suppression is enforced by the combat
		// simulation outside this subsystem.
	}
	if amount == 0 && ability.BasePower > 0 {
		switch ability.Effect.(type) {
		case DamageEffect, AreaDamageEffect:
			amount = ability.BasePower
		}
	}

	for _, target := range targets {
		target.CurrentHP = max(0, target.CurrentHP-amount)
		result.AffectedParticipants = append(result.AffectedParticipants, target.PlayerID)
	}

	cooldownUntil := now.Add(time.Duration(ability.CooldownSeconds) * time.Second)
	e.AbilityCooldowns[ability.ID] = cooldownUntil
	result.CooldownUntil = cooldownUntil

	e.appendLog(ability.ID, ActorTypeAdversary, ActionTypeAbility, amount, false, now)
	return result, nil
}

// ApplyDotTick applies one scheduled follow-up tick of a damage-over-time
// effect to the named targets. Targets that left or died in the meantime are
// skipped.
func (e *Encounter) ApplyDotTick(abilityID string, targetIDs []string, amount int, now time.Time) []string {
	if e.Status != StatusActive || amount <= 0 {
		return nil
	}
	affected := make([]string, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		record, ok := e.participants[targetID]
		if !ok || !record.Active || record.CurrentHP == 0 {
			continue
		}
		record.CurrentHP = max(0, record.CurrentHP-amount)
		affected = append(affected, targetID)
	}
	if len(affected) > 0 {
		e.appendLog(abilityID, ActorTypeAdversary, ActionTypeAbility, amount, false, now)
	}
	return affected
}

// resolveTargets implements the targeting rules: area strikes every active
// participant, single strikes the active participant with the highest damage
// dealt (aggro), ties broken by join order.
func (e *Encounter) resolveTargets(targeting Targeting) []*ParticipantRecord {
	switch targeting {
	case TargetingArea:
		var targets []*ParticipantRecord
		for _, playerID := range e.joinOrder {
			if record := e.participants[playerID]; record.Active {
				targets = append(targets, record)
			}
		}
		return targets
	case TargetingSingle:
		var top *ParticipantRecord
		for _, playerID := range e.joinOrder {
			record := e.participants[playerID]
			if !record.Active {
				continue
			}
			if top == nil || record.DamageDealt > top.DamageDealt {
				top = record
			}
		}
		if top == nil {
			return nil
		}
		return []*ParticipantRecord{top}
	default:
		return nil
	}
}

// evaluatePhases advances the phase index past every threshold the current
// pool has crossed, unioning each crossed phase's mechanics delta into the
// overlay. The index is monotonic and the evaluation idempotent: replaying
// the same pool value never re-triggers an applied phase.
func (e *Encounter) evaluatePhases(def Definition) (changed bool, newIndex int, delta []string) {
	if e.MaxPool == 0 {
		return false, e.CurrentPhaseIndex, nil
	}
	percent := float64(e.CurrentPool) / float64(e.MaxPool) * 100

	for i, phase := range def.Phases {
		if percent <= float64(phase.ThresholdPercent) && e.CurrentPhaseIndex < i+1 {
			e.CurrentPhaseIndex = i + 1
			for _, mechanic := range phase.MechanicsDelta {
				if !containsString(e.ActiveMechanics, mechanic) {
					e.ActiveMechanics = append(e.ActiveMechanics, mechanic)
					delta = append(delta, mechanic)
				}
			}
			changed = true
		}
	}
	return changed, e.CurrentPhaseIndex, delta
}

func (e *Encounter) appendLog(actorID string, actorType ActorType, action ActionType, amount int, critical bool, now time.Time) {
	e.appendLogSource(actorID, actorType, action, "", amount, critical, now)
}

func (e *Encounter) appendLogSource(actorID string, actorType ActorType, action ActionType, source string, amount int, critical bool, now time.Time) {
	e.nextSeq++
	e.log = append(e.log, CombatLogEntry{
		Seq:       e.nextSeq,
		Timestamp: now.UTC(),
		ActorID:   actorID,
		ActorType: actorType,
		Action:    action,
		Source:    source,
		Amount:    amount,
		Critical:  critical,
	})
}

// CombatLog returns a copy of the append-only combat log.
func (e *Encounter) CombatLog() []CombatLogEntry {
	out := make([]CombatLogEntry, len(e.log))
	copy(out, e.log)
	return out
}

// Participant returns a copy of one participant record.
func (e *Encounter) Participant(playerID string) (ParticipantRecord, bool) {
	record, ok := e.participants[playerID]
	if !ok {
		return ParticipantRecord{}, false
	}
	return record.clone(), true
}

// FinalLedger returns copies of every participant record in join order,
// including participants who left before the end.
func (e *Encounter) FinalLedger() []ParticipantRecord {
	out := make([]ParticipantRecord, 0, len(e.joinOrder))
	for _, playerID := range e.joinOrder {
		out = append(out, e.participants[playerID].clone())
	}
	return out
}

// AssignLoot fills each participant's LootReceived from the allocation.
// Called exactly once, at the active-to-completed transition.
func (e *Encounter) AssignLoot(bundles []RewardBundle) {
	for i := range bundles {
		if record, ok := e.participants[bundles[i].PlayerID]; ok {
			bundle := bundles[i].clone()
			record.LootReceived = &bundle
		}
	}
}

// Snapshot is a consistent point-in-time copy of an encounter served to
// readers without blocking writers.
type Snapshot struct {
	ID                string              `json:"id"`
	DefinitionID      string              `json:"definitionId"`
	Location          string              `json:"location,omitempty"`
	Status            string              `json:"status"`
	CurrentPool       int                 `json:"currentPool"`
	MaxPool           int                 `json:"maxPool"`
	CurrentPhaseIndex int                 `json:"currentPhaseIndex"`
	ActiveMechanics   []string            `json:"activeMechanics,omitempty"`
	SpawnedAt         time.Time           `json:"spawnedAt"`
	StartedAt         *time.Time          `json:"startedAt,omitempty"`
	EndedAt           *time.Time          `json:"endedAt,omitempty"`
	RestUntil         *time.Time          `json:"restUntil,omitempty"`
	Participants      []ParticipantRecord `json:"participants"`
	CombatLog         []CombatLogEntry    `json:"combatLog,omitempty"`
}

// Snapshot returns a deep copy of the encounter's observable state.
func (e *Encounter) Snapshot() Snapshot {
	snapshot := Snapshot{
		ID:                e.ID,
		DefinitionID:      e.DefinitionID,
		Location:          e.Location,
		Status:            e.Status.String(),
		CurrentPool:       e.CurrentPool,
		MaxPool:           e.MaxPool,
		CurrentPhaseIndex: e.CurrentPhaseIndex,
		SpawnedAt:         e.SpawnedAt,
		Participants:      e.FinalLedger(),
		CombatLog:         e.CombatLog(),
	}
	if len(e.ActiveMechanics) > 0 {
		snapshot.ActiveMechanics = append([]string(nil), e.ActiveMechanics...)
	}
	if e.StartedAt != nil {
		startedAt := *e.StartedAt
		snapshot.StartedAt = &startedAt
	}
	if e.EndedAt != nil {
		endedAt := *e.EndedAt
		snapshot.EndedAt = &endedAt
	}
	if !e.RestUntil.IsZero() {
		restUntil := e.RestUntil
		snapshot.RestUntil = &restUntil
	}
	return snapshot
}

func containsString(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
