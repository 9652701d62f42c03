package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/encounter/event"
	apperrors "github.com/stoneveil/bastion/internal/platform/errors"
)

// Join registers a player in an active encounter. Rejoining reactivates the
// player's prior contribution record in place.
func (r *Registry) Join(ctx context.Context, encounterID string, player domain.PlayerSnapshot) (domain.Snapshot, error) {
	ctx, span := r.tracer.Start(ctx, "registry.join",
		trace.WithAttributes(
			attribute.String("encounter.id", encounterID),
			attribute.String("player.id", player.ID)))
	defer span.End()

	inst, err := r.instance(encounterID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	inst.mu.Lock()
	if err := inst.enc.Join(player, inst.def, r.clock.Now()); err != nil {
		inst.mu.Unlock()
		return domain.Snapshot{}, err
	}
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	r.publishProgress(encounterID, snapshot)
	return snapshot, nil
}

// Leave marks a participant inactive. The contribution record survives for
// a possible rejoin and for loot allocation.
func (r *Registry) Leave(ctx context.Context, encounterID, playerID string) error {
	inst, err := r.instance(encounterID)
	if err != nil {
		return err
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.enc.Leave(playerID, r.clock.Now())
}

// Attack applies one participant attack and drives any resulting phase or
// terminal transition. Events and persistence run after the instance lock
// is released.
func (r *Registry) Attack(ctx context.Context, encounterID string, in domain.AttackInput) (domain.AttackResult, error) {
	ctx, span := r.tracer.Start(ctx, "registry.attack",
		trace.WithAttributes(
			attribute.String("encounter.id", encounterID),
			attribute.String("player.id", in.PlayerID),
			attribute.Int("attack.damage", in.Damage)))
	defer span.End()

	inst, err := r.instance(encounterID)
	if err != nil {
		return domain.AttackResult{}, err
	}

	inst.mu.Lock()
	result, err := inst.enc.ApplyAttack(in, inst.def, r.clock.Now())
	if err != nil {
		inst.mu.Unlock()
		return domain.AttackResult{}, err
	}
	var outcome *terminalOutcome
	if result.Terminal {
		outcome = r.finalizeLocked(inst, domain.OutcomeSuccess, "")
	}
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	if result.PhaseChanged {
		r.publish(encounterID, event.TypePhaseChanged, event.PhaseChangedPayload{
			NewPhaseIndex:  result.NewPhaseIndex,
			MechanicsDelta: result.MechanicsDelta,
		})
		r.checkpointAsync(snapshot)
	}
	r.publishProgress(encounterID, snapshot)
	if outcome != nil {
		r.settle(encounterID, outcome)
	}
	return result, nil
}

// Heal restores a participant's hit points. An empty target heals the
// caster.
func (r *Registry) Heal(ctx context.Context, encounterID, playerID, targetID string, amount int) error {
	inst, err := r.instance(encounterID)
	if err != nil {
		return err
	}

	inst.mu.Lock()
	err = inst.enc.ApplyHeal(playerID, targetID, amount, r.clock.Now())
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	if err != nil {
		return err
	}
	r.publishProgress(encounterID, snapshot)
	return nil
}

// Repair restores the defended structure of a defense encounter and credits
// the participant's utility score.
func (r *Registry) Repair(ctx context.Context, encounterID, playerID string, amount int) error {
	inst, err := r.instance(encounterID)
	if err != nil {
		return err
	}

	inst.mu.Lock()
	err = inst.enc.ApplyRepair(playerID, amount, r.clock.Now())
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	if err != nil {
		return err
	}
	r.publishProgress(encounterID, snapshot)
	return nil
}

// UseAbility triggers an adversary ability by id. Damage-over-time effects
// apply their first tick immediately; follow-up ticks are scheduled on the
// registry clock.
func (r *Registry) UseAbility(ctx context.Context, encounterID, abilityID string) (domain.AbilityResult, error) {
	ctx, span := r.tracer.Start(ctx, "registry.use_ability",
		trace.WithAttributes(
			attribute.String("encounter.id", encounterID),
			attribute.String("ability.id", abilityID)))
	defer span.End()

	inst, err := r.instance(encounterID)
	if err != nil {
		return domain.AbilityResult{}, err
	}

	ability, ok := inst.def.AbilityByID(abilityID)
	if !ok {
		return domain.AbilityResult{}, apperrors.New(apperrors.CodeAbilityNotFound,
			fmt.Sprintf("ability %s not in definition %s", abilityID, inst.def.ID))
	}

	inst.mu.Lock()
	result, err := inst.enc.UseAbility(ability, r.clock.Now())
	if err != nil {
		inst.mu.Unlock()
		return domain.AbilityResult{}, err
	}
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	r.publish(encounterID, event.TypeAbilityUsed, event.AbilityUsedPayload{
		AbilityID:            result.AbilityID,
		AffectedParticipants: result.AffectedParticipants,
		CooldownUntil:        result.CooldownUntil,
	})
	r.publishProgress(encounterID, snapshot)

	if result.DotTicksRemaining > 0 {
		r.scheduleDotTicks(encounterID, result)
	}
	return result, nil
}

// scheduleDotTicks chains the remaining ticks of a damage-over-time
// ability. A tick that finds the encounter terminal or every target gone
// ends the chain.
func (r *Registry) scheduleDotTicks(encounterID string, result domain.AbilityResult) {
	var tick func(targets []string, remaining int)
	tick = func(targets []string, remaining int) {
		inst, err := r.instance(encounterID)
		if err != nil {
			return
		}

		inst.mu.Lock()
		survivors := inst.enc.ApplyDotTick(result.AbilityID, targets, result.DotTickAmount, r.clock.Now())
		snapshot := inst.enc.Snapshot()
		inst.mu.Unlock()

		r.publishProgress(encounterID, snapshot)
		if remaining <= 1 || len(survivors) == 0 {
			return
		}
		r.mu.Lock()
		r.scheduleLocked(encounterID, dotTimerName(result.AbilityID), r.cfg.DotTickInterval, func() {
			tick(survivors, remaining-1)
		})
		r.mu.Unlock()
	}

	r.mu.Lock()
	r.scheduleLocked(encounterID, dotTimerName(result.AbilityID), r.cfg.DotTickInterval, func() {
		tick(result.AffectedParticipants, result.DotTicksRemaining)
	})
	r.mu.Unlock()
}

func dotTimerName(abilityID string) string {
	return "dot:" + abilityID
}

// AdversaryStrike damages the defended structure of a defense encounter.
// Reducing it to zero fails the encounter.
func (r *Registry) AdversaryStrike(ctx context.Context, encounterID string, amount int) (domain.StrikeResult, error) {
	ctx, span := r.tracer.Start(ctx, "registry.adversary_strike",
		trace.WithAttributes(
			attribute.String("encounter.id", encounterID),
			attribute.Int("strike.amount", amount)))
	defer span.End()

	inst, err := r.instance(encounterID)
	if err != nil {
		return domain.StrikeResult{}, err
	}

	inst.mu.Lock()
	result, err := inst.enc.ApplyAdversaryStrike(amount, inst.def, r.clock.Now())
	if err != nil {
		inst.mu.Unlock()
		return domain.StrikeResult{}, err
	}
	var outcome *terminalOutcome
	if result.Terminal {
		outcome = r.finalizeLocked(inst, domain.OutcomeFailure, "structure destroyed")
	}
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	if result.PhaseChanged {
		r.publish(encounterID, event.TypePhaseChanged, event.PhaseChangedPayload{
			NewPhaseIndex:  result.NewPhaseIndex,
			MechanicsDelta: result.MechanicsDelta,
		})
	}
	if !result.RestUntil.IsZero() {
		r.scheduleWaveRestEnd(encounterID, result.RestUntil)
	}
	r.publishProgress(encounterID, snapshot)
	if outcome != nil {
		r.settle(encounterID, outcome)
	}
	return result, nil
}

// scheduleWaveRestEnd announces the end of a defense wave lull so watchers
// see the adversary resume without polling.
func (r *Registry) scheduleWaveRestEnd(encounterID string, restUntil time.Time) {
	d := restUntil.Sub(r.clock.Now())
	if d < 0 {
		d = 0
	}
	r.mu.Lock()
	r.scheduleLocked(encounterID, timerWaveRest, d, func() {
		inst, err := r.instance(encounterID)
		if err != nil {
			return
		}
		inst.mu.Lock()
		snapshot := inst.enc.Snapshot()
		inst.mu.Unlock()
		r.publishProgress(encounterID, snapshot)
	})
	r.mu.Unlock()
}

// PlayerHistory lists the terminal encounter summaries a player took part
// in, most recent first.
func (r *Registry) PlayerHistory(ctx context.Context, playerID string) ([]domain.HistorySummary, error) {
	return r.store.ListHistoryByPlayer(ctx, playerID)
}

// PlayerAchievements lists a player's achievement unlocks.
func (r *Registry) PlayerAchievements(ctx context.Context, playerID string) ([]domain.AchievementUnlock, error) {
	return r.store.ListAchievements(ctx, playerID)
}

// History returns one terminal summary by encounter id.
func (r *Registry) History(ctx context.Context, encounterID string) (domain.HistorySummary, error) {
	summary, err := r.store.GetHistory(ctx, encounterID)
	if err != nil {
		return domain.HistorySummary{}, apperrors.Wrap(apperrors.CodeNotFound,
			fmt.Sprintf("no history for encounter %s", encounterID), err)
	}
	return summary, nil
}

// publishProgress emits the pool and contributor view after a mutation.
func (r *Registry) publishProgress(encounterID string, snapshot domain.Snapshot) {
	payload := event.ProgressPayload{
		PoolRemaining: snapshot.CurrentPool,
		MaxPool:       snapshot.MaxPool,
	}
	for _, record := range snapshot.Participants {
		if record.DamageDealt > 0 {
			payload.Contributors = append(payload.Contributors, event.Contributor{
				PlayerID:    record.PlayerID,
				DamageDealt: record.DamageDealt,
			})
		}
	}
	r.publish(encounterID, event.TypeProgressUpdated, payload)
}

// waitSettled blocks until pending terminal persistence completes, bounded
// by the context. Tests use it to observe history rows deterministically.
func (r *Registry) waitSettled(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.settling.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
