package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/encounter/event"
)

// terminalOutcome carries everything a terminal transition produced while
// the instance lock was held: the write-once summary, the allocated loot
// and the combat log to archive.
type terminalOutcome struct {
	outcome    domain.Outcome
	reason     string
	summary    domain.HistorySummary
	loot       []domain.RewardBundle
	mvpID      string
	combatLog  []domain.CombatLogEntry
	definition string
}

// finalizeLocked runs under the instance lock, immediately after the
// encounter flipped to a terminal status. Loot allocation is pure, so it is
// cheap enough to run here; persistence and event publication happen later,
// outside the lock.
func (r *Registry) finalizeLocked(inst *instance, outcome domain.Outcome, reason string) *terminalOutcome {
	enc := inst.enc
	ledger := enc.FinalLedger()

	result := &terminalOutcome{
		outcome:    outcome,
		reason:     reason,
		combatLog:  enc.CombatLog(),
		definition: enc.DefinitionID,
	}

	if outcome == domain.OutcomeSuccess {
		rng := rand.New(rand.NewSource(r.lootSeed()))
		var bundles []domain.RewardBundle
		if enc.Kind == domain.KindDefense {
			bundles = domain.AllocateRanked(inst.def.Rewards, ledger, r.cfg.Rank, r.cfg.tierMultiplier(inst.def.Tier), rng)
		} else {
			bundles = domain.Allocate(inst.def.Rewards, ledger, rng)
		}
		enc.AssignLoot(bundles)
		result.loot = bundles
	}

	summary := domain.HistorySummary{
		EncounterID:  enc.ID,
		DefinitionID: enc.DefinitionID,
		Outcome:      outcome,
		Loot:         result.loot,
	}
	for _, record := range ledger {
		summary.ParticipantIDs = append(summary.ParticipantIDs, record.PlayerID)
	}
	if enc.StartedAt != nil && enc.EndedAt != nil {
		summary.DurationSeconds = int(enc.EndedAt.Sub(*enc.StartedAt) / time.Second)
	}
	if enc.EndedAt != nil {
		summary.EndedAt = enc.EndedAt.UTC()
	}
	if mvpID, contribution, ok := domain.MVP(ledger); ok {
		summary.MVPID = mvpID
		summary.MVPContribution = contribution
		result.mvpID = mvpID
	}
	result.summary = summary
	return result
}

// settle publishes the terminal event and persists the outcome. It must be
// called without any lock held.
func (r *Registry) settle(encounterID string, outcome *terminalOutcome) {
	r.release(encounterID)

	switch outcome.outcome {
	case domain.OutcomeSuccess:
		r.publish(encounterID, event.TypeEncounterCompleted, event.CompletedPayload{
			MVPID: outcome.mvpID,
			Loot:  outcome.loot,
		})
	case domain.OutcomeFailure:
		r.publish(encounterID, event.TypeEncounterFailed, event.FailedPayload{
			Reason: outcome.reason,
		})
	}

	r.settling.Add(1)
	go func() {
		defer r.settling.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		r.persistOutcome(ctx, encounterID, outcome)
	}()
	r.logger.Printf("encounter %s %s", encounterID, outcome.outcome)
}

// persistOutcome writes the history row, archives the combat log, grants
// achievements and drops the recovery checkpoint. Each write is independent
// and best-effort: a failed write is logged, never retried against the
// caller.
func (r *Registry) persistOutcome(ctx context.Context, encounterID string, outcome *terminalOutcome) {
	// First-clear eligibility must be read before this encounter's own
	// history row lands.
	var firstClears []string
	if outcome.outcome == domain.OutcomeSuccess {
		for _, playerID := range outcome.summary.ParticipantIDs {
			cleared, err := r.store.HasSuccess(ctx, outcome.definition, playerID)
			if err != nil {
				r.logger.Printf("first clear lookup %s/%s: %v", outcome.definition, playerID, err)
			}
			// On lookup failure grant anyway: Grant is idempotent, a
			// duplicate attempt is harmless.
			if !cleared {
				firstClears = append(firstClears, playerID)
			}
		}
	}

	if err := r.store.PutHistory(ctx, outcome.summary); err != nil {
		r.logger.Printf("persist history %s: %v", encounterID, err)
	}
	if len(outcome.combatLog) > 0 {
		if err := r.store.ArchiveCombatLog(ctx, encounterID, outcome.combatLog); err != nil {
			r.logger.Printf("archive combat log %s: %v", encounterID, err)
		}
	}
	if outcome.outcome == domain.OutcomeSuccess {
		r.grantAchievements(ctx, outcome, firstClears)
	}
	if err := r.store.DeleteCheckpoint(ctx, encounterID); err != nil {
		r.logger.Printf("delete checkpoint %s: %v", encounterID, err)
	}
}

// grantAchievements applies the deterministic completion grants. Grant is
// idempotent on (player, achievement), so repeated completions of the same
// definition leave exactly one first-clear row per player.
func (r *Registry) grantAchievements(ctx context.Context, outcome *terminalOutcome, firstClears []string) {
	unlockedAt := outcome.summary.EndedAt
	firstClear := domain.FirstClearAchievementID(outcome.definition)
	for _, playerID := range firstClears {
		if _, err := r.store.Grant(ctx, playerID, firstClear, unlockedAt); err != nil {
			r.logger.Printf("grant %s to %s: %v", firstClear, playerID, err)
		}
	}
	if outcome.mvpID != "" {
		if _, err := r.store.Grant(ctx, outcome.mvpID, domain.AchievementMVP, unlockedAt); err != nil {
			r.logger.Printf("grant %s to %s: %v", domain.AchievementMVP, outcome.mvpID, err)
		}
	}
}

// completeDefenseOnTimeout fires when a defense encounter's clock runs out
// with the structure still standing.
func (r *Registry) completeDefenseOnTimeout(encounterID string) {
	inst, err := r.instance(encounterID)
	if err != nil {
		return
	}

	inst.mu.Lock()
	if err := inst.enc.CompleteOnTimeout(r.clock.Now()); err != nil {
		inst.mu.Unlock()
		return
	}
	outcome := r.finalizeLocked(inst, domain.OutcomeSuccess, "")
	snapshot := inst.enc.Snapshot()
	inst.mu.Unlock()

	r.publishProgress(encounterID, snapshot)
	r.settle(encounterID, outcome)
}

// lootSeed draws the loot RNG seed, falling back to the wall clock if the
// entropy source fails.
func (r *Registry) lootSeed() int64 {
	seed, err := r.seed()
	if err != nil {
		r.logger.Printf("loot seed: %v, falling back to clock", err)
		return r.clock.Now().UnixNano()
	}
	return seed
}
