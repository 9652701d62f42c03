package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// restoreCheckpoints reloads the live encounters a previous process left
// behind. Announced encounters restart their activation countdown from
// zero; active defense encounters resume with whatever wall-clock time the
// definition's duration has left. A checkpoint that cannot be restored is
// logged and skipped, never fatal.
func (r *Registry) restoreCheckpoints(ctx context.Context) error {
	snapshots, err := r.store.ListCheckpoints(ctx)
	if err != nil {
		return fmt.Errorf("list checkpoints: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snapshot := range snapshots {
		if domain.StatusFromString(snapshot.Status).Terminal() {
			// The previous process died between the history write and the
			// checkpoint delete.
			if err := r.store.DeleteCheckpoint(ctx, snapshot.ID); err != nil {
				r.logger.Printf("drop stale checkpoint %s: %v", snapshot.ID, err)
			}
			continue
		}

		def, ok := r.definitions[snapshot.DefinitionID]
		if !ok {
			r.logger.Printf("checkpoint %s: definition %s is not loaded, skipping", snapshot.ID, snapshot.DefinitionID)
			continue
		}
		enc, err := domain.Restore(def, snapshot)
		if err != nil {
			r.logger.Printf("restore checkpoint: %v, skipping", err)
			continue
		}

		key := r.activeKey(enc.DefinitionID, enc.Location)
		if existingID, taken := r.activeByKey[key]; taken {
			r.logger.Printf("checkpoint %s: slot already held by %s, skipping", enc.ID, existingID)
			continue
		}

		r.instances[enc.ID] = &instance{enc: enc, def: def}
		r.activeByKey[key] = enc.ID
		r.rescheduleLocked(enc, def)
		r.logger.Printf("encounter %s restored from checkpoint (%s)", enc.ID, enc.Status)
	}
	return nil
}

// rescheduleLocked rearms the timers a restored encounter needs. The
// registry lock must be held.
func (r *Registry) rescheduleLocked(enc *domain.Encounter, def domain.Definition) {
	encounterID := enc.ID
	now := r.clock.Now()
	switch enc.Status {
	case domain.StatusScheduled, domain.StatusAnnounced:
		r.scheduleLocked(encounterID, timerExpire, r.cfg.IdleExpire, func() { r.expire(encounterID) })
		if enc.Status == domain.StatusAnnounced {
			r.scheduleLocked(encounterID, timerActivate, r.cfg.AnnounceCountdown, func() { r.activate(encounterID) })
		}
	case domain.StatusActive:
		if enc.Kind == domain.KindDefense && enc.StartedAt != nil {
			remaining := enc.StartedAt.Add(time.Duration(def.DurationSeconds) * time.Second).Sub(now)
			if remaining < 0 {
				remaining = 0
			}
			r.scheduleLocked(encounterID, timerDuration, remaining, func() { r.completeDefenseOnTimeout(encounterID) })
		}
		if enc.RestUntil.After(now) {
			r.scheduleLocked(encounterID, timerWaveRest, enc.RestUntil.Sub(now), func() {
				inst, err := r.instance(encounterID)
				if err != nil {
					return
				}
				inst.mu.Lock()
				snapshot := inst.enc.Snapshot()
				inst.mu.Unlock()
				r.publishProgress(encounterID, snapshot)
			})
		}
	}
}
