package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bastion.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func storedDefinition() domain.Definition {
	return domain.Definition{
		ID:           "ember-wyrm",
		DisplayName:  "Ember Wyrm",
		Kind:         domain.KindAssault,
		Tier:         2,
		BasePoolSize: 5000,
		Phases: []domain.Phase{
			{ThresholdPercent: 50, MechanicsDelta: []string{"wing-buffet"}},
		},
		Abilities: []domain.Ability{
			{ID: "tail-swipe", Name: "Tail Swipe", CooldownSeconds: 30, Targeting: domain.TargetingSingle, BasePower: 25, Effect: domain.DamageEffect{Amount: 25}},
			{ID: "lingering-flame", Name: "Lingering Flame", CooldownSeconds: 60, Targeting: domain.TargetingSingle, Effect: domain.DotEffect{AmountPerTick: 5, Ticks: 3}},
		},
		Rewards: domain.RewardTable{
			Guaranteed: []domain.GuaranteedReward{{ItemID: "wyrm-scale", Chance: 1.0, Amount: 1}},
			Random:     []domain.RandomReward{{ItemID: "relic", Chance: 0.2, AmountMin: 1, AmountMax: 2}},
			XP:         domain.IntRange{Min: 100, Max: 200},
			Gold:       domain.IntRange{Min: 10, Max: 40},
		},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(" "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestDefinitionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	def := storedDefinition()
	if err := store.PutDefinition(context.Background(), def); err != nil {
		t.Fatalf("put definition: %v", err)
	}

	got, err := store.GetDefinition(context.Background(), "ember-wyrm")
	if err != nil {
		t.Fatalf("get definition: %v", err)
	}
	if got.DisplayName != def.DisplayName || got.Tier != def.Tier || got.Kind != def.Kind {
		t.Fatalf("definition changed across round trip: %+v", got)
	}
	if len(got.Abilities) != 2 {
		t.Fatalf("expected 2 abilities, got %d", len(got.Abilities))
	}
	if got.Abilities[1].Effect != (domain.DotEffect{AmountPerTick: 5, Ticks: 3}) {
		t.Fatalf("effect changed across round trip: %+v", got.Abilities[1].Effect)
	}

	if _, err := store.GetDefinition(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPutDefinitionRejectsInvalid(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	def := storedDefinition()
	def.BasePoolSize = 0
	if err := store.PutDefinition(context.Background(), def); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestListDefinitionsOrdersByTier(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	high := storedDefinition()
	high.ID = "zenith"
	high.Tier = 4
	low := storedDefinition()
	low.ID = "mire"
	low.Tier = 1

	for _, def := range []domain.Definition{high, low, storedDefinition()} {
		if err := store.PutDefinition(context.Background(), def); err != nil {
			t.Fatalf("put %s: %v", def.ID, err)
		}
	}

	defs, err := store.ListDefinitions(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 3 || defs[0].ID != "mire" || defs[2].ID != "zenith" {
		t.Fatalf("unexpected order: %v", defs)
	}
}

func TestHistoryWriteOnce(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	endedAt := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	summary := domain.HistorySummary{
		EncounterID:     "enc-1",
		DefinitionID:    "ember-wyrm",
		Outcome:         domain.OutcomeSuccess,
		DurationSeconds: 420,
		ParticipantIDs:  []string{"aria", "bren"},
		MVPID:           "aria",
		MVPContribution: 0.8,
		Loot: []domain.RewardBundle{
			{PlayerID: "aria", ContributionPercent: 0.8, XP: 130, Gold: 20},
			{PlayerID: "bren", ContributionPercent: 0.2, XP: 70, Gold: 10},
		},
		EndedAt: endedAt,
	}
	if err := store.PutHistory(context.Background(), summary); err != nil {
		t.Fatalf("put history: %v", err)
	}

	mutated := summary
	mutated.Outcome = domain.OutcomeFailure
	if err := store.PutHistory(context.Background(), mutated); err == nil {
		t.Fatal("expected second write for the same encounter to be rejected")
	}

	got, err := store.GetHistory(context.Background(), "enc-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if got.Outcome != domain.OutcomeSuccess {
		t.Fatalf("history row was rewritten: %s", got.Outcome)
	}
	if got.MVPID != "aria" || got.MVPContribution != 0.8 {
		t.Fatalf("mvp fields changed: %+v", got)
	}
	if !got.EndedAt.Equal(endedAt) {
		t.Fatalf("expected ended at %v, got %v", endedAt, got.EndedAt)
	}
	if len(got.ParticipantIDs) != 2 || len(got.Loot) != 2 {
		t.Fatalf("participants or loot missing: %+v", got)
	}
}

func TestListHistoryByPlayer(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	for i, playerIDs := range [][]string{{"aria"}, {"aria", "bren"}, {"bren"}} {
		summary := domain.HistorySummary{
			EncounterID:    "enc-" + string(rune('a'+i)),
			DefinitionID:   "ember-wyrm",
			Outcome:        domain.OutcomeSuccess,
			ParticipantIDs: playerIDs,
			EndedAt:        base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.PutHistory(context.Background(), summary); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}

	summaries, err := store.ListHistoryByPlayer(context.Background(), "aria")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 rows for aria, got %d", len(summaries))
	}
	if summaries[0].EndedAt.Before(summaries[1].EndedAt) {
		t.Fatal("expected most recent first")
	}

	ok, err := store.HasSuccess(context.Background(), "ember-wyrm", "aria")
	if err != nil || !ok {
		t.Fatalf("expected success on record, got %v %v", ok, err)
	}
	ok, err = store.HasSuccess(context.Background(), "ember-wyrm", "cale")
	if err != nil || ok {
		t.Fatalf("expected no success for cale, got %v %v", ok, err)
	}
}

func TestGrantIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	unlockedAt := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	granted, err := store.Grant(context.Background(), "aria", "first-clear:ember-wyrm", unlockedAt)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !granted {
		t.Fatal("expected first grant to report a new row")
	}

	granted, err = store.Grant(context.Background(), "aria", "first-clear:ember-wyrm", unlockedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if granted {
		t.Fatal("expected repeat grant to be a no-op")
	}

	unlocks, err := store.ListAchievements(context.Background(), "aria")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unlocks) != 1 {
		t.Fatalf("expected exactly one unlock, got %d", len(unlocks))
	}
	if !unlocks[0].UnlockedAt.Equal(unlockedAt) {
		t.Fatalf("expected original unlock time preserved, got %v", unlocks[0].UnlockedAt)
	}
}

func TestArchiveCombatLogTwiceIsSafe(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	entries := []domain.CombatLogEntry{
		{Seq: 1, Timestamp: time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC), ActorID: "aria", ActorType: domain.ActorTypeParticipant, Action: domain.ActionTypeAttack, Amount: 40},
		{Seq: 2, Timestamp: time.Date(2026, 3, 14, 19, 0, 1, 0, time.UTC), ActorID: "aria", ActorType: domain.ActorTypeParticipant, Action: domain.ActionTypeAttack, Amount: 30, Critical: true},
	}
	if err := store.ArchiveCombatLog(context.Background(), "enc-1", entries); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := store.ArchiveCombatLog(context.Background(), "enc-1", entries); err != nil {
		t.Fatalf("re-archive: %v", err)
	}
}

func TestCheckpointLifecycle(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	snapshot := domain.Snapshot{
		ID:           "enc-1",
		DefinitionID: "ember-wyrm",
		Status:       "active",
		CurrentPool:  3200,
		MaxPool:      5000,
		SpawnedAt:    time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
	}
	if err := store.SaveCheckpoint(context.Background(), snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}

	snapshot.CurrentPool = 1500
	if err := store.SaveCheckpoint(context.Background(), snapshot); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	snapshots, err := store.ListCheckpoints(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snapshots) != 1 || snapshots[0].CurrentPool != 1500 {
		t.Fatalf("expected one updated checkpoint, got %+v", snapshots)
	}

	if err := store.DeleteCheckpoint(context.Background(), "enc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snapshots, err = store.ListCheckpoints(context.Background())
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(snapshots) != 0 {
		t.Fatalf("expected empty checkpoint table, got %d", len(snapshots))
	}
}
