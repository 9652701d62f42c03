package service

import (
	"context"
	"sync"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/storage"
)

// fakeClock drives timers manually so countdown behavior is deterministic.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *fakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{clock: c, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// advance moves the clock and fires every due timer. Callbacks run without
// the clock lock held, so they may schedule new timers.
func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()

	for {
		fn := c.nextDue()
		if fn == nil {
			return
		}
		fn()
	}
}

func (c *fakeClock) nextDue() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, timer := range c.timers {
		if timer.stopped || timer.fired || timer.deadline.After(c.now) {
			continue
		}
		timer.fired = true
		return timer.fn
	}
	return nil
}

// memoryStore is an in-memory storage.Store for registry tests.
type memoryStore struct {
	mu           sync.Mutex
	definitions  map[string]domain.Definition
	history      map[string]domain.HistorySummary
	achievements map[string]map[string]domain.AchievementUnlock
	combatLogs   map[string][]domain.CombatLogEntry
	checkpoints  map[string]domain.Snapshot
}

func newMemoryStore(defs ...domain.Definition) *memoryStore {
	store := &memoryStore{
		definitions:  make(map[string]domain.Definition),
		history:      make(map[string]domain.HistorySummary),
		achievements: make(map[string]map[string]domain.AchievementUnlock),
		combatLogs:   make(map[string][]domain.CombatLogEntry),
		checkpoints:  make(map[string]domain.Snapshot),
	}
	for _, def := range defs {
		store.definitions[def.ID] = def
	}
	return store
}

var _ storage.Store = (*memoryStore)(nil)

func (s *memoryStore) PutDefinition(_ context.Context, def domain.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[def.ID] = def
	return nil
}

func (s *memoryStore) GetDefinition(_ context.Context, id string) (domain.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.definitions[id]
	if !ok {
		return domain.Definition{}, storage.ErrNotFound
	}
	return def, nil
}

func (s *memoryStore) ListDefinitions(_ context.Context) ([]domain.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defs := make([]domain.Definition, 0, len(s.definitions))
	for _, def := range s.definitions {
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *memoryStore) PutHistory(_ context.Context, summary domain.HistorySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.history[summary.EncounterID]; exists {
		return nil
	}
	s.history[summary.EncounterID] = summary
	return nil
}

func (s *memoryStore) GetHistory(_ context.Context, encounterID string) (domain.HistorySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.history[encounterID]
	if !ok {
		return domain.HistorySummary{}, storage.ErrNotFound
	}
	return summary, nil
}

func (s *memoryStore) ListHistoryByPlayer(_ context.Context, playerID string) ([]domain.HistorySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var summaries []domain.HistorySummary
	for _, summary := range s.history {
		for _, participant := range summary.ParticipantIDs {
			if participant == playerID {
				summaries = append(summaries, summary)
				break
			}
		}
	}
	return summaries, nil
}

func (s *memoryStore) HasSuccess(_ context.Context, definitionID, playerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, summary := range s.history {
		if summary.DefinitionID != definitionID || summary.Outcome != domain.OutcomeSuccess {
			continue
		}
		for _, participant := range summary.ParticipantIDs {
			if participant == playerID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *memoryStore) Grant(_ context.Context, playerID, achievementID string, unlockedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.achievements[playerID] == nil {
		s.achievements[playerID] = make(map[string]domain.AchievementUnlock)
	}
	if _, exists := s.achievements[playerID][achievementID]; exists {
		return false, nil
	}
	s.achievements[playerID][achievementID] = domain.AchievementUnlock{
		PlayerID:      playerID,
		AchievementID: achievementID,
		UnlockedAt:    unlockedAt,
	}
	return true, nil
}

func (s *memoryStore) ListAchievements(_ context.Context, playerID string) ([]domain.AchievementUnlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var unlocks []domain.AchievementUnlock
	for _, unlock := range s.achievements[playerID] {
		unlocks = append(unlocks, unlock)
	}
	return unlocks, nil
}

func (s *memoryStore) ArchiveCombatLog(_ context.Context, encounterID string, entries []domain.CombatLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combatLogs[encounterID] = append([]domain.CombatLogEntry(nil), entries...)
	return nil
}

func (s *memoryStore) SaveCheckpoint(_ context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[snapshot.ID] = snapshot
	return nil
}

func (s *memoryStore) DeleteCheckpoint(_ context.Context, encounterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, encounterID)
	return nil
}

func (s *memoryStore) ListCheckpoints(_ context.Context) ([]domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshots := make([]domain.Snapshot, 0, len(s.checkpoints))
	for _, snapshot := range s.checkpoints {
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (s *memoryStore) Close() error { return nil }
