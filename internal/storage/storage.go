// Package storage defines the persistence interfaces of the encounter
// engine. The in-memory encounter instance is authoritative while live;
// stores are written through at spawn and terminal transitions only.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// DefinitionStore persists immutable encounter definitions. Definitions are
// seeded out-of-band and read-only at runtime.
type DefinitionStore interface {
	PutDefinition(ctx context.Context, def domain.Definition) error
	GetDefinition(ctx context.Context, id string) (domain.Definition, error)
	ListDefinitions(ctx context.Context) ([]domain.Definition, error)
}

// HistoryStore persists terminal encounter summaries.
type HistoryStore interface {
	PutHistory(ctx context.Context, summary domain.HistorySummary) error
	GetHistory(ctx context.Context, encounterID string) (domain.HistorySummary, error)
	ListHistoryByPlayer(ctx context.Context, playerID string) ([]domain.HistorySummary, error)
	// HasSuccess reports whether the player already has a successful
	// completion of the definition on record.
	HasSuccess(ctx context.Context, definitionID, playerID string) (bool, error)
}

// AchievementStore grants and lists achievement unlocks. Grant is
// idempotent on the (playerID, achievementID) key and reports whether a new
// row was written.
type AchievementStore interface {
	Grant(ctx context.Context, playerID, achievementID string, unlockedAt time.Time) (bool, error)
	ListAchievements(ctx context.Context, playerID string) ([]domain.AchievementUnlock, error)
}

// CombatLogStore archives the append-only combat log of a finished
// encounter.
type CombatLogStore interface {
	ArchiveCombatLog(ctx context.Context, encounterID string, entries []domain.CombatLogEntry) error
}

// CheckpointStore keeps crash-recovery checkpoints of live encounters,
// written at spawn, phase changes and terminal transitions. Terminal
// encounters delete their checkpoint after the history row lands.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, snapshot domain.Snapshot) error
	DeleteCheckpoint(ctx context.Context, encounterID string) error
	ListCheckpoints(ctx context.Context) ([]domain.Snapshot, error)
}

// Store groups every persistence interface behind one handle.
type Store interface {
	DefinitionStore
	HistoryStore
	AchievementStore
	CombatLogStore
	CheckpointStore
	Close() error
}
