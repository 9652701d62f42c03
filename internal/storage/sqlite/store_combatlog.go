package sqlite

import (
	"context"
	"fmt"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// ArchiveCombatLog writes the finished encounter's combat log in one
// transaction. Re-archiving is tolerated: rows keyed (encounter, seq) are
// inserted at most once.
func (s *Store) ArchiveCombatLog(ctx context.Context, encounterID string, entries []domain.CombatLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin combat log transaction: %w", err)
	}

	for _, entry := range entries {
		critical := 0
		if entry.Critical {
			critical = 1
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO combat_log (encounter_id, seq, ts, actor_id, actor_type, action, source, amount, critical)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, encounterID, entry.Seq, toMillis(entry.Timestamp), entry.ActorID,
			string(entry.ActorType), string(entry.Action), entry.Source, entry.Amount, critical); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("archive combat log %s seq %d: %w", encounterID, entry.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit combat log %s: %w", encounterID, err)
	}
	return nil
}
