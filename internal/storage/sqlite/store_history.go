package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/storage"
)

// PutHistory persists one terminal summary and its participant rows in a
// single transaction. Summaries are write-once; a second write for the same
// encounter id is rejected by the primary key.
func (s *Store) PutHistory(ctx context.Context, summary domain.HistorySummary) error {
	loot, err := json.Marshal(summary.Loot)
	if err != nil {
		return fmt.Errorf("marshal loot for %s: %w", summary.EncounterID, err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO encounter_history
    (encounter_id, definition_id, outcome, duration_seconds, mvp_id, mvp_contribution, loot, ended_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, summary.EncounterID, summary.DefinitionID, string(summary.Outcome), summary.DurationSeconds,
		summary.MVPID, summary.MVPContribution, string(loot), toMillis(summary.EndedAt))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("put history %s: %w", summary.EncounterID, err)
	}

	for _, playerID := range summary.ParticipantIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO encounter_participants (encounter_id, player_id) VALUES (?, ?)
`, summary.EncounterID, playerID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("put history participant %s/%s: %w", summary.EncounterID, playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history %s: %w", summary.EncounterID, err)
	}
	return nil
}

// GetHistory loads one terminal summary by encounter id.
func (s *Store) GetHistory(ctx context.Context, encounterID string) (domain.HistorySummary, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT encounter_id, definition_id, outcome, duration_seconds, mvp_id, mvp_contribution, loot, ended_at
FROM encounter_history WHERE encounter_id = ?
`, encounterID)

	summary, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistorySummary{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.HistorySummary{}, fmt.Errorf("get history %s: %w", encounterID, err)
	}

	participants, err := s.historyParticipants(ctx, encounterID)
	if err != nil {
		return domain.HistorySummary{}, err
	}
	summary.ParticipantIDs = participants
	return summary, nil
}

// ListHistoryByPlayer loads the summaries of every encounter the player took
// part in, most recent first.
func (s *Store) ListHistoryByPlayer(ctx context.Context, playerID string) ([]domain.HistorySummary, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT h.encounter_id, h.definition_id, h.outcome, h.duration_seconds, h.mvp_id, h.mvp_contribution, h.loot, h.ended_at
FROM encounter_history h
JOIN encounter_participants p ON p.encounter_id = h.encounter_id
WHERE p.player_id = ?
ORDER BY h.ended_at DESC
`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", playerID, err)
	}
	defer rows.Close()

	var summaries []domain.HistorySummary
	for rows.Next() {
		summary, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history for %s: %w", playerID, err)
	}
	return summaries, nil
}

// HasSuccess reports whether the player has a successful completion of the
// definition on record.
func (s *Store) HasSuccess(ctx context.Context, definitionID, playerID string) (bool, error) {
	var count int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM encounter_history h
JOIN encounter_participants p ON p.encounter_id = h.encounter_id
WHERE h.definition_id = ? AND p.player_id = ? AND h.outcome = ?
`, definitionID, playerID, string(domain.OutcomeSuccess)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check success %s/%s: %w", definitionID, playerID, err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (domain.HistorySummary, error) {
	var summary domain.HistorySummary
	var outcome string
	var mvpID sql.NullString
	var mvpContribution sql.NullFloat64
	var loot sql.NullString
	var endedAt int64

	if err := row.Scan(&summary.EncounterID, &summary.DefinitionID, &outcome,
		&summary.DurationSeconds, &mvpID, &mvpContribution, &loot, &endedAt); err != nil {
		return domain.HistorySummary{}, err
	}

	summary.Outcome = domain.Outcome(outcome)
	summary.MVPID = mvpID.String
	summary.MVPContribution = mvpContribution.Float64
	summary.EndedAt = fromMillis(endedAt)
	if loot.Valid && loot.String != "" && loot.String != "null" {
		if err := json.Unmarshal([]byte(loot.String), &summary.Loot); err != nil {
			return domain.HistorySummary{}, fmt.Errorf("unmarshal loot: %w", err)
		}
	}
	return summary, nil
}

func (s *Store) historyParticipants(ctx context.Context, encounterID string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT player_id FROM encounter_participants WHERE encounter_id = ? ORDER BY player_id`, encounterID)
	if err != nil {
		return nil, fmt.Errorf("list participants %s: %w", encounterID, err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, playerID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants %s: %w", encounterID, err)
	}
	return participants, nil
}
