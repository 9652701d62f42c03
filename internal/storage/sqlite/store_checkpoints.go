package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stoneveil/bastion/internal/encounter/domain"
)

// SaveCheckpoint upserts one live-encounter checkpoint.
func (s *Store) SaveCheckpoint(ctx context.Context, snapshot domain.Snapshot) error {
	document, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", snapshot.ID, err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO active_encounters (id, definition_id, status, snapshot, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    status = excluded.status,
    snapshot = excluded.snapshot,
    updated_at = excluded.updated_at
`, snapshot.ID, snapshot.DefinitionID, snapshot.Status, string(document), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", snapshot.ID, err)
	}
	return nil
}

// DeleteCheckpoint removes a terminal encounter's checkpoint.
func (s *Store) DeleteCheckpoint(ctx context.Context, encounterID string) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM active_encounters WHERE id = ?`, encounterID); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", encounterID, err)
	}
	return nil
}

// ListCheckpoints loads every live-encounter checkpoint.
func (s *Store) ListCheckpoints(ctx context.Context) ([]domain.Snapshot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT snapshot FROM active_encounters ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.Snapshot
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		var snapshot domain.Snapshot
		if err := json.Unmarshal([]byte(document), &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return snapshots, nil
}
