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

// PutDefinition upserts one definition document.
func (s *Store) PutDefinition(ctx context.Context, def domain.Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	document, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("marshal definition %s: %w", def.ID, err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO encounter_definitions (id, display_name, tier, document)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    display_name = excluded.display_name,
    tier = excluded.tier,
    document = excluded.document
`, def.ID, def.DisplayName, def.Tier, string(document))
	if err != nil {
		return fmt.Errorf("put definition %s: %w", def.ID, err)
	}
	return nil
}

// GetDefinition loads one definition by id.
func (s *Store) GetDefinition(ctx context.Context, id string) (domain.Definition, error) {
	var document string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT document FROM encounter_definitions WHERE id = ?`, id,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Definition{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Definition{}, fmt.Errorf("get definition %s: %w", id, err)
	}

	var def domain.Definition
	if err := json.Unmarshal([]byte(document), &def); err != nil {
		return domain.Definition{}, fmt.Errorf("unmarshal definition %s: %w", id, err)
	}
	return def, nil
}

// ListDefinitions loads every definition ordered by tier, then id.
func (s *Store) ListDefinitions(ctx context.Context) ([]domain.Definition, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT document FROM encounter_definitions ORDER BY tier, id`)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer rows.Close()

	var defs []domain.Definition
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		var def domain.Definition
		if err := json.Unmarshal([]byte(document), &def); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return defs, nil
}
