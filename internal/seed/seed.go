// Package seed loads the embedded encounter definition fixtures and writes
// them into a definition store.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/storage"
)

//go:embed definitions/*.json
var definitionsFS embed.FS

// Load parses every embedded definition fixture.
func Load() ([]domain.Definition, error) {
	entries, err := fs.Glob(definitionsFS, "definitions/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob definitions: %w", err)
	}

	defs := make([]domain.Definition, 0, len(entries))
	for _, name := range entries {
		data, err := definitionsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var def domain.Definition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validate %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Apply writes every embedded definition into the store, overwriting prior
// versions by id.
func Apply(ctx context.Context, store storage.DefinitionStore) (int, error) {
	defs, err := Load()
	if err != nil {
		return 0, err
	}
	for _, def := range defs {
		if err := store.PutDefinition(ctx, def); err != nil {
			return 0, fmt.Errorf("put definition %s: %w", def.ID, err)
		}
	}
	return len(defs), nil
}
