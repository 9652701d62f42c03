// Package seed parses seed command flags and loads the definition fixtures
// into a local database.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/stoneveil/bastion/internal/platform/cmd"
	"github.com/stoneveil/bastion/internal/seed"
	"github.com/stoneveil/bastion/internal/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath string `env:"DB_PATH" envDefault:"bastion.db"`
	List   bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite database")
	fs.BoolVar(&cfg.List, "list", false, "List embedded definitions without writing")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	if cfg.List {
		defs, err := seed.Load()
		if err != nil {
			return err
		}
		for _, def := range defs {
			fmt.Fprintf(out, "%s\t(tier %d)\t%s\n", def.ID, def.Tier, def.DisplayName)
		}
		return nil
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	count, err := seed.Apply(ctx, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %d definitions into %s\n", count, cfg.DBPath)
	return nil
}
