// Package server parses server command flags and runs the encounter
// service.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/stoneveil/bastion/internal/encounter/domain"
	"github.com/stoneveil/bastion/internal/encounter/event"
	"github.com/stoneveil/bastion/internal/encounter/service"
	entrypoint "github.com/stoneveil/bastion/internal/platform/cmd"
	"github.com/stoneveil/bastion/internal/platform/timeouts"
	"github.com/stoneveil/bastion/internal/storage/sqlite"
	"github.com/stoneveil/bastion/internal/transport/ws"
)

// Config holds server command configuration.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	Addr   string `env:"ADDR"`
	DBPath string `env:"DB_PATH" envDefault:"bastion.db"`

	// MultiplePerDefinition keys the one-active-encounter rule by
	// (definition, location) instead of definition alone.
	MultiplePerDefinition bool `env:"MULTIPLE_PER_DEFINITION"`

	// Weights tunes the participation score without a rebuild.
	Weights domain.ScoreWeights `envPrefix:"SCORE_WEIGHT_"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite database")
	fs.BoolVar(&cfg.MultiplePerDefinition, "multiple-per-definition", cfg.MultiplePerDefinition,
		"Allow one active encounter per (definition, location) instead of per definition")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the encounter service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	bus := event.NewBus()
	defer bus.Close()

	serviceCfg := service.DefaultConfig()
	serviceCfg.AllowMultiplePerDefinition = cfg.MultiplePerDefinition
	serviceCfg.Rank.Weights = cfg.Weights

	registry, err := service.NewRegistry(ctx, store, bus, serviceCfg)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	defer registry.Close()

	hub := ws.NewHub(bus, log.Default())
	handler := ws.NewHandler(registry, hub, log.Default())

	mux := http.NewServeMux()
	mux.Handle("/ws", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := cfg.Addr
	if addr == "" {
		addr = net.JoinHostPort("", strconv.Itoa(cfg.Port))
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	group.Go(func() error {
		log.Printf("listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
