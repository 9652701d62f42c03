package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

func TestParseConfigRequiresTarget(t *testing.T) {
	var cfg *struct{}
	if err := ParseConfig(cfg); err == nil {
		t.Fatal("expected nil config target to be rejected")
	}
}

func TestParseConfigReadsEnv(t *testing.T) {
	type testConfig struct {
		Port int `env:"PORT" envDefault:"8080"`
	}

	t.Setenv("BASTION_PORT", "9090")
	var cfg testConfig
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Port)
	}
}

func TestParseArgs(t *testing.T) {
	if err := ParseArgs(nil, nil); err == nil {
		t.Fatal("expected nil flag set to be rejected")
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	value := fs.String("name", "", "")
	if err := ParseArgs(fs, []string{"-name", "bastion"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if *value != "bastion" {
		t.Fatalf("flag value = %q", *value)
	}

	fs2 := flag.NewFlagSet("test", flag.ContinueOnError)
	if err := ParseArgs(fs2, nil); err != nil {
		t.Fatalf("nil args should parse as empty: %v", err)
	}
}

func TestRunWithTelemetryValidates(t *testing.T) {
	noop := func(context.Context) error { return nil }

	if err := RunWithTelemetry(context.Background(), "  ", noop); err == nil {
		t.Fatal("expected blank service name to be rejected")
	}
	if err := RunWithTelemetry(context.Background(), ServiceServer, nil); err == nil {
		t.Fatal("expected nil run function to be rejected")
	}
}

func TestRunWithTelemetryPropagatesRunError(t *testing.T) {
	t.Setenv("BASTION_OTEL_ENABLED", "false")

	sentinel := errors.New("run failed")
	err := RunWithTelemetry(context.Background(), ServiceServer, func(context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected run error propagated, got %v", err)
	}
}
