// Package config parses process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every env tag, keeping the process namespace in
// one place instead of repeated across config structs.
const EnvPrefix = "BASTION_"

// ParseEnv loads configuration from BASTION_-prefixed environment variables.
func ParseEnv(target any) error {
	opts := env.Options{Prefix: EnvPrefix}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
