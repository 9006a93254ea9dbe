package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates the env-tagged fields of cfg. Untagged fields are
// left alone.
func ParseEnv(cfg *Config) error {
	err := env.Parse(cfg)
	if err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	return nil
}
