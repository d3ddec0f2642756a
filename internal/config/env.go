package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

type homeEnv struct {
	Home string `env:"TOME_HOME"`
}

// BaseDir returns the directory holding tome.db and config.json:
// $TOME_HOME when set, otherwise ~/.tome.
func BaseDir() (string, error) {
	var h homeEnv
	if err := ParseEnv(&h); err != nil {
		return "", err
	}
	if h.Home != "" {
		return h.Home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tome"), nil
}
