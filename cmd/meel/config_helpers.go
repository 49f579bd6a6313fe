package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meel/internal/config"
)

// loadConfig resolves meel.toml for the command and applies CLI overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(explicit, wd)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}

	// явный флаг важнее manifest
	if flag := cmd.Root().PersistentFlags().Lookup("max-diagnostics"); flag != nil && flag.Changed {
		maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		cfg.Check.MaxDiagnostics = maxDiagnostics
	}
	return cfg, nil
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}
