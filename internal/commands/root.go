// Package commands defines the tallyup CLI.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallyup-dev/tallyup/internal/buildinfo"
	"github.com/tallyup-dev/tallyup/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "tallyup",
		Short:   "Bank statement ingestion and spending categorization",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "tallyup.yaml", "path to the configuration file")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newImportCommand(&configPath))
	rootCmd.AddCommand(newDedupeCommand(&configPath))
	rootCmd.AddCommand(newReportCommand(&configPath))
	rootCmd.AddCommand(newRulesCommand(&configPath))
	rootCmd.AddCommand(newHistoryCommand(&configPath))

	return rootCmd
}

// loadConfig loads the config file, falling back to defaults when the default
// path does not exist and was not set explicitly.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == "tallyup.yaml" && errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}
