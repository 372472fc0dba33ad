// Package commands implements the depsync CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "depsync",
		Short: "depsync - manifest-driven dependency checkout",
		Long: `depsync assembles a build-ready source tree from a declarative
dependency manifest (a DEPS file).

It resolves the manifest into git shallow checkouts and binary-package
fetches, evaluates per-entry conditions against the target configuration,
and runs selected post-checkout hooks. Fetches are idempotent: a
destination already at the requested revision or version is skipped
without touching the network.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(newSyncCommand())
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
