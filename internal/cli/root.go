// Package cli implements the cortyx command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/xdev-exe/cortyx/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Env string
}

// NewRootCommand creates the root command for the cortyx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cortyx",
		Short: "cortyx - metadata-driven documents on a graph store",
		Long: `cortyx serves DocType schemas and their documents from Neo4j.

Configuration is read from config/<env>.yaml; ${VAR} references are expanded
from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Env, "env", config.GetEnv(), "configuration environment (local, prod)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewReindexCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
